package chat

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"coin-insights/internal/analytics"
	"coin-insights/internal/errs"
	"coin-insights/internal/query"
)

const maxTopPicks = 5

// Responder renders analytics results as reply text. The numbers in a reply depend only on its
// inputs; the carrier phrase is drawn from the injected random source.
type Responder struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewResponder uses rng to vary phrasing. A nil rng is seeded from seed.
func NewResponder(rng *rand.Rand, seed uint64) *Responder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(seed, seed))
	}
	return &Responder{rng: rng}
}

func (r *Responder) pick(options ...string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return options[r.rng.IntN(len(options))]
}

// Price answers a price question.
func (r *Responder) Price(coin string, price float64) string {
	p := analytics.Money(price)
	return r.pick(
		fmt.Sprintf("The current price of %s is $%s", coin, p),
		fmt.Sprintf("%s is currently trading at $%s", coin, p),
		fmt.Sprintf("%s is worth $%s right now", coin, p),
	)
}

// Recommendation answers a buy/sell question.
func (r *Responder) Recommendation(coin string, rec analytics.Recommendation) string {
	switch rec.Action {
	case analytics.ActionBuy:
		return r.pick(
			fmt.Sprintf("I would buy %s. %s", coin, rec.Reason),
			fmt.Sprintf("It looks like a good time to buy %s. %s", coin, rec.Reason),
			fmt.Sprintf("The indicators suggest buying %s. %s", coin, rec.Reason),
		)
	case analytics.ActionSell:
		return r.pick(
			fmt.Sprintf("I would sell %s. %s", coin, rec.Reason),
			fmt.Sprintf("Consider selling %s. %s", coin, rec.Reason),
			fmt.Sprintf("The indicators suggest selling %s. %s", coin, rec.Reason),
		)
	default:
		return r.pick(
			fmt.Sprintf("I would hold %s. %s", coin, rec.Reason),
			fmt.Sprintf("Better to wait with %s. %s", coin, rec.Reason),
			fmt.Sprintf("The signals are not clear for %s. %s", coin, rec.Reason),
		)
	}
}

// TopPicks lists up to five selector picks with price, performance and stability.
func (r *Responder) TopPicks(report query.TopPicksReport) string {
	if len(report.Picks) == 0 {
		return "I don't have any clear recommendations right now."
	}

	var b strings.Builder
	b.WriteString("Based on the current analysis, my picks are:\n")
	for i, pick := range report.Picks {
		if i == maxTopPicks {
			break
		}
		arrow := "↓"
		if pick.PerformancePct > 0 {
			arrow = "↑"
		}
		stability := "n/a"
		if pick.Stability != nil {
			stability = fmt.Sprintf("%.2f", *pick.Stability)
		}
		fmt.Fprintf(&b, "%d. %s (Price: $%s, Performance: %s%.1f%%, Stability: %s)\n",
			i+1, pick.CoinName, analytics.Money(pick.Price), arrow, abs(pick.PerformancePct), stability)
	}
	return b.String()
}

// Volatility reports the year's most volatile and most stable coins.
func (r *Responder) Volatility(report query.VolatilityReport) string {
	return fmt.Sprintf("Cryptocurrency analysis:\nMost volatile coin: %s (std dev: %.2f)\nMost stable coin: %s (std dev: %.2f)\nData year: %d",
		report.MostVolatile.CoinName, report.MostVolatile.StdDev,
		report.MostStable.CoinName, report.MostStable.StdDev,
		report.Year)
}

// Clarify asks for the coin an intent needs.
func (r *Responder) Clarify(intent Intent) string {
	if intent == IntentPriceQuery {
		return "Which cryptocurrency would you like the price of?"
	}
	return "Which cryptocurrency should I analyse for you?"
}

// Fallback answers questions with no recognised intent.
func (r *Responder) Fallback() string {
	return "Sorry, I didn't understand that. You can ask me about prices, buy or sell recommendations, the top coins or volatility."
}

// Failure apologises for an analytics error.
func (r *Responder) Failure(intent Intent, coin string, err error) string {
	cause := "something went wrong"
	switch {
	case errors.Is(err, errs.ErrNotFound):
		cause = "no data is available"
	case errors.Is(err, errs.ErrInsufficientData):
		cause = "there is not enough recent data"
	case errors.Is(err, errs.ErrComputation):
		cause = "the analysis could not be computed"
	}

	switch intent {
	case IntentPriceQuery:
		return fmt.Sprintf("Sorry, I couldn't get the price of %s: %s.", coin, cause)
	case IntentBuyRecommendation:
		return fmt.Sprintf("Sorry, I couldn't analyse %s: %s.", coin, cause)
	case IntentTopRecommendation:
		return fmt.Sprintf("Sorry, I couldn't build recommendations: %s.", cause)
	default:
		return fmt.Sprintf("Sorry, I couldn't build the volatility report: %s.", cause)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
