// Package chat answers free-text questions by classifying them and rendering analytics results.
package chat

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"coin-insights/internal/analytics"
	"coin-insights/internal/errs"
	"coin-insights/internal/nlp"
	"coin-insights/internal/query"
)

// Classifier predicts an intent tag for a question.
type Classifier interface {
	Predict(text string) (string, error)
}

// Analytics is the data the chat path can ask for.
type Analytics interface {
	Names(ctx context.Context) ([]string, error)
	CurrentPrice(ctx context.Context, coin string) (float64, error)
	Recommend(ctx context.Context, coin string) (analytics.Recommendation, error)
	TopPicks(ctx context.Context) (query.TopPicksReport, error)
	Volatility(ctx context.Context) (query.VolatilityReport, error)
}

// Reply is the answer to one question.
type Reply struct {
	Response string `json:"response"`
	Intent   Intent `json:"intent"`
}

// Service answers questions.
type Service struct {
	classifier Classifier
	analytics  Analytics
	responder  *Responder
	logger     zerolog.Logger
}

// NewService wires the classifier, analytics and responder.
func NewService(classifier Classifier, data Analytics, responder *Responder, logger zerolog.Logger) *Service {
	return &Service{
		classifier: classifier,
		analytics:  data,
		responder:  responder,
		logger:     logger.With().Str("component", "chat").Logger(),
	}
}

// Ask classifies a question and answers it. Classifier and validation problems are returned as
// errors; analytics problems become an apologetic reply.
func (s *Service) Ask(ctx context.Context, question string) (Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, errs.Required("question")
	}

	tag, err := s.classifier.Predict(question)
	if err != nil {
		return Reply{}, err
	}
	intent := ParseIntent(tag)
	log := s.logger.With().Str("intent", string(intent)).Logger()

	var coin string
	if intent.NeedsCoin() {
		names, err := s.analytics.Names(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("list coin names")
			return Reply{Response: s.responder.Failure(intent, "that coin", err), Intent: intent}, nil
		}
		found, ok := nlp.NewExtractor(names).Extract(question)
		if !ok {
			return Reply{Response: s.responder.Clarify(intent), Intent: intent}, nil
		}
		coin = found
		log = log.With().Str("coin", coin).Logger()
	}

	response, err := s.answer(ctx, intent, coin)
	if err != nil {
		log.Warn().Err(err).Msg("chat analytics failed")
		response = s.responder.Failure(intent, coin, err)
	} else {
		log.Debug().Msg("question answered")
	}
	return Reply{Response: response, Intent: intent}, nil
}

func (s *Service) answer(ctx context.Context, intent Intent, coin string) (string, error) {
	switch intent {
	case IntentPriceQuery:
		price, err := s.analytics.CurrentPrice(ctx, coin)
		if err != nil {
			return "", err
		}
		return s.responder.Price(coin, price), nil
	case IntentBuyRecommendation:
		rec, err := s.analytics.Recommend(ctx, coin)
		if err != nil {
			return "", err
		}
		return s.responder.Recommendation(coin, rec), nil
	case IntentTopRecommendation:
		report, err := s.analytics.TopPicks(ctx)
		if err != nil {
			return "", err
		}
		return s.responder.TopPicks(report), nil
	case IntentVolatilityQuery:
		report, err := s.analytics.Volatility(ctx)
		if err != nil {
			return "", err
		}
		return s.responder.Volatility(report), nil
	default:
		return s.responder.Fallback(), nil
	}
}

var (
	_ Classifier = (*nlp.Classifier)(nil)
	_ Analytics  = (*query.Facade)(nil)
)
