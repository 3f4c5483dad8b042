package chat

// Intent is what a question asks for.
type Intent string

const (
	IntentPriceQuery        Intent = "price_query"
	IntentBuyRecommendation Intent = "buy_recommendation"
	IntentTopRecommendation Intent = "top_recommendation"
	IntentVolatilityQuery   Intent = "volatility_query"
	IntentUnknown           Intent = "unknown"
)

// Intents lists every intent the service answers.
var Intents = []Intent{
	IntentPriceQuery,
	IntentBuyRecommendation,
	IntentTopRecommendation,
	IntentVolatilityQuery,
	IntentUnknown,
}

// ParseIntent maps a classifier tag to an intent. Tags the service does not answer map to unknown.
func ParseIntent(tag string) Intent {
	switch Intent(tag) {
	case IntentPriceQuery, IntentBuyRecommendation, IntentTopRecommendation, IntentVolatilityQuery:
		return Intent(tag)
	default:
		return IntentUnknown
	}
}

// NeedsCoin reports whether answering requires a coin named in the question.
func (i Intent) NeedsCoin() bool {
	return i == IntentPriceQuery || i == IntentBuyRecommendation
}
