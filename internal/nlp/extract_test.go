package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSubstringWinsInListOrder(t *testing.T) {
	e := NewExtractor([]string{"BTC", "ETH", "DOGE"})

	got, ok := e.Extract("compare eth and btc")
	assert.True(t, ok)
	assert.Equal(t, "BTC", got, "list order decides, not position in the text")

	got, ok = e.Extract("What's the price of doge?")
	assert.True(t, ok)
	assert.Equal(t, "DOGE", got)
}

func TestExtractFuzzy(t *testing.T) {
	e := NewExtractor([]string{"BITCOIN", "ETHEREUM"})

	got, ok := e.Extract("should I buy etherum")
	assert.True(t, ok)
	assert.Equal(t, "ETHEREUM", got)

	got, ok = e.Extract("price of bit coin")
	assert.True(t, ok)
	assert.Equal(t, "BITCOIN", got, "adjacent words are joined")
}

func TestExtractThresholdIsStrict(t *testing.T) {
	e := NewExtractor([]string{"ABCDEFGHIJ"})

	_, ok := e.Extract("abcdefgxyz")
	assert.False(t, ok, "a score of exactly 70 is rejected")

	got, ok := e.Extract("abcdefghxy")
	assert.True(t, ok)
	assert.Equal(t, "ABCDEFGHIJ", got)
}

func TestExtractFuzzyTieGoesToEarlierSymbol(t *testing.T) {
	got, ok := NewExtractor([]string{"BTCX", "BTCY"}).Extract("btcz")
	assert.True(t, ok)
	assert.Equal(t, "BTCX", got)
}

func TestExtractNothing(t *testing.T) {
	e := NewExtractor([]string{"BTC", "ETH"})
	_, ok := e.Extract("hello there")
	assert.False(t, ok)
	_, ok = e.Extract("")
	assert.False(t, ok)
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 100.0, Similarity("btc", "BTC"), 1e-12)
	assert.InDelta(t, 75.0, Similarity("abcd", "abce"), 1e-12)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-12)
}
