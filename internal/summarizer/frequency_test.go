package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizePicksFrequentSentences(t *testing.T) {
	text := "Solar panels convert sunlight into electricity. " +
		"My neighbour has a cat. " +
		"Solar electricity from panels keeps getting cheaper. " +
		"Panels producing solar electricity now power whole towns. " +
		"The weather was grey on Tuesday."

	s := NewFrequency()
	summary, err := s.Summarize(text, 2)
	require.NoError(t, err)

	sentences := strings.Count(summary, ".")
	assert.Equal(t, 2, sentences)
	assert.Contains(t, summary, "solar", "summary should favour the dominant topic")
	assert.NotContains(t, summary, "neighbour")
}

func TestSummarizeKeepsOriginalOrder(t *testing.T) {
	text := "Alpha alpha alpha first. Nothing here. Alpha alpha alpha second. Filler words only. Alpha alpha alpha third."

	s := NewFrequency()
	summary, err := s.Summarize(text, 3)
	require.NoError(t, err)

	first := strings.Index(summary, "first")
	second := strings.Index(summary, "second")
	third := strings.Index(summary, "third")
	require.GreaterOrEqual(t, first, 0)
	require.GreaterOrEqual(t, second, 0)
	require.GreaterOrEqual(t, third, 0)
	assert.Less(t, first, second)
	assert.Less(t, second, third)
}

func TestSummarizeFewerSentencesThanRequested(t *testing.T) {
	s := NewFrequency()
	summary, err := s.Summarize("Only one sentence here.", 5)
	require.NoError(t, err)
	assert.Equal(t, "Only one sentence here.", summary)
}

func TestSummarizeNoSentenceBoundaries(t *testing.T) {
	s := NewFrequency()
	summary, err := s.Summarize("  no punctuation at all  ", 3)
	require.NoError(t, err)
	assert.Equal(t, "no punctuation at all", summary)
}

func TestSummarizeEmpty(t *testing.T) {
	s := NewFrequency()
	summary, err := s.Summarize("", 3)
	require.NoError(t, err)
	assert.Empty(t, summary)
}
