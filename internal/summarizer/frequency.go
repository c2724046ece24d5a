package summarizer

import (
	"math"
	"sort"
	"strings"

	"regexp"
)

// Frequency is an extractive summarizer used for the session greeting: it
// picks the document sentences whose words occur most often, keeping them in
// reading order. No model call involved.
type Frequency struct {
	wordRe     *regexp.Regexp
	sentenceRe *regexp.Regexp
	stopwords  map[string]struct{}
}

func NewFrequency() *Frequency {
	return &Frequency{
		wordRe:     regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		sentenceRe: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
		stopwords:  stopwords(),
	}
}

// Summarize returns up to maxSentences sentences from text, chosen by
// normalized word frequency and returned in their original order.
func (f *Frequency) Summarize(text string, maxSentences int) (string, error) {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	sentences := f.sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		return strings.TrimSpace(text), nil
	}

	freq := make(map[string]float64)
	top := 0.0
	for _, sent := range sentences {
		for _, w := range f.words(sent) {
			if _, skip := f.stopwords[w]; skip {
				continue
			}
			freq[w]++
			if freq[w] > top {
				top = freq[w]
			}
		}
	}

	type ranked struct {
		pos   int
		score float64
	}
	scores := make([]ranked, len(sentences))
	for i, sent := range sentences {
		words := f.words(sent)
		score := 0.0
		for _, w := range words {
			score += freq[w] / math.Max(top, 1)
		}
		// Dampen long sentences so length alone does not win.
		if n := float64(len(words)); n > 0 {
			score /= math.Sqrt(n)
		}
		scores[i] = ranked{pos: i, score: score}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if maxSentences > len(scores) {
		maxSentences = len(scores)
	}
	picked := make([]int, maxSentences)
	for i := range picked {
		picked[i] = scores[i].pos
	}
	sort.Ints(picked)

	parts := make([]string, 0, len(picked))
	for _, pos := range picked {
		parts = append(parts, strings.TrimSpace(sentences[pos]))
	}
	return strings.Join(parts, " "), nil
}

func (f *Frequency) words(text string) []string {
	return f.wordRe.FindAllString(strings.ToLower(text), -1)
}

func stopwords() map[string]struct{} {
	words := strings.Fields(
		"a an the and or but if then else for to of in on at by with as is are was were be been being " +
			"it this that these those from up down over under again further than so such into about between " +
			"through during before after above below out off own same too very can will just should now")
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
