package mapreduce

import (
	"fmt"

	"github.com/dtnitsch/docmeta/pkg/analytics"
)

// TopKeywords formats the n most frequent words as "word:count", most
// frequent first, ties alphabetical.
func TopKeywords(wordCounts map[string]int, n int) []string {
	top := analytics.TopN(wordCounts, n)
	keywords := make([]string, len(top))
	for i, wc := range top {
		keywords[i] = fmt.Sprintf("%s:%d", wc.Word, wc.Count)
	}
	return keywords
}
