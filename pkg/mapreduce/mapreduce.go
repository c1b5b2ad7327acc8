// Package mapreduce aggregates per-document word counts across a batch.
package mapreduce

// Reduce sums word frequency maps into one.
func Reduce(intermediate []map[string]int) map[string]int {
	final := make(map[string]int)
	for _, counts := range intermediate {
		for word, count := range counts {
			final[word] += count
		}
	}
	return final
}
