// Package analytics computes document statistics and keyword frequencies.
package analytics

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// WordsPerMinute is the reading speed behind ReadingTime.
const WordsPerMinute = 200

// stopwordList holds frequent English function words skipped by keyword
// ranking. Contractions are listed without the apostrophe, the way
// cleanWord leaves them.
const stopwordList = `
a about above across after afterwards again against all almost alone along already also
although always am among amongst amount an and another any anyhow anyone anything anyway
anywhere are arent around as at back be became because become becomes becoming been before
beforehand behind being below beside besides between beyond both but by can cant cannot could
couldnt did didnt do does doesnt doing dont done down during each either else elsewhere enough
entirely especially etc even ever every everyone everything everywhere few for former formerly
from further had hadnt has hasnt have havent having he hed hell hes hence her here hereafter
hereby herein heres hereupon hers herself him himself his how however i id ill im ive if in
indeed into is isnt it its itself just keep last latter latterly least less let lets like
likely made make many may maybe me meanwhile might mine more moreover most mostly much must
mustnt my myself neither never nevertheless next no nobody none noone nor not nothing now
nowhere of off often on once one only onto or other others otherwise our ours ourselves out
over own part per perhaps please put rather re same see seem seemed seeming seems several she
shed shell shes should shouldnt since so some somehow someone something sometime sometimes
somewhere still such take than that thats the their theirs them themselves then thence there
thereafter thereby therefore therein theres thereupon these they theyd theyll theyre theyve
this those through throughout thru thus to together too toward towards under until up upon us
use very via was wasnt we wed well were weve werent what whatever whats when whence whenever
where whereafter whereas whereby wherein wheres whereupon wherever whether which while whither
who whod whoever wholl whos whose why will with within without wont would wouldnt yet you youd
youll youre youve your yours yourself yourselves aint itll shant thatll whens
`

var stopwords = func() map[string]struct{} {
	words := strings.Fields(stopwordList)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// Stats are the document-level counts reported for every file.
type Stats struct {
	LengthChars    int
	WordCount      int
	ParagraphCount int
	ReadingTimeMin int
}

// Compute derives Stats from text. Length counts characters, not bytes.
func Compute(text string) Stats {
	words := len(strings.Fields(text))
	return Stats{
		LengthChars:    utf8.RuneCountInString(text),
		WordCount:      words,
		ParagraphCount: ParagraphCount(text),
		ReadingTimeMin: ReadingTime(words),
	}
}

// ParagraphCount counts non-empty lines after trimming.
func ParagraphCount(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}

// ReadingTime is words/WordsPerMinute + 1, so even an empty text reads in a minute.
func ReadingTime(words int) int {
	return words/WordsPerMinute + 1
}

// cleanWord lowercases word, trims surrounding punctuation and drops apostrophes.
func cleanWord(word string) string {
	word = strings.TrimFunc(strings.ToLower(word), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.NewReplacer("'", "", "’", "").Replace(word)
}

// WordFrequency counts non-stopword words of text. Pure numbers and single
// characters are skipped.
func WordFrequency(text string) map[string]int {
	frequencies := make(map[string]int)
	for _, raw := range strings.Fields(text) {
		word := cleanWord(raw)
		if utf8.RuneCountInString(word) < 2 || isNumber(word) {
			continue
		}
		if _, stop := stopwords[word]; stop {
			continue
		}
		frequencies[word]++
	}
	return frequencies
}

func isNumber(word string) bool {
	for _, r := range word {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return false
		}
	}
	return true
}

// WordCount is a word with its frequency.
type WordCount struct {
	Word  string `json:"word" yaml:"word"`
	Count int    `json:"count" yaml:"count"`
}

// TopN orders frequencies by count descending, then word ascending, and
// keeps the first n.
func TopN(frequencies map[string]int, n int) []WordCount {
	if n <= 0 {
		return nil
	}
	counts := make([]WordCount, 0, len(frequencies))
	for w, c := range frequencies {
		counts = append(counts, WordCount{Word: w, Count: c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Word < counts[j].Word
	})
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// Keywords returns the n most frequent words of a WordFrequency map.
func Keywords(frequencies map[string]int, n int) []string {
	top := TopN(frequencies, n)
	keywords := make([]string, len(top))
	for i, wc := range top {
		keywords[i] = wc.Word
	}
	return keywords
}
