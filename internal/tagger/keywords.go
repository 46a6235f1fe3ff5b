package tagger

import "strings"

// captionKeywordConfidence is assigned to tags kept from caption text
// when the model scored nothing usable. Sits exactly at the default
// confidence floor so these survive postprocessing.
const captionKeywordConfidence = 0.1

// stopwords excluded from caption keyword extraction.
var stopwords = map[string]bool{
	"the": true, "and": true, "are": true, "was": true, "were": true,
	"with": true, "this": true, "that": true, "there": true, "their": true,
	"have": true, "has": true, "had": true, "for": true, "from": true,
	"its": true, "his": true, "her": true, "our": true, "your": true,
	"they": true, "them": true, "you": true, "who": true, "what": true,
	"when": true, "where": true, "which": true, "while": true, "over": true,
	"under": true, "into": true, "onto": true, "near": true, "next": true,
	"some": true, "many": true, "few": true, "two": true, "three": true,
}

// CaptionKeywords extracts candidate labels from a caption: lowercase
// words of three or more letters, stopwords removed, order preserved,
// first occurrence kept.
func CaptionKeywords(caption string) []string {
	seen := map[string]bool{}
	var keywords []string

	for _, word := range strings.FieldsFunc(strings.ToLower(caption), func(r rune) bool {
		return r < 'a' || r > 'z'
	}) {
		if len(word) < 3 || stopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}
	return keywords
}

// keywordTags converts caption keywords into low-confidence scored tags.
func keywordTags(caption string) []ScoredTag {
	keywords := CaptionKeywords(caption)
	tags := make([]ScoredTag, 0, len(keywords))
	for _, word := range keywords {
		tags = append(tags, ScoredTag{
			Name:       word,
			Confidence: captionKeywordConfidence,
			Matched:    word,
		})
	}
	return tags
}
