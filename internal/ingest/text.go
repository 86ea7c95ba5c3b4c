package ingest

import (
	"crypto/sha1"
	"encoding/hex"
	"html"
	"regexp"
	"strings"
)

var (
	urlRegex   = regexp.MustCompile(`https?://[^\s"'<>]+`)
	tagRegex   = regexp.MustCompile(`<[^>]*>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// ExtractURLs returns the distinct HTTP(S) URLs of input in order of appearance.
func ExtractURLs(input string) []string {
	if input == "" {
		return nil
	}
	matches := urlRegex.FindAllString(input, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	var urls []string
	for _, url := range matches {
		if _, ok := seen[url]; !ok {
			seen[url] = struct{}{}
			urls = append(urls, url)
		}
	}
	return urls
}

// CleanText decodes HTML entities, drops markup and squeezes whitespace.
// Punctuation is kept: section numbers and citations depend on it.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	decoded := html.UnescapeString(input)
	decoded = tagRegex.ReplaceAllString(decoded, " ")
	decoded = whitespace.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// GenerateTitleFromText creates a title from the first sentence or first
// maxWords words of text. Returns empty string if text is empty.
func GenerateTitleFromText(text string, maxWords int) string {
	if text == "" {
		return ""
	}

	withoutURLs := urlRegex.ReplaceAllString(text, " ")

	sentence := withoutURLs
	if end := strings.IndexAny(withoutURLs, ".!?"); end > 0 {
		sentence = withoutURLs[:end]
	}

	words := strings.Fields(sentence)
	if len(words) == 0 {
		return ""
	}
	if maxWords > 0 && len(words) > maxWords {
		return strings.Join(words[:maxWords], " ") + "..."
	}
	return strings.Join(words, " ")
}

// BuildDocumentID hashes the stable parts of a document into a deterministic id.
func BuildDocumentID(collection string, parts ...string) string {
	s := sha1.Sum([]byte(collection + "|" + strings.Join(parts, "|")))
	return hex.EncodeToString(s[:])
}
