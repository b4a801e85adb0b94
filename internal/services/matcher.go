package services

import (
	"path"
	"strings"

	"github.com/visualenglishpl/backend/internal/models"
)

// MatchQA finds the best question/answer pair for an asset filename.
// The spreadsheet and the asset filenames were authored independently
// over the years, so a single exact lookup would drop most valid
// associations. Cascade, first hit wins:
//
//  1. exact filename key
//  2. extension-stripped, trimmed filename key
//  3. extracted code pattern: exact, lowercased, then a scan over all
//     keys in insertion order accepting the first whose lowercased form
//     starts with or contains the lowercased pattern
//  4. substring fallback in either direction
//
// No match is an expected outcome (title slides, videos, game embeds
// carry no question) and is reported as false, never an error.
func MatchQA(filename string, mapping *models.QAMapping) (models.QuestionAnswer, bool) {
	if mapping == nil || mapping.Len() == 0 {
		return models.QuestionAnswer{}, false
	}

	base := path.Base(filename)

	if qa, ok := mapping.Get(base); ok {
		return qa, true
	}

	stripped := stripExtension(base)
	if qa, ok := mapping.Get(stripped); ok {
		return qa, true
	}

	if pattern, ok := ExtractPattern(base); ok {
		if qa, found := mapping.Get(pattern); found {
			return qa, true
		}
		lowerPattern := strings.ToLower(pattern)
		if qa, found := mapping.Get(lowerPattern); found {
			return qa, true
		}
		for _, key := range mapping.Keys() {
			lowerKey := strings.ToLower(key)
			if strings.HasPrefix(lowerKey, lowerPattern) || strings.Contains(lowerKey, lowerPattern) {
				qa, _ := mapping.Get(key)
				return qa, true
			}
		}
	}

	// Last resort: substring relation in either direction. The length
	// guard keeps short fragments from matching unrelated keys.
	for _, key := range mapping.Keys() {
		if key == "" {
			continue
		}
		if strings.Contains(base, key) {
			qa, _ := mapping.Get(key)
			return qa, true
		}
		if len(stripped) > 3 && strings.Contains(key, stripped) {
			qa, _ := mapping.Get(key)
			return qa, true
		}
	}

	return models.QuestionAnswer{}, false
}
