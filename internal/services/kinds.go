package services

import (
	"path"
	"strings"

	"github.com/visualenglishpl/backend/internal/models"
)

// kindRule is one row of the classification table: first predicate that
// matches decides the kind
type kindRule struct {
	matches func(name string) bool
	kind    models.ContentKind
}

func hasExt(exts ...string) func(string) bool {
	return func(name string) bool {
		ext := strings.ToLower(path.Ext(name))
		for _, e := range exts {
			if ext == e {
				return true
			}
		}
		return false
	}
}

func hasKeyword(keywords ...string) func(string) bool {
	return func(name string) bool {
		lower := strings.ToLower(name)
		for _, k := range keywords {
			if strings.Contains(lower, k) {
				return true
			}
		}
		return false
	}
}

// kindRules is evaluated top to bottom. Keyword rules come before the
// generic extension rules so a "wordwall game.png" screenshot still
// classifies as a game link.
var kindRules = []kindRule{
	{matches: hasExt(".swf"), kind: models.ContentKindInteractive},
	{matches: hasKeyword("wordwall", "kahoot", "game"), kind: models.ContentKindInteractive},
	{matches: hasExt(".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg", ".bmp"), kind: models.ContentKindImage},
	{matches: hasExt(".mp4", ".webm", ".mov", ".avi"), kind: models.ContentKindVideo},
	{matches: hasExt(".mp3", ".wav", ".ogg", ".m4a"), kind: models.ContentKindAudio},
	{matches: hasExt(".pdf", ".doc", ".docx", ".xls", ".xlsx", ".csv", ".txt"), kind: models.ContentKindDocument},
}

// ClassifyContentKind derives a content kind from an object key using
// the ordered rule table
func ClassifyContentKind(key string) models.ContentKind {
	name := path.Base(key)
	for _, rule := range kindRules {
		if rule.matches(name) {
			return rule.kind
		}
	}
	return models.ContentKindOther
}

// isDisplayable reports whether an asset belongs in the default slide
// view. Raw spreadsheets and other documents plus flash-legacy files
// are held back unless the caller asks for a documents view.
func isDisplayable(key string, kind models.ContentKind) bool {
	if kind == models.ContentKindDocument {
		return false
	}
	return !strings.HasSuffix(strings.ToLower(key), ".swf")
}
