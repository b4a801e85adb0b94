package services

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// slideExtRe strips the known asset file extensions
var slideExtRe = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|gif|webp|mp4)$`)

// Code extraction patterns, tried in order. The filename convention
// evolved over time: newer assets carry a full three-token code
// ("01 I A"), older ones only a partial code, so degrade gracefully.
var (
	fullCodeRe   = regexp.MustCompile(`(\d{2})\s*([A-Za-z])\s*([A-Za-z])`)
	shortCodeRe  = regexp.MustCompile(`(\d{2})[\s-]*([A-Za-z])`)
	numberCodeRe = regexp.MustCompile(`^(\d{2})`)
)

// ExtractPattern derives a normalized code pattern from a raw asset
// filename: "01IA", "01 i a" and "01 I A ..." all normalize to "01 I A".
// Returns false when no digit-led pattern is present.
func ExtractPattern(filename string) (string, bool) {
	name := stripExtension(path.Base(filename))

	if m := fullCodeRe.FindStringSubmatch(name); m != nil {
		return fmt.Sprintf("%s %s %s", m[1], strings.ToUpper(m[2]), strings.ToUpper(m[3])), true
	}

	if m := shortCodeRe.FindStringSubmatch(name); m != nil {
		return fmt.Sprintf("%s %s", m[1], strings.ToUpper(m[2])), true
	}

	if m := numberCodeRe.FindStringSubmatch(name); m != nil {
		return m[1], true
	}

	return "", false
}

// stripExtension removes a known trailing file extension and trims
// surrounding whitespace
func stripExtension(filename string) string {
	return strings.TrimSpace(slideExtRe.ReplaceAllString(filename, ""))
}
