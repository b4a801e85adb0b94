package models

// ContentKind classifies a stored object by what the player can do with it
type ContentKind string

const (
	ContentKindImage       ContentKind = "image"
	ContentKindVideo       ContentKind = "video"
	ContentKindAudio       ContentKind = "audio"
	ContentKindDocument    ContentKind = "document"
	ContentKindInteractive ContentKind = "interactiveGame"
	ContentKindOther       ContentKind = "other"
)

// AssetRecord is one displayable slide in a resolved unit listing.
// Records are rebuilt on every resolution request and never mutated in
// place; overlays produce a new filtered/reordered list.
type AssetRecord struct {
	Path         string      `json:"path"`
	Filename     string      `json:"filename"`
	DisplayIndex int         `json:"displayIndex"`
	ContentKind  ContentKind `json:"contentKind"`
	URL          string      `json:"url,omitempty"`
	Question     string      `json:"question,omitempty"`
	Answer       string      `json:"answer,omitempty"`
}
