package models

// SlideOrder is a per-user custom ordering of slides for one unit.
// Positions refer to the default resolved order (before overlays).
type SlideOrder struct {
	UserID    int    `json:"userId"`
	BookID    string `json:"bookId"`
	UnitID    string `json:"unitId"`
	Positions []int  `json:"positions"`
}

// SetOrderRequest is the body of a custom-order update
type SetOrderRequest struct {
	Positions []int `json:"positions"`
}

// MarkDeletedRequest is the body of a slide deletion request
type MarkDeletedRequest struct {
	Positions []int `json:"positions"`
}
