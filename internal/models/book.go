package models

// Book is one entry of the static book catalog. The catalog is fixed
// editorial data, not user-managed, so it lives in code rather than MySQL.
type Book struct {
	ID            string `json:"bookId"`
	Title         string `json:"title"`
	Level         string `json:"level"`
	UnitCount     int    `json:"unitCount"`
	FallbackColor string `json:"fallbackColor"`
}

// Unit is one unit of a book in list responses
type Unit struct {
	BookID        string `json:"bookId"`
	UnitNumber    int    `json:"unitNumber"`
	Title         string `json:"title"`
	ThumbnailURL  string `json:"thumbnailUrl,omitempty"`
	FallbackColor string `json:"fallbackColor,omitempty"`
}

// Books is the full catalog in presentation order
var Books = []Book{
	{ID: "0a", Title: "VISUAL ENGLISH BOOK 0A", Level: "Beginner", UnitCount: 20, FallbackColor: "#FF40FF"},
	{ID: "0b", Title: "VISUAL ENGLISH BOOK 0B", Level: "Beginner", UnitCount: 20, FallbackColor: "#FF7F27"},
	{ID: "0c", Title: "VISUAL ENGLISH BOOK 0C", Level: "Beginner", UnitCount: 20, FallbackColor: "#00CEDD"},
	{ID: "1", Title: "VISUAL ENGLISH BOOK 1", Level: "Elementary", UnitCount: 18, FallbackColor: "#FFFF00"},
	{ID: "2", Title: "VISUAL ENGLISH BOOK 2", Level: "Pre-intermediate", UnitCount: 18, FallbackColor: "#9966CC"},
	{ID: "3", Title: "VISUAL ENGLISH BOOK 3", Level: "Intermediate", UnitCount: 18, FallbackColor: "#00CC00"},
	{ID: "4", Title: "VISUAL ENGLISH BOOK 4", Level: "Upper Intermediate", UnitCount: 16, FallbackColor: "#5DADEC"},
	{ID: "5", Title: "VISUAL ENGLISH BOOK 5", Level: "Advanced", UnitCount: 16, FallbackColor: "#00CC66"},
	{ID: "6", Title: "VISUAL ENGLISH BOOK 6", Level: "Advanced Plus", UnitCount: 16, FallbackColor: "#FF0000"},
	{ID: "7", Title: "VISUAL ENGLISH BOOK 7", Level: "Proficiency", UnitCount: 16, FallbackColor: "#00FF00"},
}

// BookByID finds a catalog entry by its ID
func BookByID(id string) (Book, bool) {
	for _, b := range Books {
		if b.ID == id {
			return b, true
		}
	}
	return Book{}, false
}
