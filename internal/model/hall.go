package model

// Hall represents a thematic section of the museum that groups exhibits.
// Halls come from the static catalog fixture and are never mutated at
// runtime.
//
// Fields:
//
//	ID            – unique slug (e.g. "kievan-rus").
//	Title         – display title.
//	Description   – short description shown on hall cards.
//	Image         – image reference (path or URL).
//	ExhibitsCount – number of exhibits in the hall.  It is not part of the
//	                fixture; the catalog computes it from the exhibit
//	                collection on every read.
//	ExhibitsLabel – the count as shown on hall cards ("3 экспоната").
type Hall struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Image         string `json:"image"`
	ExhibitsCount int    `json:"exhibitsCount"`
	ExhibitsLabel string `json:"exhibitsLabel"`
}

// Developer is a member of the team shown on the about page.
type Developer struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Avatar      string `json:"avatar"`
	Description string `json:"description"`
}
