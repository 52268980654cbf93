package model

import "strconv"

// Exhibit is a single historical item or article belonging to a hall.
//
// Fields:
//
//	ID              – unique slug across the whole catalog.
//	HallID          – slug of the owning hall.
//	Title           – display title.
//	Description     – one paragraph summary.
//	FullDescription – long form text; paragraphs are separated by a blank line.
//	StartDate       – first year of the period covered by the exhibit.
//	EndDate         – last year of the period (equal to StartDate for a single event).
//	Image           – image reference (path or URL).
//	Artifacts       – ordered list of related topic labels.
type Exhibit struct {
	ID              string   `json:"id"`
	HallID          string   `json:"hallId"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	FullDescription string   `json:"fullDescription"`
	StartDate       int      `json:"startDate"`
	EndDate         int      `json:"endDate"`
	Image           string   `json:"image"`
	Artifacts       []string `json:"artifacts"`
}

// DateLabel formats the period for timeline and badge display: a single year
// when the exhibit covers one year, "start-end" otherwise.
func (e Exhibit) DateLabel() string {
	if e.StartDate == e.EndDate {
		return strconv.Itoa(e.StartDate)
	}
	return strconv.Itoa(e.StartDate) + "-" + strconv.Itoa(e.EndDate)
}
