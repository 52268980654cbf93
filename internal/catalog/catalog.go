// Package catalog exposes read-only accessors over the museum fixture: halls,
// exhibits and developers.  The fixture is parsed once and never mutated;
// every accessor hands out copies so callers cannot change shared state.
package catalog

import (
	"cmp"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/iliyamo/history-museum/internal/model"
)

//go:embed data/museum.json
var embedded []byte

// fixture mirrors the top-level layout of museum.json.
type fixture struct {
	Halls      []model.Hall      `json:"halls"`
	Exhibits   []model.Exhibit   `json:"exhibits"`
	Developers []model.Developer `json:"developers"`
}

// Catalog holds the immutable museum collections.
type Catalog struct {
	halls      []model.Hall
	exhibits   []model.Exhibit
	developers []model.Developer
}

// Load reads the fixture at path, or the embedded fixture when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(embedded)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a fixture document.  It does not validate references; call
// Validate for that.
func Parse(data []byte) (*Catalog, error) {
	var f fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return &Catalog{halls: f.Halls, exhibits: f.Exhibits, developers: f.Developers}, nil
}

// Validate checks the fixture invariants: hall and exhibit ids are unique and
// every exhibit references an existing hall.
func (c *Catalog) Validate() error {
	halls := make(map[string]bool, len(c.halls))
	for _, h := range c.halls {
		if h.ID == "" {
			return fmt.Errorf("hall with empty id")
		}
		if halls[h.ID] {
			return fmt.Errorf("duplicate hall id %q", h.ID)
		}
		halls[h.ID] = true
	}
	exhibits := make(map[string]bool, len(c.exhibits))
	for _, e := range c.exhibits {
		if e.ID == "" {
			return fmt.Errorf("exhibit with empty id")
		}
		if exhibits[e.ID] {
			return fmt.Errorf("duplicate exhibit id %q", e.ID)
		}
		exhibits[e.ID] = true
		if !halls[e.HallID] {
			return fmt.Errorf("exhibit %q references unknown hall %q", e.ID, e.HallID)
		}
	}
	return nil
}

// ListHalls returns all halls in fixture order with exhibit counts filled in.
func (c *Catalog) ListHalls() []model.Hall {
	counts := c.exhibitCounts()
	out := make([]model.Hall, 0, len(c.halls))
	for _, h := range c.halls {
		h.ExhibitsCount = counts[h.ID]
		h.ExhibitsLabel = ExhibitsLabel(h.ExhibitsCount)
		out = append(out, h)
	}
	return out
}

// GetHall finds a hall by id.
func (c *Catalog) GetHall(id string) (model.Hall, bool) {
	for _, h := range c.halls {
		if h.ID == id {
			h.ExhibitsCount = c.countExhibits(id)
			h.ExhibitsLabel = ExhibitsLabel(h.ExhibitsCount)
			return h, true
		}
	}
	return model.Hall{}, false
}

// OtherHalls returns every hall except the one with the given id.
func (c *Catalog) OtherHalls(id string) []model.Hall {
	all := c.ListHalls()
	return slices.DeleteFunc(all, func(h model.Hall) bool { return h.ID == id })
}

// ListExhibits returns all exhibits in fixture order.
func (c *Catalog) ListExhibits() []model.Exhibit {
	out := make([]model.Exhibit, 0, len(c.exhibits))
	for _, e := range c.exhibits {
		out = append(out, cloneExhibit(e))
	}
	return out
}

// ListExhibitsByHall returns the exhibits of a hall, preserving fixture order.
// An unknown hall yields an empty slice.
func (c *Catalog) ListExhibitsByHall(hallID string) []model.Exhibit {
	out := []model.Exhibit{}
	for _, e := range c.exhibits {
		if e.HallID == hallID {
			out = append(out, cloneExhibit(e))
		}
	}
	return out
}

// GetExhibit finds an exhibit by id.
func (c *Catalog) GetExhibit(id string) (model.Exhibit, bool) {
	for _, e := range c.exhibits {
		if e.ID == id {
			return cloneExhibit(e), true
		}
	}
	return model.Exhibit{}, false
}

// GetHallExhibit finds an exhibit by id and requires it to belong to hallID.
func (c *Catalog) GetHallExhibit(hallID, exhibitID string) (model.Exhibit, bool) {
	e, ok := c.GetExhibit(exhibitID)
	if !ok || e.HallID != hallID {
		return model.Exhibit{}, false
	}
	return e, true
}

// ExhibitNeighbors returns the exhibits before and after exhibitID inside its
// hall.  Either may be nil at the ends of the hall or when the exhibit is not
// part of the hall.
func (c *Catalog) ExhibitNeighbors(hallID, exhibitID string) (prev, next *model.Exhibit) {
	list := c.ListExhibitsByHall(hallID)
	i := slices.IndexFunc(list, func(e model.Exhibit) bool { return e.ID == exhibitID })
	if i < 0 {
		return nil, nil
	}
	if i > 0 {
		prev = &list[i-1]
	}
	if i < len(list)-1 {
		next = &list[i+1]
	}
	return prev, next
}

// ListExhibitsByDate returns all exhibits ordered by start year.  Exhibits
// with the same start year keep their fixture order.
func (c *Catalog) ListExhibitsByDate() []model.Exhibit {
	out := c.ListExhibits()
	slices.SortStableFunc(out, func(a, b model.Exhibit) int {
		return cmp.Compare(a.StartDate, b.StartDate)
	})
	return out
}

// ListDevelopers returns the project team.
func (c *Catalog) ListDevelopers() []model.Developer {
	return slices.Clone(c.developers)
}

func (c *Catalog) exhibitCounts() map[string]int {
	counts := make(map[string]int, len(c.halls))
	for _, e := range c.exhibits {
		counts[e.HallID]++
	}
	return counts
}

func (c *Catalog) countExhibits(hallID string) int {
	n := 0
	for _, e := range c.exhibits {
		if e.HallID == hallID {
			n++
		}
	}
	return n
}

func cloneExhibit(e model.Exhibit) model.Exhibit {
	e.Artifacts = slices.Clone(e.Artifacts)
	return e
}
