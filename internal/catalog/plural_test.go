package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExhibitsLabel(t *testing.T) {
	cases := map[int]string{
		0:  "0 экспонатов",
		1:  "1 экспонат",
		3:  "3 экспоната",
		5:  "5 экспонатов",
		11: "11 экспонатов",
		21: "21 экспонат",
		24: "24 экспоната",
	}
	for n, want := range cases {
		assert.Equal(t, want, ExhibitsLabel(n), "n=%d", n)
	}
}

func TestHallsCarryExhibitsLabel(t *testing.T) {
	c := loadEmbedded(t)
	h, ok := c.GetHall("kievan-rus")
	assert.True(t, ok)
	assert.Equal(t, "3 экспоната", h.ExhibitsLabel)
}
