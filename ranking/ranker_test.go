package ranking

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/colormatch/core"
)

func item(id string, c *core.ColorVector) *core.CatalogItem {
	return &core.CatalogItem{ID: id, Title: "item " + id, Color: c}
}

func rgb(r, g, b int) *core.ColorVector {
	return &core.ColorVector{R: r, G: g, B: b}
}

func TestRankScenario(t *testing.T) {
	ref := item("ref", rgb(255, 0, 0))
	candidates := []*core.CatalogItem{
		item("black", rgb(0, 0, 0)),
		item("near", rgb(250, 10, 10)),
		item("bare", nil),
	}

	matches, err := Rank(ref, candidates, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "near", matches[0].Item.ID)
}

func TestRankOrderingAndExclusions(t *testing.T) {
	ref := item("ref", rgb(255, 0, 0))
	candidates := []*core.CatalogItem{
		item("ref", rgb(255, 0, 0)),
		item("green", rgb(0, 255, 0)),
		item("black", rgb(0, 0, 0)),
		item("near", rgb(250, 10, 10)),
		item("bare", nil),
		nil,
	}

	matches, err := Rank(ref, candidates, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"near", "black", "green"}, IDs(matches))
	for i := 1; i < len(matches); i++ {
		assert.LessOrEqual(t, matches[i-1].Distance, matches[i].Distance)
	}
}

func TestRankTiesBrokenByID(t *testing.T) {
	ref := item("ref", rgb(0, 0, 0))
	candidates := []*core.CatalogItem{
		item("c", rgb(10, 10, 10)),
		item("a", rgb(10, 10, 10)),
		item("b", rgb(10, 10, 10)),
	}

	matches, err := Rank(ref, candidates, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, IDs(matches))
}

func TestRankLimits(t *testing.T) {
	ref := item("ref", rgb(255, 0, 0))
	candidates := []*core.CatalogItem{item("a", rgb(1, 2, 3))}

	matches, err := Rank(ref, candidates, 0)
	require.NoError(t, err)
	assert.NotNil(t, matches)
	assert.Empty(t, matches)

	_, err = Rank(ref, candidates, -1)
	assert.ErrorIs(t, err, ErrInvalidLimit)
}

func TestRankRequiresReferenceColor(t *testing.T) {
	_, err := Rank(item("ref", nil), nil, 5)
	assert.ErrorIs(t, err, core.ErrMissingColor)

	_, err = Rank(nil, nil, 5)
	assert.ErrorIs(t, err, ErrReferenceRequired)
}

func TestRankInvalidCandidateColor(t *testing.T) {
	ref := item("ref", rgb(255, 0, 0))
	_, err := Rank(ref, []*core.CatalogItem{item("bad", rgb(256, 0, 0))}, 1)
	assert.ErrorIs(t, err, core.ErrInvalidColor)
}

func TestRankInvalidReferenceColor(t *testing.T) {
	ref := item("ref", rgb(0, -1, 0))
	candidates := []*core.CatalogItem{item("ok", rgb(1, 2, 3))}

	for _, n := range []int{0, 1} {
		_, err := Rank(ref, candidates, n)
		assert.ErrorIs(t, err, core.ErrInvalidColor, "n=%d", n)
	}
}

type recordingMonitor struct {
	started  int
	skipped  map[string]string
	finished []Match
}

func (m *recordingMonitor) Start(_ *core.CatalogItem, candidates int) { m.started = candidates }
func (m *recordingMonitor) CandidateSkipped(item *core.CatalogItem, reason string) {
	m.skipped[item.ID] = reason
}
func (m *recordingMonitor) Finish(matches []Match) { m.finished = matches }

func TestRankWithMonitor(t *testing.T) {
	r, err := NewRanker()
	require.NoError(t, err)

	ref := item("ref", rgb(255, 0, 0))
	candidates := []*core.CatalogItem{ref, item("bare", nil), item("x", rgb(0, 0, 255))}
	mon := &recordingMonitor{skipped: map[string]string{}}

	matches, err := r.RankWithMonitor(ref, candidates, 5, mon)
	require.NoError(t, err)
	assert.Equal(t, 3, mon.started)
	assert.Equal(t, map[string]string{"ref": SkipReference, "bare": SkipNoColor}, mon.skipped)
	assert.Equal(t, matches, mon.finished)
}

func TestRankProperties(t *testing.T) {
	ref := item("ref", rgb(90, 140, 200))
	var candidates []*core.CatalogItem
	for i := 0; i < 60; i++ {
		var c *core.ColorVector
		if i%7 != 0 {
			c = rgb((i*37)%256, (i*91)%256, (i*13)%256)
		}
		candidates = append(candidates, item(fmt.Sprintf("%03d", i), c))
	}

	for _, n := range []int{1, 5, 51, 100} {
		matches, err := Rank(ref, candidates, n)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(matches), n)
		assert.LessOrEqual(t, len(matches), 51)
		for i, m := range matches {
			assert.NotEqual(t, "ref", m.Item.ID)
			assert.True(t, m.Item.HasColor())
			if i > 0 {
				assert.LessOrEqual(t, matches[i-1].Distance, m.Distance)
			}
		}
	}
}
