package text

import (
	"math"
	"slices"
	"sync"

	"github.com/samber/lo"

	"scrollcal/internal/log"
)

// Stats is a histogram of what one render measured: rounded text widths
// and individual runes. It is used to size glyph subsets and check that
// labels fit their columns. A nil *Stats ignores records.
type Stats struct {
	mu     sync.Mutex
	widths map[int]int
	runes  map[rune]int
}

func NewStats() *Stats {
	return &Stats{widths: make(map[int]int), runes: make(map[rune]int)}
}

func (st *Stats) Record(s string, width float64) {
	if st == nil {
		return
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.widths[int(math.Ceil(width))]++
	for _, r := range s {
		st.runes[r]++
	}
}

// Widths returns the recorded widths in ascending order with their counts.
func (st *Stats) Widths() []lo.Entry[int, int] {
	st.mu.Lock()
	defer st.mu.Unlock()
	entries := lo.ToPairs(st.widths)
	slices.SortFunc(entries, func(a, b lo.Entry[int, int]) int { return a.Key - b.Key })
	return entries
}

// Runes returns the distinct recorded runes, most frequent first.
func (st *Stats) Runes() []lo.Entry[rune, int] {
	st.mu.Lock()
	defer st.mu.Unlock()
	entries := lo.ToPairs(st.runes)
	slices.SortFunc(entries, func(a, b lo.Entry[rune, int]) int {
		if a.Value != b.Value {
			return b.Value - a.Value
		}
		return int(a.Key - b.Key)
	})
	return entries
}

// Log writes the histograms at debug level.
func (st *Stats) Log() {
	if st == nil || !log.DebugEnabled() {
		return
	}
	for _, e := range st.Widths() {
		log.Debug("text width", "px", e.Key, "count", e.Value)
	}
	runes := st.Runes()
	log.Debug("text runes", "distinct", len(runes), "set", string(lo.Map(runes, func(e lo.Entry[rune, int], _ int) rune { return e.Key })))
}
