package layout

import (
	"slices"

	"github.com/samber/lo"

	"scrollcal/internal/log"
	"scrollcal/internal/model"
)

// CharStats counts the runes used by every event body, most frequent
// first. Glyph subsets for the device font are cut from this.
func CharStats(days []model.CalendarDay) []lo.Entry[rune, int] {
	runes := lo.FlatMap(days, func(d model.CalendarDay, _ int) []rune {
		return lo.FlatMap(d.Events, func(ev model.CalendarEvent, _ int) []rune {
			return []rune(ev.Body)
		})
	})
	counts := lo.ToPairs(lo.CountValues(runes))
	slices.SortFunc(counts, func(a, b lo.Entry[rune, int]) int {
		if a.Value != b.Value {
			return b.Value - a.Value
		}
		return int(a.Key - b.Key)
	})
	return counts
}

func LogCharStats(days []model.CalendarDay) {
	counts := CharStats(days)
	once := lo.Filter(counts, func(e lo.Entry[rune, int], _ int) bool { return e.Value == 1 })
	many := lo.Filter(counts, func(e lo.Entry[rune, int], _ int) bool { return e.Value > 1 })
	key := func(e lo.Entry[rune, int], _ int) rune { return e.Key }
	log.Info("event characters",
		"distinct", len(counts),
		"once", string(lo.Map(once, key)),
		"many", string(lo.Map(many, key)),
	)
}
