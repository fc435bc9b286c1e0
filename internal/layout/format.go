package layout

import (
	"fmt"
	"time"

	"scrollcal/internal/model"
)

var weekdaySigils = [7]string{
	time.Sunday:    "日",
	time.Monday:    "月",
	time.Tuesday:   "火",
	time.Wednesday: "水",
	time.Thursday:  "木",
	time.Friday:    "金",
	time.Saturday:  "土",
}

func WeekdaySigil(d time.Weekday) string {
	return weekdaySigils[d]
}

// FormatDate renders a day header title such as "05/30 (土)".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Format("01/02"), WeekdaySigil(t.Weekday()))
}

func FormatStart(ev model.CalendarEvent, loc *time.Location) string {
	return ev.Start.In(loc).Format("15:04")
}

// FormatEnd renders the end label of ev relative to its start date. It
// returns false when the event has no end.
func FormatEnd(ev model.CalendarEvent, loc *time.Location) (string, bool) {
	if ev.End == nil {
		return "", false
	}
	end := ev.End.In(loc)
	startDate := model.Midnight(ev.Start, loc)
	endDate := model.Midnight(end, loc)
	nextDate := startDate.AddDate(0, 0, 1)

	switch {
	case endDate.Equal(startDate):
		return "~" + end.Format("15:04"), true
	case endDate.Equal(nextDate) && end.Hour() <= LateEndHour:
		return fmt.Sprintf("~%02d:%02d", end.Hour()+24, end.Minute()), true
	case endDate.Equal(nextDate):
		return "~翌" + end.Format("15:04"), true
	default:
		return fmt.Sprintf("~%s (%s) %s", end.Format("01/02"), WeekdaySigil(end.Weekday()), end.Format("15:04")), true
	}
}
