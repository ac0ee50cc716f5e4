package keywords

import "time"

// SeasonalWindow is a recurring calendar interval tied to a festival or
// shopping event. Bounds are inclusive and the year is ignored.
type SeasonalWindow struct {
	Name       string
	StartMonth time.Month
	StartDay   int
	EndMonth   time.Month
	EndDay     int
}

// SeasonalWindows is evaluated in order; the first match wins.
var SeasonalWindows = []SeasonalWindow{
	{Name: "Diwali", StartMonth: time.October, StartDay: 15, EndMonth: time.November, EndDay: 15},
	{Name: "New Year", StartMonth: time.December, StartDay: 15, EndMonth: time.January, EndDay: 15},
	{Name: "Holi", StartMonth: time.February, StartDay: 15, EndMonth: time.March, EndDay: 31},
	{Name: "Raksha Bandhan", StartMonth: time.July, StartDay: 15, EndMonth: time.August, EndDay: 31},
	{Name: "Christmas", StartMonth: time.December, StartDay: 1, EndMonth: time.December, EndDay: 31},
	{Name: "Black Friday", StartMonth: time.November, StartDay: 20, EndMonth: time.November, EndDay: 30},
	{Name: "Republic Day", StartMonth: time.January, StartDay: 15, EndMonth: time.January, EndDay: 31},
	{Name: "Independence Day", StartMonth: time.August, StartDay: 1, EndMonth: time.August, EndDay: 20},
}

// Wrapped reports whether the window crosses the year boundary.
func (w SeasonalWindow) Wrapped() bool {
	return w.StartMonth > w.EndMonth
}

// Contains reports whether month/day falls inside the window.
func (w SeasonalWindow) Contains(month time.Month, day int) bool {
	afterStart := month > w.StartMonth || (month == w.StartMonth && day >= w.StartDay)
	beforeEnd := month < w.EndMonth || (month == w.EndMonth && day <= w.EndDay)
	if w.Wrapped() {
		return afterStart || beforeEnd
	}
	return afterStart && beforeEnd
}

// ContainsDate reports whether t's month and day fall inside the window.
func (w SeasonalWindow) ContainsDate(t time.Time) bool {
	_, month, day := t.Date()
	return w.Contains(month, day)
}

// MatchSeasonalWindow returns the first window containing t.
func MatchSeasonalWindow(t time.Time) (SeasonalWindow, bool) {
	for _, w := range SeasonalWindows {
		if w.ContainsDate(t) {
			return w, true
		}
	}
	return SeasonalWindow{}, false
}
