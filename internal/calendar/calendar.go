// Package calendar is the model behind the calendar popover: a month
// cursor that is independent of the wall clock, and the Sunday-first
// month grid it displays.
package calendar

import (
	"fmt"
	"time"
)

// ClockLayout formats the live clock label.
const ClockLayout = "2006-01-02 15:04:05"

// gridCells is six full weeks.
const gridCells = 42

// Weekdays are the grid column headers.
var Weekdays = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Day is one grid cell.
type Day struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
	// InMonth is false for leading and trailing days of adjacent months.
	InMonth bool `json:"inMonth"`
	Today   bool `json:"today"`
}

// Cursor is the month being displayed.
type Cursor struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// At returns a cursor on t's month.
func At(t time.Time) Cursor {
	return Cursor{Year: t.Year(), Month: t.Month()}
}

// Reset moves the cursor to now's month.
func (c *Cursor) Reset(now time.Time) {
	*c = At(now)
}

// Previous moves one month back, wrapping the year.
func (c *Cursor) Previous() {
	c.Month--
	if c.Month < time.January {
		c.Month = time.December
		c.Year--
	}
}

// Next moves one month forward, wrapping the year.
func (c *Cursor) Next() {
	c.Month++
	if c.Month > time.December {
		c.Month = time.January
		c.Year++
	}
}

// Title is the month label, e.g. "March 2026".
func (c Cursor) Title() string {
	return fmt.Sprintf("%s %d", c.Month, c.Year)
}

// Weeks returns the month grid relative to today. Leading cells come from
// the previous month so the first of the month lands on its weekday
// column; trailing cells come from the next month. The grid stops after
// the first week that ends outside the month once four weeks exist.
func (c Cursor) Weeks(today time.Time) [][]Day {
	first := time.Date(c.Year, c.Month, 1, 0, 0, 0, 0, time.UTC)
	lead := int(first.Weekday())
	inMonth := daysIn(c.Year, c.Month)

	ty, tm, td := today.Date()
	cells := make([]Day, 0, gridCells)
	for i := lead; i > 0; i-- {
		d := first.AddDate(0, 0, -i)
		cells = append(cells, Day{Year: d.Year(), Month: d.Month(), Day: d.Day()})
	}
	for n := 1; n <= inMonth; n++ {
		cells = append(cells, Day{Year: c.Year, Month: c.Month, Day: n, InMonth: true})
	}
	next := first.AddDate(0, 1, 0)
	for n := 1; len(cells) < gridCells; n++ {
		cells = append(cells, Day{Year: next.Year(), Month: next.Month(), Day: n})
	}
	for i := range cells {
		cells[i].Today = cells[i].Year == ty && cells[i].Month == tm && cells[i].Day == td
	}

	var weeks [][]Day
	for i := 0; i < len(cells); i += 7 {
		week := cells[i : i+7]
		weeks = append(weeks, week)
		if !week[6].InMonth && len(weeks) >= 4 {
			break
		}
	}
	return weeks
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClockLabel formats t for the live clock.
func ClockLabel(t time.Time) string {
	return t.Format(ClockLayout)
}
