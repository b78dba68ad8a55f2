package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_Navigation(t *testing.T) {
	c := Cursor{Year: 2026, Month: time.January}

	c.Previous()
	assert.Equal(t, Cursor{Year: 2025, Month: time.December}, c)

	c.Next()
	c.Next()
	assert.Equal(t, Cursor{Year: 2026, Month: time.February}, c)

	c = Cursor{Year: 2026, Month: time.December}
	c.Next()
	assert.Equal(t, Cursor{Year: 2027, Month: time.January}, c)

	c.Reset(time.Date(2026, time.October, 16, 9, 0, 0, 0, time.Local))
	assert.Equal(t, Cursor{Year: 2026, Month: time.October}, c)
}

func TestCursor_Title(t *testing.T) {
	assert.Equal(t, "March 2026", Cursor{Year: 2026, Month: time.March}.Title())
}

func TestWeeks(t *testing.T) {
	today := time.Date(2026, time.October, 16, 12, 0, 0, 0, time.Local)

	tests := []struct {
		name      string
		cursor    Cursor
		wantWeeks int
		wantFirst Day
		wantLast  Day
	}{
		{
			// Oct 1 2026 is a Thursday: four leading September days. Oct 31
			// closes row five, so one all-November row follows.
			name:      "october 2026",
			cursor:    Cursor{Year: 2026, Month: time.October},
			wantWeeks: 6,
			wantFirst: Day{Year: 2026, Month: time.September, Day: 27},
			wantLast:  Day{Year: 2026, Month: time.November, Day: 7},
		},
		{
			// Feb 2026 starts on Sunday and has exactly four weeks; the
			// grid continues until a week ends outside the month.
			name:      "february 2026 fits four rows",
			cursor:    Cursor{Year: 2026, Month: time.February},
			wantWeeks: 5,
			wantFirst: Day{Year: 2026, Month: time.February, Day: 1, InMonth: true},
			wantLast:  Day{Year: 2026, Month: time.March, Day: 7},
		},
		{
			// Aug 2026 starts on Saturday: six rows.
			name:      "august 2026 needs six rows",
			cursor:    Cursor{Year: 2026, Month: time.August},
			wantWeeks: 6,
			wantFirst: Day{Year: 2026, Month: time.July, Day: 26},
			wantLast:  Day{Year: 2026, Month: time.September, Day: 5},
		},
		{
			name:      "january wraps to previous year",
			cursor:    Cursor{Year: 2027, Month: time.January},
			wantWeeks: 6,
			wantFirst: Day{Year: 2026, Month: time.December, Day: 27},
			wantLast:  Day{Year: 2027, Month: time.February, Day: 6},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weeks := tt.cursor.Weeks(today)
			require.Len(t, weeks, tt.wantWeeks)
			for _, w := range weeks {
				assert.Len(t, w, 7)
			}
			assert.Equal(t, tt.wantFirst, weeks[0][0])
			last := weeks[len(weeks)-1]
			assert.Equal(t, tt.wantLast, last[6])
		})
	}
}

func TestWeeks_MarksToday(t *testing.T) {
	today := time.Date(2026, time.October, 16, 23, 59, 0, 0, time.Local)
	weeks := Cursor{Year: 2026, Month: time.October}.Weeks(today)

	var found []Day
	for _, w := range weeks {
		for _, d := range w {
			if d.Today {
				found = append(found, d)
			}
		}
	}
	require.Len(t, found, 1)
	assert.Equal(t, 16, found[0].Day)
	assert.True(t, found[0].InMonth)
}

func TestClockLabel(t *testing.T) {
	ts := time.Date(2026, time.March, 5, 7, 8, 9, 0, time.UTC)
	assert.Equal(t, "2026-03-05 07:08:09", ClockLabel(ts))
}
