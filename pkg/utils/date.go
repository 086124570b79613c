package utils

import "time"

// SameISOWeek reports whether two dates fall in the same ISO week.
func SameISOWeek(a, b time.Time) bool {
	ay, aw := a.ISOWeek()
	by, bw := b.ISOWeek()
	return ay == by && aw == bw
}

// DateOnly truncates a timestamp to its calendar date in UTC. Bars from
// different sources carry different session timestamps; keying on the date
// keeps them comparable.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
