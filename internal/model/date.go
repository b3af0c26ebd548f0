package model

import "time"

// DateLayout is the wire format of civil dates.
const DateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// CivilDate drops the clock part of t, keeping its calendar date in UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of calendar days from start to end.
// The result is negative when end precedes start.
func DaysBetween(start, end time.Time) int {
	return int((CivilDate(end).Unix() - CivilDate(start).Unix()) / secondsPerDay)
}
