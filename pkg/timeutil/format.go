// Package timeutil provides the time formats used on screen.
//
// Transcript timestamps are stored as Unix nanoseconds (int64); the
// clock stamps appended to game text follow the game's own convention
// of dropping a leading zero from the hour.
package timeutil

import (
	"strings"
	"time"
)

// FromNano converts a Unix nanosecond timestamp to time.Time.
func FromNano(ns int64) time.Time {
	return time.Unix(0, ns)
}

// ToNano converts a time.Time to Unix nanoseconds.
func ToNano(t time.Time) int64 {
	return t.UnixNano()
}

// Clock formats t as "H:MM", e.g. "9:05".
func Clock(t time.Time) string {
	return strings.TrimPrefix(t.Format("15:04"), "0")
}

// ClockSeconds formats t as "H:MM:SS".
func ClockSeconds(t time.Time) string {
	return strings.TrimPrefix(t.Format("15:04:05"), "0")
}

// ClockMeridiem formats t on a 12-hour clock, e.g. "3:04pm".
func ClockMeridiem(t time.Time) string {
	return t.Format("3:04pm")
}
