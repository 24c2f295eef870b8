package application

import "time"

// Clock interface supaya gampang ditest
type Clock interface {
	Now() time.Time
}

// SystemClock implementasi default, pakai time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ElapsedMS is the whole milliseconds between start and the clock's now.
func ElapsedMS(c Clock, start time.Time) int64 {
	return c.Now().Sub(start).Milliseconds()
}
