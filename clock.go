package main

import "time"

// Clock supplies the authoritative server time. Client-supplied
// timestamps are never consulted.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}
