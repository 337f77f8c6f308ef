package domain

import "github.com/jonboulle/clockwork"

// clock is a package-level time source so tests can freeze time via SetClock.
// Extraction stamps records with ExtractedAt from this clock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// StampExtracted records the extraction time on a record.
func StampExtracted(rec *Record) {
	rec.ExtractedAt = clock.Now()
}
