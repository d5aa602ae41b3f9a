package engine

import (
	"log"
	"math"
)

// Freq is a tick frequency, in Hz.
type Freq float64

// Common frequency units.
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
)

// Period returns the time between two consecutive ticks.
func (f Freq) Period() VTimeInSec {
	if f == 0 {
		log.Panic("frequency cannot be 0")
	}

	return VTimeInSec(1.0 / f)
}

// ThisTick returns the tick time at or immediately before now.
func (f Freq) ThisTick(now VTimeInSec) VTimeInSec {
	count := math.Floor(math.Round(float64(now)*10*float64(f)) / 10)
	return VTimeInSec(count / float64(f))
}

// NextTick returns the first tick time strictly after now.
func (f Freq) NextTick(now VTimeInSec) VTimeInSec {
	count := math.Floor(math.Round(float64(now)*10*float64(f)) / 10)
	return VTimeInSec((count + 1) / float64(f))
}
