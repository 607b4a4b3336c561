// Package engtime defines the engine's logical time primitive: a signed
// duration since a fixed epoch at microsecond resolution.
package engtime

import (
	"fmt"
	"math"
	"time"
)

// Time is a signed duration since a fixed epoch, at microsecond resolution.
// Modification times along any propagation path are monotonically
// non-decreasing.
type Time int64

const (
	// MinStep is the smallest addressable step: one microsecond.
	MinStep Time = 1

	// MinTime denotes "never modified / invalid".
	MinTime Time = math.MinInt64

	// MaxTime denotes "after end of evaluation".
	MaxTime Time = math.MaxInt64
)

// Epoch is the fixed reference point Time durations are measured from.
var Epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// FromWall converts a wall-clock time.Time to engine Time relative to Epoch.
func FromWall(t time.Time) Time {
	return Time(t.Sub(Epoch).Microseconds())
}

// Wall converts an engine Time back to a wall-clock time.Time.
func (t Time) Wall() time.Time {
	return Epoch.Add(time.Duration(t) * time.Microsecond)
}

// Valid reports whether t represents an actual modification time, i.e.
// t > MinTime. Per spec invariant 5: last_modified_time > MIN_TIME ⇔ valid.
func (t Time) Valid() bool {
	return t > MinTime
}

// Add returns t advanced by d microseconds.
func (t Time) Add(d Time) Time {
	return t + d
}

// Max returns the later of two times.
func Max(a, b Time) Time {
	if a > b {
		return a
	}
	return b
}

// Min returns the earlier of two times.
func Min(a, b Time) Time {
	if a < b {
		return a
	}
	return b
}

func (t Time) String() string {
	switch t {
	case MinTime:
		return "MIN_TIME"
	case MaxTime:
		return "MAX_TIME"
	default:
		return fmt.Sprintf("%dus", int64(t))
	}
}
