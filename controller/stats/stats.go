package stats

import (
	"math"
	"time"
)

type Role string

const (
	Sender   Role = "sender"
	Receiver Role = "receiver"
)

// SessionStats is the record of one transmission attempt.
// Symbols counts the data symbols carried (sender) or accepted (receiver),
// delimiters and stuffing escapes are not included.
type SessionStats struct {
	Role         Role
	Field        string
	FieldBits    uint
	Repetition   int
	Expected     int
	Symbols      int
	Start        time.Time
	End          time.Time
	Processing   time.Duration
	Failures     int
	FirstFailure int
	Interrupted  bool
}

// Align compares the observed symbols to the expected ones position by position.
// Missing or extra trailing symbols each count as one failure. If the overlap
// holds no mismatch, the first failure is the end of the shorter sequence, or
// the symbol count when both sequences are identical.
func Align(expected, observed []uint32) (failures, firstFailure int) {
	n := len(observed)
	if len(expected) < n {
		n = len(expected)
	}
	firstFailure = -1
	for i := 0; i < n; i += 1 {
		if expected[i] != observed[i] {
			failures += 1
			if firstFailure < 0 {
				firstFailure = i
			}
		}
	}
	diff := len(expected) - len(observed)
	if diff < 0 {
		diff = -diff
	}
	failures += diff
	if firstFailure < 0 {
		if diff != 0 {
			firstFailure = n
		} else {
			firstFailure = len(observed)
		}
	}
	return failures, firstFailure
}

// Finalize builds the record of a finished session. observed is nil for a sender.
func Finalize(role Role, field string, bits uint, expected, observed []uint32, sent int,
	start, end time.Time, processing time.Duration, interrupted bool) SessionStats {
	s := SessionStats{
		Role:        role,
		Field:       field,
		FieldBits:   bits,
		Expected:    len(expected),
		Start:       start,
		End:         end,
		Processing:  processing,
		Interrupted: interrupted,
	}
	if role == Receiver {
		s.Symbols = len(observed)
		s.Failures, s.FirstFailure = Align(expected, observed)
	} else {
		if sent > len(expected) {
			sent = len(expected)
		}
		s.Symbols = sent
		s.Failures, s.FirstFailure = Align(expected, expected[:sent])
	}
	return s
}

func (s SessionStats) Duration() time.Duration {
	if s.End.Before(s.Start) {
		return 0
	}
	return s.End.Sub(s.Start)
}

func (s SessionStats) DurationMs() float64 {
	return Round(float64(s.Duration()) / float64(time.Millisecond))
}

func (s SessionStats) AvgProcessingMs() float64 {
	if s.Symbols == 0 {
		return 0
	}
	return Round(float64(s.Processing) / float64(time.Millisecond) / float64(s.Symbols))
}

// Bandwidth in bits per second
func (s SessionStats) Bandwidth() float64 {
	d := s.Duration().Seconds()
	if d == 0 {
		return 0
	}
	return Round(float64(s.FieldBits) * float64(s.Symbols) / d)
}

// PercentCorrect is the share of symbols before the first failure, in whole percent
func (s SessionStats) PercentCorrect() float64 {
	if s.Symbols == 0 {
		return 0
	}
	return math.Round(float64(s.FirstFailure) / float64(s.Symbols) * 100)
}

// Round to two decimals
func Round(f float64) float64 {
	return math.Round(f*100) / 100
}
