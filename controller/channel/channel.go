package channel

import (
	"time"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/stats"
)

type State uint8

const (
	Idle State = iota
	Armed
	Active
	PendingEnd
	Completed
	Drained
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Active:
		return "active"
	case PendingEnd:
		return "pending_end"
	case Completed:
		return "completed"
	case Drained:
		return "drained"
	default:
		return "unknown"
	}
}

// Result is what a channel knows about a session when it ends.
// Observed is only filled in by a receiver, Sent only by a sender.
type Result struct {
	Role        stats.Role
	Field       string
	Bits        uint
	Repetition  int
	Expected    []uint32
	Observed    []uint32
	Sent        int
	Start       time.Time
	End         time.Time
	Processing  time.Duration
	Interrupted bool
}

func (r Result) Stats() stats.SessionStats {
	s := stats.Finalize(r.Role, r.Field, r.Bits, r.Expected, r.Observed, r.Sent,
		r.Start, r.End, r.Processing, r.Interrupted)
	s.Repetition = r.Repetition
	return s
}

// Channel is a covert channel driven by intercepted packets.
// HandlePacket returns the bytes to accept and whether they differ from pkt.
type Channel interface {
	HandlePacket(pkt []byte) ([]byte, bool)
	// Interrupt ends the session in progress, if any, and drains the channel
	Interrupt() (*Result, bool)
	State() State
	Repetition() int
}
