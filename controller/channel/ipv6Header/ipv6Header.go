package ipv6Header

import (
	"errors"
	"sync"
	"time"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/channel"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/channel/embedders"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/log"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/stats"
)

type Config struct {
	Role    stats.Role
	Codec   embedders.FieldCodec
	Payload *embedders.BitPayload
	// Burst pattern, both sides must agree on it
	CleanCount uint64
	StegoCount uint64
	// OnComplete is called with the result of every finished session and
	// returns whether another session should follow. It is called while
	// the channel is locked and must not call back into it.
	OnComplete func(channel.Result) bool
	Clock      func() time.Time
}

type session struct {
	cursor        int
	escapePending bool
	observed      []uint32
	start         time.Time
	processing    time.Duration
}

// A covert channel in one field of the IPv6 header.
// The same type implements both roles, the sender rewrites the field of
// the packets it is handed and the receiver only reads it.
type Channel struct {
	conf       Config
	mu         sync.Mutex
	sched      *embedders.BurstScheduler
	state      channel.State
	sess       session
	repetition int
}

func MakeChannel(conf Config) (*Channel, error) {
	if conf.Role != stats.Sender && conf.Role != stats.Receiver {
		return nil, errors.New("Invalid role: " + string(conf.Role))
	}
	if conf.Codec == nil {
		return nil, errors.New("A field codec is required")
	}
	if conf.Payload == nil || conf.Payload.Len() == 0 {
		return nil, errors.New("Payload is empty")
	}
	if conf.Payload.Width != conf.Codec.Width() {
		return nil, errors.New("Payload symbol width does not match the field codec")
	}
	if conf.OnComplete == nil {
		conf.OnComplete = func(channel.Result) bool { return true }
	}
	if conf.Clock == nil {
		conf.Clock = time.Now
	}
	return &Channel{
		conf:  conf,
		sched: embedders.NewBurstScheduler(conf.CleanCount, conf.StegoCount),
		state: channel.Idle,
	}, nil
}

func (c *Channel) State() channel.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Number of sessions completed so far, interrupted ones included
func (c *Channel) Repetition() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repetition
}

func (c *Channel) HandlePacket(pkt []byte) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == channel.Drained {
		return pkt, false
	}
	value, err := c.conf.Codec.Field().Get(pkt)
	if err != nil {
		if ev := log.Debug(); ev.Enabled() {
			ev.Err(err).Str("packet", embedders.Describe(pkt)).Msg("packet ignored")
		}
		return pkt, false
	}
	if c.conf.Role == stats.Sender {
		return c.send(pkt, value)
	}
	c.receive(pkt, value)
	return pkt, false
}

func (c *Channel) Interrupt() (*channel.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var (
		r  channel.Result
		ok bool
	)
	switch c.state {
	case channel.Armed, channel.Active, channel.PendingEnd:
		// A buffered END with no successor is taken as the terminator
		if c.state == channel.PendingEnd {
			c.sess.observed = c.sess.observed[:len(c.sess.observed)-1]
		}
		r, ok = c.finish(true), true
	}
	c.state = channel.Drained
	if ok {
		return &r, true
	}
	return nil, false
}

func (c *Channel) send(pkt []byte, value uint32) ([]byte, bool) {
	var (
		t0    = c.conf.Clock()
		codec = c.conf.Codec
	)
	switch c.state {
	case channel.Idle:
		c.begin(t0)
		c.state = channel.Armed
		if ev := log.Debug(); ev.Enabled() {
			ev.Int("repetition", c.repetition+1).Str("packet", embedders.Describe(pkt)).Msg("start delimiter sent")
		}
		return c.write(pkt, codec.Encode(value, 0, true))
	case channel.Armed, channel.Active:
		if c.sess.escapePending {
			c.sess.escapePending = false
			out, mod := c.write(pkt, codec.Terminator(value))
			c.account(t0)
			return out, mod
		}
		if !c.sched.Advance() {
			return pkt, false
		}
		if c.sess.cursor >= c.conf.Payload.Len() {
			out, mod := c.write(pkt, codec.Terminator(value))
			c.account(t0)
			c.complete()
			return out, mod
		}
		sym := c.conf.Payload.Symbols[c.sess.cursor]
		c.sess.cursor += 1
		c.sess.escapePending = codec.Stuffed(sym)
		c.state = channel.Active
		out, mod := c.write(pkt, codec.Encode(value, sym, false))
		c.account(t0)
		return out, mod
	}
	return pkt, false
}

func (c *Channel) receive(pkt []byte, value uint32) {
	var (
		t0    = c.conf.Clock()
		codec = c.conf.Codec
	)
	switch c.state {
	case channel.Idle:
		if _, _, d := codec.Decode(value); d == embedders.StartDelimiter {
			c.begin(t0)
			c.state = channel.Armed
			if ev := log.Debug(); ev.Enabled() {
				ev.Int("repetition", c.repetition+1).Str("packet", embedders.Describe(pkt)).Msg("start delimiter received")
			}
		}
	case channel.Armed, channel.Active:
		if !c.sched.InStego() {
			c.sched.Advance()
			return
		}
		sym, ok, d := codec.Decode(value)
		switch {
		case d == embedders.EndDelimiter && ok:
			// Either the terminator or stuffed data, the next packet tells
			c.sess.observed = append(c.sess.observed, sym)
			c.sched.Advance()
			c.state = channel.PendingEnd
		case d == embedders.EndDelimiter:
			c.account(t0)
			c.complete()
			return
		case ok:
			c.sess.observed = append(c.sess.observed, sym)
			c.sched.Advance()
			c.state = channel.Active
		default:
			return
		}
		c.account(t0)
	case channel.PendingEnd:
		if _, _, d := codec.Decode(value); d == embedders.EndDelimiter {
			c.state = channel.Active
			c.account(t0)
			return
		}
		c.sess.observed = c.sess.observed[:len(c.sess.observed)-1]
		c.account(t0)
		c.complete()
		// The packet after a terminator may open the next session
		if c.state == channel.Idle {
			c.receive(pkt, value)
		}
	}
}

func (c *Channel) write(pkt []byte, v uint32) ([]byte, bool) {
	out, err := c.conf.Codec.Field().Set(pkt, v)
	if err != nil {
		return pkt, false
	}
	return out, true
}

func (c *Channel) begin(t time.Time) {
	c.sess = session{start: t}
	c.sched.Reset()
}

func (c *Channel) account(t0 time.Time) {
	c.sess.processing += c.conf.Clock().Sub(t0)
}

func (c *Channel) finish(interrupted bool) channel.Result {
	field := c.conf.Codec.Field()
	r := channel.Result{
		Role:        c.conf.Role,
		Field:       field.Name(),
		Bits:        c.conf.Codec.Width(),
		Repetition:  c.repetition + 1,
		Expected:    c.conf.Payload.Symbols,
		Sent:        c.sess.cursor,
		Start:       c.sess.start,
		End:         c.conf.Clock(),
		Processing:  c.sess.processing,
		Interrupted: interrupted,
	}
	if c.conf.Role == stats.Receiver {
		r.Observed = c.sess.observed
		r.Sent = 0
	}
	c.repetition += 1
	c.state = channel.Completed
	c.sess = session{}
	c.sched.Reset()
	return r
}

func (c *Channel) complete() {
	r := c.finish(false)
	if c.conf.OnComplete(r) {
		c.state = channel.Idle
	} else {
		c.state = channel.Drained
	}
}
