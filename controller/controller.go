package controller

import (
	"context"
	"encoding/json"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/capture"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/channel"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/channel/embedders"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/log"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/stats"
	"github.com/gorilla/websocket"
)

// Outgoing websocket messages are dropped once this many are queued
const sendBuffer = 64

// Constructor for the controller
func CreateController(opts Options) (*Controller, error) {
	cd, err := toConfig(opts)
	if err != nil {
		return nil, err
	}
	var ctr *Controller = &Controller{
		config:     cd,
		clients:    make(map[*websocket.Conn]bool),
		clientStop: make(chan interface{}),
		recvStop:   make(chan interface{}),
		sendStop:   make(chan interface{}),
		doneWsSend: make(chan interface{}),
		doneWsRecv: make(chan interface{}),
		wsSend:     make(chan []byte, sendBuffer),
		wsRecv:     make(chan []byte),
	}
	if err := ctr.retrieveLayers(); err != nil {
		return nil, err
	}
	if err := ctr.openRecorders(); err != nil {
		ctr.recorders.Close()
		return nil, err
	}

	clean, stego := ctr.config.Channel.Burst()
	log.Info().
		Str("role", ctr.config.Channel.Role.Value).
		Str("field", ctr.config.Channel.Field.Value).
		Uint64("repetitions", ctr.rounds).
		Int("bytes", len(ctr.payload)).
		Int("processed_bytes", len(ctr.processed)).
		Str("pattern", embedders.NewBurstScheduler(clean, stego).Pattern(2)).
		Msg("channel ready")

	go ctr.webReceiveLoop()
	go ctr.webSendLoop()
	return ctr, nil
}

// Run hands every packet of q to the channel until q stops or ctx is
// cancelled. A session still in progress at that point is recorded as
// interrupted.
func (ctr *Controller) Run(ctx context.Context, q capture.Queue) error {
	err := q.Run(ctx, ctr.handle)
	ctr.flush()
	return err
}

func (ctr *Controller) handle(pkt []byte) []byte {
	if out, modified := ctr.channel.HandlePacket(pkt); modified {
		return out
	}
	return nil
}

func (ctr *Controller) flush() {
	if r, ok := ctr.channel.Interrupt(); ok {
		log.Warn().Int("repetition", r.Repetition).Msg("session interrupted")
		ctr.report(*r)
	}
}

// Called by the channel at the end of every session, the channel is locked
func (ctr *Controller) onComplete(r channel.Result) bool {
	ctr.report(r)
	if uint64(r.Repetition) < ctr.rounds {
		return true
	}
	ctr.drainOnce.Do(func() {
		log.Info().Uint64("repetitions", ctr.rounds).Msg("all repetitions done, passing packets through")
	})
	return false
}

func (ctr *Controller) report(r channel.Result) {
	s := r.Stats()
	if err := ctr.recorders.Record(s); err != nil {
		log.Error().Err(err).Int("repetition", s.Repetition).Msg("unable to record session")
	}

	ev := log.Info().
		Str("role", string(s.Role)).
		Int("repetition", s.Repetition).
		Int("symbols", s.Symbols).
		Float64("duration_ms", s.DurationMs()).
		Float64("avg_processing_ms", s.AvgProcessingMs()).
		Bool("interrupted", s.Interrupted)
	if s.Role == stats.Receiver {
		ev = ev.Int("failures", s.Failures).
			Float64("percent_correct", s.PercentCorrect()).
			Float64("bandwidth", s.Bandwidth())
	}
	ev.Msg("session done")

	if s.Role == stats.Receiver {
		ctr.restorePayload(r)
	}
	ctr.broadcast(toSession(s))
}

// Rebuild the payload from the received symbols and check it
func (ctr *Controller) restorePayload(r channel.Result) {
	data := embedders.Join(r.Observed, r.Bits, len(ctr.processed))
	restored, err := ctr.restore(data)
	if err != nil {
		log.Warn().Err(err).Int("repetition", r.Repetition).Msg("payload not restored")
		return
	}
	log.Debug().
		Int("repetition", r.Repetition).
		Bool("payload_restored", string(restored) == string(ctr.payload)).
		Msg("payload check")
}

// Queue a message for every websocket client without blocking
func (ctr *Controller) broadcast(data []byte) {
	select {
	case ctr.wsSend <- data:
	default:
		log.Debug().Msg("websocket send queue full, message dropped")
	}
}

func toSession(s stats.SessionStats) []byte {
	data, err := json.Marshal(sessionMessage{
		OpCode:          "session",
		Role:            string(s.Role),
		Field:           s.Field,
		Repetition:      s.Repetition,
		Expected:        s.Expected,
		Symbols:         s.Symbols,
		DurationMs:      s.DurationMs(),
		AvgProcessingMs: s.AvgProcessingMs(),
		Bandwidth:       s.Bandwidth(),
		Failures:        s.Failures,
		PercentCorrect:  s.PercentCorrect(),
		Interrupted:     s.Interrupted,
	})
	if err != nil {
		return toMessage("error", "Marshal Error")
	}
	return data
}

// Callback when receiving a message from the client
func (ctr *Controller) handleMessage(data []byte) []byte {
	var cmd command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return toMessage("error", "Unable to read command: "+err.Error())
	}

	// Determine the operation to perform
	switch cmd.OpCode {
	case "status":
		return ctr.handleStatus()
	case "config":
		if data, err := json.Marshal(ctr.config); err != nil {
			return toMessage("error", "Could not encode config: "+err.Error())
		} else {
			return data
		}
	case "history":
		if data, err := ctr.handleHistory(); err != nil {
			return toMessage("error", "Unable to read history: "+err.Error())
		} else {
			return data
		}
	default:
		return toMessage("error", "Unknown operation code")
	}
}

func (ctr *Controller) handleStatus() []byte {
	data, err := json.Marshal(statusMessage{
		OpCode:     "status",
		State:      ctr.channel.State().String(),
		Repetition: ctr.channel.Repetition(),
		Rounds:     ctr.rounds,
	})
	if err != nil {
		return toMessage("error", "Marshal Error")
	}
	return data
}

// Handle the history command, this needs the SQLite store
func (ctr *Controller) handleHistory() ([]byte, error) {
	var hm historyMessage = historyMessage{OpCode: "history", Sessions: []sessionMessage{}}
	if ctr.store == nil {
		return toMessage("history", "No session store configured"), nil
	}
	sessions, err := ctr.store.Sessions(stats.Role(ctr.config.Channel.Role.Value))
	if err != nil {
		return nil, err
	}
	for _, s := range sessions {
		var sm sessionMessage
		if err := json.Unmarshal(toSession(s), &sm); err != nil {
			return nil, err
		}
		hm.Sessions = append(hm.Sessions, sm)
	}
	return json.Marshal(hm)
}

// A helper function for preparing responses to the client
// opcode is the type of message, and is one of the valid opCodes from the client or "error"
// data is the message
func toMessage(opcode string, data string) []byte {
	var mt messageType
	mt.OpCode = opcode
	mt.Message = data
	if data, err := json.Marshal(mt); err != nil {
		return []byte("{\"OpCode\" : \"error\", \"Message\" : \"Marshal Error\" }")
	} else {
		return data
	}
}

// Shutdown stops the websocket loops and releases the recorders
func (ctr *Controller) Shutdown() error {
	err := ctr.webShutdown()
	if cerr := ctr.recorders.Close(); cerr != nil {
		return cerr
	}
	return err
}
