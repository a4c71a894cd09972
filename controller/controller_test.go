package controller

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/capture"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/channel"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/channel/embedders"
	"github.com/ElsevierSoftwareX/SOFTX-D-20-00074/controller/stats"
	"github.com/gorilla/websocket"
)

// sliceQueue replays a fixed list of packets and keeps what was accepted
type sliceQueue struct {
	packets  [][]byte
	accepted [][]byte
}

func (q *sliceQueue) Run(ctx context.Context, fn capture.Handler) error {
	for _, pkt := range q.packets {
		if ctx.Err() != nil {
			return nil
		}
		out := fn(pkt)
		if out == nil {
			out = pkt
		}
		q.accepted = append(q.accepted, out)
	}
	return nil
}

func (q *sliceQueue) Close() error {
	return nil
}

func writePayload(t *testing.T, dir string, data string) string {
	path := filepath.Join(dir, "payload.txt")
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("Unexpected write error: %s", err.Error())
	}
	return path
}

func synth(t *testing.T, n int) [][]byte {
	packets, err := capture.Synthesize(n, net.ParseIP("fd00::1"), net.ParseIP("fd00::2"), 64)
	if err != nil {
		t.Fatalf("Unexpected synthesize error: %s", err.Error())
	}
	return packets
}

func makeController(t *testing.T, opts Options) *Controller {
	ctr, err := CreateController(opts)
	if err != nil {
		t.Fatalf("Unexpected open error: %s", err.Error())
	}
	return ctr
}

func shutdown(t *testing.T, ctr *Controller) {
	if err := ctr.Shutdown(); err != nil {
		t.Errorf("Unexpected close error: %s", err.Error())
	}
}

func TestShutdown(t *testing.T) {
	opts := DefaultOptions()
	opts.Role = "sender"
	opts.File = writePayload(t, t.TempDir(), "hello")
	opts.ResultsDir = t.TempDir()
	ctr := makeController(t, opts)
	shutdown(t, ctr)
}

func TestCreateControllerErrors(t *testing.T) {
	dir := t.TempDir()
	file := writePayload(t, dir, "hello")
	cases := []struct {
		name string
		edit func(*Options)
	}{
		{"no role", func(o *Options) { o.Role = "" }},
		{"no file", func(o *Options) { o.File = "" }},
		{"missing file", func(o *Options) { o.File = filepath.Join(dir, "missing") }},
		{"role", func(o *Options) { o.Role = "observer" }},
		{"field", func(o *Options) { o.Field = "traffic-class" }},
		{"processor", func(o *Options) { o.Processors = []string{"Caesar"} }},
	}
	for _, c := range cases {
		opts := DefaultOptions()
		opts.Role = "receiver"
		opts.File = file
		opts.ResultsDir = dir
		c.edit(&opts)
		if ctr, err := CreateController(opts); err == nil {
			t.Errorf("%s: err = nil; want error", c.name)
			ctr.Shutdown()
		}
	}
}

func TestDefaultOptionsNeedRole(t *testing.T) {
	opts := DefaultOptions()
	opts.File = writePayload(t, t.TempDir(), "hello")
	opts.ResultsDir = t.TempDir()
	ctr, err := CreateController(opts)
	if err == nil {
		ctr.Shutdown()
		t.Fatalf("err = nil; want an error for a missing role")
	}
	if !strings.Contains(err.Error(), "Role") {
		t.Errorf("err = '%s'; want a Role error", err.Error())
	}
}

func TestEndToEnd(t *testing.T) {
	var (
		dir     = t.TempDir()
		file    = writePayload(t, dir, "a covert message over the flow label")
		packets = synth(t, 400)
	)

	sopts := DefaultOptions()
	sopts.Role = "sender"
	sopts.File = file
	sopts.Repetitions = 3
	sopts.ConsecutiveClean, sopts.ConsecutiveStego = 2, 3
	sopts.Processors = []string{"GZipCompression", "Checksum"}
	sopts.ResultsDir = filepath.Join(dir, "sender")

	ropts := sopts
	ropts.Role = "receiver"
	ropts.ResultsDir = filepath.Join(dir, "receiver")
	ropts.SQLite = filepath.Join(dir, "sessions.db")

	sender := makeController(t, sopts)
	sq := &sliceQueue{packets: packets}
	if err := sender.Run(context.Background(), sq); err != nil {
		t.Errorf("Unexpected run error: %s", err.Error())
	}
	if sender.channel.State() != channel.Drained {
		t.Errorf("sender state = %s; want drained", sender.channel.State())
	}
	if sender.channel.Repetition() != 3 {
		t.Errorf("sender repetitions = %d; want 3", sender.channel.Repetition())
	}
	shutdown(t, sender)

	receiver := makeController(t, ropts)
	rq := &sliceQueue{packets: sq.accepted}
	if err := receiver.Run(context.Background(), rq); err != nil {
		t.Errorf("Unexpected run error: %s", err.Error())
	}
	sessions, err := receiver.store.Sessions(stats.Receiver)
	if err != nil {
		t.Fatalf("Unexpected query error: %s", err.Error())
	}
	if len(sessions) != 3 {
		t.Fatalf("sessions = %d; want 3", len(sessions))
	}
	for i, s := range sessions {
		if s.Repetition != i+1 || s.Failures != 0 || s.Interrupted {
			t.Errorf("session %d = %+v; want a clean session", i, s)
		}
		if s.PercentCorrect() != 100 {
			t.Errorf("session %d percent = %f; want 100", i, s.PercentCorrect())
		}
	}
	shutdown(t, receiver)

	for _, sub := range []string{"sender", "receiver"} {
		matches, _ := filepath.Glob(filepath.Join(dir, sub, "results_flow_label_*_"+sub+".csv"))
		if len(matches) != 1 {
			t.Errorf("%s csv files = %v; want one", sub, matches)
		}
	}
}

func TestRunInterrupted(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.Role = "receiver"
	opts.File = writePayload(t, dir, "abcdefgh")
	opts.ResultsDir = dir
	opts.SQLite = filepath.Join(dir, "sessions.db")
	ctr := makeController(t, opts)
	defer shutdown(t, ctr)

	var (
		field   embedders.FlowLabelField
		packets = synth(t, 3)
	)
	for i, v := range []uint32{embedders.FlowLabelStart, 0x61626, 0x36465} {
		pkt, err := field.Set(packets[i], v)
		if err != nil {
			t.Fatalf("Unexpected set error: %s", err.Error())
		}
		packets[i] = pkt
	}
	if err := ctr.Run(context.Background(), &sliceQueue{packets: packets}); err != nil {
		t.Errorf("Unexpected run error: %s", err.Error())
	}
	if ctr.channel.State() != channel.Drained {
		t.Errorf("state = %s; want drained", ctr.channel.State())
	}
	sessions, err := ctr.store.Sessions(stats.Receiver)
	if err != nil {
		t.Fatalf("Unexpected query error: %s", err.Error())
	}
	if len(sessions) != 1 || !sessions[0].Interrupted || sessions[0].Symbols != 2 {
		t.Errorf("sessions = %+v; want one interrupted session of 2 symbols", sessions)
	}
}

func TestHandleMessage(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.Role = "sender"
	opts.File = writePayload(t, dir, "hello")
	opts.ResultsDir = dir
	ctr := makeController(t, opts)
	defer shutdown(t, ctr)

	cases := []struct {
		msg    string
		opCode string
	}{
		{`{"OpCode":"status"}`, "status"},
		{`{"OpCode":"config"}`, "config"},
		{`{"OpCode":"history"}`, "history"},
		{`{"OpCode":"open"}`, "error"},
		{`not json`, "error"},
	}
	for _, c := range cases {
		var cmd command
		if err := json.Unmarshal(ctr.handleMessage([]byte(c.msg)), &cmd); err != nil {
			t.Errorf("%s: Unexpected decode error: %s", c.msg, err.Error())
		} else if cmd.OpCode != c.opCode {
			t.Errorf("%s: OpCode = '%s'; want '%s'", c.msg, cmd.OpCode, c.opCode)
		}
	}

	var st statusMessage
	if err := json.Unmarshal(ctr.handleStatus(), &st); err != nil {
		t.Fatalf("Unexpected decode error: %s", err.Error())
	}
	if st.State != "idle" || st.Rounds != 10 || st.Repetition != 0 {
		t.Errorf("status = %+v; want idle with 10 rounds", st)
	}
}

func TestWebsocket(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.Role = "sender"
	opts.File = writePayload(t, dir, "hello")
	opts.ResultsDir = dir
	ctr := makeController(t, opts)

	srv := httptest.NewServer(http.HandlerFunc(ctr.HandleFunc))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Unexpected dial error: %s", err.Error())
	}
	defer client.Close()

	if err := client.WriteMessage(websocket.TextMessage, []byte(`{"OpCode":"status"}`)); err != nil {
		t.Fatalf("Unexpected write error: %s", err.Error())
	}
	client.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("Unexpected read error: %s", err.Error())
	}
	var st statusMessage
	if err := json.Unmarshal(data, &st); err != nil || st.OpCode != "status" {
		t.Errorf("message = '%s'; want a status", string(data))
	}

	// Session results are pushed without a request
	ctr.broadcast(toSession(stats.SessionStats{Role: stats.Sender, Field: "flow_label", Repetition: 1}))
	_, data, err = client.ReadMessage()
	if err != nil {
		t.Fatalf("Unexpected read error: %s", err.Error())
	}
	var sm sessionMessage
	if err := json.Unmarshal(data, &sm); err != nil || sm.OpCode != "session" || sm.Repetition != 1 {
		t.Errorf("message = '%s'; want a session", string(data))
	}

	shutdown(t, ctr)
}
