package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestSetOutput(t *testing.T) {
	var buf bytes.Buffer
	Init(false, true)
	SetOutput(&buf)

	Debug().Msg("hidden")
	Info().Str("role", "receiver").Int("repetition", 3).Msg("session done")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %d; want 1, debug must be filtered at info level", len(lines))
	}
	var ev map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("err = '%s'; want nil", err.Error())
	}
	if ev["message"] != "session done" || ev["role"] != "receiver" || ev["repetition"] != float64(3) {
		t.Errorf("event = %v; want the session fields", ev)
	}
}

func TestDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(true, true)
	SetOutput(&buf)
	defer Init(false, false)

	Debug().Msg("start delimiter received")
	if !strings.Contains(buf.String(), "start delimiter received") {
		t.Errorf("output = '%s'; want the debug event", buf.String())
	}
}
