package zlog

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-prefs"
	"github.com/rs/zerolog"
)

func TestLogEventFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(zerolog.New(&buf))

	logger.LogEvent(prefs.LogEvent{
		Level:      prefs.LevelWarn,
		Message:    "write failed",
		Document:   "game",
		Store:      "memory",
		SnapshotID: "abc",
		Bytes:      42,
		Duration:   3 * time.Millisecond,
		Err:        errors.New("disk full"),
	})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v (%s)", err, buf.String())
	}
	want := map[string]any{
		"level":       "warn",
		"message":     "write failed",
		"document":    "game",
		"store":       "memory",
		"snapshot_id": "abc",
		"bytes":       float64(42),
		"error":       "disk full",
	}
	for key, value := range want {
		if line[key] != value {
			t.Fatalf("field %s: expected %v, got %v", key, value, line[key])
		}
	}
	if _, ok := line["field"]; ok {
		t.Fatalf("empty field should be omitted")
	}
}

func TestLogEventRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(zerolog.New(&buf).Level(zerolog.InfoLevel))
	logger.LogEvent(prefs.LogEvent{Level: prefs.LevelDebug, Message: "write dispatched"})
	if buf.Len() != 0 {
		t.Fatalf("debug event should be filtered, got %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"":      zerolog.InfoLevel,
		"debug": zerolog.DebugLevel,
		"warn":  zerolog.WarnLevel,
		"bogus": zerolog.InfoLevel,
	}
	for name, want := range cases {
		if got := ParseLevel(name); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", name, got, want)
		}
	}
}
