package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestInfoWritesFieldsToEveryWriter(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	var a, b bytes.Buffer
	SetupWithWriters("info", &a, &b)

	Info("scheduler.run.completed", map[string]any{"schedule_id": "s-1", "status": "success"})

	for _, buf := range []*bytes.Buffer{&a, &b} {
		var entry map[string]any
		if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
			t.Fatalf("decode log line: %v (%q)", err, buf.String())
		}
		if entry["msg"] != "scheduler.run.completed" {
			t.Fatalf("unexpected msg: %v", entry["msg"])
		}
		if entry["schedule_id"] != "s-1" || entry["status"] != "success" {
			t.Fatalf("missing fields: %v", entry)
		}
		if entry["level"] != "INFO" {
			t.Fatalf("unexpected level: %v", entry["level"])
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	var buf bytes.Buffer
	SetupWithWriters("error", &buf)
	Info("ignored", nil)
	Warn("ignored", nil)
	if buf.Len() != 0 {
		t.Fatalf("expected info/warn to be filtered, got %q", buf.String())
	}
	Error("kept", map[string]any{"error": "boom"})
	if buf.Len() == 0 {
		t.Fatalf("expected error line")
	}
}

func TestCronLoggerError(t *testing.T) {
	prev := Logger()
	t.Cleanup(func() { SetLogger(prev) })

	var buf bytes.Buffer
	SetupWithWriters("debug", &buf)
	CronLogger{}.Error(errors.New("panic in job"), "panic", "job", "s-1")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry["msg"] != "cron.panic" || entry["error"] != "panic in job" || entry["job"] != "s-1" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
