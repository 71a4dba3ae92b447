package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

// resetGlobal clears the global logger and restores a text logger on
// stdout when the test ends.
func resetGlobal(t *testing.T) {
	t.Helper()
	mu.Lock()
	global = nil
	mu.Unlock()
	t.Cleanup(func() {
		_ = Init()
		_ = SetLevelString("info")
	})
}

func TestLoggerInit(t *testing.T) {
	resetGlobal(t)

	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestInitWithFormatJSON(t *testing.T) {
	resetGlobal(t)

	var buf bytes.Buffer
	if err := InitWithFormat(FormatJSON, &buf); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}

	Named("worker").Info(context.Background(), "game scored",
		String("game_id", "745001"), Int("plays", 72), Error(errors.New("boom")))

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("output is not one json record: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "game scored" {
		t.Errorf("msg = %v, want %q", rec["msg"], "game scored")
	}
	if rec["component"] != "worker" {
		t.Errorf("component = %v, want %q", rec["component"], "worker")
	}
	if rec["game_id"] != "745001" {
		t.Errorf("game_id = %v, want %q", rec["game_id"], "745001")
	}
	if rec["plays"] != float64(72) {
		t.Errorf("plays = %v, want 72", rec["plays"])
	}
	if src, _ := rec["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("source = %q, want the calling file", src)
	}
}

func TestInitWithFormatText(t *testing.T) {
	resetGlobal(t)

	var buf bytes.Buffer
	if err := InitWithFormat(" TEXT ", &buf); err != nil {
		t.Fatalf("failed to initialize text logger: %v", err)
	}

	Get().Warn(context.Background(), "queue full", Int("capacity", 8))

	out := buf.String()
	for _, want := range []string{"level=WARN", `msg="queue full"`, "capacity=8"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q is missing %q", out, want)
		}
	}
}

func TestInitWithFormatUnknown(t *testing.T) {
	resetGlobal(t)

	if err := InitWithFormat("xml", &bytes.Buffer{}); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
	mu.RLock()
	defer mu.RUnlock()
	if global != nil {
		t.Fatal("a failed init must not install a logger")
	}
}

func TestNamedBeforeInit(t *testing.T) {
	resetGlobal(t)

	l := Named("savant")
	if l == nil {
		t.Fatal("named logger is nil before init")
	}
	// Discarding logger: must not panic.
	l.Error(context.Background(), "dropped", String("k", "v"))
	l.Named("child").Info(context.Background(), "dropped too")

	defer func() {
		if recover() == nil {
			t.Error("Get before Init should panic")
		}
	}()
	_ = Get()
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error(context.Background(), "nothing", Any("v", struct{}{}))
	l.Debug(context.Background(), "nothing")
}

func TestSetLevelString(t *testing.T) {
	resetGlobal(t)

	var buf bytes.Buffer
	if err := InitWithFormat(FormatText, &buf); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	ctx := context.Background()

	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("SetLevelString(warn): %v", err)
	}
	Get().Info(ctx, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info logged at warn level: %q", buf.String())
	}

	if err := SetLevelString("Debug"); err != nil {
		t.Fatalf("SetLevelString(Debug): %v", err)
	}
	Get().Debug(ctx, "shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Fatalf("debug not logged at debug level: %q", buf.String())
	}

	if err := SetLevelString("verbose"); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}
