package recovery

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, nil))
}

func TestRecoverToError(t *testing.T) {
	var buf bytes.Buffer
	logger := testLogger(&buf)

	err := RecoverToError(logger, "validate", func() error {
		panic("boom")
	})
	if !errors.Is(err, ErrPanic) {
		t.Fatalf("expected ErrPanic, got %v", err)
	}
	var pe *PanicError
	if !errors.As(err, &pe) || pe.Operation != "validate" || pe.Value != "boom" {
		t.Errorf("unexpected panic error %#v", pe)
	}
	if !strings.Contains(buf.String(), "operation=validate") {
		t.Errorf("panic not logged: %s", buf.String())
	}

	want := errors.New("plain")
	if err := RecoverToError(logger, "ok", func() error { return want }); err != want {
		t.Errorf("expected error to pass through, got %v", err)
	}
}

func TestRecoverToValue(t *testing.T) {
	var buf bytes.Buffer
	v, err := RecoverToValue(testLogger(&buf), "update", func() (int, error) {
		var m map[string]int
		m["x"] = 1
		return 1, nil
	})
	if v != 0 || !errors.Is(err, ErrPanic) {
		t.Errorf("got %d, %v", v, err)
	}

	v, err = RecoverToValue(testLogger(&buf), "update", func() (int, error) { return 7, nil })
	if v != 7 || err != nil {
		t.Errorf("got %d, %v", v, err)
	}
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	called := false
	Recover(testLogger(&buf), "on_change", func() {
		called = true
		panic(errors.New("callback failed"))
	})
	if !called {
		t.Fatal("fn not called")
	}
	if !strings.Contains(buf.String(), "callback failed") {
		t.Errorf("panic not logged: %s", buf.String())
	}
}
