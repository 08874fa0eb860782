package logger

import (
	"context"
	"testing"
)

func TestLoggerInit(t *testing.T) {
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

	// Re-initialization must be safe.
	if err := Init(); err != nil {
		t.Fatalf("failed to re-initialize logger: %v", err)
	}
}

func TestLoggerFields(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	ctx := context.Background()
	l := Get()
	l.Info(ctx, "test message",
		String("k", "v"),
		Int("n", 1),
		Uint64("height", 42),
		Float64("avg", 3.5),
	)
	l.Debug(ctx, "debug message")
	l.Warn(ctx, "warn message")
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	named := Named("engine")
	if named == nil {
		t.Fatal("named logger is nil")
	}
	named.Info(context.Background(), "test message")
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	for _, lvl := range []string{"debug", "info", "warn", "warning", "error", ""} {
		if err := SetLevelString(lvl); err != nil {
			t.Errorf("unexpected error for level %q: %v", lvl, err)
		}
	}
	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}
