package xlog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/omeyang/xroller/pkg/observability/xlog"
	"github.com/omeyang/xroller/pkg/observability/xrotate"
)

func build(t *testing.T, b *xlog.Builder) xlog.LoggerWithLevel {
	t.Helper()
	logger, cleanup, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	t.Cleanup(func() {
		if err := cleanup(); err != nil {
			t.Errorf("cleanup error: %v", err)
		}
	})
	return logger
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetLevel(xlog.LevelDebug))

	ctx := context.Background()
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	logger.Warn(ctx, "warn message")
	logger.Error(ctx, "error message")

	for _, want := range []string{"level=DEBUG", "debug message", "info message", "warn message", "level=ERROR"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q\noutput: %s", want, buf.String())
		}
	}
}

func TestLogger_JSONWithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetFormat(" JSON "))

	logger.With(xlog.Component("xrotate")).
		WithGroup("segment").
		Info(context.Background(), "compressed", xlog.Path("/logs/app.log.1"), xlog.Size(42))

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if rec["component"] != "xrotate" {
		t.Errorf("component = %v", rec["component"])
	}
	seg, ok := rec["segment"].(map[string]any)
	if !ok || seg["path"] != "/logs/app.log.1" || seg["size"] != float64(42) {
		t.Errorf("segment group = %v", rec["segment"])
	}
}

func TestLogger_DynamicLevelShared(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetLevelString("warn"))
	child := logger.With(xlog.Operation("prune"))

	ctx := context.Background()
	child.Info(ctx, "hidden")
	if buf.Len() != 0 {
		t.Fatalf("info written at warn level: %s", buf.String())
	}
	if logger.Enabled(ctx, xlog.LevelInfo) {
		t.Error("info enabled at warn level")
	}

	logger.SetLevel(xlog.LevelInfo)
	child.Info(ctx, "visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("derived logger did not follow level change: %s", buf.String())
	}
	if got := logger.GetLevel(); got != xlog.LevelInfo {
		t.Errorf("GetLevel() = %v", got)
	}
}

func TestLogger_WithEmptyReturnsSame(t *testing.T) {
	logger := build(t, xlog.New().SetOutput(&bytes.Buffer{}))
	if logger.With() != xlog.Logger(logger) {
		t.Error("With() without attrs should return the same logger")
	}
	if logger.WithGroup("") != xlog.Logger(logger) {
		t.Error("WithGroup(\"\") should return the same logger")
	}
}

func TestBuilder_Errors(t *testing.T) {
	tests := []struct {
		name string
		b    *xlog.Builder
		want error
	}{
		{"level", xlog.New().SetLevelString("verbose"), xlog.ErrUnknownLevel},
		{"format", xlog.New().SetFormat("xml"), xlog.ErrUnknownFormat},
		{"output", xlog.New().SetOutput(nil), xlog.ErrNilOutput},
		{"rotation", xlog.New().SetRotation("", "app.log"), xrotate.ErrEmptyDirectory},
		{"rotation config", xlog.New().SetRotationConfig(xrotate.Config{Directory: t.TempDir(), Filename: "app.log", Rotation: "weekly"}), xrotate.ErrInvalidRotation},
		// first-error-wins
		{"first wins", xlog.New().SetFormat("xml").SetLevelString("verbose"), xlog.ErrUnknownFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.b.Build()
			if !errors.Is(err, tt.want) {
				t.Errorf("Build() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestBuilder_Rotation(t *testing.T) {
	dir := t.TempDir()
	logger, cleanup, err := xlog.New().
		SetRotation(dir, "app.log", xrotate.WithSizeRotation(64)).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	for range 4 {
		logger.Info(ctx, "line long enough to fill the segment", xlog.Count(1))
	}
	if err := cleanup(); err != nil {
		t.Fatal(err)
	}
	if err := cleanup(); err != nil {
		t.Fatalf("second cleanup: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "app.log.1")); err != nil {
		t.Errorf("rotated segment missing: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "app.log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "count=1") {
		t.Errorf("current segment = %q", data)
	}
}

func TestBuilder_RotationConfig(t *testing.T) {
	dir := t.TempDir()
	logger := build(t, xlog.New().SetRotationConfig(xrotate.Config{Directory: dir, Filename: "svc.log"}))
	logger.Info(context.Background(), "hello")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || !strings.HasPrefix(entries[0].Name(), "svc.log.") {
		t.Errorf("unexpected files: %v", entries)
	}
}

func TestBuilder_ReplaceAttr(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetReplaceAttr(func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == xlog.KeyPath {
			return slog.Attr{}
		}
		return a
	}))
	logger.Info(context.Background(), "msg", xlog.Path("/secret"), xlog.Err(errors.New("boom")), xlog.Err(nil))

	out := buf.String()
	if strings.Contains(out, "/secret") {
		t.Errorf("path not removed: %s", out)
	}
	if !strings.Contains(out, "error=boom") {
		t.Errorf("error missing: %s", out)
	}
}

func TestBuilder_AddSource(t *testing.T) {
	var buf bytes.Buffer
	logger := build(t, xlog.New().SetOutput(&buf).SetAddSource(true))
	logger.Info(context.Background(), "where")
	if !strings.Contains(buf.String(), "xlog_test.go") {
		t.Errorf("source should point at the caller: %s", buf.String())
	}
}
