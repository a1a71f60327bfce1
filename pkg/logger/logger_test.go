package logger_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/Epsilon-byte/ScholarsUnited/pkg/logger"
)

func captureStdout(fn func()) string {
	orig := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() {
		os.Stdout = orig
	}()

	fn()

	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	_ = r.Close()
	return buf.String()
}

func TestInit_DevStd_TextOutput(t *testing.T) {
	cfg := logger.Config{
		Service:   "demo",
		Version:   "v0.0.1",
		Env:       logger.EnvDev,
		Backend:   logger.BackendStd,
		Level:     slog.LevelDebug,
		AddSource: true,
	}

	out := captureStdout(func() {
		logger.Init(cfg)
		slog.Info("Hello world")
	})

	if strings.Contains(out, "{") && strings.Contains(out, "}") {
		t.Fatalf("expected text output in dev/std, got JSON: %s", out)
	}
	if !strings.Contains(out, "Hello world") {
		t.Fatalf("message missing: %s", out)
	}
	if !strings.Contains(out, "service=demo") {
		t.Fatalf("service attr missing: %s", out)
	}
	if !strings.Contains(out, "env=dev") {
		t.Fatalf("env attr missing: %s", out)
	}
}

func TestInit_ProdZap_JSONOutput(t *testing.T) {
	cfg := logger.Config{
		Service: "demo",
		Version: "v0.0.1",
		Env:     logger.EnvProd,
		Backend: logger.BackendZap,
		Level:   slog.LevelInfo,
	}

	out := captureStdout(func() {
		logger.Init(cfg)
		slog.Info("zap line", "room_id", "event-5")
	})

	line := strings.TrimSpace(out)
	if line == "" {
		t.Fatal("no output")
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(strings.Split(line, "\n")[0]), &record); err != nil {
		t.Fatalf("expected JSON in prod/zap, got %q: %v", line, err)
	}
	if record["msg"] != "zap line" {
		t.Fatalf("message missing: %v", record)
	}
}

func TestInit_LevelGate(t *testing.T) {
	cfg := logger.Config{
		Service: "demo",
		Env:     logger.EnvDev,
		Backend: logger.BackendStd,
		Level:   slog.LevelInfo,
	}

	out := captureStdout(func() {
		logger.Init(cfg)
		slog.Debug("should be dropped")
		slog.Info("should appear")
	})

	if strings.Contains(out, "should be dropped") {
		t.Fatalf("debug record leaked through info level: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("info record missing: %s", out)
	}
}

func TestDetectEnv(t *testing.T) {
	t.Setenv("APP_ENV", "")
	if got := logger.DetectEnv(); got != logger.EnvDev {
		t.Fatalf("default should be dev, got %q", got)
	}

	t.Setenv("APP_ENV", "staging")
	if got := logger.DetectEnv(); got != logger.EnvStage {
		t.Fatalf("expected stage, got %q", got)
	}

	t.Setenv("APP_ENV", "production")
	if got := logger.DetectEnv(); got != logger.EnvProd {
		t.Fatalf("expected prod, got %q", got)
	}
}
