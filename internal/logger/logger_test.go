package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

// SetupがJSON形式でログを出力することを検証
func TestSetup_OutputsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf)

	log.Info("test message", slog.String("key", "value"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output should be valid JSON: %v", err)
	}

	if entry["msg"] != "test message" {
		t.Errorf("msg = %v, want %q", entry["msg"], "test message")
	}
	if entry["key"] != "value" {
		t.Errorf("key = %v, want %q", entry["key"], "value")
	}
	if entry["service"] != "membership" {
		t.Errorf("service = %v, want %q", entry["service"], "membership")
	}
}

// DebugレベルのログがInfoレベル設定で出力されないことを検証
func TestSetup_SuppressesDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(&buf)

	log.Debug("debug message")

	if buf.Len() != 0 {
		t.Errorf("debug log should be suppressed, got %q", buf.String())
	}
}

// SetupDefaultがグローバルロガーを差し替えることを検証
func TestSetupDefault_ReplacesGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	original := slog.Default()
	defer slog.SetDefault(original)

	SetupDefault(&buf)
	slog.Info("global log")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output should be valid JSON: %v", err)
	}
	if entry["msg"] != "global log" {
		t.Errorf("msg = %v, want %q", entry["msg"], "global log")
	}
}
