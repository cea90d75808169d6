package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigureLevels(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	l := Logger()

	if err := l.Configure("debug", "text", "stderr", 0); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if l.Logger.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", l.Logger.GetLevel())
	}

	// "report" is an alias that keeps info-level logging on.
	if err := l.Configure("report", "text", "stderr", 0); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if l.Logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %v, want info", l.Logger.GetLevel())
	}

	if err := l.Configure("chatty", "text", "stderr", 0); err == nil {
		t.Error("expected error for unknown level")
	}
	if err := l.Configure("info", "xml", "stderr", 0); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestConfigureEnvOverridesLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	l := Logger()

	if err := l.Configure("debug", "text", "stderr", 0); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if l.Logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("level = %v, want warn from LOG_LEVEL", l.Logger.GetLevel())
	}
}

func TestConfigureFileOutput(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "toaflow.log")
	l := Logger()

	if err := l.Configure("info", "json", path, 0); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	l.WithComponent("test").Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"message":"hello"`) {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestEntryFieldChaining(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	l := Logger()

	var buf bytes.Buffer
	l.SetOutput(&buf)
	l.SetFormatter(jsonFormatter())

	l.WithComponent("reader").WithFields(Fields{"toas": 42}).Info("loaded")

	out := buf.String()
	for _, want := range []string{`"component":"reader"`, `"toas":42`, `"message":"loaded"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}
