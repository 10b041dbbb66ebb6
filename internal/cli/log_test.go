package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level log.Level
		debug bool
		info  bool
	}{
		{log.DebugLevel, true, true},
		{log.InfoLevel, false, true},
		{log.WarnLevel, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, tt.level)

			logger.Debug("debug line")
			if got := strings.Contains(buf.String(), "debug line"); got != tt.debug {
				t.Errorf("debug logged = %v, want %v", got, tt.debug)
			}
			logger.Info("info line", "rows", 3)
			if got := strings.Contains(buf.String(), "info line"); got != tt.info {
				t.Errorf("info logged = %v, want %v", got, tt.info)
			}
			if tt.info && !strings.Contains(buf.String(), "rows=3") {
				t.Errorf("keyvals missing from %q", buf.String())
			}
		})
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(10 * time.Millisecond)
	prog.done("rendered", "input", "films.csv")

	out := buf.String()
	for _, want := range []string{"rendered", "input=films.csv", "elapsed="} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output %q missing %q", out, want)
		}
	}
}

func TestProgressQuietBelowInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, log.WarnLevel)
	newProgress(logger).done("rendered")
	if buf.Len() != 0 {
		t.Errorf("progress logged at warn level: %q", buf.String())
	}
}
