package cmd

import (
	"testing"

	"github.com/ademaro/fiphunt/internal/config"
	"github.com/ademaro/fiphunt/internal/errors"
)

func TestHuntCommandRegistered(t *testing.T) {
	for _, c := range rootCmd.Commands() {
		if c.Name() == "hunt" {
			return
		}
	}
	t.Error("hunt command not registered on root")
}

func TestHuntFlags(t *testing.T) {
	flags := []string{"workers", "server", "port-id", "external-network", "nets", "work", "pause"}
	for _, name := range flags {
		if huntCmd.Flags().Lookup(name) == nil {
			t.Errorf("hunt command missing flag %q", name)
		}
	}
}

func TestRootConfigFlag(t *testing.T) {
	if rootCmd.PersistentFlags().Lookup("config") == nil {
		t.Error("root command missing persistent --config flag")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"win", nil, 0},
		{"exhausted", errors.Wrapf(errNoWin, "%s", "window_exhausted"), 1},
		{"interrupted", errors.Wrapf(errInterrupted, "after %d cycle(s)", 3), 2},
		{"operational error", errors.New("connecting to cloud: boom"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestScheduleNote(t *testing.T) {
	tests := []struct {
		name     string
		schedule config.ScheduleConfig
		wantNote bool
	}{
		{"unbounded hunt", config.ScheduleConfig{}, false},
		{"work with pause", config.ScheduleConfig{WorkMinutes: 30, PauseMinutes: 5}, false},
		{"work without pause", config.ScheduleConfig{WorkMinutes: 30}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note := scheduleNote(&tt.schedule)
			if (note != "") != tt.wantNote {
				t.Errorf("scheduleNote() = %q, want note: %v", note, tt.wantNote)
			}
		})
	}
}
