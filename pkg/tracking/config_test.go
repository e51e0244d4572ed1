package tracking

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.FrameInterval != 33*time.Millisecond {
		t.Errorf("Expected FrameInterval=33ms, got %v", cfg.FrameInterval)
	}
	if cfg.MissLogEvery != 30 {
		t.Errorf("Expected MissLogEvery=30, got %v", cfg.MissLogEvery)
	}
	if cfg.ScanOnStart {
		t.Error("Scanning should be off until the operator starts it")
	}
}

func TestPresets_Interval(t *testing.T) {
	if SlowConfig().FrameInterval <= DefaultConfig().FrameInterval {
		t.Error("SlowConfig should tick slower than default")
	}
	if FastConfig().FrameInterval >= DefaultConfig().FrameInterval {
		t.Error("FastConfig should tick faster than default")
	}
}

func TestFromFPS(t *testing.T) {
	tests := []struct {
		fps  float64
		want time.Duration
	}{
		{10, 100 * time.Millisecond},
		{20, 50 * time.Millisecond},
		{0, DefaultConfig().FrameInterval},
		{-5, DefaultConfig().FrameInterval},
	}

	for _, tc := range tests {
		if got := FromFPS(tc.fps).FrameInterval; got != tc.want {
			t.Errorf("FromFPS(%v): got %v, want %v", tc.fps, got, tc.want)
		}
	}
}

func TestConfigs_Valid(t *testing.T) {
	configs := []struct {
		name string
		cfg  Config
	}{
		{"Default", DefaultConfig()},
		{"Slow", SlowConfig()},
		{"Fast", FastConfig()},
	}

	for _, tc := range configs {
		if tc.cfg.MissLogEvery <= 0 {
			t.Errorf("%s: MissLogEvery=%v must be positive", tc.name, tc.cfg.MissLogEvery)
		}
		if tc.cfg.FrameInterval <= 0 {
			t.Errorf("%s: FrameInterval=%v must be positive", tc.name, tc.cfg.FrameInterval)
		}
	}
}
