package util

import (
	"path/filepath"
	"testing"
)

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1500, "1.5K"},
		{52340, "52.3K"},
		{1500000, "1.5M"},
	}
	for _, tt := range tests {
		if got := FormatTokens(tt.in); got != tt.want {
			t.Errorf("FormatTokens(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(68.25); got != "68.2%" && got != "68.3%" {
		t.Errorf("FormatPercent(68.25) = %q", got)
	}
	if got := FormatPercent(70); got != "70.0%" {
		t.Errorf("FormatPercent(70) = %q", got)
	}
	if got := FormatDecimal(4); got != "4.0" {
		t.Errorf("FormatDecimal(4) = %q", got)
	}
}

func TestXDGDirs(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/config")

	data, err := GetXDGDataDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/data", "devmetrics"); data != want {
		t.Errorf("GetXDGDataDir = %q, want %q", data, want)
	}

	cfg, err := GetXDGConfigDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/tmp/config", "devmetrics"); cfg != want {
		t.Errorf("GetXDGConfigDir = %q, want %q", cfg, want)
	}
}

func TestXDGDirs_HomeFallback(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/dev")

	data, err := GetXDGDataDir()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join("/home/dev", ".local", "share", "devmetrics"); data != want {
		t.Errorf("GetXDGDataDir = %q, want %q", data, want)
	}
}
