package utils

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
	if got := Truncate("日本語のテキスト", 3); got != "日本語..." {
		t.Errorf("multibyte: got %s", got)
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, "0%"},
		{0.444, "44%"},
		{0.456, "46%"},
		{0.125, "13%"},
		{1, "100%"},
		{-0.2, "0%"},
	}
	for _, tt := range tests {
		if got := Percent(tt.score); got != tt.want {
			t.Errorf("Percent(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}
