package textutil

import "testing"

func TestDisplayWidthGraphemeClusters(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"ascii", "agenda", 6},
		{"polish diacritics", "zażółć", 6},
		{"cjk", "日本語", 6},
		{"warning emoji with VS16", "⚠️", 2},
		{"thumbs up with skin tone", "\U0001f44d\U0001f3fb", 2},
		{"family zwj", "\U0001f468‍\U0001f469‍\U0001f467", 2},
		{"flag regional indicators", "\U0001f1f5\U0001f1f1", 2},
		{"combining accent", "é", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DisplayWidth(tt.text); got != tt.want {
				t.Fatalf("DisplayWidth(%q)=%d want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestTabAdvance(t *testing.T) {
	tests := []struct{ column, width, want int }{
		{0, 4, 4},
		{1, 4, 3},
		{4, 4, 4},
		{3, 0, 1},
	}
	for _, tt := range tests {
		if got := TabAdvance(tt.column, tt.width); got != tt.want {
			t.Fatalf("TabAdvance(%d,%d)=%d want %d", tt.column, tt.width, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("expected untouched text, got %q", got)
	}
	if got := Truncate("meeting notes", 8); got != "meeting…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := Truncate("日本語のメモ", 5); got != "日本…" {
		t.Fatalf("unexpected wide truncation %q", got)
	}
	if got := Truncate("anything", 0); got != "" {
		t.Fatalf("expected empty result, got %q", got)
	}
}
