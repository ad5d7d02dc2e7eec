package shifts

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "```json\n[]\n```", want: "[]"},
		{in: "```\n[{\"a\":1}]\n```", want: `[{"a":1}]`},
		{in: "  [1]  ", want: "[1]"},
		{in: "json\n[1]", want: "[1]"},
		{in: "``` JSON\n[1]\n```", want: "[1]"},
		{in: "json json [1]", want: "[1]"},
		{in: "jsonl", want: "jsonl"},
		{in: "", want: ""},
		{in: "Here you go:\n```json\n[]\n```", want: "Here you go:\n\n[]"},
	}
	for _, tt := range tests {
		if got := Sanitize(tt.in); got != tt.want {
			t.Fatalf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildInstruction(t *testing.T) {
	got := BuildInstruction(" 後藤 ", "2026-01")
	for _, want := range []string{`"後藤"`, "2026-01", `"date"`, `"start"`, `"end"`, "YYYY-MM-DD", "HH:MM", "JSON list only", "code fences"} {
		if !strings.Contains(got, want) {
			t.Fatalf("instruction missing %q:\n%s", want, got)
		}
	}
	if BuildInstruction("後藤", "2026-01") != got {
		t.Fatalf("instruction should not depend on surrounding whitespace")
	}
}
