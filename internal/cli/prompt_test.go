package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"homebudget/internal/core"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"short yes", "s\n", true},
		{"accented", "Sí\n", true},
		{"english", "yes\n", true},
		{"no", "n\n", false},
		{"empty line", "\n", false},
		{"end of input", "", false},
		{"no trailing newline", "s", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out, false)
			if got := p.Confirm(context.Background(), "¿Seguro?"); got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.HasPrefix(out.String(), "¿Seguro? [s/N]: ") {
				t.Errorf("unexpected prompt %q", out.String())
			}
		})
	}
}

func TestConfirmAssumeYes(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader(""), &out, true)
	if !p.Confirm(context.Background(), "¿Seguro?") {
		t.Fatal("AssumeYes should confirm")
	}
	if out.String() != "¿Seguro? [s/N]: s\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestPromptAmount(t *testing.T) {
	current := core.Money{Cents: 150000}

	tests := []struct {
		name    string
		input   string
		current core.Money
		want    string
		ok      bool
	}{
		{"new value", "2000\n", current, "2000", true},
		{"keeps current", "\n", current, "1500.00", true},
		{"empty without current", "\n", core.Money{}, "", false},
		{"end of input", "", current, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.input), &out, false)
			got, ok := p.PromptAmount(context.Background(), "Objetivo:", tt.current)
			if got != tt.want || ok != tt.ok {
				t.Errorf("PromptAmount = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestPromptAmountShowsDefault(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("\n"), &out, false)
	p.PromptAmount(context.Background(), "Objetivo:", core.Money{Cents: 150000})
	if out.String() != "Objetivo: [1500.00]: " {
		t.Errorf("unexpected prompt %q", out.String())
	}
}
