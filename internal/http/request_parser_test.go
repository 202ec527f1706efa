package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"homebudget/internal/core"
)

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		key    string
		want   string
		hasKey bool
	}{
		{"json string", `{"amount":"12,50"}`, "amount", "12,50", true},
		{"json number", `{"amount":12.5}`, "amount", "12.5", true},
		{"json bool", `{"confirm":true}`, "confirm", "true", true},
		{"json missing", `{"amount":1}`, "notes", "", false},
		{"json trims control chars", "{\"description\":\"  caf\\u0000e \"}", "description", "cafe", true},
		{"form", "amount=3&group=gasto", "group", "gasto", true},
		{"empty body", "", "amount", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if got := p.Get(tt.key); got != tt.want {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
			if got := p.Has(tt.key); got != tt.hasKey {
				t.Errorf("Has(%q) = %v, want %v", tt.key, got, tt.hasKey)
			}
		})
	}
}

func TestRequestBodyParserErrors(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":`))
	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Error("expected error for malformed JSON")
	}

	big := strings.Repeat("a", maxBodyBytes+10)
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("notes="+big))
	if err := NewRequestBodyParser(req).Parse(); err == nil {
		t.Error("expected error for oversized body")
	}
}

func TestRequestBodyParserBool(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"confirm":"yes","ok":"1"}`))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	if p.Bool("confirm") {
		t.Error(`"yes" is not a boolean`)
	}
	if !p.Bool("ok") {
		t.Error(`"1" should be true`)
	}
}

func TestParseMonth(t *testing.T) {
	tests := []struct {
		raw     string
		want    time.Month
		wantErr bool
	}{
		{"", time.June, false},
		{"1", time.January, false},
		{" 12 ", time.December, false},
		{"0", 0, true},
		{"13", 0, true},
		{"marzo", 0, true},
	}
	for _, tt := range tests {
		got, err := parseMonth(tt.raw, time.June)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseMonth(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, core.ErrInvalidMonth) {
			t.Errorf("parseMonth(%q) error should wrap ErrInvalidMonth", tt.raw)
		}
		if got != tt.want {
			t.Errorf("parseMonth(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseConfirm(t *testing.T) {
	for raw, want := range map[string]bool{"true": true, "1": true, "false": false, "": false, "si": false} {
		if got := parseConfirm(url.Values{"confirm": {raw}}); got != want {
			t.Errorf("parseConfirm(%q) = %v, want %v", raw, got, want)
		}
	}
}
