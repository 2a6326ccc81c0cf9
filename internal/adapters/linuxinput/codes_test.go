package linuxinput

import (
	"testing"

	"github.com/WaaromZoMoeilijk/auto-clicker/internal/core/session"
)

func TestButtonCodeMapping(t *testing.T) {
	if code := ButtonCode(session.ButtonLeft); code != CodeBTNLeft {
		t.Fatalf("ButtonCode(Left)=%#x, want %#x", code, CodeBTNLeft)
	}
	if code := ButtonCode(session.ButtonRight); code != CodeBTNRight {
		t.Fatalf("ButtonCode(Right)=%#x, want %#x", code, CodeBTNRight)
	}
}

func TestParseCodeNamesAndNumbers(t *testing.T) {
	tests := []struct {
		raw      string
		expected uint16
	}{
		{raw: "KEY_F6", expected: CodeKEYF6},
		{raw: "key_f6", expected: CodeKEYF6},
		{raw: "BTN_LEFT", expected: CodeBTNLeft},
		{raw: "0x110", expected: CodeBTNLeft},
	}

	for _, tc := range tests {
		got, err := ParseCode(tc.raw)
		if err != nil {
			t.Fatalf("ParseCode(%q) returned error: %v", tc.raw, err)
		}
		if got != tc.expected {
			t.Fatalf("ParseCode(%q)=%#x, want %#x", tc.raw, got, tc.expected)
		}
	}

	if _, err := ParseCode(""); err == nil {
		t.Fatalf("expected error for empty toggle name")
	}
	if _, err := ParseCode("KEY_NOT_A_REAL_KEY"); err == nil {
		t.Fatalf("expected error for unknown toggle name")
	}
}

func TestFormatCodeName(t *testing.T) {
	if name := FormatCodeName(CodeBTNLeft); name != "BTN_LEFT" {
		t.Fatalf("FormatCodeName(BTN_LEFT)=%q", name)
	}
	if name := FormatCodeName(CodeKEYF6); name != "KEY_F6" {
		t.Fatalf("FormatCodeName(KEY_F6)=%q", name)
	}
}
