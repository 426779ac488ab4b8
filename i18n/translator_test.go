package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("required", map[string]string{"name": "x"}); msg != "Field 'x' is mandatory." {
		t.Fatalf("unexpected en message: %q", msg)
	}

	SetLanguage("ja")
	if msg := T("required", map[string]string{"name": "x"}); msg == "Field 'x' is mandatory." || msg == "required" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_Substitution(t *testing.T) {
	if msg := T("unknown_field", map[string]string{"name": "x"}); msg != "Unknown field 'x'." {
		t.Fatalf("unexpected message: %q", msg)
	}
	if msg := T("too_small", map[string]string{"min": "3"}); msg != "Value must be at least 3." {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestTranslator_UnknownCodeFallsBackToCode(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("unexpected fallback: %q", msg)
	}
}
