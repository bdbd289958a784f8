package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("type_mismatch", nil); msg == "type_mismatch" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("missing_required_field", map[string]string{"field": "id"}); msg != "必須フィールド id がありません" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_Substitution(t *testing.T) {
	got := T("no_matching_enum_constant", map[string]string{"value": "PINK", "enum": "Color"})
	if got != "no matching enum constant PINK in Color" {
		t.Fatalf("got %q", got)
	}
	if got := T("something_else", nil); got != "something_else" {
		t.Fatalf("unknown codes fall back to the code, got %q", got)
	}
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	if got := T("overflow", nil); got != "X:overflow" {
		t.Fatalf("got %q", got)
	}
}
