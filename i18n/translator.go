package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "field", "expected", "got" or "value").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var catalogue = map[string]map[string]string{
	"en": {
		"missing_required_field":    "missing required field {field}",
		"type_mismatch":             "expected {expected}, got {got}",
		"unsupported_discriminant":  "unsupported discriminant {value}",
		"no_matching_enum_constant": "no matching enum constant {value} in {enum}",
		"overflow":                  "value {value} overflows {expected}",
		"parse_error":               "parse error",
	},
	"ja": {
		"missing_required_field":    "必須フィールド {field} がありません",
		"type_mismatch":             "型が不正です ({expected} が必要, 実際は {got})",
		"unsupported_discriminant":  "未対応の判別子です: {value}",
		"no_matching_enum_constant": "{enum} に一致する列挙定数がありません: {value}",
		"overflow":                  "値 {value} は {expected} の範囲外です",
		"parse_error":               "解析エラー",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	msgs, ok := catalogue[t.lang]
	if !ok {
		msgs = catalogue["en"]
	}
	msg, ok := msgs[code]
	if !ok {
		return code
	}
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	pairs := make([]string, 0, 2*len(data))
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
