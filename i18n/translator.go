package i18n

import "strings"

// Translator retrieves localized messages for validation issue codes.
// data provides named values to embed in the message (for example "name"
// or "min").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator. Templates use
// {key} placeholders filled from data.
type dictTranslator struct{ lang string }

var enMessages = map[string]string{
	"required":       "Field '{name}' is mandatory.",
	"invalid_type":   "Expected value of type '{type}'.",
	"unknown_field":  "Unknown field '{name}'.",
	"unknown_type":   "Unknown field type '{type}'.",
	"invalid_option": "Value '{value}' is not an allowed option.",
	"invalid_enum":   "Value '{value}' is not one of the allowed values.",
	"pattern":        "Value does not match the pattern '{pattern}'.",
	"too_small":      "Value must be at least {min}.",
	"too_big":        "Value must be at most {max}.",
	"too_short":      "Value must contain at least {min} characters.",
	"too_long":       "Value must contain at most {max} characters.",
	"min_items":      "Array must contain at least {n} items.",
	"max_items":      "Array must contain at most {n} items.",
	"single_level":   "Path must not contain multiple levels.",
	"path_not_found": "Path item '{name}' was not found.",
	"prohibited_iml": "Value must not contain an IML expression.",
	"no_resolver":    "Remote options cannot be resolved: no resolver is available.",
	"remote_failed":  "Remote resolution failed: {error}.",
	"unknown_domain": "Unknown domain '{name}'.",
	"unnamed_field":  "Specification entry is missing a name.",
	"invalid_spec":   "Invalid field specification: {error}.",
}

var jaMessages = map[string]string{
	"required":       "フィールド '{name}' は必須です。",
	"invalid_type":   "'{type}' 型の値が必要です。",
	"unknown_field":  "未知のフィールド '{name}' です。",
	"unknown_type":   "未知のフィールド型 '{type}' です。",
	"invalid_option": "値 '{value}' は選択肢にありません。",
	"invalid_enum":   "値 '{value}' は許可された値ではありません。",
	"pattern":        "値がパターン '{pattern}' に一致しません。",
	"too_small":      "値は {min} 以上である必要があります。",
	"too_big":        "値は {max} 以下である必要があります。",
	"too_short":      "値は {min} 文字以上である必要があります。",
	"too_long":       "値は {max} 文字以下である必要があります。",
	"min_items":      "配列には {n} 個以上の要素が必要です。",
	"max_items":      "配列の要素は {n} 個以下である必要があります。",
	"single_level":   "パスに複数の階層を含めることはできません。",
	"path_not_found": "パス項目 '{name}' が見つかりません。",
	"prohibited_iml": "値に IML 式を含めることはできません。",
	"no_resolver":    "リモート選択肢を解決できません: リゾルバがありません。",
	"remote_failed":  "リモート解決に失敗しました: {error}。",
	"unknown_domain": "未知のドメイン '{name}' です。",
	"unnamed_field":  "スキーマ項目に名前がありません。",
	"invalid_spec":   "フィールド定義が不正です: {error}。",
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	dict := enMessages
	if t.lang == "ja" {
		dict = jaMessages
	}
	tmpl, ok := dict[code]
	if !ok {
		return code
	}
	return expand(tmpl, data)
}

func expand(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	out := tmpl
	for k, v := range data {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
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
