package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for error codes.
// data provides optional values to embed in the message (for example,
// "detail" for the parser diagnostic).
type Translator interface {
	Message(code string, data map[string]string) string
}

// Message codes.
const (
	CodeEmptyInput    = "empty-input"
	CodeInvalidSyntax = "invalid-syntax"
	CodeNoDataFound   = "no-data-found"
)

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	detail := data["detail"]
	switch t.lang {
	case "pt":
		switch code {
		case CodeEmptyInput:
			return "Entrada JSON vazia. Por favor, cole seus dados JSON."
		case CodeInvalidSyntax:
			return "JSON inválido: " + detail
		case CodeNoDataFound:
			return "Nenhum dado encontrado. Forneça um objeto ou array de objetos."
		}
	default: // "en"
		switch code {
		case CodeEmptyInput:
			return "empty JSON input; paste your JSON data"
		case CodeInvalidSyntax:
			return "invalid JSON: " + detail
		case CodeNoDataFound:
			return "no data found; provide an object or an array of objects"
		}
	}
	if detail != "" {
		return code + ": " + detail
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// Normalize maps a language tag ("pt-BR", "en_US", ...) to a built-in
// language, defaulting to "en".
func Normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if strings.HasPrefix(lang, "pt") {
		return "pt"
	}
	return "en"
}

// For returns the built-in Translator for lang.
func For(lang string) Translator { return dictTranslator{lang: Normalize(lang)} }

// SetLanguage switches the built-in Translator language ("en"/"pt").
func SetLanguage(lang string) {
	SetTranslator(For(lang))
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores English.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
