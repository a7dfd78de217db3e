// Package locale holds the one user-facing message the CLI localizes:
// the AVX2-preflight failure, shown before any core call is made.
package locale

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var avx2Messages = map[language.Tag]string{
	language.English: "this CPU lacks AVX2; the packed scan engine requires it",
	language.French:  "ce processeur ne prend pas en charge AVX2 ; le moteur de balayage compact en a besoin",
	language.German:  "diese CPU unterstützt kein AVX2; die Paket-Scan-Engine benötigt es",
}

// NoAVX2Message returns the AVX2-preflight error message in the
// caller's locale, falling back to English.
func NoAVX2Message(tag language.Tag) string {
	p := message.NewPrinter(tag)
	if msg, ok := avx2Messages[tag]; ok {
		return p.Sprintf("%s", msg)
	}
	return p.Sprintf("%s", avx2Messages[language.English])
}

// DetectLocale returns the language.Tag used for the AVX2 message. It
// always returns language.English: it reads no environment variables
// and no flag, so the French and German messages are not selected by
// the CLI.
func DetectLocale() language.Tag {
	return language.English
}
