// Package phrase provides the multilingual trigger-phrase catalog and the
// fuzzy matcher used to recognize emergency utterances.
package phrase

import "errors"

// Catalog errors.
var (
	ErrEmptyCatalog  = errors.New("phrase catalog is empty")
	ErrInvalidPhrase = errors.New("invalid trigger phrase")
)

// Language identifies the language a trigger phrase is spoken in.
type Language string

// Supported phrase languages.
const (
	LanguageEnglish Language = "english"
	LanguageSpanish Language = "spanish"
	LanguageArabic  Language = "arabic"
	LanguageFrench  Language = "french"
	LanguageGerman  Language = "german"
)

// Protocol is the response protocol a matched phrase activates.
type Protocol string

// Response protocols.
const (
	// ProtocolSOS starts a full emergency session.
	ProtocolSOS Protocol = "sos"
	// ProtocolSilent starts a stealth session with no audible countdown.
	ProtocolSilent Protocol = "silent"
	// ProtocolLocationOnly shares location without a full alert.
	ProtocolLocationOnly Protocol = "location_only"
)

// Valid reports whether the protocol is one of the known values.
func (p Protocol) Valid() bool {
	switch p {
	case ProtocolSOS, ProtocolSilent, ProtocolLocationOnly:
		return true
	}
	return false
}

// TriggerPhrase is an immutable catalog entry. The catalog is replaced
// wholesale on configuration update; entries are never mutated in place.
type TriggerPhrase struct {
	Phrase   string
	Language Language
	Protocol Protocol
}

// DefaultPhrases returns the built-in multilingual catalog. Transliteration
// variants are listed alongside native spellings so speech recognition can
// match either form.
func DefaultPhrases() []TriggerPhrase {
	return []TriggerPhrase{
		{Phrase: "roadie help me", Language: LanguageEnglish, Protocol: ProtocolSOS},
		{Phrase: "please stop", Language: LanguageEnglish, Protocol: ProtocolSilent},
		{Phrase: "what are you doing", Language: LanguageEnglish, Protocol: ProtocolLocationOnly},
		{Phrase: "rodie ayudame", Language: LanguageSpanish, Protocol: ProtocolSOS},
		{Phrase: "por favor para", Language: LanguageSpanish, Protocol: ProtocolSilent},
		{Phrase: "que haces", Language: LanguageSpanish, Protocol: ProtocolLocationOnly},
		{Phrase: "rudy saedni", Language: LanguageArabic, Protocol: ProtocolSOS},
		{Phrase: "rajaan tawqaf", Language: LanguageArabic, Protocol: ProtocolSilent},
		{Phrase: "madha tafal", Language: LanguageArabic, Protocol: ProtocolLocationOnly},
		{Phrase: "رودي ساعدني", Language: LanguageArabic, Protocol: ProtocolSOS},
		{Phrase: "رجاءً توقف", Language: LanguageArabic, Protocol: ProtocolSilent},
		{Phrase: "ماذا تفعل", Language: LanguageArabic, Protocol: ProtocolLocationOnly},
		{Phrase: "roadie aide moi", Language: LanguageFrench, Protocol: ProtocolSOS},
		{Phrase: "s il vous plaît arrêtez", Language: LanguageFrench, Protocol: ProtocolSilent},
		{Phrase: "que faites-vous", Language: LanguageFrench, Protocol: ProtocolLocationOnly},
		{Phrase: "roadie hilf mir", Language: LanguageGerman, Protocol: ProtocolSOS},
		{Phrase: "bitte aufhören", Language: LanguageGerman, Protocol: ProtocolSilent},
		{Phrase: "was machst du", Language: LanguageGerman, Protocol: ProtocolLocationOnly},
	}
}
