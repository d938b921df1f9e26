package phrase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadieapp/roadie/internal/phrase"
)

func newTestMatcher(t *testing.T) *phrase.Matcher {
	t.Helper()
	m, err := phrase.NewMatcher(phrase.DefaultPhrases())
	require.NoError(t, err)
	return m
}

func TestMatcher_ExactMatch(t *testing.T) {
	m := newTestMatcher(t)

	tests := []struct {
		name         string
		utterance    string
		wantPhrase   string
		wantProtocol phrase.Protocol
	}{
		{
			name:         "english sos",
			utterance:    "roadie help me",
			wantPhrase:   "roadie help me",
			wantProtocol: phrase.ProtocolSOS,
		},
		{
			name:         "case insensitive",
			utterance:    "ROADIE Help Me",
			wantPhrase:   "roadie help me",
			wantProtocol: phrase.ProtocolSOS,
		},
		{
			name:         "surrounding whitespace",
			utterance:    "  please stop \n",
			wantPhrase:   "please stop",
			wantProtocol: phrase.ProtocolSilent,
		},
		{
			name:         "arabic native spelling",
			utterance:    "رودي ساعدني",
			wantPhrase:   "رودي ساعدني",
			wantProtocol: phrase.ProtocolSOS,
		},
		{
			name:         "spanish location only",
			utterance:    "que haces",
			wantPhrase:   "que haces",
			wantProtocol: phrase.ProtocolLocationOnly,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Match(tt.utterance)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPhrase, got.Phrase)
			assert.Equal(t, tt.wantProtocol, got.Protocol)
		})
	}
}

func TestMatcher_FuzzyMatch(t *testing.T) {
	m := newTestMatcher(t)

	// Distance 1, normalized 1/14 ≈ 0.07, well under the threshold.
	got := m.Match("roadi help me")
	require.NotNil(t, got)
	assert.Equal(t, "roadie help me", got.Phrase)
	assert.Equal(t, phrase.ProtocolSOS, got.Protocol)

	// Transliteration noise on the Arabic phrase.
	got = m.Match("rudy saedny")
	require.NotNil(t, got)
	assert.Equal(t, "rudy saedni", got.Phrase)
}

func TestMatcher_NoMatch(t *testing.T) {
	m := newTestMatcher(t)

	tests := []struct {
		name      string
		utterance string
	}{
		{name: "empty", utterance: ""},
		{name: "whitespace only", utterance: "   "},
		{name: "unrelated speech", utterance: "turn on the living room lights"},
		{name: "too far from any phrase", utterance: "roadie hold this"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, m.Match(tt.utterance))
		})
	}
}

func TestMatcher_TieBreaksByInsertionOrder(t *testing.T) {
	m, err := phrase.NewMatcher([]phrase.TriggerPhrase{
		{Phrase: "help me now", Language: phrase.LanguageEnglish, Protocol: phrase.ProtocolSOS},
		{Phrase: "help me how", Language: phrase.LanguageEnglish, Protocol: phrase.ProtocolSilent},
	})
	require.NoError(t, err)

	// Equidistant from both entries; the first inserted wins.
	got := m.Match("help me cow")
	require.NotNil(t, got)
	assert.Equal(t, "help me now", got.Phrase)
}

func TestMatcher_Replace(t *testing.T) {
	m := newTestMatcher(t)

	err := m.Replace([]phrase.TriggerPhrase{
		{Phrase: "guardian assist", Language: phrase.LanguageEnglish, Protocol: phrase.ProtocolSOS},
	})
	require.NoError(t, err)

	assert.Nil(t, m.Match("roadie help me"))
	require.NotNil(t, m.Match("guardian assist"))
}

func TestMatcher_ReplaceInvalidKeepsPrevious(t *testing.T) {
	m := newTestMatcher(t)

	err := m.Replace([]phrase.TriggerPhrase{
		{Phrase: "", Language: phrase.LanguageEnglish, Protocol: phrase.ProtocolSOS},
	})
	assert.ErrorIs(t, err, phrase.ErrInvalidPhrase)

	// Previous catalog is retained.
	assert.NotNil(t, m.Match("roadie help me"))

	err = m.Replace(nil)
	assert.ErrorIs(t, err, phrase.ErrEmptyCatalog)
	assert.NotNil(t, m.Match("roadie help me"))
}
