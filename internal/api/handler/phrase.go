package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/roadieapp/roadie/internal/api/models"
	"github.com/roadieapp/roadie/internal/api/response"
	"github.com/roadieapp/roadie/internal/engine"
	"github.com/roadieapp/roadie/internal/phrase"
)

// PhraseHandler handles trigger-phrase catalog endpoints.
type PhraseHandler struct {
	engine  *engine.Engine
	phrases phrase.Repository
}

// NewPhraseHandler creates a new PhraseHandler.
func NewPhraseHandler(eng *engine.Engine, phrases phrase.Repository) *PhraseHandler {
	return &PhraseHandler{engine: eng, phrases: phrases}
}

// ListPhrases handles GET /v1/phrases - the active trigger-phrase catalog.
func (h *PhraseHandler) ListPhrases(w http.ResponseWriter, r *http.Request) {
	catalog := phrase.DefaultPhrases()
	if h.phrases != nil {
		stored, err := h.phrases.LoadAll(r.Context(), GetUserID(r.Context()))
		if err != nil {
			response.InternalError(w, r, "failed to load phrase catalog")
			return
		}
		if len(stored) > 0 {
			catalog = stored
		}
	}

	items := make([]models.TriggerPhrase, 0, len(catalog))
	for _, p := range catalog {
		items = append(items, models.TriggerPhrase{
			Phrase:   p.Phrase,
			Language: string(p.Language),
			Protocol: string(p.Protocol),
		})
	}
	response.JSON(w, r, http.StatusOK, models.PhraseCatalog{Items: items})
}

// ReplacePhrases handles PUT /v1/phrases - replace the catalog wholesale.
// Partial updates are not supported; the catalog is immutable between
// replacements so matching always runs against a consistent set.
func (h *PhraseHandler) ReplacePhrases(w http.ResponseWriter, r *http.Request) {
	var input models.PhraseReplaceRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}
	if len(input.Phrases) == 0 {
		response.BadRequest(w, r, "phrase catalog cannot be empty", []models.FieldError{
			{Field: "phrases", Message: "at least one phrase is required"},
		})
		return
	}

	catalog := make([]phrase.TriggerPhrase, 0, len(input.Phrases))
	for i, p := range input.Phrases {
		entry := phrase.TriggerPhrase{
			Phrase:   p.Phrase,
			Language: phrase.Language(p.Language),
			Protocol: phrase.Protocol(p.Protocol),
		}
		if p.Phrase == "" || !entry.Protocol.Valid() {
			response.BadRequest(w, r, "invalid phrase catalog entry", []models.FieldError{
				{Field: "phrases[" + strconv.Itoa(i) + "]", Message: "phrase and protocol are required"},
			})
			return
		}
		catalog = append(catalog, entry)
	}

	if err := h.engine.ReplacePhrases(r.Context(), catalog); err != nil {
		response.InternalError(w, r, "failed to replace phrase catalog")
		return
	}
	response.JSON(w, r, http.StatusOK, input)
}
