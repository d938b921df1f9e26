package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/roadieapp/roadie/internal/api/models"
	"github.com/roadieapp/roadie/internal/api/response"
	"github.com/roadieapp/roadie/internal/engine"
	"github.com/roadieapp/roadie/internal/escalation"
	"github.com/roadieapp/roadie/internal/session"
	"github.com/roadieapp/roadie/internal/trigger"
)

// defaultHistoryLimit bounds GET /v1/sos/history when no limit is given.
const defaultHistoryLimit = 20

// SessionHandler handles SOS session endpoints.
type SessionHandler struct {
	engine   *engine.Engine
	sessions session.Repository
	attempts escalation.Repository
}

// NewSessionHandler creates a new SessionHandler. sessions and attempts
// may be nil when the deployment runs without persistence.
func NewSessionHandler(eng *engine.Engine, sessions session.Repository, attempts escalation.Repository) *SessionHandler {
	return &SessionHandler{engine: eng, sessions: sessions, attempts: attempts}
}

// GetCurrent handles GET /v1/sos - the session in progress, if any.
func (h *SessionHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	current := h.engine.CurrentSession(r.Context())
	if current == nil {
		response.NotFound(w, r, "no session has been started")
		return
	}
	response.JSON(w, r, http.StatusOK, toSessionModel(*current))
}

// Trigger handles POST /v1/sos/trigger - raise a manual SOS trigger.
func (h *SessionHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var input models.TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	kind := trigger.Kind(input.Kind)
	if input.Kind == "" {
		kind = trigger.KindGeneral
	}
	if !kind.Valid() {
		response.BadRequest(w, r, "unknown trigger kind", []models.FieldError{
			{Field: "kind", Message: "must be one of general, medical, fire, police, silent, location_only"},
		})
		return
	}

	h.engine.SubmitManual(kind)
	response.Accepted(w, r, "/v1/sos", nil)
}

// Cancel handles POST /v1/sos/cancel - abort the countdown or active session.
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Cancel(r.Context()); err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toSessionModel(*h.engine.CurrentSession(r.Context())))
}

// Resolve handles POST /v1/sos/resolve - mark the session safely concluded.
func (h *SessionHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Resolve(r.Context()); err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toSessionModel(*h.engine.CurrentSession(r.Context())))
}

// ConfirmDial handles POST /v1/sos/confirm-dial - record a user-confirmed
// call to emergency services.
func (h *SessionHandler) ConfirmDial(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ConfirmEmergencyDial(r.Context()); err != nil {
		h.writeSessionError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, toSessionModel(*h.engine.CurrentSession(r.Context())))
}

// History handles GET /v1/sos/history - archived sessions, most recent first.
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.sessions == nil {
		response.JSON(w, r, http.StatusOK, models.PagedSessions{Items: []models.Session{}, Meta: models.PagedResponseMeta{}})
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			response.BadRequest(w, r, "limit must be between 1 and 100", nil)
			return
		}
		limit = parsed
	}

	history, err := h.sessions.History(r.Context(), GetUserID(r.Context()), limit)
	if err != nil {
		response.InternalError(w, r, "failed to load session history")
		return
	}

	items := make([]models.Session, 0, len(history))
	for _, s := range history {
		items = append(items, toSessionModel(s))
	}
	response.JSON(w, r, http.StatusOK, models.PagedSessions{
		Items: items,
		Meta:  models.PagedResponseMeta{Limit: limit},
	})
}

// Attempts handles GET /v1/sos/{sessionId}/attempts - the notification
// attempts recorded for one session.
func (h *SessionHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionId")
	if sessionID == "" {
		response.BadRequest(w, r, "sessionId is required", nil)
		return
	}
	if h.attempts == nil {
		response.JSON(w, r, http.StatusOK, models.SessionAttempts{SessionID: sessionID, Items: []models.NotifyAttempt{}})
		return
	}

	attempts, err := h.attempts.ListAttempts(r.Context(), sessionID)
	if err != nil {
		response.InternalError(w, r, "failed to load notification attempts")
		return
	}

	items := make([]models.NotifyAttempt, 0, len(attempts))
	for _, a := range attempts {
		item := models.NotifyAttempt{
			ID:        a.ID,
			ContactID: a.ContactID,
			Tier:      string(a.Tier),
			Kind:      string(a.NoticeKind),
			Success:   a.Succeeded,
			At:        models.Timestamp(a.At),
		}
		if a.Error != "" {
			msg := a.Error
			item.Error = &msg
		}
		items = append(items, item)
	}
	response.JSON(w, r, http.StatusOK, models.SessionAttempts{SessionID: sessionID, Items: items})
}

func (h *SessionHandler) writeSessionError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, session.ErrStateConflict) {
		response.Conflict(w, r, "operation conflicts with the current session state")
		return
	}
	response.InternalError(w, r, "session operation failed")
}

func toSessionModel(s session.Session) models.Session {
	out := models.Session{
		ID:                      s.ID,
		State:                   string(s.State),
		Kind:                    string(s.Kind),
		Source:                  string(s.Source),
		Confidence:              s.Confidence,
		StartedAt:               models.Timestamp(s.StartedAt),
		EmergencyServicesCalled: s.EmergencyServicesCalled,
	}
	if s.Location != nil {
		out.Location = &models.Location{
			Lat:       s.Location.Lat,
			Lon:       s.Location.Lon,
			Accuracy:  s.Location.Accuracy,
			Timestamp: models.Timestamp(s.Location.Timestamp),
		}
	}
	if s.ActivatedAt != nil {
		at := models.Timestamp(*s.ActivatedAt)
		out.ActivatedAt = &at
	}
	if s.EndedAt != nil {
		at := models.Timestamp(*s.EndedAt)
		out.EndedAt = &at
	}
	return out
}
