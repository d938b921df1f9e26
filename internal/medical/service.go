package medical

import (
	"context"
	"errors"
	"time"

	"github.com/roadieapp/roadie/internal/api/models"
)

// knownBloodTypes lists accepted blood type values.
var knownBloodTypes = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}

// MaxNotesLength bounds the free-text emergency notes.
const MaxNotesLength = 2000

// ProfileInput carries the caller-supplied fields for a medical profile.
type ProfileInput struct {
	BloodType      string
	Allergies      []string
	Medications    []string
	Conditions     []string
	EmergencyNotes string
}

// Service provides medical profile management.
type Service struct {
	repo Repository
}

// NewService creates a new medical profile service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get retrieves a user's medical profile.
func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	return s.repo.Get(ctx, userID)
}

// Put creates or replaces a user's medical profile.
func (s *Service) Put(ctx context.Context, userID string, input *ProfileInput) (*Profile, error) {
	if fieldErrors := validateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	p := &Profile{
		UserID:         userID,
		BloodType:      input.BloodType,
		Allergies:      input.Allergies,
		Medications:    input.Medications,
		Conditions:     input.Conditions,
		EmergencyNotes: input.EmergencyNotes,
		UpdatedAt:      time.Now(),
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a user's medical profile.
func (s *Service) Delete(ctx context.Context, userID string) error {
	return s.repo.Delete(ctx, userID)
}

// SummaryFor returns the notification text for a contact. Contacts without
// medical clearance get an empty summary; a missing profile is not an error.
func (s *Service) SummaryFor(ctx context.Context, userID string, cleared bool) (string, error) {
	if !cleared {
		return "", nil
	}
	p, err := s.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return "", nil
		}
		return "", err
	}
	return p.Summary(), nil
}

func validateInput(input *ProfileInput) []models.FieldError {
	var errs []models.FieldError

	if input.BloodType != "" && !knownBloodTypes[input.BloodType] {
		errs = append(errs, models.FieldError{Field: "bloodType", Message: "must be a valid ABO blood type"})
	}
	if len(input.EmergencyNotes) > MaxNotesLength {
		errs = append(errs, models.FieldError{Field: "emergencyNotes", Message: "must be at most 2000 characters"})
	}

	return errs
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
