package contact

import (
	"context"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/roadieapp/roadie/internal/api/models"
)

// MaxNameLength bounds contact names.
const MaxNameLength = 80

// phonePattern accepts E.164-style numbers with an optional leading plus.
var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// ContactInput carries the caller-supplied fields for creating or updating
// a contact.
type ContactInput struct {
	Name              string
	Phone             string
	Email             string
	Relationship      string
	Tier              Tier
	NotifyVia         NotifyVia
	CanSeeMedicalInfo bool
	Priority          int
}

// Service provides emergency contact management.
type Service struct {
	repo Repository
}

// NewService creates a new contact service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves a user's contacts in dispatch order.
func (s *Service) List(ctx context.Context, userID string) ([]Contact, error) {
	return s.repo.List(ctx, userID)
}

// Get retrieves a contact by ID for a user.
func (s *Service) Get(ctx context.Context, userID, contactID string) (*Contact, error) {
	return s.repo.Get(ctx, userID, contactID)
}

// Create creates a new contact for a user.
func (s *Service) Create(ctx context.Context, userID string, input *ContactInput) (*Contact, error) {
	if fieldErrors := validateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	c := &Contact{
		ID:                "ect_" + uuid.New().String()[:22],
		UserID:            userID,
		Name:              input.Name,
		Phone:             input.Phone,
		Email:             input.Email,
		Relationship:      input.Relationship,
		Tier:              input.Tier,
		NotifyVia:         input.NotifyVia,
		CanSeeMedicalInfo: input.CanSeeMedicalInfo,
		Priority:          input.Priority,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update updates an existing contact for a user.
func (s *Service) Update(ctx context.Context, userID, contactID string, input *ContactInput) (*Contact, error) {
	c, err := s.repo.Get(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}

	if fieldErrors := validateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	c.Name = input.Name
	c.Phone = input.Phone
	c.Email = input.Email
	c.Relationship = input.Relationship
	c.Tier = input.Tier
	c.NotifyVia = input.NotifyVia
	c.CanSeeMedicalInfo = input.CanSeeMedicalInfo
	c.Priority = input.Priority
	c.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a contact.
func (s *Service) Delete(ctx context.Context, userID, contactID string) error {
	if _, err := s.repo.Get(ctx, userID, contactID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, userID, contactID)
}

func validateInput(input *ContactInput) []models.FieldError {
	var errs []models.FieldError

	if input.Name == "" {
		errs = append(errs, models.FieldError{Field: "name", Message: "is required"})
	} else if len(input.Name) > MaxNameLength {
		errs = append(errs, models.FieldError{Field: "name", Message: "must be at most 80 characters"})
	}

	if input.Phone == "" {
		errs = append(errs, models.FieldError{Field: "phone", Message: "is required"})
	} else if !phonePattern.MatchString(input.Phone) {
		errs = append(errs, models.FieldError{Field: "phone", Message: "must be a valid phone number"})
	}

	if !input.Tier.Valid() {
		errs = append(errs, models.FieldError{Field: "tier", Message: "must be one of primary, secondary"})
	}

	if !input.NotifyVia.Valid() {
		errs = append(errs, models.FieldError{Field: "notifyVia", Message: "must be one of sms, call, both"})
	}

	if input.Priority < 0 {
		errs = append(errs, models.FieldError{Field: "priority", Message: "must not be negative"})
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
