package geofence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/roadieapp/roadie/internal/api/models"
)

// Validation constants.
const (
	MaxNameLength   = 80
	MaxRadiusMeters = 100000
)

// ZoneInput carries the caller-supplied fields for creating or updating a
// zone. Pointer fields are optional on update.
type ZoneInput struct {
	Name         string
	CenterLat    float64
	CenterLon    float64
	RadiusMeters float64
	Kind         ZoneKind
	Active       *bool
	Notify       *bool
}

// Service provides zone management. Every mutation is persisted and then
// pushed to the registry as a whole-set replacement, so evaluation always
// runs against a consistent snapshot.
type Service struct {
	repo     Repository
	registry *Registry
}

// NewService creates a new geofence service backed by the given repository.
// The registry may be nil when only persistence is needed.
func NewService(repo Repository, registry *Registry) *Service {
	return &Service{repo: repo, registry: registry}
}

// Load reads the user's zones from the repository and primes the registry.
func (s *Service) Load(ctx context.Context, userID string) ([]Zone, error) {
	zones, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.registry != nil {
		s.registry.SetZones(zones)
	}
	return zones, nil
}

// List retrieves all zones for a user.
func (s *Service) List(ctx context.Context, userID string) ([]Zone, error) {
	return s.repo.List(ctx, userID)
}

// Get retrieves a zone by ID for a user.
func (s *Service) Get(ctx context.Context, userID, zoneID string) (*Zone, error) {
	return s.repo.Get(ctx, userID, zoneID)
}

// Create creates a new zone for a user.
func (s *Service) Create(ctx context.Context, userID string, input *ZoneInput) (*Zone, error) {
	if fieldErrors := validateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	zone := &Zone{
		ID:           "zon_" + uuid.New().String()[:22],
		UserID:       userID,
		Name:         input.Name,
		CenterLat:    input.CenterLat,
		CenterLon:    input.CenterLon,
		RadiusMeters: input.RadiusMeters,
		Kind:         input.Kind,
		Active:       true,
		Notify:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if input.Active != nil {
		zone.Active = *input.Active
	}
	if input.Notify != nil {
		zone.Notify = *input.Notify
	}

	if err := s.repo.Create(ctx, zone); err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, userID); err != nil {
		return nil, err
	}
	return zone, nil
}

// Update updates an existing zone for a user.
func (s *Service) Update(ctx context.Context, userID, zoneID string, input *ZoneInput) (*Zone, error) {
	zone, err := s.repo.Get(ctx, userID, zoneID)
	if err != nil {
		if errors.Is(err, ErrZoneNotFound) {
			return nil, ErrZoneNotFound
		}
		return nil, err
	}

	if fieldErrors := validateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	zone.Name = input.Name
	zone.CenterLat = input.CenterLat
	zone.CenterLon = input.CenterLon
	zone.RadiusMeters = input.RadiusMeters
	zone.Kind = input.Kind
	if input.Active != nil {
		zone.Active = *input.Active
	}
	if input.Notify != nil {
		zone.Notify = *input.Notify
	}
	zone.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, zone); err != nil {
		return nil, err
	}
	if err := s.refresh(ctx, userID); err != nil {
		return nil, err
	}
	return zone, nil
}

// Delete removes a zone. The registry refresh makes the deletion take
// effect immediately: no events are emitted for the zone afterwards.
func (s *Service) Delete(ctx context.Context, userID, zoneID string) error {
	if _, err := s.repo.Get(ctx, userID, zoneID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, zoneID); err != nil {
		return err
	}
	return s.refresh(ctx, userID)
}

func (s *Service) refresh(ctx context.Context, userID string) error {
	if s.registry == nil {
		return nil
	}
	zones, err := s.repo.List(ctx, userID)
	if err != nil {
		return err
	}
	s.registry.SetZones(zones)
	return nil
}

func validateInput(input *ZoneInput) []models.FieldError {
	var errs []models.FieldError

	if input.Name == "" {
		errs = append(errs, models.FieldError{Field: "name", Message: "is required"})
	} else if len(input.Name) > MaxNameLength {
		errs = append(errs, models.FieldError{Field: "name", Message: "must be at most 80 characters"})
	}

	if input.CenterLat < -90 || input.CenterLat > 90 {
		errs = append(errs, models.FieldError{Field: "center.lat", Message: "must be between -90 and 90"})
	}
	if input.CenterLon < -180 || input.CenterLon > 180 {
		errs = append(errs, models.FieldError{Field: "center.lon", Message: "must be between -180 and 180"})
	}

	if input.RadiusMeters <= 0 {
		errs = append(errs, models.FieldError{Field: "radiusMeters", Message: "must be greater than zero"})
	} else if input.RadiusMeters > MaxRadiusMeters {
		errs = append(errs, models.FieldError{Field: "radiusMeters", Message: "must be at most 100000"})
	}

	if !input.Kind.Valid() {
		errs = append(errs, models.FieldError{Field: "kind", Message: "must be one of safe, danger, home, work, school"})
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
