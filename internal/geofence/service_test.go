package geofence_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/roadieapp/roadie/internal/geofence"
)

func TestService_Create(t *testing.T) {
	repo := geofence.NewInMemoryRepository()
	registry := geofence.NewRegistry()
	service := geofence.NewService(repo, registry)
	ctx := context.Background()

	zone, err := service.Create(ctx, "user123", &geofence.ZoneInput{
		Name:         "Home",
		CenterLat:    52.370216,
		CenterLon:    4.895168,
		RadiusMeters: 150,
		Kind:         geofence.ZoneHome,
	})
	if err != nil {
		t.Fatalf("failed to create zone: %v", err)
	}

	if !strings.HasPrefix(zone.ID, "zon_") {
		t.Errorf("expected zone ID to start with 'zon_', got %q", zone.ID)
	}
	if !zone.Active {
		t.Error("expected zone to default to active")
	}

	// Registry is refreshed with the new zone.
	zones := registry.Zones()
	if len(zones) != 1 || zones[0].ID != zone.ID {
		t.Errorf("expected registry to hold the created zone, got %v", zones)
	}
}

func TestService_Create_ValidationErrors(t *testing.T) {
	repo := geofence.NewInMemoryRepository()
	service := geofence.NewService(repo, nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     *geofence.ZoneInput
		wantField string
	}{
		{
			name:      "empty name",
			input:     &geofence.ZoneInput{CenterLat: 0, CenterLon: 0, RadiusMeters: 100, Kind: geofence.ZoneSafe},
			wantField: "name",
		},
		{
			name:      "name too long",
			input:     &geofence.ZoneInput{Name: strings.Repeat("a", 81), RadiusMeters: 100, Kind: geofence.ZoneSafe},
			wantField: "name",
		},
		{
			name:      "invalid latitude",
			input:     &geofence.ZoneInput{Name: "Test", CenterLat: 91, RadiusMeters: 100, Kind: geofence.ZoneSafe},
			wantField: "center.lat",
		},
		{
			name:      "invalid longitude",
			input:     &geofence.ZoneInput{Name: "Test", CenterLon: 181, RadiusMeters: 100, Kind: geofence.ZoneSafe},
			wantField: "center.lon",
		},
		{
			name:      "zero radius",
			input:     &geofence.ZoneInput{Name: "Test", RadiusMeters: 0, Kind: geofence.ZoneSafe},
			wantField: "radiusMeters",
		},
		{
			name:      "unknown kind",
			input:     &geofence.ZoneInput{Name: "Test", RadiusMeters: 100, Kind: geofence.ZoneKind("castle")},
			wantField: "kind",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(ctx, "user123", tt.input)
			var vErr *geofence.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}

			found := false
			for _, fe := range vErr.Errors {
				if fe.Field == tt.wantField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected field error for %q, got %v", tt.wantField, vErr.Errors)
			}
		})
	}
}

func TestService_Delete_RemovesFromRegistry(t *testing.T) {
	repo := geofence.NewInMemoryRepository()
	registry := geofence.NewRegistry()
	service := geofence.NewService(repo, registry)
	ctx := context.Background()

	zone, err := service.Create(ctx, "user123", &geofence.ZoneInput{
		Name:         "Danger corner",
		RadiusMeters: 100,
		Kind:         geofence.ZoneDanger,
	})
	if err != nil {
		t.Fatalf("failed to create zone: %v", err)
	}

	if err := service.Delete(ctx, "user123", zone.ID); err != nil {
		t.Fatalf("failed to delete zone: %v", err)
	}

	if len(registry.Zones()) != 0 {
		t.Error("expected registry to be empty after delete")
	}

	_, err = service.Get(ctx, "user123", zone.ID)
	if !errors.Is(err, geofence.ErrZoneNotFound) {
		t.Errorf("expected ErrZoneNotFound, got %v", err)
	}
}
