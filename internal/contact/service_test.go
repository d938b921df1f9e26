package contact_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roadieapp/roadie/internal/contact"
)

func validInput() *contact.ContactInput {
	return &contact.ContactInput{
		Name:      "Alice Morgan",
		Phone:     "+4915201234567",
		Tier:      contact.TierPrimary,
		NotifyVia: contact.NotifyBoth,
		Priority:  1,
	}
}

func TestService_CreateAndGet(t *testing.T) {
	svc := contact.NewService(contact.NewInMemoryRepository())
	ctx := context.Background()

	created, err := svc.Create(ctx, "usr_1", validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated contact ID")
	}

	got, err := svc.Get(ctx, "usr_1", created.ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if got.Name != "Alice Morgan" {
		t.Errorf("Name = %q, want %q", got.Name, "Alice Morgan")
	}
}

func TestService_CreateValidation(t *testing.T) {
	svc := contact.NewService(contact.NewInMemoryRepository())
	ctx := context.Background()

	tests := []struct {
		name      string
		mutate    func(*contact.ContactInput)
		wantField string
	}{
		{
			name:      "missing name",
			mutate:    func(in *contact.ContactInput) { in.Name = "" },
			wantField: "name",
		},
		{
			name:      "missing phone",
			mutate:    func(in *contact.ContactInput) { in.Phone = "" },
			wantField: "phone",
		},
		{
			name:      "malformed phone",
			mutate:    func(in *contact.ContactInput) { in.Phone = "call me maybe" },
			wantField: "phone",
		},
		{
			name:      "unknown tier",
			mutate:    func(in *contact.ContactInput) { in.Tier = "tertiary" },
			wantField: "tier",
		},
		{
			name:      "unknown channel",
			mutate:    func(in *contact.ContactInput) { in.NotifyVia = "fax" },
			wantField: "notifyVia",
		},
		{
			name:      "negative priority",
			mutate:    func(in *contact.ContactInput) { in.Priority = -1 },
			wantField: "priority",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(input)

			_, err := svc.Create(ctx, "usr_1", input)
			var vErr *contact.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}

			found := false
			for _, fe := range vErr.Errors {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected field error for %q, got %+v", tt.wantField, vErr.Errors)
			}
		})
	}
}

func TestService_ListDispatchOrder(t *testing.T) {
	svc := contact.NewService(contact.NewInMemoryRepository())
	ctx := context.Background()

	secondary := validInput()
	secondary.Name = "Backup Bob"
	secondary.Tier = contact.TierSecondary
	secondary.Priority = 0
	if _, err := svc.Create(ctx, "usr_1", secondary); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	second := validInput()
	second.Name = "Second Primary"
	second.Priority = 2
	if _, err := svc.Create(ctx, "usr_1", second); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	first := validInput()
	first.Name = "First Primary"
	first.Priority = 1
	if _, err := svc.Create(ctx, "usr_1", first); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	contacts, err := svc.List(ctx, "usr_1")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	want := []string{"First Primary", "Second Primary", "Backup Bob"}
	if len(contacts) != len(want) {
		t.Fatalf("List returned %d contacts, want %d", len(contacts), len(want))
	}
	for i, name := range want {
		if contacts[i].Name != name {
			t.Errorf("contacts[%d].Name = %q, want %q", i, contacts[i].Name, name)
		}
	}
}

func TestRepository_ListTieBreakDeterministic(t *testing.T) {
	repo := contact.NewInMemoryRepository()
	ctx := context.Background()

	// Same tier, priority and creation time: order must still be stable
	// across calls, not at the mercy of map iteration.
	now := time.Now()
	for _, id := range []string{"ect_c", "ect_a", "ect_b"} {
		err := repo.Create(ctx, &contact.Contact{
			ID: id, UserID: "usr_1", Name: id, Phone: "+4915201234567",
			Tier: contact.TierPrimary, NotifyVia: contact.NotifySMS,
			Priority: 1, CreatedAt: now,
		})
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
	}

	want := []string{"ect_a", "ect_b", "ect_c"}
	for i := 0; i < 5; i++ {
		contacts, err := repo.List(ctx, "usr_1")
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		for j, id := range want {
			if contacts[j].ID != id {
				t.Fatalf("run %d: contacts[%d].ID = %q, want %q", i, j, contacts[j].ID, id)
			}
		}
	}
}

func TestService_UpdateUnknownContact(t *testing.T) {
	svc := contact.NewService(contact.NewInMemoryRepository())

	_, err := svc.Update(context.Background(), "usr_1", "ect_missing", validInput())
	if !errors.Is(err, contact.ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound, got %v", err)
	}
}

func TestService_Delete(t *testing.T) {
	svc := contact.NewService(contact.NewInMemoryRepository())
	ctx := context.Background()

	created, err := svc.Create(ctx, "usr_1", validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Delete(ctx, "usr_1", created.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Get(ctx, "usr_1", created.ID); !errors.Is(err, contact.ErrContactNotFound) {
		t.Fatalf("expected ErrContactNotFound after delete, got %v", err)
	}
}
