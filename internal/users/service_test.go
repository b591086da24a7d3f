package users

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/openhaus-labs/openhaus/backend/internal/auth"
)

func newTestService(t *testing.T, name string) *Service {
	t.Helper()

	service, err := NewService(ServiceConfig{
		Store:  newTestStore(t, name),
		Hasher: auth.NewPasswordHasherWithCost(bcrypt.MinCost),
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return service
}

func TestSignUpAndLogIn(t *testing.T) {
	service := newTestService(t, "service_signup_login")
	ctx := context.Background()

	created, err := service.SignUp(ctx, "ann@example.com", "s3cret-pass", "Ann")
	if err != nil {
		t.Fatalf("unexpected signup error: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected a generated id")
	}
	if created.PasswordHash != nil {
		t.Fatalf("signup result must not expose the password hash")
	}

	loggedIn, err := service.LogIn(ctx, "ann@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}
	if loggedIn.ID != created.ID {
		t.Fatalf("expected login to resolve the signed-up record")
	}
	if loggedIn.PasswordHash != nil {
		t.Fatalf("login result must not expose the password hash")
	}
}

func TestSignUpRejectsExistingEmail(t *testing.T) {
	service := newTestService(t, "service_signup_dup")
	ctx := context.Background()

	if _, err := service.SignUp(ctx, "ann@example.com", "s3cret-pass", "Ann"); err != nil {
		t.Fatalf("unexpected signup error: %v", err)
	}
	if _, err := service.SignUp(ctx, "ann@example.com", "other-pass", "Other"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSignUpRequiresAllFields(t *testing.T) {
	service := newTestService(t, "service_signup_fields")
	ctx := context.Background()

	cases := []struct {
		label    string
		email    string
		password string
		name     string
	}{
		{"missing email", "", "pass", "Ann"},
		{"missing password", "ann@example.com", "", "Ann"},
		{"missing name", "ann@example.com", "pass", ""},
	}
	for _, testCase := range cases {
		if _, err := service.SignUp(ctx, testCase.email, testCase.password, testCase.name); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", testCase.label, err)
		}
	}
}

func TestLogInFailuresAreIndistinguishable(t *testing.T) {
	service := newTestService(t, "service_login_failures")
	ctx := context.Background()

	if _, err := service.SignUp(ctx, "ann@example.com", "s3cret-pass", "Ann"); err != nil {
		t.Fatalf("unexpected signup error: %v", err)
	}
	federated, err := service.ResolveGoogle(ctx, auth.GoogleProfile{Subject: "g-1", Email: "fed@example.com", Name: "Fed"})
	if err != nil {
		t.Fatalf("unexpected resolution error: %v", err)
	}
	if federated.PasswordHash != nil {
		t.Fatalf("federated-only record must not carry a password hash")
	}

	if _, err := service.LogIn(ctx, "unknown@example.com", "s3cret-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := service.LogIn(ctx, "ann@example.com", "wrong-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := service.LogIn(ctx, "fed@example.com", "any-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("federated-only account: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestResolveGoogleReturnsLinkedRecord(t *testing.T) {
	service := newTestService(t, "service_resolve_linked")
	ctx := context.Background()

	first, err := service.ResolveGoogle(ctx, auth.GoogleProfile{Subject: "g-1", Email: "ann@example.com", Name: "Ann"})
	if err != nil {
		t.Fatalf("unexpected resolution error: %v", err)
	}
	second, err := service.ResolveGoogle(ctx, auth.GoogleProfile{Subject: "g-1", Email: "ann@example.com", Name: "Ann"})
	if err != nil {
		t.Fatalf("unexpected resolution error: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected repeated resolution to return one record, got %q and %q", first.ID, second.ID)
	}
}

func TestResolveGoogleLinksExistingLocalAccount(t *testing.T) {
	service := newTestService(t, "service_resolve_link_local")
	ctx := context.Background()

	local, err := service.SignUp(ctx, "ann@example.com", "s3cret-pass", "Ann")
	if err != nil {
		t.Fatalf("unexpected signup error: %v", err)
	}

	resolved, err := service.ResolveGoogle(ctx, auth.GoogleProfile{Subject: "g-1", Email: "ann@example.com", Name: "Ann G"})
	if err != nil {
		t.Fatalf("unexpected resolution error: %v", err)
	}
	if resolved.ID != local.ID {
		t.Fatalf("expected linking to reuse the local record")
	}
	if resolved.GoogleID == nil || *resolved.GoogleID != "g-1" {
		t.Fatalf("expected google id to be linked, got %+v", resolved)
	}

	// The local password must survive the link.
	if _, err := service.LogIn(ctx, "ann@example.com", "s3cret-pass"); err != nil {
		t.Fatalf("expected password login after linking: %v", err)
	}
}

func TestResolveGoogleCreatesFederatedRecord(t *testing.T) {
	service := newTestService(t, "service_resolve_create")
	ctx := context.Background()

	created, err := service.ResolveGoogle(ctx, auth.GoogleProfile{Subject: "g-1", Email: "ann@example.com", Name: "Ann"})
	if err != nil {
		t.Fatalf("unexpected resolution error: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected a generated id")
	}
	if created.GoogleID == nil || *created.GoogleID != "g-1" {
		t.Fatalf("expected google id on the new record, got %+v", created)
	}
	if created.Email != "ann@example.com" || created.Name != "Ann" {
		t.Fatalf("unexpected record %+v", created)
	}
}

func TestResolveGoogleRequiresSubjectAndEmail(t *testing.T) {
	service := newTestService(t, "service_resolve_identity")
	ctx := context.Background()

	if _, err := service.ResolveGoogle(ctx, auth.GoogleProfile{Email: "ann@example.com"}); !errors.Is(err, ErrInvalidIdentity) {
		t.Fatalf("missing subject: expected ErrInvalidIdentity, got %v", err)
	}
	if _, err := service.ResolveGoogle(ctx, auth.GoogleProfile{Subject: "g-1"}); !errors.Is(err, ErrInvalidIdentity) {
		t.Fatalf("missing email: expected ErrInvalidIdentity, got %v", err)
	}
}

func TestProfileLookup(t *testing.T) {
	service := newTestService(t, "service_profile")
	ctx := context.Background()

	created, err := service.SignUp(ctx, "ann@example.com", "s3cret-pass", "Ann")
	if err != nil {
		t.Fatalf("unexpected signup error: %v", err)
	}

	profile, err := service.Profile(ctx, created.ID)
	if err != nil {
		t.Fatalf("unexpected profile error: %v", err)
	}
	if profile.Email != "ann@example.com" || profile.PasswordHash != nil {
		t.Fatalf("unexpected profile %+v", profile)
	}

	if _, err := service.Profile(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := service.Profile(ctx, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
