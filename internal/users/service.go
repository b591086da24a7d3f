package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openhaus-labs/openhaus/backend/internal/auth"
	"go.uber.org/zap"
)

const defaultOpTimeout = 5 * time.Second

var (
	// ErrInvalidCredentials indicates a failed login. The cause (unknown
	// email, federated-only account, wrong password) is deliberately not
	// distinguishable by the caller.
	ErrInvalidCredentials = errors.New("users: invalid credentials")
	// ErrInvalidInput indicates a required field is missing.
	ErrInvalidInput = errors.New("users: invalid input")
	// ErrInvalidIdentity indicates federated claims lacked a usable identifier.
	ErrInvalidIdentity = errors.New("users: invalid identity")

	errMissingServiceStore  = errors.New("users: store is required")
	errMissingServiceHasher = errors.New("users: password hasher is required")
)

// PasswordHasher abstracts one-way password hashing.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(storedHash, plaintext string) bool
}

// ServiceConfig describes the dependencies for identity resolution.
type ServiceConfig struct {
	Store      *Store
	Hasher     PasswordHasher
	IDProvider IDProvider
	Logger     *zap.Logger
	OpTimeout  time.Duration
}

// Service reconciles local and federated login attempts into a single
// canonical user record.
type Service struct {
	store      *Store
	hasher     PasswordHasher
	idProvider IDProvider
	logger     *zap.Logger
	opTimeout  time.Duration
}

// NewService constructs the identity service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errMissingServiceStore
	}
	if cfg.Hasher == nil {
		return nil, errMissingServiceHasher
	}
	idProvider := cfg.IDProvider
	if idProvider == nil {
		idProvider = NewUUIDProvider()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	opTimeout := cfg.OpTimeout
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}
	return &Service{
		store:      cfg.Store,
		hasher:     cfg.Hasher,
		idProvider: idProvider,
		logger:     logger,
		opTimeout:  opTimeout,
	}, nil
}

// SignUp creates a local-password account. An existing record with the same
// email, local or federated, rejects the signup; signing up never merges
// with a federated account sharing the email.
func (s *Service) SignUp(ctx context.Context, email, password, name string) (User, error) {
	if email == "" || password == "" || name == "" {
		return User{}, ErrInvalidInput
	}

	ctx, cancel := s.boundContext(ctx)
	defer cancel()

	_, err := s.store.FindByEmail(ctx, email)
	if err == nil {
		return User{}, ErrEmailTaken
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, s.logged("signup email lookup failed", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return User{}, err
	}
	id, err := s.idProvider.NewID()
	if err != nil {
		return User{}, s.logged("signup id generation failed", err)
	}

	created, err := s.store.Create(ctx, User{
		ID:           id,
		Email:        email,
		Name:         name,
		PasswordHash: &hash,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return User{}, ErrEmailTaken
		}
		return User{}, s.logged("signup create failed", err)
	}
	return created, nil
}

// LogIn verifies a local password. Unknown email, a federated-only account
// without a password, and a wrong password all fail identically.
func (s *Service) LogIn(ctx context.Context, email, password string) (User, error) {
	if email == "" || password == "" {
		return User{}, ErrInvalidInput
	}

	ctx, cancel := s.boundContext(ctx)
	defer cancel()

	user, err := s.store.findByEmailWithHash(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, s.logged("login lookup failed", err)
	}
	if user.PasswordHash == nil {
		return User{}, ErrInvalidCredentials
	}
	if !s.hasher.Verify(*user.PasswordHash, password) {
		return User{}, ErrInvalidCredentials
	}
	return user.sanitized(), nil
}

// ResolveGoogle reconciles a verified federated login into exactly one
// record: an already-linked subject returns unchanged, an email match gains
// the google link while keeping any local password, and a new identity gets
// a fresh record with no password.
func (s *Service) ResolveGoogle(ctx context.Context, profile auth.GoogleProfile) (User, error) {
	if profile.Subject == "" || profile.Email == "" {
		return User{}, ErrInvalidIdentity
	}

	ctx, cancel := s.boundContext(ctx)
	defer cancel()

	user, err := s.store.FindByGoogleID(ctx, profile.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, s.logged("google subject lookup failed", err)
	}

	user, err = s.store.FindByEmail(ctx, profile.Email)
	if err == nil {
		linked, err := s.store.Update(ctx, user.ID, map[string]interface{}{"google_id": profile.Subject})
		if err != nil {
			return User{}, s.logged("google link failed", err)
		}
		return linked, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, s.logged("google email lookup failed", err)
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		return User{}, s.logged("google id generation failed", err)
	}
	googleID := profile.Subject
	created, err := s.store.Create(ctx, User{
		ID:       id,
		Email:    profile.Email,
		Name:     profile.Name,
		GoogleID: &googleID,
	})
	if err != nil {
		// A concurrent callback for the same subject may have won the insert.
		if errors.Is(err, ErrGoogleIDTaken) {
			return s.store.FindByGoogleID(ctx, profile.Subject)
		}
		return User{}, s.logged("google create failed", err)
	}
	return created, nil
}

// Profile returns the record behind a verified token subject.
func (s *Service) Profile(ctx context.Context, id string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidInput
	}

	ctx, cancel := s.boundContext(ctx)
	defer cancel()
	return s.store.FindByID(ctx, id)
}

func (s *Service) boundContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *Service) logged(message string, err error) error {
	s.logger.Error(message, zap.Error(err))
	return fmt.Errorf("users: %s: %w", message, err)
}
