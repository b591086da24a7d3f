package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultAccessTokenTTL  = 24 * time.Hour
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
	defaultTokenIssuer     = "openhaus-auth"
	defaultTokenAudience   = "openhaus-client"
)

var (
	errMissingSigningSecret = errors.New("auth: signing secret must be provided")
	errMissingSubjectClaim  = errors.New("auth: subject claim must be provided")

	// ErrTokenExpired indicates the token lifetime has elapsed.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrTokenMalformed indicates the token is not structurally a JWT.
	ErrTokenMalformed = errors.New("auth: token malformed")
	// ErrTokenSignature indicates the signature does not match the signing secret.
	ErrTokenSignature = errors.New("auth: token signature invalid")
	// ErrTokenInvalid covers issuer/audience mismatches and any other
	// verification failure.
	ErrTokenInvalid = errors.New("auth: token invalid")
)

// Claims carries the verified identity facts embedded in a token.
type Claims struct {
	UserID    string
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type tokenClaims struct {
	UserEmail string `json:"user_email,omitempty"`
	jwt.RegisteredClaims
}

// TokenServiceConfig configures the HS256 token issuer/verifier.
type TokenServiceConfig struct {
	SigningSecret []byte
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Clock         func() time.Time
}

// TokenService signs and verifies self-contained bearer tokens. Tokens are
// stateless: there is no revocation list, so rotating the signing secret is
// the only way to invalidate outstanding tokens.
type TokenService struct {
	signingSecret []byte
	issuer        string
	audience      string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	clock         func() time.Time
}

// NewTokenService constructs a TokenService with sane defaults.
func NewTokenService(cfg TokenServiceConfig) (*TokenService, error) {
	if len(cfg.SigningSecret) == 0 {
		return nil, errMissingSigningSecret
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = defaultTokenIssuer
	}
	audience := cfg.Audience
	if audience == "" {
		audience = defaultTokenAudience
	}
	accessTTL := cfg.AccessTTL
	if accessTTL <= 0 {
		accessTTL = defaultAccessTokenTTL
	}
	refreshTTL := cfg.RefreshTTL
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTokenTTL
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TokenService{
		signingSecret: append([]byte(nil), cfg.SigningSecret...),
		issuer:        issuer,
		audience:      audience,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		clock:         clock,
	}, nil
}

// Issue produces a signed access token for the given user.
func (s *TokenService) Issue(userID, email string) (string, error) {
	return s.sign(userID, email, s.accessTTL)
}

// IssueRefresh produces a longer-lived token from the same claims. Reserved
// for clients that opt into the refresh flow; the refresh endpoint itself
// accepts any token this service signed.
func (s *TokenService) IssueRefresh(userID, email string) (string, error) {
	return s.sign(userID, email, s.refreshTTL)
}

func (s *TokenService) sign(userID, email string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errMissingSubjectClaim
	}

	now := s.clock().UTC()
	claims := tokenClaims{
		UserEmail: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			Audience:  []string{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingSecret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning its claims. Failures
// are reported through the ErrToken* sentinels.
func (s *TokenService) Verify(tokenString string) (Claims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
				return nil, fmt.Errorf("unexpected signing algorithm: %s", token.Method.Alg())
			}
			return s.signingSecret, nil
		},
		jwt.WithAudience(s.audience),
		jwt.WithIssuer(s.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, translateTokenError(err)
	}
	if parsed == nil || !parsed.Valid {
		return Claims{}, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, errMissingSubjectClaim)
	}

	verified := Claims{
		UserID: claims.Subject,
		Email:  claims.UserEmail,
	}
	if claims.IssuedAt != nil {
		verified.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		verified.ExpiresAt = claims.ExpiresAt.Time
	}
	return verified, nil
}

func translateTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrTokenMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrTokenSignature
	default:
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
}
