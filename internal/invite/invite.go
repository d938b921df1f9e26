// Package invite issues and validates the signed tokens embedded in
// emergency contact invite links.
package invite

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Invite Link Policy
//
// A user invites an emergency contact by sharing a link containing a
// signed token. Accepting the link confirms the contact's phone number
// and ties it to the inviting user. Tokens are single-purpose: they
// cannot authenticate API requests.
//
//   - Expiry: 7 days. Invites are low urgency; a stale link should not
//     live forever in a chat history.
//   - Claims: inviting user ID and contact ID, plus registered claims.
//   - Signing: HS256 with a server-side secret key.

// DefaultInviteExpiry is how long invite tokens are valid.
const DefaultInviteExpiry = 7 * 24 * time.Hour

// Predefined token errors.
var (
	ErrInvalidToken = errors.New("invalid invite token")
	ErrTokenExpired = errors.New("invite token has expired")
)

// Claims represents the claims in an invite token.
type Claims struct {
	jwt.RegisteredClaims

	// UserID is the inviting user's ID.
	UserID string `json:"uid"`

	// ContactID is the contact record the invite binds to.
	ContactID string `json:"cid"`
}

// Config holds configuration for the invite service.
type Config struct {
	// SigningKey is the secret key used to sign tokens.
	SigningKey string

	// Issuer is the issuer claim (e.g., "https://api.roadie.app").
	Issuer string

	// Audience is the audience claim (e.g., "roadie-invite").
	Audience string

	// Expiry overrides DefaultInviteExpiry when positive.
	Expiry time.Duration
}

// Service issues and validates invite tokens.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
	expiry     time.Duration
}

// NewService creates a new invite service.
func NewService(cfg Config) *Service {
	expiry := cfg.Expiry
	if expiry <= 0 {
		expiry = DefaultInviteExpiry
	}
	return &Service{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		expiry:     expiry,
	}
}

// Generate creates a new invite token binding a contact to a user.
func (s *Service) Generate(userID, contactID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   contactID,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        generateTokenID(),
		},
		UserID:    userID,
		ContactID: contactID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing invite token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Validate validates an invite token and returns the claims.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
	)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// generateTokenID generates a unique token ID.
func generateTokenID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
