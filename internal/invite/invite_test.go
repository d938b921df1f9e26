package invite_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roadieapp/roadie/internal/invite"
)

func testConfig() invite.Config {
	return invite.Config{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.roadie.app",
		Audience:   "roadie-invite",
	}
}

func TestService_GenerateAndValidate(t *testing.T) {
	svc := invite.NewService(testConfig())

	token, expiresAt, err := svc.Generate("usr_test123", "ect_abc")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_test123", claims.UserID)
	assert.Equal(t, "ect_abc", claims.ContactID)
	assert.Equal(t, "ect_abc", claims.Subject)
	assert.Equal(t, "https://api.roadie.app", claims.Issuer)
}

func TestService_InvalidToken(t *testing.T) {
	svc := invite.NewService(testConfig())

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.valid.jwt"},
		{"invalid base64", "xxx.yyy.zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Validate(tt.token)
			assert.Error(t, err)
		})
	}
}

func TestService_WrongSigningKey(t *testing.T) {
	cfg := testConfig()
	svc1 := invite.NewService(cfg)

	token, _, err := svc1.Generate("usr_test123", "ect_abc")
	require.NoError(t, err)

	cfg.SigningKey = "a-different-key"
	svc2 := invite.NewService(cfg)

	_, err = svc2.Validate(token)
	assert.Error(t, err)
	assert.ErrorIs(t, err, invite.ErrInvalidToken)
}

func TestService_WrongAudience(t *testing.T) {
	cfg := testConfig()
	svc1 := invite.NewService(cfg)

	token, _, err := svc1.Generate("usr_test123", "ect_abc")
	require.NoError(t, err)

	cfg.Audience = "roadie-api"
	svc2 := invite.NewService(cfg)

	_, err = svc2.Validate(token)
	assert.Error(t, err)
}

func TestService_ExpiredToken(t *testing.T) {
	cfg := testConfig()
	cfg.Expiry = time.Nanosecond
	svc := invite.NewService(cfg)

	token, _, err := svc.Generate("usr_test123", "ect_abc")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, invite.ErrTokenExpired)
}
