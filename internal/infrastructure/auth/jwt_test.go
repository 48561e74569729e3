package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "marketplace-test",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func TestNewJWTService_DefaultExpiration(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s"})
	assert.Equal(t, 15*time.Minute, svc.Expiration())
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()
	userID := uuid.New()

	for _, role := range []Role{RoleBuyer, RoleSeller, RoleAdmin} {
		t.Run(string(role), func(t *testing.T) {
			token, err := svc.Generate(userID, role)
			require.NoError(t, err)
			assert.Equal(t, "Bearer", token.TokenType)
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), token.ExpiresAt, 5*time.Second)

			claims, err := svc.Validate(token.AccessToken)
			require.NoError(t, err)
			assert.Equal(t, role, claims.Role)
			got, err := claims.UserUUID()
			require.NoError(t, err)
			assert.Equal(t, userID, got)
			assert.Equal(t, "marketplace-test", claims.Issuer)
		})
	}
}

func TestJWTService_GenerateRejectsUnknownRole(t *testing.T) {
	_, err := newTestJWTService().Generate(uuid.New(), Role("courier"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestJWTService_ValidateExpired(t *testing.T) {
	svc := newTestJWTService()
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, err := svc.Generate(uuid.New(), RoleBuyer)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ValidateWrongSecret(t *testing.T) {
	token, err := newTestJWTService().Generate(uuid.New(), RoleSeller)
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "another-secret", Issuer: "marketplace-test"})
	_, err = other.Validate(token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateWrongIssuer(t *testing.T) {
	token, err := newTestJWTService().Generate(uuid.New(), RoleSeller)
	require.NoError(t, err)

	other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "someone-else"})
	_, err = other.Validate(token.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateRejectsOtherAlgorithms(t *testing.T) {
	svc := newTestJWTService()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "marketplace-test",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
		UserID: uuid.NewString(),
		Role:   RoleAdmin,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(svc.secret)
	require.NoError(t, err)

	_, err = svc.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateClaims(t *testing.T) {
	svc := newTestJWTService()
	sign := func(c *Claims) string {
		c.Issuer = "marketplace-test"
		c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Minute))
		s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(svc.secret)
		require.NoError(t, err)
		return s
	}

	_, err := svc.Validate(sign(&Claims{Role: RoleBuyer}))
	assert.ErrorIs(t, err, ErrMissingUserID)

	_, err = svc.Validate(sign(&Claims{UserID: "not-a-uuid", Role: RoleBuyer}))
	assert.ErrorIs(t, err, ErrInvalidClaims)

	_, err = svc.Validate(sign(&Claims{UserID: uuid.NewString(), Role: "root"}))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestJWTService_ValidateGarbage(t *testing.T) {
	_, err := newTestJWTService().Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
