package utils

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJwtRoundTrip(t *testing.T) {
	token, err := JwtGenerate("s3cret", 7, "admin", 1)
	require.NoError(t, err)

	claims, err := JwtValidate("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, 7, claims.ID)
	assert.Equal(t, "admin", claims.Role)

	_, err = JwtValidate("other", token)
	assert.Error(t, err)
}

func TestJwtValidate_Expired(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		ID:             1,
		Role:           "cashier",
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()},
	})
	signed, err := expired.SignedString([]byte("s3cret"))
	require.NoError(t, err)

	_, err = JwtValidate("s3cret", signed)
	assert.Error(t, err)
}

func TestJwtValidate_RejectsOtherAlgorithms(t *testing.T) {
	none := jwt.NewWithClaims(jwt.SigningMethodNone, &JwtCustomClaim{ID: 1, Role: "admin"})
	signed, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = JwtValidate("s3cret", signed)
	assert.Error(t, err)
}

func TestJwtGenerate_RequiresLifespan(t *testing.T) {
	_, err := JwtGenerate("s3cret", 1, "admin", 0)
	assert.Error(t, err)
}
