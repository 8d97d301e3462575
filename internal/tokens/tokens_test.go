package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	accessSecret  = []byte("access-secret")
	refreshSecret = []byte("refresh-secret")
)

func TestAccessRoundTrip(t *testing.T) {
	t.Parallel()
	tok, err := SignAccess(accessSecret, "acc-1", "admin", time.Now().Add(time.Minute))
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(tok, accessSecret)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestAccess_WrongSecretAndExpired(t *testing.T) {
	t.Parallel()
	tok, err := SignAccess(accessSecret, "acc-1", "customer", time.Now().Add(time.Minute))
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(tok, []byte("other"))
	require.Error(t, err)

	expired, err := SignAccess(accessSecret, "acc-1", "customer", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(expired, accessSecret)
	require.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestRefresh_CarriesJTI(t *testing.T) {
	t.Parallel()
	tok, jti, err := SignRefresh(refreshSecret, "acc-2", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := RefreshClaimsFromToken(tok, refreshSecret)
	require.NoError(t, err)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "acc-2", claims.Subject)

	_, err = RefreshClaimsFromToken(tok, accessSecret)
	require.Error(t, err)
}

func TestRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, AccessClaims{Role: "admin"})
	s, err := tok.SignedString(accessSecret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(s, accessSecret)
	require.ErrorIs(t, err, ErrSignMethod)
}

func TestSha256Hex(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Sha256Hex(""))
	assert.Len(t, Sha256Hex("x"), 64)
}
