package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTripUntilExpiry(t *testing.T) {
	now := testNow
	issuer := NewJWTIssuer("round-trip-secret", 5*time.Minute)
	issuer.now = func() time.Time { return now }

	want := Claims{UserID: "0190c0de-0000-7000-8000-000000000042", Email: "m@x.com", Role: RoleManager}
	token, err := issuer.Issue(want)
	require.NoError(t, err)
	require.Equal(t, testNow.Add(5*time.Minute), token.ExpiresAt)

	got, err := issuer.Verify(token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, want, got)

	now = testNow.Add(5*time.Minute - time.Second)
	_, err = issuer.Verify(token.AccessToken)
	require.NoError(t, err)

	now = testNow.Add(5*time.Minute + time.Second)
	_, err = issuer.Verify(token.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsForeignSignatures(t *testing.T) {
	issuer := NewJWTIssuer("secret-a", time.Minute)
	other := NewJWTIssuer("secret-b", time.Minute)

	token, err := other.Issue(Claims{UserID: "u1", Role: RoleAdmin})
	require.NoError(t, err)

	_, err = issuer.Verify(token.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsOtherAlgorithmsAndTypes(t *testing.T) {
	issuer := NewJWTIssuer("secret", time.Minute)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"userId": "u1", "role": "Admin", "typ": "access", "exp": time.Now().Add(time.Minute).Unix(),
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Verify(unsigned)
	require.ErrorIs(t, err, ErrInvalidToken)

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "u1", "role": "Admin", "typ": "refresh", "exp": time.Now().Add(time.Minute).Unix(),
	})
	signed, err := refresh.SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = issuer.Verify(signed)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify(strings.Repeat("x", 20))
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenDefaultsTTL(t *testing.T) {
	require.Equal(t, 5*time.Minute, NewJWTIssuer("s", 0).TTL())
}
