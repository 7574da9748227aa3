package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Issuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("secret", "library", time.Hour)
	token, jti, exp, err := iss.Issue("user-1")
	require.NoError(t, err)
	assert.NotEmpty(t, jti)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := iss.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "library", claims.Issuer)
}

func Test_Issuer_Rejects(t *testing.T) {
	iss := NewIssuer("secret", "library", time.Hour)
	good, _, _, err := iss.Issue("user-1")
	require.NoError(t, err)

	expired := NewIssuer("secret", "library", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, _, err := expired.Issue("user-1")
	require.NoError(t, err)

	otherIssuer, _, _, err := NewIssuer("secret", "elsewhere", time.Hour).Issue("user-1")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "user-1", ID: "x", Issuer: "library"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "wrong_secret", token: mustIssue(t, NewIssuer("other", "library", time.Hour))},
		{name: "expired", token: old},
		{name: "wrong_issuer", token: otherIssuer},
		{name: "alg_none", token: unsigned},
		{name: "tampered", token: good[:len(good)-2] + "xx"},
		{name: "garbage", token: "not.a.token"},
		{name: "empty", token: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := iss.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func mustIssue(t *testing.T, iss *Issuer) string {
	t.Helper()
	tok, _, _, err := iss.Issue("user-1")
	require.NoError(t, err)
	return tok
}

func Test_Password(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	assert.NoError(t, CheckPassword(hash, "hunter22"))
	assert.ErrorIs(t, CheckPassword(hash, "hunter23"), ErrInvalidCredentials)
}
