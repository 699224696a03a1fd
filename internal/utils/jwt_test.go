package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerifyToken(t *testing.T) {
	tok, err := IssueToken("s3cret", "user-1", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 5*time.Second)

	sub, err := VerifyToken("s3cret", tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestVerifyTokenFailures(t *testing.T) {
	good, err := IssueToken("s3cret", "user-1", time.Hour)
	require.NoError(t, err)
	expired, err := IssueToken("s3cret", "user-1", -time.Minute)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"}).
		SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		raw    string
		want   error
	}{
		{"wrong secret", "other", good.Token, ErrTokenInvalid},
		{"expired", "s3cret", expired.Token, ErrTokenExpired},
		{"garbage", "s3cret", "not-a-jwt", ErrTokenInvalid},
		{"missing exp", "s3cret", noExp, ErrTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyToken(tt.secret, tt.raw)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
