package tokenstore

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestInspect(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		token       string
		wantOK      bool
		wantExpired bool
	}{
		{
			name:        "future expiry",
			token:       signed(t, jwt.RegisteredClaims{Subject: "u-1", ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))}),
			wantOK:      true,
			wantExpired: false,
		},
		{
			name:        "past expiry",
			token:       signed(t, jwt.RegisteredClaims{Subject: "u-1", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))}),
			wantOK:      true,
			wantExpired: true,
		},
		{
			name:        "no expiry claim",
			token:       signed(t, jwt.RegisteredClaims{Subject: "u-1"}),
			wantOK:      true,
			wantExpired: false,
		},
		{
			name:        "opaque token",
			token:       "7f9c2ba4e88f827d616045507605853e",
			wantOK:      false,
			wantExpired: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, ok := Inspect(tt.token)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, "u-1", claims.Subject)
			}
			assert.Equal(t, tt.wantExpired, Expired(tt.token, now))
		})
	}
}
