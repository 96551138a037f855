package auth

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err, "signing test token")
	return token
}

func TestParseLocationToken(t *testing.T) {
	tests := []struct {
		name         string
		claims       jwt.MapClaims
		wantLocation string
	}{
		{name: "snake case claim", claims: jwt.MapClaims{"location_id": "loc-1"}, wantLocation: "loc-1"},
		{name: "camel case claim", claims: jwt.MapClaims{"locationId": "loc-2"}, wantLocation: "loc-2"},
		{name: "sub fallback", claims: jwt.MapClaims{"sub": "loc-3"}, wantLocation: "loc-3"},
		{name: "snake case wins over sub", claims: jwt.MapClaims{"location_id": "loc-4", "sub": "other"}, wantLocation: "loc-4"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := signToken(t, tc.claims)
			tenant, err := ParseLocationToken(raw)
			require.NoError(t, err)
			assert.Equal(t, tc.wantLocation, tenant.LocationID)
			assert.Equal(t, raw, tenant.Token, "raw token must be preserved for downstream requests")
		})
	}
}

func TestParseLocationTokenStripsBearerPrefix(t *testing.T) {
	raw := signToken(t, jwt.MapClaims{"location_id": "loc-1"})
	tenant, err := ParseLocationToken("Bearer " + raw)
	require.NoError(t, err)
	assert.Equal(t, raw, tenant.Token)
}

func TestParseLocationTokenErrors(t *testing.T) {
	_, err := ParseLocationToken("")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = ParseLocationToken("Bearer   ")
	assert.ErrorIs(t, err, ErrNoToken)

	_, err = ParseLocationToken("not-a-jwt")
	assert.Error(t, err, "malformed token must not parse")

	_, err = ParseLocationToken(signToken(t, jwt.MapClaims{"iss": "someone"}))
	assert.ErrorIs(t, err, ErrNoLocation)
}
