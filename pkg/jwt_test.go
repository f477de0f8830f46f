package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(7, "ops@example.com", "admin", "secret", 5)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "ops@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken(1, "a@example.com", "operator", "secret", -1)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.Error(t, err)
}

func TestRefreshToken(t *testing.T) {
	refresh, err := GenerateRefreshToken(3, "secret", 1)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(refresh, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)

	access, err := GenerateToken(3, "a@example.com", "operator", "secret", 5)
	require.NoError(t, err)
	_, err = ValidateRefreshToken(access, "secret")
	assert.Error(t, err, "an access token is not accepted as refresh token")
}

func TestGenerateToken_NoSecret(t *testing.T) {
	_, err := GenerateToken(1, "a@example.com", "operator", "", 5)
	assert.Error(t, err)
}

func TestIsEmail(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{"sender@example.com", true},
		{"first.last+tag@mail.example.org", true},
		{"not-an-email", false},
		{"", false},
		{"missing@", false},
		{"@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEmail(tt.addr))
		})
	}
}
