package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		want     error
	}{
		{password: "Test123!@#", want: nil},
		{password: "SecureP@ss1", want: nil},
		{password: "Str0ng#Pass", want: nil},
		{password: "Test1!", want: ErrPasswordTooShort},
		{password: "Abc12", want: ErrPasswordTooShort},
		{password: "test123!@#", want: ErrPasswordNoUpper},
		{password: "TEST123!@#", want: ErrPasswordNoLower},
		{password: "Password$", want: ErrPasswordNoNumber},
		{password: "Password1", want: ErrPasswordNoSpecialChar},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePasswordStrength(tt.password))
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("Secret123!")
	require.NoError(t, err)

	assert.NotEqual(t, "Secret123!", hash)
	assert.True(t, VerifyPassword(hash, "Secret123!"))
	assert.False(t, VerifyPassword(hash, "secret123!"))
	assert.False(t, VerifyPassword("not-a-hash", "Secret123!"))
}
