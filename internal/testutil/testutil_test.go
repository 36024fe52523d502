package testutil

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lectopus/internal/platform/crypto"
)

func TestTokens(t *testing.T) {
	claims, err := crypto.ParseToken("secret", GenerateTestToken("secret", "user-1"))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())

	_, err = crypto.ParseToken("secret", GenerateExpiredToken("secret", "user-1"))
	assert.ErrorIs(t, err, crypto.ErrInvalidToken)
}

func TestServe(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"NOT_FOUND","message":"x"}}`))
	})

	res := Serve(h, NewRequestWithAuth(http.MethodPost, "/x", map[string]string{"a": "b"}, "tok"))
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.Equal(t, "NOT_FOUND", res.ErrorCode())
	assert.Nil(t, res.Data())
}
