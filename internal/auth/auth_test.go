package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuong200111/baitap-sub001/pkg/models"
)

func TestJWTManager_SignAndParse(t *testing.T) {
	m, err := NewJWTManager(JWTConfig{Issuer: "storefront", Secret: "s3cret", TTL: time.Hour})
	require.NoError(t, err)

	token, exp, err := m.Sign(42)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "storefront", claims.Issuer)
}

func TestJWTManager_RejectsForeignSignature(t *testing.T) {
	ours, err := NewJWTManager(JWTConfig{Secret: "ours"})
	require.NoError(t, err)
	theirs, err := NewJWTManager(JWTConfig{Secret: "theirs"})
	require.NoError(t, err)

	token, _, err := theirs.Sign(42)
	require.NoError(t, err)

	_, err = ours.Parse(token)
	assert.Error(t, err)
}

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	_, err := NewJWTManager(JWTConfig{})
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	hash, err := HashPassword("matkhau123")
	require.NoError(t, err)

	repo := NewMemoryCustomerRepository(
		models.Customer{UserID: 5, Email: "An@Example.vn", Password: hash, FirstName: "An", LastName: "Nguyen", AccountStatus: "active"},
		models.Customer{UserID: 6, Email: "binh@example.vn", Password: hash, FirstName: "Binh", LastName: "Tran", AccountStatus: "suspended"},
	)

	tests := []struct {
		name     string
		email    string
		password string
		wantID   int64
		wantErr  error
	}{
		{name: "valid, email case-insensitive", email: " an@example.VN ", password: "matkhau123", wantID: 5},
		{name: "wrong password", email: "an@example.vn", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "who@example.vn", password: "matkhau123", wantErr: ErrInvalidCredentials},
		{name: "suspended account", email: "binh@example.vn", password: "matkhau123", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Authenticate(ctx, repo, tt.email, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, c.UserID)
		})
	}
}
