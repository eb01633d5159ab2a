// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/binderdex/internal/platform/sec"
)

func writeKeyPair(t *testing.T) (string, string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privatePath := filepath.Join(dir, "private.pem")
	publicPath := filepath.Join(dir, "public.pem")

	privatePEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	require.NoError(t, os.WriteFile(privatePath, privatePEM, 0o600))

	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})
	require.NoError(t, os.WriteFile(publicPath, publicPEM, 0o600))

	return privatePath, publicPath
}

/*
TestTokenService_RoundTrip verifies that a signed token carries the caller identity back.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	privatePath, publicPath := writeKeyPair(t)

	service, err := sec.NewTokenService(privatePath, publicPath, "binderdex.test")
	require.NoError(t, err)

	token, err := service.GenerateAccessToken("user-1", "ash@example.com", time.Minute)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ash@example.com", claims.Email)
	assert.Equal(t, "binderdex.test", claims.Issuer)
}

/*
TestTokenService_Expired verifies that expired tokens are rejected.
*/
func TestTokenService_Expired(t *testing.T) {
	privatePath, publicPath := writeKeyPair(t)

	service, err := sec.NewTokenService(privatePath, publicPath, "binderdex.test")
	require.NoError(t, err)

	token, err := service.GenerateAccessToken("user-1", "ash@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}

/*
TestPasswordHash verifies bcrypt hashing and comparison.
*/
func TestPasswordHash(t *testing.T) {
	hash, err := sec.HashPassword("pikachu")
	require.NoError(t, err)

	assert.NotEqual(t, "pikachu", hash)
	assert.True(t, sec.CheckPasswordHash("pikachu", hash))
	assert.False(t, sec.CheckPasswordHash("raichu", hash))
	assert.False(t, sec.CheckPasswordHash("pikachu", ""))
	assert.False(t, sec.CheckPasswordHash("pikachu", "not-a-bcrypt-hash"))
}

/*
TestSecureToken verifies token randomness and deterministic hashing.
*/
func TestSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Len(t, sec.HashToken(first), 64)
	assert.Equal(t, sec.HashToken(first), sec.HashToken(first))
	assert.NotEqual(t, sec.HashToken(first), sec.HashToken(second))
}
