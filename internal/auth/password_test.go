package auth

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	for _, pw := range []string{"secret", "", "pāroles-ŗ", strings.Repeat("x", 200)} {
		hash, err := HashPassword(pw)
		require.NoError(t, err)

		assert.True(t, VerifyPassword(pw, hash), "password %q should verify", pw)
		assert.False(t, VerifyPassword(pw+"!", hash), "wrong password must not verify")
	}
}

func TestHashPasswordFormat(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	parts := strings.Split(hash, ":")
	require.Len(t, parts, 2)

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	assert.Len(t, salt, SaltSize)

	key, err := base64.StdEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	assert.Len(t, key, KeySize)
}

func TestHashPasswordUsesFreshSalt(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, VerifyPassword("same", a))
	assert.True(t, VerifyPassword("same", b))
}

func TestVerifyPasswordMalformed(t *testing.T) {
	good, err := HashPassword("pw")
	require.NoError(t, err)
	salt := strings.Split(good, ":")[0]

	cases := map[string]string{
		"empty":          "",
		"no separator":   "abcdef",
		"too many parts": good + ":extra",
		"bad salt":       "!!!:" + strings.Split(good, ":")[1],
		"bad key":        salt + ":@@@",
		"empty salt":     ":" + strings.Split(good, ":")[1],
		"short key":      salt + ":" + base64.StdEncoding.EncodeToString([]byte("short")),
		"bcrypt hash":    "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
	}
	for name, stored := range cases {
		t.Run(name, func(t *testing.T) {
			assert.False(t, VerifyPassword("pw", stored))
		})
	}
}
