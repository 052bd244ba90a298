package kermesse_test

import (
	"testing"

	kermesse "github.com/kermesse/go-kermesse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := kermesse.HashPassword("sup3rs3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "sup3rs3cret", hash)

	assert.NoError(t, kermesse.ComparePasswordAndHash("sup3rs3cret", hash))
}

func TestHashPasswordEmptyString(t *testing.T) {
	_, err := kermesse.HashPassword("")
	assert.ErrorIs(t, err, kermesse.ErrNoEmptyString)
}

func TestComparePasswordAndHashMismatch(t *testing.T) {
	hash, err := kermesse.HashPassword("correct")
	require.NoError(t, err)

	err = kermesse.ComparePasswordAndHash("wrong", hash)
	assert.ErrorIs(t, err, kermesse.ErrMismatchedHashAndPassword)
}

func TestComparePasswordAndHashGarbage(t *testing.T) {
	err := kermesse.ComparePasswordAndHash("password", "not-a-bcrypt-hash")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, kermesse.ErrMismatchedHashAndPassword)
}

func TestRandomPasswordHash(t *testing.T) {
	hash := kermesse.RandomPasswordHash()
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, hash, kermesse.RandomPasswordHash())
}
