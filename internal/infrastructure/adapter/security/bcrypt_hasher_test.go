package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.NoError(t, hasher.Compare(hash, "correct horse"))
	assert.Error(t, hasher.Compare(hash, "wrong horse"))
}

func TestNewBcryptHasher_InvalidCostFallsBack(t *testing.T) {
	hasher := NewBcryptHasher(100).(*BcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, hasher.cost)
}
