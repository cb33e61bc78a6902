package model_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-service/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIToken(t *testing.T) {
	t.Run("stores only the hash", func(t *testing.T) {
		token, plain, err := model.NewAPIToken(" frontend ")

		require.NoError(t, err)
		assert.Equal(t, "frontend", token.Name)
		assert.Len(t, plain, 64)
		assert.Equal(t, model.HashToken(plain), token.TokenHash)
		assert.NotEqual(t, plain, token.TokenHash)
		assert.Equal(t, uuid.Nil, token.ID)
	})

	t.Run("tokens differ", func(t *testing.T) {
		_, first, err := model.NewAPIToken("a")
		require.NoError(t, err)
		_, second, err := model.NewAPIToken("a")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("invalid name", func(t *testing.T) {
		for _, name := range []string{"", "   ", strings.Repeat("a", model.MaxNameLength+1)} {
			_, _, err := model.NewAPIToken(name)
			assert.True(t, errors.Is(err, model.ErrInvalidAPIToken), name)
		}
	})
}

func TestHashToken(t *testing.T) {
	// sha256("secret")
	assert.Equal(t, "2bb80d537b1da3e38bd30361aa855686bde0eacd7162fef6a25fe97bf527a25b", model.HashToken("secret"))
}

func TestAPIToken_InitMeta(t *testing.T) {
	token := &model.APIToken{Name: "cli"}

	token.InitMeta()

	assert.NotEqual(t, uuid.Nil, token.ID)
	assert.False(t, token.CreatedAt.IsZero())
	assert.Nil(t, token.LastUsedAt)
}
