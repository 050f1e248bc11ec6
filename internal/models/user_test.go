package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidLevel(t *testing.T) {
	t.Parallel()

	assert.True(t, ValidLevel(LevelBeginner))
	assert.True(t, ValidLevel(LevelIntermediate))
	assert.True(t, ValidLevel(LevelAdvanced))

	assert.False(t, ValidLevel(""))
	assert.False(t, ValidLevel("expert"))
	assert.False(t, ValidLevel("Beginner"))
}
