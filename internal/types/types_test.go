package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidCategory(t *testing.T) {
	for _, c := range ValidCategories {
		assert.True(t, IsValidCategory(c), c)
	}
	assert.False(t, IsValidCategory("lunch"))
	assert.False(t, IsValidCategory(""))
	assert.False(t, IsValidCategory("Delivery"))
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range ValidStatuses {
		assert.True(t, IsValidStatus(s), s)
	}
	assert.False(t, IsValidStatus("done"))
	assert.False(t, IsValidStatus(""))
}
