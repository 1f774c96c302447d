package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmail(t *testing.T) {
	assert.True(t, Email("user@example.com"))
	assert.False(t, Email("not-an-email"))
	assert.False(t, Email(""))
	assert.False(t, Email("User Name <user@example.com>"))
}

func TestPassword(t *testing.T) {
	assert.True(t, Password("longenough"))
	assert.False(t, Password("short"))
}

func TestName(t *testing.T) {
	assert.True(t, Name("Ada Lovelace"))
	assert.False(t, Name("  "))
	assert.False(t, Name(strings.Repeat("x", 101)))
}

func TestProductName(t *testing.T) {
	assert.True(t, ProductName("VPS 2GB monthly"))
	assert.False(t, ProductName(""))
	assert.False(t, ProductName(strings.Repeat("x", 201)))
}

func TestAmount(t *testing.T) {
	assert.True(t, Amount(1))
	assert.False(t, Amount(0))
	assert.False(t, Amount(-5))
}
