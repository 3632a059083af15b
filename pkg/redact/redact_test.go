package redact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString_RedactsEmailAndPhone(t *testing.T) {
	out := String("contact me at ana@example.com or +593 99-123-4567")
	assert.Contains(t, out, "[EMAIL_REDACTED]")
	assert.Contains(t, out, "[PHONE_REDACTED]")
	assert.NotContains(t, out, "ana@example.com")
}

func TestShippingAddress_RedactsNonEmpty(t *testing.T) {
	assert.Equal(t, "[ADDRESS_REDACTED]", ShippingAddress("Av. Amazonas 123, Quito"))
	assert.Equal(t, "", ShippingAddress(""))
}
