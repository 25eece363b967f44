package index

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jobmate/search-service/internal/model"
)

func TestFormatVector(t *testing.T) {
	assert.Equal(t, "[]", FormatVector(nil))
	assert.Equal(t, "[0.5]", FormatVector([]float32{0.5}))
	assert.Equal(t, "[0.1,-1,3.25]", FormatVector([]float32{0.1, -1, 3.25}))
}

func TestLimitArg(t *testing.T) {
	assert.Nil(t, limitArg(0))
	assert.Nil(t, limitArg(-3))
	assert.Equal(t, 20, limitArg(20))
}

func TestTenantArg(t *testing.T) {
	assert.Equal(t, "acme", tenantArg("acme"))
	assert.Equal(t, "acme", tenantArg("  acme "))
	assert.Equal(t, model.GlobalTenant, tenantArg(""))
	assert.Equal(t, model.GlobalTenant, tenantArg("   "))
}
