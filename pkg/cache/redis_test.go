package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "libvisit:analytics:2024-01-01:2024-01-31", Key("analytics", "2024-01-01", "2024-01-31"))
	assert.Equal(t, "libvisit:", Key())
}
