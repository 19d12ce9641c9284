package extensions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomUA(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		ua := GenerateRandomUA()
		assert.NotEmpty(t, ua)
		seen[ua] = struct{}{}
	}
	assert.Greater(t, len(seen), 1)
}
