package roledata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaybook(t *testing.T) {
	for _, id := range []string{"product", "architect", "engineer", "delivery"} {
		content, ok := Playbook(id)
		require.True(t, ok, "missing playbook for %s", id)
		assert.Contains(t, content, "checklist")
	}

	_, ok := Playbook("nonexistent")
	assert.False(t, ok)
}

func TestRoles(t *testing.T) {
	assert.Equal(t, []string{"architect", "delivery", "engineer", "product"}, Roles())
}
