package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll(t *testing.T) {
	all := All()
	require.Len(t, all, 6)
	assert.Equal(t, "alzheimers", all[0].ID)

	seen := map[string]bool{}
	for _, c := range all {
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
		assert.NotEmpty(t, c.Symptoms)
		assert.NotEmpty(t, c.EarlyDetectionBenefits)
	}

	all[0].ID = "changed"
	assert.Equal(t, "alzheimers", All()[0].ID)
}

func TestByID(t *testing.T) {
	c, ok := ByID("brain-tumor")
	require.True(t, ok)
	assert.Equal(t, "Brain Tumor", c.Name)

	_, ok = ByID("migraine")
	assert.False(t, ok)
}
