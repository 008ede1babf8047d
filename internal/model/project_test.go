package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkillRef_UnmarshalMixedList(t *testing.T) {
	var refs []SkillRef
	err := json.Unmarshal([]byte(`["c9abc", {"name": "Go", "iconUrl": "https://x/go.svg"}, {"name": "React"}]`), &refs)
	require.NoError(t, err)
	require.Len(t, refs, 3)

	assert.Equal(t, "c9abc", refs[0].ID)
	assert.False(t, refs[0].ByName())

	assert.True(t, refs[1].ByName())
	assert.Equal(t, "Go", refs[1].Name)
	assert.Equal(t, "https://x/go.svg", refs[1].IconURL)

	assert.Equal(t, "React", refs[2].Name)
	assert.Empty(t, refs[2].IconURL)
}

func TestSkillRef_RejectsNumbers(t *testing.T) {
	var ref SkillRef
	err := json.Unmarshal([]byte(`42`), &ref)
	assert.Error(t, err)
}
