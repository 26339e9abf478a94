package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsOwnerTypeValid(t *testing.T) {
	for _, ownerType := range ValidOwnerTypes() {
		assert.True(t, IsOwnerTypeValid(ownerType))
	}
	assert.False(t, IsOwnerTypeValid("vehicle"))
	assert.False(t, IsOwnerTypeValid(""))
	assert.False(t, IsOwnerTypeValid("Asset"))
}

func TestMatchesSearchAllWords(t *testing.T) {
	owner := OwnerSummary{
		DisplayName:  "Crane 12",
		Subtitle:     "SN-4411 - Rotterdam",
		CustomerName: "Acme Logistics",
	}

	assert.True(t, owner.MatchesSearch(""))
	assert.True(t, owner.MatchesSearch("   "))
	assert.True(t, owner.MatchesSearch("crane"))
	assert.True(t, owner.MatchesSearch("CRANE 12"))
	assert.True(t, owner.MatchesSearch("acme rotterdam"))
	assert.True(t, owner.MatchesSearch("sn-4411"))

	// every word must match, not just one
	assert.False(t, owner.MatchesSearch("crane berlin"))
	assert.False(t, owner.MatchesSearch("excavator"))
}
