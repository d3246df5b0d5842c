package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorIDValid(t *testing.T) {
	assert.True(t, UserRef("alan").Valid())
	assert.False(t, ActorID("alan").Valid())
	assert.False(t, ActorID("group:engineering").Valid())
	assert.False(t, ActorID("user:").Valid())
	assert.False(t, ActorID("").Valid())
}

func TestRefBuilders(t *testing.T) {
	assert.Equal(t, "user:alan", UserRef("alan").String())
	assert.Equal(t, "group:sales#member", GroupMembers("sales"))
	assert.Equal(t, "folder:general", FolderRef("general"))
	assert.Equal(t, "document:3", DocumentRef("3"))
}

func TestTupleString(t *testing.T) {
	tu := ParentTuple("general", "3")
	assert.Equal(t, "document:3#parent@folder:general", tu.String())
}
