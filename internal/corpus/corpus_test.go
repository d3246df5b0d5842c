package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"secure-agent-api/internal/domain/entity"
)

func TestTuplesCoverAllRelations(t *testing.T) {
	tuples := Tuples()

	byRelation := map[string][]entity.RelationTuple{}
	for _, tu := range tuples {
		byRelation[tu.Relation] = append(byRelation[tu.Relation], tu)
	}

	// 5 组成员关系：seigen 两个组，其余各一个
	assert.Len(t, byRelation[entity.RelationMember], 5)
	// 4 组授权 + 1 直接授权
	assert.Len(t, byRelation[entity.RelationViewer], 5)
	// 每个文档恰有一个父文件夹
	assert.Len(t, byRelation[entity.RelationParent], len(Documents))

	assert.Contains(t, tuples, entity.RelationTuple{
		User: "group:engineering#member", Relation: "viewer", Object: "folder:engineering",
	})
	assert.Contains(t, tuples, entity.RelationTuple{
		User: "user:seigen", Relation: "viewer", Object: "folder:executive",
	})
	assert.Contains(t, tuples, entity.RelationTuple{
		User: "folder:executive", Relation: "parent", Object: "document:7",
	})
}

func TestAccessibleFolders(t *testing.T) {
	cases := []struct {
		actor   string
		folders []string
	}{
		{"user:seigen", []string{"engineering", "sales", "general", "executive"}},
		{"user:alan", []string{"engineering", "general"}},
		{"user:tsukada", []string{"sales", "general"}},
		{"user:tsuki", []string{"engineering", "general"}},
	}
	for _, tc := range cases {
		got := AccessibleFolders(entity.ActorID(tc.actor))
		assert.ElementsMatch(t, tc.folders, got, "actor %s", tc.actor)
	}

	assert.Nil(t, AccessibleFolders(entity.UserRef("stranger")))
}

func TestLookups(t *testing.T) {
	doc, ok := DocumentByID("7")
	require.True(t, ok)
	assert.Equal(t, "Merger Strategy", doc.Title)
	assert.Equal(t, "executive", doc.Folder)

	_, ok = DocumentByID("42")
	assert.False(t, ok)

	u, ok := UserByID(entity.UserRef("tsukada"))
	require.True(t, ok)
	assert.Equal(t, "CRO", u.Role)
	assert.Equal(t, []string{"sales"}, u.Groups)
}
