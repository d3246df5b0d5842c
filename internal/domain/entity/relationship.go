// Package entity 定义领域实体
package entity

import (
	"fmt"
	"strings"
)

// 关系类型。viewer 通过 member（组授权）与 parent（文件夹继承）组合生效，
// 组合规则由授权后端的模型定义，本地不重复推导。
const (
	RelationMember = "member"
	RelationViewer = "viewer"
	RelationParent = "parent"
)

// 对象命名空间。线上协议约定，必须逐字产生。
const (
	NamespaceUser     = "user"
	NamespaceGroup    = "group"
	NamespaceFolder   = "folder"
	NamespaceDocument = "document"
)

// ActorID 请求方标识，形如 user:<name>。查询开始后不可变。
type ActorID string

// String 实现 fmt.Stringer
func (a ActorID) String() string { return string(a) }

// Valid 检查是否为合法的 user:<name> 标识
func (a ActorID) Valid() bool {
	ns, name, ok := splitRef(string(a))
	return ok && ns == NamespaceUser && name != ""
}

// UserRef 构造 user:<name> 标识
func UserRef(name string) ActorID {
	return ActorID(NamespaceUser + ":" + name)
}

// GroupRef 构造 group:<name> 标识
func GroupRef(name string) string {
	return NamespaceGroup + ":" + name
}

// GroupMembers 构造 group:<name>#member userset，
// 用于把"某组的全部成员"授权给一个对象
func GroupMembers(name string) string {
	return GroupRef(name) + "#" + RelationMember
}

// FolderRef 构造 folder:<name> 标识
func FolderRef(name string) string {
	return NamespaceFolder + ":" + name
}

// DocumentRef 构造 document:<id> 标识
func DocumentRef(id string) string {
	return NamespaceDocument + ":" + id
}

func splitRef(s string) (namespace, name string, ok bool) {
	namespace, name, ok = strings.Cut(s, ":")
	return namespace, name, ok
}

// RelationTuple 一条关系元组 (user, relation, object)。
// 写入是可加的且与顺序无关。
type RelationTuple struct {
	User     string `json:"user"`
	Relation string `json:"relation"`
	Object   string `json:"object"`
}

// String 实现 fmt.Stringer
func (t RelationTuple) String() string {
	return fmt.Sprintf("%s#%s@%s", t.Object, t.Relation, t.User)
}

// MemberTuple 用户加入组
func MemberTuple(user ActorID, group string) RelationTuple {
	return RelationTuple{User: user.String(), Relation: RelationMember, Object: GroupRef(group)}
}

// GroupViewerTuple 组成员获得文件夹 viewer 权限
func GroupViewerTuple(group, folder string) RelationTuple {
	return RelationTuple{User: GroupMembers(group), Relation: RelationViewer, Object: FolderRef(folder)}
}

// DirectViewerTuple 用户直接获得文件夹 viewer 权限
func DirectViewerTuple(user ActorID, folder string) RelationTuple {
	return RelationTuple{User: user.String(), Relation: RelationViewer, Object: FolderRef(folder)}
}

// ParentTuple 文件夹成为文档的 parent。每个文档恰有一个父文件夹。
func ParentTuple(folder, documentID string) RelationTuple {
	return RelationTuple{User: FolderRef(folder), Relation: RelationParent, Object: DocumentRef(documentID)}
}
