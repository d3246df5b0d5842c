// Package corpus 提供演示语料：文档、用户及其关系数据。
// 这些数据在系统初始化时一次性写入授权后端，查询期间只读。
package corpus

import (
	"secure-agent-api/internal/domain/entity"
)

// User 演示用户及其组归属
type User struct {
	ID     entity.ActorID `json:"id"`
	Name   string         `json:"name"`
	Role   string         `json:"role"`
	Groups []string       `json:"groups"`
}

// Users 演示用户。CEO 同时在两个组，另有 executive 文件夹的直接授权。
var Users = []User{
	{ID: entity.UserRef("seigen"), Name: "Seigen", Role: "CEO", Groups: []string{"engineering", "sales"}},
	{ID: entity.UserRef("alan"), Name: "Alan", Role: "EM", Groups: []string{"engineering"}},
	{ID: entity.UserRef("tsukada"), Name: "Tsukada", Role: "CRO", Groups: []string{"sales"}},
	{ID: entity.UserRef("tsuki"), Name: "Tsuki", Role: "Backend", Groups: []string{"engineering"}},
}

// groupViewerGrants 文件夹 -> 可读该文件夹的组
var groupViewerGrants = map[string][]string{
	"engineering": {"engineering"},
	"sales":       {"sales"},
	"general":     {"engineering", "sales"},
}

// directViewerGrants 文件夹 -> 直接授权的用户（不经过组）
var directViewerGrants = map[string][]entity.ActorID{
	"executive": {entity.UserRef("seigen")},
}

// Documents 演示文档，ID 为数字字符串，英日双语
var Documents = []entity.Document{
	{
		ID: "1", Title: "Engineering Roadmap 2025", Category: "Engineering", Language: "en",
		Folder: "engineering",
		Text:   "The Engineering Roadmap 2025: We will focus on migrating to a microservices architecture and implementing AI-driven testing. Key milestone: Q3 release of the new API.",
	},
	{
		ID: "2", Title: "Sales Targets 2025", Category: "Sales", Language: "en",
		Folder: "sales",
		Text:   "Sales Targets 2025: The goal is to reach $10M ARR. Focus on the enterprise sector in the APAC region. Commission structure has been updated.",
	},
	{
		ID: "3", Title: "Holiday Notice", Category: "General", Language: "en",
		Folder: "general",
		Text:   "Public Notice: The office will be closed on December 25th for the holidays. Happy Holidays to everyone!",
	},
	{
		ID: "4", Title: "Project Alpha Specs", Category: "Engineering", Language: "ja",
		Folder: "engineering",
		Text:   "プロジェクトAlphaの技術仕様書: このプロジェクトでは、次世代の認証基盤を構築します。OAuth2.0とOIDCに完全準拠し、生体認証もサポートする予定です。リリースは来年の第2四半期を予定しています。",
	},
	{
		ID: "5", Title: "Q4 Sales Report JP", Category: "Sales", Language: "ja",
		Folder: "sales",
		Text:   "2024年度第4四半期営業報告: 日本市場における売上は前年比120%増を達成しました。特に金融業界向けの導入が進んでいます。来期は製造業へのアプローチを強化します。",
	},
	{
		ID: "6", Title: "Remote Work Policy", Category: "General", Language: "ja",
		Folder: "general",
		Text:   "社内規定の改定について: 2025年1月1日より、リモートワーク規定が一部変更されます。週2回の出社が推奨されますが、介護や育児などの事情がある場合はフルリモートも可能です。",
	},
	{
		ID: "7", Title: "Merger Strategy", Category: "Executive", Language: "en",
		Folder: "executive",
		Text:   "Confidential Merger Strategy: We are in early talks to acquire Competitor X. This information is strictly confidential and limited to C-level executives.",
	},
}

// DocumentByID 按 ID 查找文档
func DocumentByID(id string) (entity.Document, bool) {
	for _, d := range Documents {
		if d.ID == id {
			return d, true
		}
	}
	return entity.Document{}, false
}

// UserByID 按标识查找用户
func UserByID(id entity.ActorID) (User, bool) {
	for _, u := range Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// Tuples 由语料推导出完整的关系元组集合：
// 组成员关系、文件夹 viewer 授权（组 userset 与直接授权）、文档 parent 关系
func Tuples() []entity.RelationTuple {
	var tuples []entity.RelationTuple

	for _, u := range Users {
		for _, g := range u.Groups {
			tuples = append(tuples, entity.MemberTuple(u.ID, g))
		}
	}

	for folder, groups := range groupViewerGrants {
		for _, g := range groups {
			tuples = append(tuples, entity.GroupViewerTuple(g, folder))
		}
	}
	for folder, users := range directViewerGrants {
		for _, u := range users {
			tuples = append(tuples, entity.DirectViewerTuple(u, folder))
		}
	}

	for _, d := range Documents {
		tuples = append(tuples, entity.ParentTuple(d.Folder, d.ID))
	}

	return tuples
}

// AccessibleFolders 推导用户可读的文件夹集合（按声明的授权，仅用于展示接口；
// 权威判定始终来自授权后端）
func AccessibleFolders(id entity.ActorID) []string {
	u, ok := UserByID(id)
	if !ok {
		return nil
	}

	memberOf := make(map[string]bool, len(u.Groups))
	for _, g := range u.Groups {
		memberOf[g] = true
	}

	var folders []string
	seen := make(map[string]bool)
	add := func(folder string) {
		if !seen[folder] {
			seen[folder] = true
			folders = append(folders, folder)
		}
	}

	for _, d := range Documents {
		for _, g := range groupViewerGrants[d.Folder] {
			if memberOf[g] {
				add(d.Folder)
			}
		}
		for _, direct := range directViewerGrants[d.Folder] {
			if direct == id {
				add(d.Folder)
			}
		}
	}

	return folders
}
