package dto

import (
	"secure-agent-api/internal/application/query"
	"secure-agent-api/internal/corpus"
	"secure-agent-api/internal/domain/entity"
)

// QueryRequest 查询请求
type QueryRequest struct {
	ActorID  string `json:"actor_id" binding:"required"`
	Question string `json:"question" binding:"required"`
}

// DocumentDecision 单个候选文档的判定结果
type DocumentDecision struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Allowed  bool    `json:"allowed"`
	Reason   string  `json:"reason"`
	Score    float64 `json:"score"`
	Excerpt  string  `json:"excerpt,omitempty"`
}

// QueryResponse 查询响应。documents 覆盖全部候选（含被拒绝的），
// 顺序与检索结果一致。
type QueryResponse struct {
	Answer       string             `json:"answer"`
	Documents    []DocumentDecision `json:"documents"`
	AllowedCount int                `json:"allowed_count"`
	TotalCount   int                `json:"total_count"`
}

// NewQueryResponse 从流水线结果构建响应
func NewQueryResponse(result *query.Result) QueryResponse {
	docs := make([]DocumentDecision, len(result.Documents))
	for i, d := range result.Documents {
		title := d.DocumentID
		category := ""
		if doc, ok := corpus.DocumentByID(d.DocumentID); ok {
			title = doc.Title
			category = doc.Category
		}
		docs[i] = DocumentDecision{
			ID:       d.DocumentID,
			Title:    title,
			Category: category,
			Allowed:  d.Allowed,
			Reason:   string(d.Reason),
			Score:    d.Score,
			Excerpt:  d.Excerpt,
		}
	}
	return QueryResponse{
		Answer:       result.Answer,
		Documents:    docs,
		AllowedCount: result.AllowedCount,
		TotalCount:   result.TotalCount,
	}
}

// UserInfo 用户目录条目
type UserInfo struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Role   string   `json:"role"`
	Groups []string `json:"groups"`
}

// DocumentInfo 文档目录条目（不含正文）
type DocumentInfo struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category"`
	Language string `json:"language"`
	Folder   string `json:"folder"`
}

// AccessibleDocument 权限视图中的可读文档条目
type AccessibleDocument struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Folder string `json:"folder"`
}

// PermissionsResponse 用户可读权限的声明视图：
// 组归属、可读文件夹及据此解析出的文档列表
type PermissionsResponse struct {
	ActorID             string               `json:"actor_id"`
	Groups              []string             `json:"groups"`
	Folders             []string             `json:"folders"`
	AccessibleDocuments []AccessibleDocument `json:"accessible_documents"`
}

// NewUserInfo 从语料用户构建目录条目
func NewUserInfo(u corpus.User) UserInfo {
	return UserInfo{
		ID:     u.ID.String(),
		Name:   u.Name,
		Role:   u.Role,
		Groups: u.Groups,
	}
}

// NewDocumentInfo 从文档构建目录条目
func NewDocumentInfo(d entity.Document) DocumentInfo {
	return DocumentInfo{
		ID:       d.ID,
		Title:    d.Title,
		Category: d.Category,
		Language: d.Language,
		Folder:   d.Folder,
	}
}
