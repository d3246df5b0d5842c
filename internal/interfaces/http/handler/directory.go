package handler

import (
	"github.com/gin-gonic/gin"

	"secure-agent-api/internal/corpus"
	"secure-agent-api/internal/domain/entity"
	"secure-agent-api/internal/interfaces/http/dto"
)

// DirectoryHandler 目录处理器，提供用户与文档的展示接口。
// 这些接口只展示声明的语料数据，权威授权判定始终走查询流水线。
type DirectoryHandler struct{}

// NewDirectoryHandler 创建目录处理器
func NewDirectoryHandler() *DirectoryHandler {
	return &DirectoryHandler{}
}

// ListUsers 列出演示用户
// @Summary 用户目录
// @Tags Directory
// @Produce json
// @Success 200 {object} dto.Response[[]dto.UserInfo]
// @Router /v1/users [get]
func (h *DirectoryHandler) ListUsers(c *gin.Context) {
	users := make([]dto.UserInfo, len(corpus.Users))
	for i, u := range corpus.Users {
		users[i] = dto.NewUserInfo(u)
	}
	dto.Success(c, users)
}

// ListDocuments 列出文档目录（不含正文）
// @Summary 文档目录
// @Tags Directory
// @Produce json
// @Success 200 {object} dto.Response[[]dto.DocumentInfo]
// @Router /v1/documents [get]
func (h *DirectoryHandler) ListDocuments(c *gin.Context) {
	docs := make([]dto.DocumentInfo, len(corpus.Documents))
	for i, d := range corpus.Documents {
		docs[i] = dto.NewDocumentInfo(d)
	}
	dto.Success(c, docs)
}

// GetPermissions 展示用户的组归属、可读文件夹与据此解析出的文档
// @Summary 用户权限视图
// @Tags Directory
// @Produce json
// @Param actor_id path string true "用户标识 (user:<name>)"
// @Success 200 {object} dto.Response[dto.PermissionsResponse]
// @Router /v1/permissions/{actor_id} [get]
func (h *DirectoryHandler) GetPermissions(c *gin.Context) {
	actor := entity.ActorID(c.Param("actor_id"))
	if !actor.Valid() {
		dto.BadRequest(c, "actor_id must look like user:<name>")
		return
	}
	user, ok := corpus.UserByID(actor)
	if !ok {
		dto.NotFound(c, "unknown user")
		return
	}

	folders := corpus.AccessibleFolders(actor)
	if folders == nil {
		folders = []string{}
	}

	readable := make(map[string]bool, len(folders))
	for _, f := range folders {
		readable[f] = true
	}
	docs := []dto.AccessibleDocument{}
	for _, d := range corpus.Documents {
		if readable[d.Folder] {
			docs = append(docs, dto.AccessibleDocument{
				ID:     d.ID,
				Title:  d.Title,
				Folder: d.Folder,
			})
		}
	}

	dto.Success(c, dto.PermissionsResponse{
		ActorID:             actor.String(),
		Groups:              user.Groups,
		Folders:             folders,
		AccessibleDocuments: docs,
	})
}
