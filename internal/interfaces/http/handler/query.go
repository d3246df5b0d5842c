// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"secure-agent-api/internal/application/query"
	"secure-agent-api/internal/domain/entity"
	"secure-agent-api/internal/interfaces/http/dto"
	"secure-agent-api/pkg/logger"
)

// QueryHandler 查询处理器
type QueryHandler struct {
	pipeline *query.Pipeline
}

// NewQueryHandler 创建查询处理器
func NewQueryHandler(pipeline *query.Pipeline) *QueryHandler {
	return &QueryHandler{pipeline: pipeline}
}

// Query 执行一次授权过滤的问答
// @Summary 授权过滤问答
// @Description 检索候选文档，逐文档授权判定后仅以允许的文档生成答案
// @Tags Query
// @Accept json
// @Produce json
// @Param request body dto.QueryRequest true "查询请求"
// @Success 200 {object} dto.Response[dto.QueryResponse]
// @Router /v1/query [post]
func (h *QueryHandler) Query(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "actor_id and question are required")
		return
	}

	actor := entity.ActorID(req.ActorID)
	if !actor.Valid() {
		dto.BadRequest(c, "actor_id must look like user:<name>")
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ActorIDKey, actor.String())
	result, err := h.pipeline.Process(ctx, query.Input{
		Actor:    actor,
		Question: req.Question,
	})
	if err != nil {
		logger.Error(ctx, "query failed", err, "actor", actor.String())
		dto.AppError(c, err)
		return
	}

	dto.Success(c, dto.NewQueryResponse(result))
}
