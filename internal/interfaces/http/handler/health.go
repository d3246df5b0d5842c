package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"secure-agent-api/internal/domain/entity"
	"secure-agent-api/internal/domain/repository"
	"secure-agent-api/internal/infrastructure/persistence/redis"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	checker repository.RelationshipChecker
	redis   *redis.Client
}

// NewHealthHandler 创建健康检查处理器。redis 可为 nil（未启用限流时）。
func NewHealthHandler(checker repository.RelationshipChecker, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{
		checker: checker,
		redis:   redisClient,
	}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status string `json:"status"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms,omitempty"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Ready 就绪检查接口。授权后端不可达时拒绝流量，
// 未就绪的服务宁可不服务也不能给出未经判定的答案。
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]*readinessCheck{
		"authz": {Status: "unknown"},
	}
	ready := true

	// 授权后端（必需）：用一次无副作用的检查探测连通性
	if h == nil || h.checker == nil {
		checks["authz"].Status = "missing"
		checks["authz"].Error = "authz checker not configured"
		ready = false
	} else {
		start := time.Now()
		outcome := h.checker.Check(ctx, entity.UserRef("healthcheck").String(), entity.RelationViewer, entity.DocumentRef("healthcheck"))
		checks["authz"].LatencyMs = time.Since(start).Milliseconds()
		if outcome.Err != nil {
			checks["authz"].Status = "error"
			checks["authz"].Error = outcome.Err.Error()
			ready = false
		} else {
			checks["authz"].Status = "ok"
		}
	}

	// Redis（可选，不影响就绪态）
	if h != nil && h.redis != nil {
		checks["redis"] = &readinessCheck{Status: "unknown"}
		start := time.Now()
		err := h.redis.HealthCheck(ctx)
		checks["redis"].LatencyMs = time.Since(start).Milliseconds()
		if err != nil {
			checks["redis"].Status = "degraded"
			checks["redis"].Error = err.Error()
		} else {
			checks["redis"].Status = "ok"
		}
	}

	resp := readinessResponse{Status: "ok", Checks: checks}
	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}
