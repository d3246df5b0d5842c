// Package openfga 提供基于 OpenFGA gRPC API 的授权后端适配器
package openfga

import (
	"context"
	"time"

	openfgav1 "github.com/openfga/api/proto/openfga/v1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"secure-agent-api/internal/config"
	"secure-agent-api/internal/domain/repository"
	"secure-agent-api/pkg/logger"
	"secure-agent-api/pkg/metrics"
)

// service 本服务实际使用的 OpenFGA 方法子集，便于测试替换
type service interface {
	Check(ctx context.Context, in *openfgav1.CheckRequest, opts ...grpc.CallOption) (*openfgav1.CheckResponse, error)
	CreateStore(ctx context.Context, in *openfgav1.CreateStoreRequest, opts ...grpc.CallOption) (*openfgav1.CreateStoreResponse, error)
	ListStores(ctx context.Context, in *openfgav1.ListStoresRequest, opts ...grpc.CallOption) (*openfgav1.ListStoresResponse, error)
	WriteAuthorizationModel(ctx context.Context, in *openfgav1.WriteAuthorizationModelRequest, opts ...grpc.CallOption) (*openfgav1.WriteAuthorizationModelResponse, error)
	Write(ctx context.Context, in *openfgav1.WriteRequest, opts ...grpc.CallOption) (*openfgav1.WriteResponse, error)
}

// Client 授权后端客户端。持有 store/model 标识，
// 实现 repository.RelationshipChecker 与 repository.RelationshipWriter。
type Client struct {
	svc          service
	conn         *grpc.ClientConn
	storeID      string
	modelID      string
	storeName    string
	checkTimeout time.Duration
}

// NewClient 创建授权后端客户端并建立 gRPC 连接
func NewClient(ctx context.Context, cfg *config.AuthzConfig) (*Client, error) {
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 3 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	conn, err := grpc.DialContext(dialCtx, cfg.Addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		return nil, err
	}

	checkTimeout := cfg.CheckTimeout
	if checkTimeout <= 0 {
		checkTimeout = 2 * time.Second
	}

	return &Client{
		svc:          openfgav1.NewOpenFGAServiceClient(conn),
		conn:         conn,
		storeID:      cfg.StoreID,
		modelID:      cfg.ModelID,
		storeName:    cfg.StoreName,
		checkTimeout: checkTimeout,
	}, nil
}

// Close 关闭底层连接
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// StoreID 返回当前使用的 store 标识
func (c *Client) StoreID() string { return c.storeID }

// ModelID 返回当前使用的授权模型标识
func (c *Client) ModelID() string { return c.modelID }

// Check 执行一次关系检查。每次调用恰好回答一个 (user, relation, object) 问题；
// 传输失败、超时等记入 Err，由调用方按拒绝处理。
func (c *Client) Check(ctx context.Context, user, relation, object string) repository.CheckOutcome {
	ctx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()
	resp, err := c.svc.Check(ctx, &openfgav1.CheckRequest{
		StoreId:              c.storeID,
		AuthorizationModelId: c.modelID,
		TupleKey: &openfgav1.CheckRequestTupleKey{
			User:     user,
			Relation: relation,
			Object:   object,
		},
	})
	elapsed := time.Since(start).Seconds()

	if err != nil {
		metrics.AuthzChecksTotal.WithLabelValues("check_failed").Inc()
		metrics.AuthzCheckDuration.WithLabelValues("check_failed").Observe(elapsed)
		logger.FromContext(ctx).Warn("authz check failed",
			"object", object,
			"relation", relation,
			"error", err,
		)
		return repository.CheckOutcome{Allowed: false, Err: err}
	}

	outcome := "denied"
	if resp.GetAllowed() {
		outcome = "granted"
	}
	metrics.AuthzChecksTotal.WithLabelValues(outcome).Inc()
	metrics.AuthzCheckDuration.WithLabelValues(outcome).Observe(elapsed)

	return repository.CheckOutcome{Allowed: resp.GetAllowed()}
}
