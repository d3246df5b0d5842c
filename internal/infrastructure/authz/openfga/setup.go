package openfga

import (
	"context"
	"fmt"
	"strings"

	openfgav1 "github.com/openfga/api/proto/openfga/v1"
	parser "github.com/openfga/language/pkg/go/transformer"

	"secure-agent-api/internal/domain/entity"
	"secure-agent-api/pkg/logger"
)

// modelDSL 关系模式。document 的 viewer 完全经由父文件夹继承：
// 对 document:X#viewer 的检查会沿 parent 折返到 folder 的 viewer，
// 再经 group#member 展开，整条推导链由后端完成。
const modelDSL = `model
  schema 1.1

type user

type group
  relations
    define member: [user]

type folder
  relations
    define viewer: [user, group#member]

type document
  relations
    define parent: [folder]
    define viewer: viewer from parent
`

// EnsureStore 按名称查找或创建 store，并将 storeID 记录在客户端上。
// 重复调用复用已有 store，不产生新副本。
func (c *Client) EnsureStore(ctx context.Context) (string, error) {
	if c.storeID != "" {
		return c.storeID, nil
	}

	listResp, err := c.svc.ListStores(ctx, &openfgav1.ListStoresRequest{})
	if err != nil {
		return "", fmt.Errorf("failed to list stores: %w", err)
	}
	for _, s := range listResp.GetStores() {
		if s.GetName() == c.storeName {
			c.storeID = s.GetId()
			logger.FromContext(ctx).Info("reusing existing store",
				"store_name", c.storeName,
				"store_id", c.storeID,
			)
			return c.storeID, nil
		}
	}

	createResp, err := c.svc.CreateStore(ctx, &openfgav1.CreateStoreRequest{Name: c.storeName})
	if err != nil {
		return "", fmt.Errorf("failed to create store %s: %w", c.storeName, err)
	}
	c.storeID = createResp.GetId()
	logger.FromContext(ctx).Info("created store",
		"store_name", c.storeName,
		"store_id", c.storeID,
	)
	return c.storeID, nil
}

// WriteAuthorizationModel 写入关系模式并记录返回的模型标识。
// 每次写入产生一个新的不可变模型版本，后续检查固定引用该版本。
func (c *Client) WriteAuthorizationModel(ctx context.Context) (string, error) {
	model, err := parser.TransformDSLToProto(modelDSL)
	if err != nil {
		return "", fmt.Errorf("failed to parse authorization model: %w", err)
	}

	resp, err := c.svc.WriteAuthorizationModel(ctx, &openfgav1.WriteAuthorizationModelRequest{
		StoreId:         c.storeID,
		TypeDefinitions: model.GetTypeDefinitions(),
		SchemaVersion:   model.GetSchemaVersion(),
		Conditions:      model.GetConditions(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to write authorization model: %w", err)
	}

	c.modelID = resp.GetAuthorizationModelId()
	return c.modelID, nil
}

// WriteTuples 批量写入关系元组。写入是可加且与顺序无关的；
// 重复写入同一元组会被后端拒绝，这里逐条降级重放并吸收该类错误，
// 使整体操作幂等。
func (c *Client) WriteTuples(ctx context.Context, tuples []entity.RelationTuple) error {
	if len(tuples) == 0 {
		return nil
	}

	keys := make([]*openfgav1.TupleKey, 0, len(tuples))
	for _, t := range tuples {
		keys = append(keys, &openfgav1.TupleKey{
			User:     t.User,
			Relation: t.Relation,
			Object:   t.Object,
		})
	}

	_, err := c.svc.Write(ctx, &openfgav1.WriteRequest{
		StoreId:              c.storeID,
		AuthorizationModelId: c.modelID,
		Writes:               &openfgav1.WriteRequestWrites{TupleKeys: keys},
	})
	if err == nil {
		return nil
	}
	if !isDuplicateWrite(err) {
		return fmt.Errorf("failed to write tuples: %w", err)
	}

	// 批量中混有已存在的元组时整批失败，改为逐条写入
	for _, key := range keys {
		_, err := c.svc.Write(ctx, &openfgav1.WriteRequest{
			StoreId:              c.storeID,
			AuthorizationModelId: c.modelID,
			Writes:               &openfgav1.WriteRequestWrites{TupleKeys: []*openfgav1.TupleKey{key}},
		})
		if err != nil && !isDuplicateWrite(err) {
			return fmt.Errorf("failed to write tuple %s#%s@%s: %w",
				key.GetObject(), key.GetRelation(), key.GetUser(), err)
		}
	}
	return nil
}

// isDuplicateWrite 判断写入错误是否由元组已存在引起
func isDuplicateWrite(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}
