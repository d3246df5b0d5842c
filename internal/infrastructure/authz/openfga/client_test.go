package openfga

import (
	"context"
	"errors"
	"testing"
	"time"

	openfgav1 "github.com/openfga/api/proto/openfga/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"secure-agent-api/internal/domain/entity"
)

// fakeService 进程内替身，按请求内容返回预设结果
type fakeService struct {
	allowed    map[string]bool
	checkErr   error
	stores     []*openfgav1.Store
	created    []string
	writeCalls []*openfgav1.WriteRequest
	writeErrs  []error
	modelID    string
	modelReq   *openfgav1.WriteAuthorizationModelRequest
}

func (f *fakeService) Check(_ context.Context, in *openfgav1.CheckRequest, _ ...grpc.CallOption) (*openfgav1.CheckResponse, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	key := in.GetTupleKey().GetObject() + "#" + in.GetTupleKey().GetRelation() + "@" + in.GetTupleKey().GetUser()
	return &openfgav1.CheckResponse{Allowed: f.allowed[key]}, nil
}

func (f *fakeService) CreateStore(_ context.Context, in *openfgav1.CreateStoreRequest, _ ...grpc.CallOption) (*openfgav1.CreateStoreResponse, error) {
	f.created = append(f.created, in.GetName())
	return &openfgav1.CreateStoreResponse{Id: "01NEWSTORE", Name: in.GetName()}, nil
}

func (f *fakeService) ListStores(_ context.Context, _ *openfgav1.ListStoresRequest, _ ...grpc.CallOption) (*openfgav1.ListStoresResponse, error) {
	return &openfgav1.ListStoresResponse{Stores: f.stores}, nil
}

func (f *fakeService) WriteAuthorizationModel(_ context.Context, in *openfgav1.WriteAuthorizationModelRequest, _ ...grpc.CallOption) (*openfgav1.WriteAuthorizationModelResponse, error) {
	f.modelReq = in
	return &openfgav1.WriteAuthorizationModelResponse{AuthorizationModelId: f.modelID}, nil
}

func (f *fakeService) Write(_ context.Context, in *openfgav1.WriteRequest, _ ...grpc.CallOption) (*openfgav1.WriteResponse, error) {
	f.writeCalls = append(f.writeCalls, in)
	if len(f.writeErrs) > 0 {
		err := f.writeErrs[0]
		f.writeErrs = f.writeErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &openfgav1.WriteResponse{}, nil
}

func newTestClient(svc service) *Client {
	return &Client{
		svc:          svc,
		storeName:    "AgentAuthDemo",
		checkTimeout: time.Second,
	}
}

func TestCheckOutcomeMapping(t *testing.T) {
	svc := &fakeService{allowed: map[string]bool{
		"document:1#viewer@user:alan": true,
	}}
	c := newTestClient(svc)

	granted := c.Check(context.Background(), "user:alan", entity.RelationViewer, "document:1")
	assert.True(t, granted.Allowed)
	assert.NoError(t, granted.Err)

	denied := c.Check(context.Background(), "user:alan", entity.RelationViewer, "document:7")
	assert.False(t, denied.Allowed)
	assert.NoError(t, denied.Err)
}

func TestCheckTransportFailureIsNotAllowed(t *testing.T) {
	svc := &fakeService{checkErr: errors.New("connection refused")}
	c := newTestClient(svc)

	outcome := c.Check(context.Background(), "user:alan", entity.RelationViewer, "document:1")
	assert.False(t, outcome.Allowed)
	assert.Error(t, outcome.Err)
}

func TestEnsureStoreReusesByName(t *testing.T) {
	svc := &fakeService{stores: []*openfgav1.Store{
		{Id: "01OTHER", Name: "SomethingElse"},
		{Id: "01EXISTING", Name: "AgentAuthDemo"},
	}}
	c := newTestClient(svc)

	id, err := c.EnsureStore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "01EXISTING", id)
	assert.Empty(t, svc.created, "should not create when a store with the name exists")

	// 第二次调用直接返回缓存的 storeID
	id2, err := c.EnsureStore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, id2)
}

func TestEnsureStoreCreatesWhenMissing(t *testing.T) {
	svc := &fakeService{}
	c := newTestClient(svc)

	id, err := c.EnsureStore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "01NEWSTORE", id)
	assert.Equal(t, []string{"AgentAuthDemo"}, svc.created)
}

func TestWriteAuthorizationModel(t *testing.T) {
	svc := &fakeService{modelID: "01MODEL"}
	c := newTestClient(svc)
	c.storeID = "01STORE"

	modelID, err := c.WriteAuthorizationModel(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "01MODEL", modelID)
	assert.Equal(t, "01MODEL", c.ModelID())

	require.NotNil(t, svc.modelReq)
	assert.Equal(t, "01STORE", svc.modelReq.GetStoreId())
	assert.Equal(t, "1.1", svc.modelReq.GetSchemaVersion())

	// 四个类型：user / group / folder / document
	assert.Len(t, svc.modelReq.GetTypeDefinitions(), 4)
}

func TestWriteTuplesRetriesIndividuallyOnDuplicate(t *testing.T) {
	dup := errors.New("cannot write a tuple which already exists")
	svc := &fakeService{writeErrs: []error{dup, dup, nil}}
	c := newTestClient(svc)
	c.storeID = "01STORE"

	tuples := []entity.RelationTuple{
		entity.MemberTuple(entity.UserRef("alan"), "engineering"),
		entity.ParentTuple("engineering", "1"),
	}
	err := c.WriteTuples(context.Background(), tuples)
	require.NoError(t, err)

	// 一次批量 + 两次逐条
	assert.Len(t, svc.writeCalls, 3)
	assert.Len(t, svc.writeCalls[0].GetWrites().GetTupleKeys(), 2)
	assert.Len(t, svc.writeCalls[1].GetWrites().GetTupleKeys(), 1)
}

func TestWriteTuplesPropagatesOtherErrors(t *testing.T) {
	svc := &fakeService{writeErrs: []error{errors.New("store not found")}}
	c := newTestClient(svc)
	c.storeID = "01STORE"

	err := c.WriteTuples(context.Background(), []entity.RelationTuple{
		entity.MemberTuple(entity.UserRef("alan"), "engineering"),
	})
	assert.Error(t, err)
}
