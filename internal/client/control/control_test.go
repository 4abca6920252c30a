package control

import (
	"context"
	"encoding/json"
	"net"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/dmitrijs2005/corral/internal/auth"
	"github.com/dmitrijs2005/corral/internal/client/coordinator"
	"github.com/dmitrijs2005/corral/internal/client/fetcher"
	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/identity"
	pb "github.com/dmitrijs2005/corral/internal/proto"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const secret = "controlSecret"

// gateFetcher resolves every fetch once release is closed.
type gateFetcher struct {
	release chan struct{}
}

func (g *gateFetcher) Fetch(ctx context.Context, obj *models.Object, report models.ProgressFunc) (fetcher.Result, error) {
	report(models.Transferring(models.ChannelLAN, 1, 2))
	select {
	case <-g.release:
		return fetcher.Result{Path: "/cache/" + obj.ContentHash, Channel: models.ChannelLAN}, nil
	case <-ctx.Done():
		return fetcher.Result{}, common.ErrCancelled
	}
}

type fakeBackend struct {
	coord *coordinator.Coordinator

	mu         sync.Mutex
	objs       map[string]*models.Object
	recipients []identity.Descriptor
}

func (b *fakeBackend) get(id string) (*models.Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	o, ok := b.objs[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return o, nil
}

func (b *fakeBackend) Author(_ context.Context, path, mime string) (*models.Object, error) {
	o := &models.Object{ID: "authored", ContentHash: "ah", MIME: mime, LocalURI: path}
	b.mu.Lock()
	b.objs[o.ID] = o
	b.mu.Unlock()
	return o, nil
}

func (b *fakeBackend) Ingest(_ context.Context, obj *models.Object) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objs[obj.ID] = obj
	return nil
}

func (b *fakeBackend) Start(_ context.Context, id string) (*coordinator.Task, error) {
	o, err := b.get(id)
	if err != nil {
		return nil, err
	}
	return b.coord.StartOrFetch(o)
}

func (b *fakeBackend) Fetch(ctx context.Context, id string) (coordinator.Result, error) {
	t, err := b.Start(ctx, id)
	if err != nil {
		return coordinator.Result{}, err
	}
	return t.Await(ctx)
}

func (b *fakeBackend) Task(_ context.Context, id string) (*coordinator.Task, error) {
	o, err := b.get(id)
	if err != nil {
		return nil, err
	}
	t, ok := b.coord.Lookup(o.ContentHash)
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (b *fakeBackend) Cancel(ctx context.Context, id string) error {
	t, err := b.Task(ctx, id)
	if err != nil {
		return err
	}
	t.Cancel()
	return nil
}

func (b *fakeBackend) Tasks() []*coordinator.Task { return b.coord.Tasks() }

func (b *fakeBackend) Upload(_ context.Context, id string, r []identity.Descriptor) (*models.Object, error) {
	o, err := b.get(id)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.recipients = r
	b.mu.Unlock()
	o.RelayKey = "k"
	return o, nil
}

func (b *fakeBackend) Delete(_ context.Context, id string) error {
	_, err := b.get(id)
	return err
}

type env struct {
	client  *Client
	backend *fakeBackend
	gate    *gateFetcher
	addr    string
}

func start(t *testing.T) *env {
	t.Helper()
	gate := &gateFetcher{release: make(chan struct{})}
	coord := coordinator.New(gate)
	coord.Start()
	t.Cleanup(coord.Close)

	backend := &fakeBackend{coord: coord, objs: map[string]*models.Object{
		"o1": {ID: "o1", ContentHash: "h1", MIME: "image/png"},
	}}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	srv := NewGRPCServer(l.Addr().String(), backend, secret, nil)
	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.Serve(ctx, l)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	client, err := NewClient(l.Addr().String(), secret, "cli", time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return &env{client: client, backend: backend, gate: gate, addr: l.Addr().String()}
}

func ctxTimeout(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestStartListFetch(t *testing.T) {
	e := start(t)
	ctx := ctxTimeout(t)

	task, err := e.client.Start(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "h1", task.GetContentId())
	assert.Equal(t, "o1", task.GetObjectId())

	tasks, err := e.client.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	close(e.gate.release)
	path, channel, err := e.client.Fetch(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "/cache/h1", path)
	assert.Equal(t, "LAN", channel)
}

func TestUnknownObjectIsNotFound(t *testing.T) {
	e := start(t)
	_, err := e.client.Start(ctxTimeout(t), "missing")
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestCancelAndWatch(t *testing.T) {
	e := start(t)
	ctx := ctxTimeout(t)

	_, err := e.client.Start(ctx, "o1")
	require.NoError(t, err)

	var mu sync.Mutex
	var states []string
	watched := make(chan error, 1)
	go func() {
		watched <- e.client.Watch(ctx, "o1", func(ev *pb.TaskEvent) {
			mu.Lock()
			states = append(states, ev.GetState())
			mu.Unlock()
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(states) > 0
	}, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, e.client.Cancel(ctx, "o1"))

	require.NoError(t, <-watched)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "COMPLETE", states[len(states)-1])
}

func TestAuthorIngestUploadDelete(t *testing.T) {
	e := start(t)
	ctx := ctxTimeout(t)

	obj, err := e.client.Author(ctx, "/tmp/a.png", "image/png")
	require.NoError(t, err)
	assert.Equal(t, "authored", obj.ID)
	assert.Equal(t, "ah", obj.ContentHash)

	in := &models.Object{ID: "o2", ContentHash: "h2", MIME: "video/mp4", Length: 1 << 40,
		Peer: models.Peer{LANAddr: "10.0.0.2:8311", Token: "tok"}, CreatedAt: time.Unix(1_700_000_000, 0).UTC()}
	require.NoError(t, e.client.Ingest(ctx, in))
	got, err := e.backend.get("o2")
	require.NoError(t, err)
	assert.Equal(t, in.Length, got.Length)
	assert.Equal(t, in.Peer, got.Peer)
	assert.True(t, in.CreatedAt.Equal(got.CreatedAt))

	rcpt := "email:" + strings.Repeat("ab", 32)
	up, err := e.client.Upload(ctx, "o2", []string{rcpt})
	require.NoError(t, err)
	assert.Equal(t, "k", up.RelayKey)
	require.Len(t, e.backend.recipients, 1)
	assert.Equal(t, rcpt, e.backend.recipients[0].Short())

	_, err = e.client.Upload(ctx, "o2", []string{"nonsense"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	require.NoError(t, e.client.Delete(ctx, "o2"))
	assert.Equal(t, codes.NotFound, status.Code(e.client.Delete(ctx, "nope")))
}

func TestInterceptor_RejectsBadTokens(t *testing.T) {
	s := NewGRPCServer("", nil, secret, nil)
	info := &grpc.UnaryServerInfo{FullMethod: pb.Control_List_FullMethodName}
	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, "missing token", status.Convert(err).Message())

	expired, err := auth.GenerateToken("cli", Scope, []byte(secret), -time.Minute)
	require.NoError(t, err)
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, expired))
	_, err = s.accessTokenInterceptor(ctx, nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	assert.Equal(t, common.ErrTokenExpired.Error(), status.Convert(err).Message())

	wrongScope, err := auth.GenerateToken("cli", "session", []byte(secret), time.Minute)
	require.NoError(t, err)
	ctx = metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, wrongScope))
	_, err = s.accessTokenInterceptor(ctx, nil, info, h)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestInterceptor_PassesSubject(t *testing.T) {
	s := NewGRPCServer("", nil, secret, nil)
	token, err := auth.GenerateToken("cli", Scope, []byte(secret), time.Minute)
	require.NoError(t, err)
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(common.AccessTokenHeaderName, token))

	var subject string
	_, err = s.accessTokenInterceptor(ctx, nil, &grpc.UnaryServerInfo{FullMethod: pb.Control_List_FullMethodName},
		func(ctx context.Context, req interface{}) (interface{}, error) {
			subject, _ = SubjectFromContext(ctx)
			return nil, nil
		})
	require.NoError(t, err)
	assert.Equal(t, "cli", subject)
}

func TestClient_WrongSecretIsRejected(t *testing.T) {
	e := start(t)
	c, err := NewClient(e.addr, "other", "cli", time.Hour)
	require.NoError(t, err)
	defer c.Close()
	_, err = c.List(ctxTimeout(t))
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestHub_StreamsEvents(t *testing.T) {
	bus := evbus.New()
	hub := NewHub(bus, nil)
	require.NoError(t, hub.Start())
	defer hub.Stop()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	pct := 40
	bus.Publish(coordinator.TopicProgress, coordinator.Event{TaskID: "t1", ContentID: "h1", State: "TRANSFERRING", Channel: "RELAY", Percent: &pct})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "h1", got["content_id"])
	assert.Equal(t, "RELAY", got["channel"])
	assert.Equal(t, 40.0, got["percent"])

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 5*time.Millisecond)
}
