package control

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/corral/internal/auth"
	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/common"
	pb "github.com/dmitrijs2005/corral/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Client is the CLI side of the control API. It mints its own access
// tokens from the shared control secret and mints a new one when the
// daemon reports the current token expired.
type Client struct {
	conn     *grpc.ClientConn
	api      pb.ControlClient
	secret   []byte
	subject  string
	validity time.Duration

	mu          sync.Mutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func NewClient(address, secret, subject string, validity time.Duration) (*Client, error) {
	c := &Client{secret: []byte(secret), subject: subject, validity: validity}
	conn, err := grpc.NewClient(address,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithStreamInterceptor(c.streamAccessTokenInterceptor),
	)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.api = pb.NewControlClient(conn)
	return c, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) token(renew bool) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken == "" || renew {
		t, err := auth.GenerateToken(c.subject, Scope, c.secret, c.validity)
		if err != nil {
			return "", err
		}
		c.accessToken = t
	}
	return c.accessToken, nil
}

func expired(err error) bool {
	st, ok := status.FromError(err)
	return ok && st.Code() == codes.Unauthenticated && st.Message() == common.ErrTokenExpired.Error()
}

func (c *Client) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	token, err := c.token(false)
	if err != nil {
		return err
	}
	err = invoker(withAccessToken(ctx, token), method, req, reply, cc, opts...)
	if err == nil || !expired(err) {
		return err
	}

	token, err = c.token(true)
	if err != nil {
		return err
	}
	return invoker(withAccessToken(ctx, token), method, req, reply, cc, opts...)
}

func (c *Client) streamAccessTokenInterceptor(
	ctx context.Context,
	desc *grpc.StreamDesc,
	cc *grpc.ClientConn,
	method string,
	streamer grpc.Streamer,
	opts ...grpc.CallOption,
) (grpc.ClientStream, error) {
	token, err := c.token(false)
	if err != nil {
		return nil, err
	}
	return streamer(withAccessToken(ctx, token), desc, cc, method, opts...)
}

// Start begins fetching an object and returns its task snapshot.
func (c *Client) Start(ctx context.Context, objectID string) (*pb.TaskEvent, error) {
	return c.api.Start(ctx, &pb.ObjectRef{ObjectId: objectID})
}

// Fetch waits for the object's content and returns its local path.
func (c *Client) Fetch(ctx context.Context, objectID string) (path, channel string, err error) {
	resp, err := c.api.Fetch(ctx, &pb.ObjectRef{ObjectId: objectID})
	if err != nil {
		return "", "", err
	}
	return resp.GetPath(), resp.GetChannel(), nil
}

func (c *Client) Cancel(ctx context.Context, objectID string) error {
	_, err := c.api.Cancel(ctx, &pb.ObjectRef{ObjectId: objectID})
	return err
}

// List returns snapshots of the live tasks.
func (c *Client) List(ctx context.Context) ([]*pb.TaskEvent, error) {
	resp, err := c.api.List(ctx, &pb.Empty{})
	if err != nil {
		return nil, err
	}
	return resp.GetTasks(), nil
}

// Watch calls fn for every event of the object's live task.
func (c *Client) Watch(ctx context.Context, objectID string, fn func(*pb.TaskEvent)) error {
	stream, err := c.api.Watch(ctx, &pb.ObjectRef{ObjectId: objectID})
	if err != nil {
		return err
	}
	for {
		ev, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		fn(ev)
	}
}

// Author registers a local file and returns the object metadata to share.
func (c *Client) Author(ctx context.Context, path, mime string) (*models.Object, error) {
	resp, err := c.api.Author(ctx, &pb.AuthorRequest{Path: path, Mime: mime})
	if err != nil {
		return nil, err
	}
	return objectFromProto(resp), nil
}

// Ingest hands the daemon metadata received from a peer.
func (c *Client) Ingest(ctx context.Context, obj *models.Object) error {
	_, err := c.api.Ingest(ctx, objectToProto(obj))
	return err
}

// Upload pushes an authored object to the relay for recipients given as
// short identity descriptors.
func (c *Client) Upload(ctx context.Context, objectID string, recipients []string) (*models.Object, error) {
	resp, err := c.api.Upload(ctx, &pb.UploadRequest{ObjectId: objectID, Recipients: recipients})
	if err != nil {
		return nil, err
	}
	return objectFromProto(resp), nil
}

func (c *Client) Delete(ctx context.Context, objectID string) error {
	_, err := c.api.Delete(ctx, &pb.ObjectRef{ObjectId: objectID})
	return err
}
