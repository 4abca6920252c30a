package bluetooth

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/corral/internal/logging"
)

// Server answers fetch requests from the registry. Requests carry no
// credentials; only registered blobs are reachable.
type Server struct {
	registry *Registry
	logger   logging.Logger
	wg       sync.WaitGroup
}

func NewServer(registry *Registry, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{registry: registry, logger: logger.With("module", "bluetooth")}
}

// Serve accepts connections until ctx is done or l fails, then waits for
// in-flight exchanges.
func (s *Server) Serve(ctx context.Context, l Listener) error {
	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()

	for {
		conn, err := l.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			s.Handle(ctx, conn)
		}()
	}
}

// Handle serves one exchange on conn.
func (s *Server) Handle(ctx context.Context, conn io.ReadWriter) {
	var req FetchRequest
	if err := readFrame(conn, &req); err != nil {
		s.logger.Debug(ctx, "bad request frame", "error", err)
		return
	}
	if req.Action != actionFetch {
		writeFrame(conn, FetchResponse{Status: StatusError, Message: "unknown action"})
		return
	}

	blob, ok := s.registry.Lookup(req.Hash)
	if !ok {
		writeFrame(conn, FetchResponse{Status: StatusNotFound})
		return
	}

	f, err := os.Open(blob.Path)
	if err != nil {
		s.logger.Warn(ctx, "registered blob unreadable", "hash", req.Hash, "error", err)
		status := StatusError
		if errors.Is(err, os.ErrNotExist) {
			status = StatusNotFound
		}
		writeFrame(conn, FetchResponse{Status: status})
		return
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		writeFrame(conn, FetchResponse{Status: StatusError})
		return
	}

	if err := writeFrame(conn, FetchResponse{Status: StatusOK, Size: fi.Size(), ContentType: blob.ContentType}); err != nil {
		return
	}
	n, err := io.Copy(conn, f)
	if err != nil {
		s.logger.Debug(ctx, "blob stream aborted", "hash", req.Hash, "sent", n, "error", err)
		return
	}
	s.logger.Info(ctx, "blob served", "hash", req.Hash, "bytes", n)
}
