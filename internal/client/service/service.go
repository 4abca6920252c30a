// Package service is the device's application layer. It ties the object
// store to the download coordinator, the origin server and the uploader;
// the control API and the CLI talk to it.
package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/corral/internal/client/coordinator"
	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/client/repositories/objects"
	"github.com/dmitrijs2005/corral/internal/common"
	"github.com/dmitrijs2005/corral/internal/identity"
	"github.com/dmitrijs2005/corral/internal/logging"
	"github.com/google/uuid"
)

// Announcer makes authored objects reachable by peers;
// *origin.Server implements it.
type Announcer interface {
	Announce(ctx context.Context, obj *models.Object) (models.Peer, error)
	Withdraw(obj *models.Object)
}

// Uploader pushes authored objects to the relay; *uploader.Uploader
// implements it.
type Uploader interface {
	Upload(ctx context.Context, obj *models.Object, recipients []identity.Descriptor, report models.ProgressFunc) error
}

var ErrInvalidObject = errors.New("invalid object")

type Service struct {
	appID    string
	objects  objects.Repository
	coord    *coordinator.Coordinator
	origin   Announcer
	uploader Uploader
	logger   logging.Logger
	now      func() time.Time
}

func New(appID string, repo objects.Repository, coord *coordinator.Coordinator, origin Announcer, up Uploader, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{
		appID:    appID,
		objects:  repo,
		coord:    coord,
		origin:   origin,
		uploader: up,
		logger:   logger.With("module", "service"),
		now:      time.Now,
	}
}

// Author registers a local file as content created on this device and
// announces it to peers. The returned object is the metadata to share.
func (s *Service) Author(ctx context.Context, path, mime string) (*models.Object, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", abs, err)
	}
	defer f.Close()

	hash, length, err := models.ContentHashOf(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}

	obj := &models.Object{
		ID:          uuid.NewString(),
		AppID:       s.appID,
		ContentHash: hash,
		MIME:        mime,
		Length:      length,
		LocalURI:    abs,
		CreatedAt:   s.now(),
	}
	if obj.MIME == "" {
		obj.MIME = "application/octet-stream"
	}

	if s.origin != nil {
		peer, err := s.origin.Announce(ctx, obj)
		if err != nil {
			return nil, err
		}
		obj.Peer = peer
	}
	if err := s.objects.Upsert(ctx, obj); err != nil {
		return nil, fmt.Errorf("save object: %w", err)
	}
	s.logger.Info(ctx, "object authored", "object_id", obj.ID, "content_id", obj.ContentHash, "bytes", obj.Length)
	return obj, nil
}

// Ingest stores metadata of an object received from a peer. Local state of
// an already known object survives: an echo of an object authored here keeps
// its original file, and a deleted object stays deleted.
func (s *Service) Ingest(ctx context.Context, obj *models.Object) error {
	if obj.ID == "" || obj.ContentHash == "" {
		return fmt.Errorf("%w: id and hash are required", ErrInvalidObject)
	}
	prev, err := s.objects.GetByID(ctx, obj.ID)
	switch {
	case err == nil:
		obj.LocalURI = prev.LocalURI
		obj.Deleted = prev.Deleted
		obj.CreatedAt = prev.CreatedAt
		if obj.RelayKey == "" {
			obj.RelayKey, obj.CipherScheme = prev.RelayKey, prev.CipherScheme
		}
	case errors.Is(err, common.ErrorNotFound):
		obj.LocalURI = ""
		obj.Deleted = false
	default:
		return err
	}
	if obj.AppID == "" {
		obj.AppID = s.appID
	}
	if obj.CreatedAt.IsZero() {
		obj.CreatedAt = s.now()
	}
	return s.objects.Upsert(ctx, obj)
}

func (s *Service) Object(ctx context.Context, id string) (*models.Object, error) {
	return s.objects.GetByID(ctx, id)
}

// Start returns the live fetch task for the object's content, creating one
// if needed.
func (s *Service) Start(ctx context.Context, objectID string) (*coordinator.Task, error) {
	obj, err := s.objects.GetByID(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if obj.Deleted {
		return nil, fmt.Errorf("object %s: %w", objectID, common.ErrGone)
	}
	return s.coord.StartOrFetch(obj)
}

// Fetch starts the object's task and waits for it.
func (s *Service) Fetch(ctx context.Context, objectID string) (coordinator.Result, error) {
	t, err := s.Start(ctx, objectID)
	if err != nil {
		return coordinator.Result{}, err
	}
	return t.Await(ctx)
}

// Task returns the live task of the object, if any.
func (s *Service) Task(ctx context.Context, objectID string) (*coordinator.Task, error) {
	obj, err := s.objects.GetByID(ctx, objectID)
	if err != nil {
		return nil, err
	}
	t, ok := s.coord.Lookup(obj.ContentHash)
	if !ok {
		return nil, fmt.Errorf("no task for %s: %w", objectID, common.ErrorNotFound)
	}
	return t, nil
}

func (s *Service) Cancel(ctx context.Context, objectID string) error {
	t, err := s.Task(ctx, objectID)
	if err != nil {
		return err
	}
	t.Cancel()
	return nil
}

func (s *Service) Tasks() []*coordinator.Task {
	return s.coord.Tasks()
}

// Upload pushes an authored object to the relay for recipients.
func (s *Service) Upload(ctx context.Context, objectID string, recipients []identity.Descriptor) (*models.Object, error) {
	if s.uploader == nil {
		return nil, errors.New("relay upload is not configured")
	}
	obj, err := s.objects.GetByID(ctx, objectID)
	if err != nil {
		return nil, err
	}
	if err := s.uploader.Upload(ctx, obj, recipients, nil); err != nil {
		return nil, err
	}
	return obj, nil
}

// Delete marks an object deleted; the origin stops serving it.
func (s *Service) Delete(ctx context.Context, objectID string) error {
	obj, err := s.objects.GetByID(ctx, objectID)
	if err != nil {
		return err
	}
	if err := s.objects.MarkDeleted(ctx, objectID); err != nil {
		return err
	}
	if s.origin != nil {
		s.origin.Withdraw(obj)
	}
	return nil
}
