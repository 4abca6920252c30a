package fetcher

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/client/relay"
	"github.com/dmitrijs2005/corral/internal/client/ticket"
	"github.com/dmitrijs2005/corral/internal/cryptox"
	"github.com/dmitrijs2005/corral/internal/filex"
)

// TicketSource hands out download tickets; *ticket.Session implements it.
type TicketSource interface {
	DownloadTicket(ctx context.Context, objectKey string) (ticket.Ticket, error)
}

// SessionFactory starts a fresh authority session for one attempt.
type SessionFactory func() (TicketSource, error)

// Relay downloads the encrypted blob and decrypts it with the key carried
// in the object's metadata.
type Relay struct {
	sessions SessionFactory
	store    *relay.Client
}

func NewRelay(sessions SessionFactory, store *relay.Client) *Relay {
	return &Relay{sessions: sessions, store: store}
}

func (r *Relay) Kind() models.Channel { return models.ChannelRelay }

func (r *Relay) Applicable(obj *models.Object) bool {
	return obj.RelayKey != ""
}

func (r *Relay) Attempt(ctx context.Context, obj *models.Object, dst *filex.Partial, report models.ProgressFunc) (int64, error) {
	report(models.Progress{State: models.StatePreparing, Channel: models.ChannelRelay})

	key, err := cryptox.DecodeKey(obj.RelayKey)
	if err != nil {
		return 0, fmt.Errorf("relay key: %w", err)
	}
	session, err := r.sessions()
	if err != nil {
		return 0, fmt.Errorf("authority session: %w", err)
	}
	t, err := session.DownloadTicket(ctx, obj.RelayObjectKey())
	if err != nil {
		return 0, fmt.Errorf("download ticket: %w", err)
	}

	plain := &counter{w: dst}
	dw, err := cryptox.NewDecryptWriter(plain, key, cryptox.Options{ZeroIV: obj.Scheme() == models.SchemeZeroIV})
	if err != nil {
		return 0, err
	}
	if _, err := r.store.Get(ctx, obj.RelayObjectKey(), t, dw, report); err != nil {
		return plain.n, err
	}
	if err := dw.Close(); err != nil {
		return plain.n, fmt.Errorf("decrypt %s: %w", obj.ContentHash, err)
	}
	return plain.n, nil
}

type counter struct {
	w io.Writer
	n int64
}

func (c *counter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
