package fetcher

import (
	"context"

	"github.com/dmitrijs2005/corral/internal/client/bluetooth"
	"github.com/dmitrijs2005/corral/internal/client/models"
	"github.com/dmitrijs2005/corral/internal/filex"
)

// Bluetooth pulls the blob the author registered under the content hash.
// It is skipped when the host has no usable adapter.
type Bluetooth struct {
	transport bluetooth.Transport
}

func NewBluetooth(t bluetooth.Transport) *Bluetooth {
	return &Bluetooth{transport: t}
}

func (b *Bluetooth) Kind() models.Channel { return models.ChannelBluetooth }

func (b *Bluetooth) Applicable(obj *models.Object) bool {
	return b.transport != nil && b.transport.Available() &&
		obj.Peer.BluetoothAddr != "" && obj.Peer.BluetoothChannel != 0
}

func (b *Bluetooth) Attempt(ctx context.Context, obj *models.Object, dst *filex.Partial, report models.ProgressFunc) (int64, error) {
	report(models.Progress{State: models.StatePreparing, Channel: models.ChannelBluetooth})
	return bluetooth.Fetch(ctx, b.transport, obj.Peer.BluetoothAddr, obj.Peer.BluetoothChannel, obj.ContentHash, dst,
		func(done, total int64) {
			report(models.Transferring(models.ChannelBluetooth, done, total))
		})
}
