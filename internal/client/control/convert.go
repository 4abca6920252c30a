package control

import (
	"github.com/dmitrijs2005/corral/internal/client/coordinator"
	"github.com/dmitrijs2005/corral/internal/client/models"
	pb "github.com/dmitrijs2005/corral/internal/proto"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// objectToProto converts the shareable part of obj; LocalURI and Deleted
// never leave the device.
func objectToProto(obj *models.Object) *pb.Object {
	out := &pb.Object{
		Id:           obj.ID,
		AppId:        obj.AppID,
		Hash:         obj.ContentHash,
		Mime:         obj.MIME,
		Length:       obj.Length,
		RelayKey:     obj.RelayKey,
		CipherScheme: string(obj.CipherScheme),
		Peer: &pb.Peer{
			LanAddr:   obj.Peer.LANAddr,
			Token:     obj.Peer.Token,
			LocalUri:  obj.Peer.LocalURI,
			BtAddr:    obj.Peer.BluetoothAddr,
			BtChannel: uint32(obj.Peer.BluetoothChannel),
		},
	}
	if !obj.CreatedAt.IsZero() {
		out.CreatedAt = timestamppb.New(obj.CreatedAt)
	}
	return out
}

func objectFromProto(in *pb.Object) *models.Object {
	obj := &models.Object{
		ID:           in.GetId(),
		AppID:        in.GetAppId(),
		ContentHash:  in.GetHash(),
		MIME:         in.GetMime(),
		Length:       in.GetLength(),
		RelayKey:     in.GetRelayKey(),
		CipherScheme: models.CipherScheme(in.GetCipherScheme()),
	}
	if p := in.GetPeer(); p != nil {
		obj.Peer = models.Peer{
			LANAddr:          p.GetLanAddr(),
			Token:            p.GetToken(),
			LocalURI:         p.GetLocalUri(),
			BluetoothAddr:    p.GetBtAddr(),
			BluetoothChannel: uint8(p.GetBtChannel()),
		}
	}
	if in.GetCreatedAt() != nil {
		obj.CreatedAt = in.GetCreatedAt().AsTime()
	}
	return obj
}

func eventToProto(e coordinator.Event) *pb.TaskEvent {
	out := &pb.TaskEvent{
		TaskId:    e.TaskID,
		ContentId: e.ContentID,
		ObjectId:  e.ObjectID,
		State:     e.State,
		Channel:   e.Channel,
		Outcome:   e.Outcome,
	}
	if e.Percent != nil {
		out.Percent = int32(*e.Percent)
		out.PercentKnown = true
	}
	return out
}
