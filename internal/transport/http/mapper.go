package http

import (
	"github.com/ubet123/OrgFlow-sub000/internal/core"
	"github.com/ubet123/OrgFlow-sub000/internal/proto"
	"github.com/ubet123/OrgFlow-sub000/internal/store"
)

// MessageData is the wire form of a message, re-exported for handler
// response types.
type MessageData = proto.MessageData

func messageData(msg *store.Message) proto.MessageData {
	return proto.MessageData{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		ReceiverID:     msg.ReceiverID,
		Message:        msg.Body,
		CreatedAt:      msg.CreatedAt,
	}
}

func messageDataList(messages []*store.Message) []proto.MessageData {
	out := make([]proto.MessageData, 0, len(messages))
	for _, msg := range messages {
		out = append(out, messageData(msg))
	}
	return out
}

// outboundFromEvent maps a core event to its wire envelope.
func outboundFromEvent(event core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventNewMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeNewMessage,
			Data: messageData(event.Message),
		}
	default:
		users := event.Online
		if users == nil {
			users = []string{}
		}
		return proto.Outbound{
			Type: proto.OutboundTypeOnlineUsers,
			Data: proto.OnlineUsersData{Users: users},
		}
	}
}
