package wa

import (
	"context"

	"go.mau.fi/whatsmeow/types"
)

// lidResolver maps a LID to the phone-number JID whatsmeow has seen for it.
type lidResolver func(ctx context.Context, lid types.JID) (types.JID, error)

// senderPhone returns the sender's phone number in digits. Chats addressed
// by LID carry the phone JID in SenderAlt, or only in the LID store.
// Returns "" when no phone number is known.
func senderPhone(ctx context.Context, src types.MessageSource, resolve lidResolver) string {
	if src.Sender.Server == types.DefaultUserServer {
		return src.Sender.User
	}
	if src.SenderAlt.Server == types.DefaultUserServer {
		return src.SenderAlt.User
	}
	if src.Sender.Server == types.HiddenUserServer && resolve != nil {
		pn, err := resolve(ctx, src.Sender.ToNonAD())
		if err == nil && pn.Server == types.DefaultUserServer {
			return pn.User
		}
	}
	return ""
}
