package botapp

import (
	"context"
	"time"

	"github.com/Abinayanafaiq/BotDating/internal/services/matchmaking"
)

// notifier turns engine and payment events into chat messages. Users talk
// to the bot in private chats, so the user id is the chat id.
type notifier struct {
	messenger messenger
}

func (n *notifier) Notify(ctx context.Context, userID int64, event matchmaking.Event) error {
	if n.messenger == nil {
		return nil
	}

	switch event.Kind {
	case matchmaking.EventMatched:
		return n.messenger.SendText(ctx, userID, matchedText)
	case matchmaking.EventWaiting:
		return n.messenger.SendText(ctx, userID, waitingText(event.Filters))
	case matchmaking.EventPartnerDisconnected:
		return n.messenger.SendText(ctx, userID, partnerLeftText)
	case matchmaking.EventCancelled:
		if !event.WasPaired {
			return n.messenger.SendText(ctx, userID, searchCancelledText)
		}
		if err := n.messenger.SendText(ctx, userID, leftSessionText); err != nil {
			return err
		}
		return n.messenger.SendKeyboard(ctx, userID, afterStopText, afterStopKeyboard())
	default:
		return nil
	}
}

func (n *notifier) NotifyActivated(ctx context.Context, userID int64, expiresAt *time.Time) error {
	if n.messenger == nil {
		return nil
	}
	return n.messenger.SendText(ctx, userID, activatedText(expiresAt))
}
