package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"motivbot/internal/session"
	"motivbot/pkg/domain"
)

// handleBroadcastBody captures the admin's message verbatim and fans
// it out to every active user. The session is cleared regardless of
// the outcome.
func (a *App) handleBroadcastBody(ctx context.Context, msg Message, _ session.State) {
	defer a.sessions.Clear(msg.UserID)
	recipients, err := a.store.ListRecipientIDs()
	if err != nil {
		slog.Error("load broadcast recipients failed", "err", err)
		a.reply(ctx, msg, "Could not load the recipient list. Please try again later.")
		return
	}
	a.reply(ctx, msg, fmt.Sprintf("Sending the message to %d users...", len(recipients)))
	res := a.Broadcast(ctx, "admin", recipients, msg.Payload, nil)
	a.reply(ctx, msg, fmt.Sprintf("Broadcast finished: %d delivered, %d failed.", res.Sent, res.Failed))
}

// Broadcast delivers one payload to each recipient in order. Failures
// are isolated per recipient; a permanently unreachable recipient is
// deactivated so future fan-outs skip them. A short pause between
// sends keeps the outbound rate under the platform limit.
func (a *App) Broadcast(ctx context.Context, kind string, recipients []int64, p domain.Payload, kb domain.Keyboard) domain.BroadcastResult {
	var res domain.BroadcastResult
	for i, id := range recipients {
		if i > 0 {
			a.pause(ctx)
		}
		if err := a.transport.SendPayload(ctx, chatIDFor(id), p, kb); err != nil {
			res.Failed++
			if errors.Is(err, ErrRecipientUnreachable) {
				if derr := a.store.DeactivateUser(id); derr != nil {
					slog.Error("deactivate unreachable recipient failed", "user", id, "err", derr)
				} else {
					slog.Warn("recipient unreachable, deactivated", "user", id)
				}
			} else {
				slog.Error("broadcast send failed", "user", id, "err", err)
			}
			continue
		}
		res.Sent++
	}
	if err := a.store.LogBroadcast(kind, p, res); err != nil {
		slog.Error("log broadcast failed", "kind", kind, "err", err)
	}
	slog.Info("broadcast finished", "kind", kind, "sent", res.Sent, "failed", res.Failed)
	return res
}

func (a *App) pause(ctx context.Context) {
	if a.sendInterval <= 0 {
		return
	}
	timer := time.NewTimer(a.sendInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
