package app

import (
	"context"
	"log/slog"
	"time"

	"motivbot/pkg/domain"
)

// RunDailyLoop fires the daily delivery at the configured time of day
// until the context is cancelled.
func (a *App) RunDailyLoop(ctx context.Context) error {
	for {
		next := nextRunAfter(time.Now().In(a.location), a.dailyHour, a.dailyMinute)
		slog.Info("daily delivery scheduled", "at", next)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			a.RunDailyDelivery(ctx)
		}
	}
}

// RunDailyDelivery picks one random approved item and fans it out to
// every opted-in, subscribed, reachable user. With no approved items
// or no eligible recipients it logs and returns without side effects.
func (a *App) RunDailyDelivery(ctx context.Context) domain.BroadcastResult {
	item, ok, err := a.store.RandomApprovedItem()
	if err != nil {
		slog.Error("daily delivery: pick item failed", "err", err)
		return domain.BroadcastResult{}
	}
	if !ok {
		slog.Warn("daily delivery: no approved motivations")
		return domain.BroadcastResult{}
	}
	recipients, err := a.store.ListDailyRecipientIDs()
	if err != nil {
		slog.Error("daily delivery: load recipients failed", "err", err)
		return domain.BroadcastResult{}
	}
	if len(recipients) == 0 {
		slog.Warn("daily delivery: no eligible recipients")
		return domain.BroadcastResult{}
	}
	payload := domain.Payload{
		Kind: domain.PayloadText,
		Text: "🌞 Motivation of the day:\n\n" + item.Text,
	}
	res := a.Broadcast(ctx, "daily", recipients, payload, likeShareKeyboard(item))
	slog.Info("daily delivery finished", "item", item.ID, "sent", res.Sent, "failed", res.Failed)
	return res
}

// nextRunAfter returns the next hh:mm occurrence strictly after now.
func nextRunAfter(now time.Time, hour, minute int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
