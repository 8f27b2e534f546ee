package app

import (
	"context"
	"fmt"
	"log/slog"
)

// sendStats sends the usage summary to the requesting admin.
func (a *App) sendStats(ctx context.Context, cb Callback) {
	st, err := a.store.Stats()
	if err != nil {
		slog.Error("load stats failed", "err", err)
		a.answer(ctx, cb, "Could not load statistics.", true)
		return
	}
	text := fmt.Sprintf(
		"📊 Bot statistics:\n\n"+
			"👤 Total users: %d\n"+
			"✅ Subscribed: %d\n"+
			"📢 Not subscribed: %d\n\n"+
			"✨ Total motivations: %d\n"+
			"✅ Approved: %d\n"+
			"⏳ Pending: %d\n"+
			"❌ Rejected: %d\n\n"+
			"👍 Total likes: %d\n"+
			"🔄 Total shares: %d",
		st.TotalUsers, st.SubscribedUsers, st.TotalUsers-st.SubscribedUsers,
		st.TotalItems, st.ApprovedItems, st.PendingItems, st.RejectedItems,
		st.TotalLikes, st.TotalShares,
	)
	a.answer(ctx, cb, "", false)
	if err := a.transport.SendText(ctx, chatIDFor(cb.UserID), text, nil); err != nil {
		slog.Error("send stats failed", "admin", cb.UserID, "err", err)
	}
}
