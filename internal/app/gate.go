package app

import (
	"context"
	"log/slog"
)

// IsAuthorized reports whether the user may use gated features. Admins
// always pass. Everyone else must hold a live membership in both the
// channel and the group; both flags are re-checked against the
// platform and persisted on every call. Any lookup failure closes the
// gate rather than surfacing an error.
func (a *App) IsAuthorized(ctx context.Context, userID int64) bool {
	if a.admins[userID] {
		return true
	}
	channelStatus, err := a.transport.MemberStatus(ctx, a.channelID, userID)
	if err != nil {
		slog.Error("channel membership check failed", "user", userID, "err", err)
		return false
	}
	groupStatus, err := a.transport.MemberStatus(ctx, a.groupID, userID)
	if err != nil {
		slog.Error("group membership check failed", "user", userID, "err", err)
		return false
	}
	inChannel := channelStatus.Active()
	inGroup := groupStatus.Active()
	if err := a.store.SetMembership(userID, inChannel, inGroup); err != nil {
		slog.Error("persist membership flags failed", "user", userID, "err", err)
	}
	return inChannel && inGroup
}
