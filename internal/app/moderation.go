package app

import (
	"context"
	"fmt"
	"log/slog"

	"motivbot/internal/session"
	"motivbot/pkg/domain"
)

// handleSubmission turns free text into a pending item. The session is
// kept on a store failure so the user can retry the same flow.
func (a *App) handleSubmission(ctx context.Context, msg Message, _ session.State) {
	if _, err := a.Submit(ctx, msg.UserID, msg.DisplayName, msg.Text); err != nil {
		slog.Error("submission failed", "user", msg.UserID, "err", err)
		a.reply(ctx, msg, "Could not save your motivation. Please try again.")
		return
	}
	a.sessions.Clear(msg.UserID)
	a.reply(ctx, msg, "Thank you! Your motivation was sent for review.")
}

// Submit inserts a pending item and notifies reviewers. Notification
// failures never roll back the submission.
func (a *App) Submit(ctx context.Context, userID int64, displayName, text string) (int64, error) {
	itemID, err := a.store.CreateItem(text, userID)
	if err != nil {
		return 0, fmt.Errorf("save submission: %w", err)
	}
	a.notifyReviewers(ctx, itemID, text, userID, displayName)
	return itemID, nil
}

// notifyReviewers sends the review card to the moderation chat when
// configured, falling back to each admin individually. Every failure
// is logged and swallowed.
func (a *App) notifyReviewers(ctx context.Context, itemID int64, text string, userID int64, displayName string) {
	note := fmt.Sprintf("New motivation #%d:\n\n%s\n\nFrom: %s (ID: %d)", itemID, text, displayName, userID)
	kb := reviewKeyboard(itemID)
	if a.moderationChatID != "" {
		err := a.transport.SendText(ctx, a.moderationChatID, note, kb)
		if err == nil {
			return
		}
		slog.Error("notify moderation chat failed", "item", itemID, "err", err)
	}
	for _, adminID := range a.adminIDs {
		if err := a.transport.SendText(ctx, chatIDFor(adminID), note, kb); err != nil {
			slog.Error("notify admin failed", "item", itemID, "admin", adminID, "err", err)
		}
	}
}

// approve marks the item approved, notifies the submitter, republishes
// to the channel, and swaps the reviewer controls to edit/delete. The
// three notifications are independently best-effort.
func (a *App) approve(ctx context.Context, cb Callback) {
	itemID := cb.Action.ItemID
	if err := a.store.SetItemStatus(itemID, domain.StatusApproved); err != nil {
		slog.Error("approve failed", "item", itemID, "err", err)
		a.answer(ctx, cb, "Could not approve the motivation.", true)
		return
	}
	item, ok, err := a.store.GetItem(itemID)
	if err != nil || !ok {
		slog.Error("load approved item failed", "item", itemID, "err", err)
		a.answer(ctx, cb, "Could not load the motivation.", true)
		return
	}
	if err := a.transport.SendText(ctx, chatIDFor(item.SubmitterID),
		"Congratulations! Your motivation was approved:\n\n"+item.Text, nil); err != nil {
		slog.Error("notify submitter failed", "item", itemID, "user", item.SubmitterID, "err", err)
	}
	if err := a.transport.SendText(ctx, a.channelID, "✨ "+item.Text, likeShareKeyboard(item)); err != nil {
		slog.Error("republish to channel failed", "item", itemID, "err", err)
	}
	reviewed := fmt.Sprintf("✅ APPROVED: motivation #%d:\n\n%s\n\nReviewed by: %s", itemID, item.Text, cb.DisplayName)
	if err := a.transport.EditText(ctx, cb.ChatID, cb.MessageID, reviewed, editDeleteKeyboard(itemID)); err != nil {
		slog.Error("update reviewer card failed", "item", itemID, "err", err)
	}
	a.answer(ctx, cb, "Approved", false)
}

// reject marks the item rejected and removes the reviewer controls.
// Rejection is terminal; a fresh submission is the way back in.
func (a *App) reject(ctx context.Context, cb Callback) {
	itemID := cb.Action.ItemID
	if err := a.store.SetItemStatus(itemID, domain.StatusRejected); err != nil {
		slog.Error("reject failed", "item", itemID, "err", err)
		a.answer(ctx, cb, "Could not reject the motivation.", true)
		return
	}
	item, ok, err := a.store.GetItem(itemID)
	if err != nil || !ok {
		slog.Error("load rejected item failed", "item", itemID, "err", err)
		a.answer(ctx, cb, "Could not load the motivation.", true)
		return
	}
	if err := a.transport.SendText(ctx, chatIDFor(item.SubmitterID),
		"Unfortunately, your motivation was rejected:\n\n"+item.Text, nil); err != nil {
		slog.Error("notify submitter failed", "item", itemID, "user", item.SubmitterID, "err", err)
	}
	reviewed := fmt.Sprintf("❌ REJECTED: motivation #%d:\n\n%s\n\nReviewed by: %s", itemID, item.Text, cb.DisplayName)
	if err := a.transport.EditText(ctx, cb.ChatID, cb.MessageID, reviewed, nil); err != nil {
		slog.Error("update reviewer card failed", "item", itemID, "err", err)
	}
	a.answer(ctx, cb, "Rejected", false)
}

// startEdit puts the reviewer into the edit flow for this item.
func (a *App) startEdit(ctx context.Context, cb Callback) {
	itemID := cb.Action.ItemID
	a.sessions.Enter(cb.UserID, session.State{Mode: session.AwaitingEdit, ItemID: itemID})
	a.answer(ctx, cb, "", false)
	prompt := fmt.Sprintf("Send the new text for motivation #%d (send /stop to cancel):", itemID)
	if err := a.transport.SendText(ctx, chatIDFor(cb.UserID), prompt, nil); err != nil {
		slog.Error("send edit prompt failed", "item", itemID, "err", err)
	}
}

// handleEditText replaces the item text carried in the session payload.
func (a *App) handleEditText(ctx context.Context, msg Message, s session.State) {
	if s.ItemID == 0 {
		a.sessions.Clear(msg.UserID)
		a.reply(ctx, msg, "Something went wrong. Please try again later.")
		return
	}
	if err := a.store.SetItemText(s.ItemID, msg.Text); err != nil {
		slog.Error("edit item failed", "item", s.ItemID, "err", err)
		a.reply(ctx, msg, "Could not update the motivation. Please try again.")
		return
	}
	a.sessions.Clear(msg.UserID)
	a.reply(ctx, msg, fmt.Sprintf("Motivation #%d updated.", s.ItemID))
}

// deleteItem physically removes the item; there is no undo.
func (a *App) deleteItem(ctx context.Context, cb Callback) {
	itemID := cb.Action.ItemID
	if err := a.store.DeleteItem(itemID); err != nil {
		slog.Error("delete item failed", "item", itemID, "err", err)
		a.answer(ctx, cb, "Could not delete the motivation.", true)
		return
	}
	removed := fmt.Sprintf("🗑 DELETED: motivation #%d\n\nReviewed by: %s", itemID, cb.DisplayName)
	if err := a.transport.EditText(ctx, cb.ChatID, cb.MessageID, removed, nil); err != nil {
		slog.Error("update reviewer card failed", "item", itemID, "err", err)
	}
	a.answer(ctx, cb, "Deleted", false)
}

// handleLike toggles the caller's like and refreshes the counters on
// the message the button lives on.
func (a *App) handleLike(ctx context.Context, cb Callback) {
	liked, _, err := a.store.ToggleLike(cb.UserID, cb.Action.ItemID)
	if err != nil {
		slog.Error("toggle like failed", "item", cb.Action.ItemID, "user", cb.UserID, "err", err)
		a.answer(ctx, cb, "Something went wrong.", false)
		return
	}
	a.refreshEngagementControls(ctx, cb)
	if liked {
		a.answer(ctx, cb, "Like added", false)
	} else {
		a.answer(ctx, cb, "Like removed", false)
	}
}

// handleShare bumps the share counter and answers with a shareable
// rendering of the item.
func (a *App) handleShare(ctx context.Context, cb Callback) {
	if _, err := a.store.AddShare(cb.Action.ItemID); err != nil {
		slog.Error("add share failed", "item", cb.Action.ItemID, "err", err)
		a.answer(ctx, cb, "Something went wrong.", false)
		return
	}
	a.refreshEngagementControls(ctx, cb)
	a.answer(ctx, cb, "Forward this message to share the motivation!", true)
}

func (a *App) refreshEngagementControls(ctx context.Context, cb Callback) {
	item, ok, err := a.store.GetItem(cb.Action.ItemID)
	if err != nil || !ok {
		return
	}
	if err := a.transport.EditKeyboard(ctx, cb.ChatID, cb.MessageID, likeShareKeyboard(item)); err != nil {
		slog.Warn("refresh engagement controls failed", "item", item.ID, "err", err)
	}
}

func reviewKeyboard(itemID int64) domain.Keyboard {
	return domain.Keyboard{{
		{Label: "✅ Approve", Action: &domain.Action{Kind: domain.ActionApprove, ItemID: itemID}},
		{Label: "❌ Reject", Action: &domain.Action{Kind: domain.ActionReject, ItemID: itemID}},
	}}
}

func editDeleteKeyboard(itemID int64) domain.Keyboard {
	return domain.Keyboard{{
		{Label: "✏️ Edit", Action: &domain.Action{Kind: domain.ActionEdit, ItemID: itemID}},
		{Label: "🗑 Delete", Action: &domain.Action{Kind: domain.ActionDelete, ItemID: itemID}},
	}}
}

func likeShareKeyboard(item domain.Item) domain.Keyboard {
	return domain.Keyboard{{
		{Label: fmt.Sprintf("👍 (%d)", item.Likes), Action: &domain.Action{Kind: domain.ActionLike, ItemID: item.ID}},
		{Label: fmt.Sprintf("🔄 Share (%d)", item.Shares), Action: &domain.Action{Kind: domain.ActionShare, ItemID: item.ID}},
	}}
}
