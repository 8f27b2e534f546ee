package app

import (
	"context"
	"log/slog"
	"strings"

	"motivbot/internal/session"
	"motivbot/pkg/domain"
)

// HandleMessage routes one inbound message through the access gate and
// the per-user session table.
func (a *App) HandleMessage(ctx context.Context, msg Message) {
	if err := a.store.EnsureUser(domain.User{ID: msg.UserID, Handle: msg.Handle, DisplayName: msg.DisplayName}); err != nil {
		slog.Error("ensure user failed", "user", msg.UserID, "err", err)
	}
	if msg.ChatType != "private" {
		a.handleGroupMessage(ctx, msg)
		return
	}
	if cmd, ok := parseCommand(msg.Text); ok {
		a.handleCommand(ctx, cmd, msg)
		return
	}
	state := a.sessions.Get(msg.UserID)
	if isStopText(msg.Text) {
		a.exitToIdle(ctx, msg)
		return
	}
	if handler, ok := a.textHandlers[state.Mode]; ok {
		handler(ctx, msg, state)
		return
	}
	a.reply(ctx, msg, "Use /help to see what I can do.")
}

// HandleCallback routes one decoded button press.
func (a *App) HandleCallback(ctx context.Context, cb Callback) {
	switch cb.Action.Kind {
	case domain.ActionCheckJoin:
		a.handleCheckJoin(ctx, cb)
	case domain.ActionLike:
		a.handleLike(ctx, cb)
	case domain.ActionShare:
		a.handleShare(ctx, cb)
	case domain.ActionApprove, domain.ActionReject, domain.ActionEdit, domain.ActionDelete,
		domain.ActionAdminBroadcast, domain.ActionAdminStats:
		if !a.admins[cb.UserID] {
			a.answer(ctx, cb, "This action is for admins only.", true)
			return
		}
		switch cb.Action.Kind {
		case domain.ActionApprove:
			a.approve(ctx, cb)
		case domain.ActionReject:
			a.reject(ctx, cb)
		case domain.ActionEdit:
			a.startEdit(ctx, cb)
		case domain.ActionDelete:
			a.deleteItem(ctx, cb)
		case domain.ActionAdminBroadcast:
			a.startAdminBroadcast(ctx, cb)
		case domain.ActionAdminStats:
			a.sendStats(ctx, cb)
		}
	default:
		slog.Warn("unhandled callback action", "kind", cb.Action.Kind, "user", cb.UserID)
	}
}

func (a *App) handleCommand(ctx context.Context, cmd string, msg Message) {
	switch cmd {
	case "start":
		a.handleStart(ctx, msg)
	case "stop":
		a.exitToIdle(ctx, msg)
	case "help":
		a.handleHelp(ctx, msg)
	case "ai":
		if !a.requireAccess(ctx, msg) {
			return
		}
		a.sessions.Enter(msg.UserID, session.State{Mode: session.AwaitingAIQuery})
		a.reply(ctx, msg, "You are now chatting with the AI. Send your question (send /stop to leave).")
	case "submit":
		if !a.requireAccess(ctx, msg) {
			return
		}
		a.sessions.Enter(msg.UserID, session.State{Mode: session.AwaitingSubmission})
		a.reply(ctx, msg, "Send your motivational thought (send /stop to cancel).")
	case "broadcast":
		if !a.requireAdmin(ctx, msg) {
			return
		}
		a.sessions.Enter(msg.UserID, session.State{Mode: session.AwaitingBroadcast})
		a.reply(ctx, msg, "Send the message to deliver to all users (send /stop to cancel).")
	case "admin":
		if !a.requireAdmin(ctx, msg) {
			return
		}
		a.replyWith(ctx, msg, "Admin panel:", domain.Keyboard{{
			{Label: "Broadcast 📢", Action: &domain.Action{Kind: domain.ActionAdminBroadcast}},
			{Label: "Statistics 📊", Action: &domain.Action{Kind: domain.ActionAdminStats}},
		}})
	case "daily":
		a.toggleDaily(ctx, msg)
	default:
		a.reply(ctx, msg, "Unknown command. Use /help to see what I can do.")
	}
}

func (a *App) handleStart(ctx context.Context, msg Message) {
	welcome := "Welcome! Here is what I can do:\n" +
		"- Chat with the AI (/ai)\n" +
		"- Share a daily motivation every morning\n" +
		"- Collect your own motivational thoughts (/submit)\n\n" +
		"Use /help for the full command list."
	if a.admins[msg.UserID] {
		a.reply(ctx, msg, "Welcome back, admin!\n\n"+welcome+"\nAdmin panel: /admin")
		return
	}
	if a.IsAuthorized(ctx, msg.UserID) {
		a.reply(ctx, msg, welcome)
		return
	}
	a.sendJoinPrompt(ctx, msg.ChatID)
}

func (a *App) handleHelp(ctx context.Context, msg Message) {
	if !a.admins[msg.UserID] && !a.IsAuthorized(ctx, msg.UserID) {
		a.sendJoinPrompt(ctx, msg.ChatID)
		return
	}
	help := "Commands:\n\n" +
		"/start - start the bot\n" +
		"/stop - leave the current flow\n" +
		"/help - this message\n" +
		"/ai - chat with the AI\n" +
		"/submit - submit a motivation for review\n" +
		"/daily - toggle the daily motivation"
	if a.admins[msg.UserID] {
		help += "\n/broadcast - message all users\n/admin - admin panel"
	}
	if a.websiteURL != "" {
		help += "\n\nWebsite: " + a.websiteURL
	}
	a.reply(ctx, msg, help)
}

func (a *App) handleGroupMessage(ctx context.Context, msg Message) {
	cmd, ok := parseCommand(msg.Text)
	if !ok || cmd != "start" {
		return
	}
	handle, err := a.transport.BotHandle(ctx)
	if err != nil {
		slog.Error("bot handle lookup failed", "err", err)
		return
	}
	a.replyWith(ctx, msg, "To use the bot, open a private chat:", domain.Keyboard{{
		{Label: "Open the bot", URL: "https://t.me/" + handle},
	}})
}

func (a *App) handleCheckJoin(ctx context.Context, cb Callback) {
	if !a.IsAuthorized(ctx, cb.UserID) {
		a.answer(ctx, cb, "You have not joined the channel and the group yet!", true)
		return
	}
	if err := a.transport.DeleteMessage(ctx, cb.ChatID, cb.MessageID); err != nil {
		slog.Warn("delete join prompt failed", "user", cb.UserID, "err", err)
	}
	if err := a.transport.SendText(ctx, chatIDFor(cb.UserID),
		"Great, you are in! You can now use the bot. Use /help to get started.", nil); err != nil {
		slog.Error("send welcome failed", "user", cb.UserID, "err", err)
	}
}

func (a *App) toggleDaily(ctx context.Context, msg Message) {
	u, ok, err := a.store.GetUser(msg.UserID)
	if err != nil || !ok {
		a.reply(ctx, msg, "Something went wrong. Please try again later.")
		return
	}
	if err := a.store.SetDailyOptIn(msg.UserID, !u.DailyOptIn); err != nil {
		a.reply(ctx, msg, "Something went wrong. Please try again later.")
		return
	}
	if u.DailyOptIn {
		a.reply(ctx, msg, "Daily motivation turned off. Use /daily to turn it back on.")
	} else {
		a.reply(ctx, msg, "Daily motivation turned on. See you tomorrow morning!")
	}
}

func (a *App) startAdminBroadcast(ctx context.Context, cb Callback) {
	a.sessions.Enter(cb.UserID, session.State{Mode: session.AwaitingBroadcast})
	a.answer(ctx, cb, "", false)
	if err := a.transport.SendText(ctx, chatIDFor(cb.UserID),
		"Send the message to deliver to all users (send /stop to cancel).", nil); err != nil {
		slog.Error("send broadcast prompt failed", "user", cb.UserID, "err", err)
	}
}

// exitToIdle is the universal stop edge: clear the session and confirm.
// From Idle it is a no-op that still re-renders the idle view.
func (a *App) exitToIdle(ctx context.Context, msg Message) {
	a.sessions.Clear(msg.UserID)
	a.reply(ctx, msg, "Okay, back to the main menu. Use /help to see what I can do.")
}

func (a *App) requireAccess(ctx context.Context, msg Message) bool {
	if a.admins[msg.UserID] || a.IsAuthorized(ctx, msg.UserID) {
		return true
	}
	a.sendJoinPrompt(ctx, msg.ChatID)
	return false
}

func (a *App) requireAdmin(ctx context.Context, msg Message) bool {
	if a.admins[msg.UserID] {
		return true
	}
	a.reply(ctx, msg, "This command is for admins only.")
	return false
}

func (a *App) sendJoinPrompt(ctx context.Context, chatID string) {
	kb := domain.Keyboard{}
	if url := publicChatURL(a.channelID); url != "" {
		kb = append(kb, []domain.Button{{Label: "Join the channel", URL: url}})
	}
	if url := publicChatURL(a.groupID); url != "" {
		kb = append(kb, []domain.Button{{Label: "Join the group", URL: url}})
	}
	kb = append(kb, []domain.Button{{Label: "✅ Check", Action: &domain.Action{Kind: domain.ActionCheckJoin}}})
	if err := a.transport.SendText(ctx, chatID,
		"To use the bot, please join our channel and group first:", kb); err != nil {
		slog.Error("send join prompt failed", "chat", chatID, "err", err)
	}
}

func (a *App) reply(ctx context.Context, msg Message, text string) {
	a.replyWith(ctx, msg, text, nil)
}

func (a *App) replyWith(ctx context.Context, msg Message, text string, kb domain.Keyboard) {
	if err := a.transport.SendText(ctx, msg.ChatID, text, kb); err != nil {
		slog.Error("send reply failed", "chat", msg.ChatID, "err", err)
	}
}

func (a *App) answer(ctx context.Context, cb Callback, text string, alert bool) {
	if err := a.transport.AnswerCallback(ctx, cb.ID, text, alert); err != nil {
		slog.Warn("answer callback failed", "callback", cb.ID, "err", err)
	}
}

// parseCommand extracts the command name from "/cmd" or "/cmd@botname".
func parseCommand(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	cmd := strings.Fields(text)[0][1:]
	if at := strings.IndexByte(cmd, '@'); at >= 0 {
		cmd = cmd[:at]
	}
	if cmd == "" {
		return "", false
	}
	return strings.ToLower(cmd), true
}

// isStopText matches the universal exit values in free text.
func isStopText(text string) bool {
	text = strings.TrimSpace(text)
	return strings.EqualFold(text, "back") || strings.EqualFold(text, "stop")
}

func publicChatURL(chatID string) string {
	if strings.HasPrefix(chatID, "@") {
		return "https://t.me/" + strings.TrimPrefix(chatID, "@")
	}
	return ""
}
