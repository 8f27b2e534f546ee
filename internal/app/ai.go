package app

import (
	"context"
	"log/slog"
	"time"

	"motivbot/internal/session"
)

// handleAIQuery forwards free text to the text-generation service. A
// "typing" indicator runs for the whole generation call and is
// cancelled on every exit path.
func (a *App) handleAIQuery(ctx context.Context, msg Message, _ session.State) {
	if !a.limiter.Allow(msg.UserID) {
		a.reply(ctx, msg, "You are asking too quickly. Please wait a minute and try again.")
		return
	}
	typingCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.keepTyping(typingCtx, msg.ChatID)

	answer, err := a.generator.GenerateText(ctx, msg.Text)
	if err != nil {
		slog.Error("text generation failed", "user", msg.UserID, "err", err)
		a.reply(ctx, msg, "Something went wrong. Please try again later.")
		return
	}
	a.reply(ctx, msg, answer)
}

// keepTyping refreshes the chat's typing indicator until the context
// is cancelled. The indicator expires after a few seconds on the
// platform side, hence the periodic resend.
func (a *App) keepTyping(ctx context.Context, chatID string) {
	ticker := time.NewTicker(a.typingInterval)
	defer ticker.Stop()
	for {
		if ctx.Err() != nil {
			return
		}
		if err := a.transport.SendTyping(ctx, chatID); err != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
