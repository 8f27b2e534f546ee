package bot

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"motivbot/internal/app"
	"motivbot/pkg/domain"
	"motivbot/pkg/telegram"
)

const pollTimeoutSeconds = 30

// Poller long-polls the Bot API and feeds updates into the core.
type Poller struct {
	client *telegram.Client
	app    *app.App
}

// NewPoller constructs a poller over the given client and core.
func NewPoller(client *telegram.Client, a *app.App) *Poller {
	return &Poller{client: client, app: a}
}

// Run polls until the context is cancelled. Each update is handled in
// its own goroutine so a slow handler does not stall the poll loop.
func (p *Poller) Run(ctx context.Context) error {
	var offset int64
	for {
		updates, err := p.client.GetUpdates(ctx, offset, pollTimeoutSeconds)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("poll updates failed", "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(3 * time.Second):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			go p.dispatch(ctx, u)
		}
	}
}

func (p *Poller) dispatch(ctx context.Context, u telegram.Update) {
	switch {
	case u.CallbackQuery != nil:
		cb, ok := toCallback(u.CallbackQuery)
		if !ok {
			slog.Warn("unknown callback data", "data", u.CallbackQuery.Data)
			return
		}
		p.app.HandleCallback(ctx, cb)
	case u.Message != nil && u.Message.From != nil:
		p.app.HandleMessage(ctx, toMessage(u.Message))
	}
}

func toMessage(m *telegram.Message) app.Message {
	return app.Message{
		UserID:      m.From.ID,
		ChatID:      strconv.FormatInt(m.Chat.ID, 10),
		ChatType:    m.Chat.Type,
		Handle:      m.From.Username,
		DisplayName: displayName(*m.From),
		Text:        m.Text,
		Payload:     toPayload(m),
	}
}

func toCallback(q *telegram.CallbackQuery) (app.Callback, bool) {
	action, ok := DecodeAction(q.Data)
	if !ok {
		return app.Callback{}, false
	}
	cb := app.Callback{
		ID:          q.ID,
		UserID:      q.From.ID,
		Handle:      q.From.Username,
		DisplayName: displayName(q.From),
		Action:      action,
	}
	if q.Message != nil {
		cb.ChatID = strconv.FormatInt(q.Message.Chat.ID, 10)
		cb.MessageID = q.Message.MessageID
	}
	return cb, true
}

// toPayload captures the message body verbatim so media survives a
// broadcast re-send. Photos come as a size ladder; the last entry is
// the largest.
func toPayload(m *telegram.Message) domain.Payload {
	switch {
	case len(m.Photo) > 0:
		return domain.Payload{
			Kind:    domain.PayloadPhoto,
			FileID:  m.Photo[len(m.Photo)-1].FileID,
			Caption: m.Caption,
		}
	case m.Video != nil:
		return domain.Payload{
			Kind:    domain.PayloadVideo,
			FileID:  m.Video.FileID,
			Caption: m.Caption,
		}
	case m.Document != nil:
		return domain.Payload{
			Kind:    domain.PayloadDocument,
			FileID:  m.Document.FileID,
			Caption: m.Caption,
		}
	}
	return domain.Payload{Kind: domain.PayloadText, Text: m.Text}
}

func displayName(u telegram.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.Username
	}
	return name
}
