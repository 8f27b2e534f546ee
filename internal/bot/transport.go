package bot

import (
	"context"
	"errors"
	"fmt"

	"motivbot/internal/app"
	"motivbot/pkg/domain"
	"motivbot/pkg/telegram"
)

// Transport adapts the Bot API client to the core's transport
// interface. Permanent 403 failures are reported as
// app.ErrRecipientUnreachable so the core can deactivate the
// recipient.
type Transport struct {
	client *telegram.Client
}

// NewTransport wraps a Bot API client.
func NewTransport(client *telegram.Client) (*Transport, error) {
	if client == nil {
		return nil, fmt.Errorf("telegram client required")
	}
	return &Transport{client: client}, nil
}

func (t *Transport) SendText(ctx context.Context, chatID, text string, kb domain.Keyboard) error {
	_, err := t.client.SendMessage(ctx, chatID, text, renderKeyboard(kb))
	return wrapSendErr(err)
}

func (t *Transport) SendPayload(ctx context.Context, chatID string, p domain.Payload, kb domain.Keyboard) error {
	var err error
	switch p.Kind {
	case domain.PayloadPhoto:
		err = t.client.SendPhoto(ctx, chatID, p.FileID, p.Caption)
	case domain.PayloadVideo:
		err = t.client.SendVideo(ctx, chatID, p.FileID, p.Caption)
	case domain.PayloadDocument:
		err = t.client.SendDocument(ctx, chatID, p.FileID, p.Caption)
	default:
		_, err = t.client.SendMessage(ctx, chatID, p.Text, renderKeyboard(kb))
	}
	return wrapSendErr(err)
}

func (t *Transport) EditText(ctx context.Context, chatID string, messageID int64, text string, kb domain.Keyboard) error {
	return t.client.EditMessageText(ctx, chatID, messageID, text, renderKeyboard(kb))
}

func (t *Transport) EditKeyboard(ctx context.Context, chatID string, messageID int64, kb domain.Keyboard) error {
	return t.client.EditMessageReplyMarkup(ctx, chatID, messageID, renderKeyboard(kb))
}

func (t *Transport) DeleteMessage(ctx context.Context, chatID string, messageID int64) error {
	return t.client.DeleteMessage(ctx, chatID, messageID)
}

func (t *Transport) SendTyping(ctx context.Context, chatID string) error {
	return t.client.SendChatAction(ctx, chatID, "typing")
}

func (t *Transport) MemberStatus(ctx context.Context, chatID string, userID int64) (domain.MemberStatus, error) {
	member, err := t.client.GetChatMember(ctx, chatID, userID)
	if err != nil {
		return "", err
	}
	return domain.MemberStatus(member.Status), nil
}

func (t *Transport) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	return t.client.AnswerCallbackQuery(ctx, callbackID, text, alert)
}

func (t *Transport) BotHandle(ctx context.Context) (string, error) {
	me, err := t.client.GetMe(ctx)
	if err != nil {
		return "", err
	}
	return me.Username, nil
}

func wrapSendErr(err error) error {
	if errors.Is(err, telegram.ErrForbidden) {
		return fmt.Errorf("%w: %w", app.ErrRecipientUnreachable, err)
	}
	return err
}

// renderKeyboard converts the core keyboard into Bot API markup.
// Returns nil for an empty keyboard so no reply_markup is sent.
func renderKeyboard(kb domain.Keyboard) *telegram.InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]telegram.InlineKeyboardButton, 0, len(kb))
	for _, row := range kb {
		buttons := make([]telegram.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			btn := telegram.InlineKeyboardButton{Text: b.Label, URL: b.URL}
			if b.Action != nil {
				btn.CallbackData = EncodeAction(*b.Action)
			}
			buttons = append(buttons, btn)
		}
		rows = append(rows, buttons)
	}
	return &telegram.InlineKeyboardMarkup{InlineKeyboard: rows}
}
