package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"motivbot/internal/ratelimit"
	"motivbot/internal/session"
	"motivbot/pkg/ai"
	"motivbot/pkg/domain"
	"motivbot/pkg/store"
)

// Transport delivers outbound chat events and answers platform
// lookups. Implementations live at the transport boundary; the core
// never sees wire formats.
type Transport interface {
	SendText(ctx context.Context, chatID, text string, kb domain.Keyboard) error
	SendPayload(ctx context.Context, chatID string, p domain.Payload, kb domain.Keyboard) error
	EditText(ctx context.Context, chatID string, messageID int64, text string, kb domain.Keyboard) error
	EditKeyboard(ctx context.Context, chatID string, messageID int64, kb domain.Keyboard) error
	DeleteMessage(ctx context.Context, chatID string, messageID int64) error
	SendTyping(ctx context.Context, chatID string) error
	MemberStatus(ctx context.Context, chatID string, userID int64) (domain.MemberStatus, error)
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
	BotHandle(ctx context.Context) (string, error)
}

// Message is an inbound text or media message.
type Message struct {
	UserID      int64
	ChatID      string
	ChatType    string
	Handle      string
	DisplayName string
	Text        string
	Payload     domain.Payload
}

// Callback is an inbound button press with its decoded action.
type Callback struct {
	ID          string
	UserID      int64
	Handle      string
	DisplayName string
	ChatID      string
	MessageID   int64
	Action      domain.Action
}

// Config holds the collaborators and settings for the core application.
type Config struct {
	Store            store.Store
	Transport        Transport
	Generator        ai.Generator
	Limiter          *ratelimit.FixedWindowLimiter
	AdminIDs         []int64
	ChannelID        string
	GroupID          string
	ModerationChatID string
	WebsiteURL       string
	DailyHour        int
	DailyMinute      int
	SendInterval     time.Duration
	Location         *time.Location
}

// App is the conversational core: access gate, per-user sessions,
// moderation pipeline, and broadcast dispatch.
type App struct {
	store            store.Store
	transport        Transport
	generator        ai.Generator
	limiter          *ratelimit.FixedWindowLimiter
	adminIDs         []int64
	admins           map[int64]bool
	channelID        string
	groupID          string
	moderationChatID string
	websiteURL       string
	dailyHour        int
	dailyMinute      int
	sendInterval     time.Duration
	typingInterval   time.Duration
	location         *time.Location
	sessions         *session.Manager

	textHandlers map[session.Mode]func(ctx context.Context, msg Message, s session.State)
}

// New constructs the application core.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store required")
	}
	if cfg.Transport == nil {
		return nil, fmt.Errorf("transport required")
	}
	if cfg.Generator == nil {
		return nil, fmt.Errorf("generator required")
	}
	if cfg.ChannelID == "" || cfg.GroupID == "" {
		return nil, fmt.Errorf("channel and group ids required")
	}
	admins := make(map[int64]bool, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = true
	}
	interval := cfg.SendInterval
	if interval < 0 {
		interval = 0
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	a := &App{
		store:            cfg.Store,
		transport:        cfg.Transport,
		generator:        cfg.Generator,
		limiter:          cfg.Limiter,
		adminIDs:         cfg.AdminIDs,
		admins:           admins,
		channelID:        cfg.ChannelID,
		groupID:          cfg.GroupID,
		moderationChatID: cfg.ModerationChatID,
		websiteURL:       cfg.WebsiteURL,
		dailyHour:        cfg.DailyHour,
		dailyMinute:      cfg.DailyMinute,
		sendInterval:     interval,
		typingInterval:   5 * time.Second,
		location:         loc,
		sessions:         session.NewManager(),
	}
	a.textHandlers = map[session.Mode]func(context.Context, Message, session.State){
		session.AwaitingAIQuery:    a.handleAIQuery,
		session.AwaitingBroadcast:  a.handleBroadcastBody,
		session.AwaitingSubmission: a.handleSubmission,
		session.AwaitingEdit:       a.handleEditText,
	}
	return a, nil
}

func chatIDFor(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
