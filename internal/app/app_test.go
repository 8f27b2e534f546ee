package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"motivbot/pkg/domain"
	"motivbot/pkg/store"
)

const (
	adminID     = int64(900)
	channelChat = "@motivation_channel"
	groupChat   = "@motivation_group"
	modChat     = "-100555"
)

type sentText struct {
	ChatID string
	Text   string
	Kb     domain.Keyboard
}

type sentPayload struct {
	ChatID  string
	Payload domain.Payload
	Kb      domain.Keyboard
}

type sentEdit struct {
	ChatID    string
	MessageID int64
	Text      string
	Kb        domain.Keyboard
}

type sentAnswer struct {
	ID    string
	Text  string
	Alert bool
}

// fakeTransport records outbound traffic and serves canned membership
// lookups. Error maps are keyed by chat id.
type fakeTransport struct {
	mu            sync.Mutex
	texts         []sentText
	payloads      []sentPayload
	edits         []sentEdit
	keyboardEdits []sentEdit
	deleted       []int64
	typingCount   int
	answers       []sentAnswer
	members       map[string]domain.MemberStatus
	memberErr     error
	textErrs      map[string]error
	payloadErrs   map[string]error
	handle        string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		members:     make(map[string]domain.MemberStatus),
		textErrs:    make(map[string]error),
		payloadErrs: make(map[string]error),
		handle:      "motivbot",
	}
}

func memberKey(chatID string, userID int64) string {
	return fmt.Sprintf("%s/%d", chatID, userID)
}

func (f *fakeTransport) setMember(chatID string, userID int64, st domain.MemberStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[memberKey(chatID, userID)] = st
}

func (f *fakeTransport) SendText(_ context.Context, chatID, text string, kb domain.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.textErrs[chatID]; err != nil {
		return err
	}
	f.texts = append(f.texts, sentText{ChatID: chatID, Text: text, Kb: kb})
	return nil
}

func (f *fakeTransport) SendPayload(_ context.Context, chatID string, p domain.Payload, kb domain.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.payloadErrs[chatID]; err != nil {
		return err
	}
	f.payloads = append(f.payloads, sentPayload{ChatID: chatID, Payload: p, Kb: kb})
	return nil
}

func (f *fakeTransport) EditText(_ context.Context, chatID string, messageID int64, text string, kb domain.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, sentEdit{ChatID: chatID, MessageID: messageID, Text: text, Kb: kb})
	return nil
}

func (f *fakeTransport) EditKeyboard(_ context.Context, chatID string, messageID int64, kb domain.Keyboard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keyboardEdits = append(f.keyboardEdits, sentEdit{ChatID: chatID, MessageID: messageID, Kb: kb})
	return nil
}

func (f *fakeTransport) DeleteMessage(_ context.Context, _ string, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeTransport) SendTyping(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typingCount++
	return nil
}

func (f *fakeTransport) MemberStatus(_ context.Context, chatID string, userID int64) (domain.MemberStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.memberErr != nil {
		return "", f.memberErr
	}
	return f.members[memberKey(chatID, userID)], nil
}

func (f *fakeTransport) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, sentAnswer{ID: callbackID, Text: text, Alert: alert})
	return nil
}

func (f *fakeTransport) BotHandle(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handle, nil
}

func (f *fakeTransport) typingSends() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.typingCount
}

func (f *fakeTransport) lastText(t *testing.T) sentText {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.texts) == 0 {
		t.Fatalf("no texts sent")
	}
	return f.texts[len(f.texts)-1]
}

func (f *fakeTransport) lastAnswer(t *testing.T) sentAnswer {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.answers) == 0 {
		t.Fatalf("no callback answers sent")
	}
	return f.answers[len(f.answers)-1]
}

func (f *fakeTransport) textsTo(chatID string) []sentText {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentText
	for _, s := range f.texts {
		if s.ChatID == chatID {
			out = append(out, s)
		}
	}
	return out
}

func (f *fakeTransport) payloadChats() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.payloads))
	for _, p := range f.payloads {
		out = append(out, p.ChatID)
	}
	return out
}

// fakeGenerator returns a fixed response or error.
type fakeGenerator struct {
	response string
	err      error
}

func (g *fakeGenerator) GenerateText(_ context.Context, _ string) (string, error) {
	return g.response, g.err
}

// flakyStore injects errors into selected write paths.
type flakyStore struct {
	store.Store
	createItemErr error
}

func (s *flakyStore) CreateItem(text string, submitterID int64) (int64, error) {
	if s.createItemErr != nil {
		return 0, s.createItemErr
	}
	return s.Store.CreateItem(text, submitterID)
}

type testEnv struct {
	app       *App
	store     *store.MemoryStore
	transport *fakeTransport
	generator *fakeGenerator
}

func newTestEnv(t *testing.T, mutate func(*Config)) *testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	tr := newFakeTransport()
	gen := &fakeGenerator{response: "generated answer"}
	cfg := Config{
		Store:            st,
		Transport:        tr,
		Generator:        gen,
		AdminIDs:         []int64{adminID},
		ChannelID:        channelChat,
		GroupID:          groupChat,
		ModerationChatID: modChat,
		DailyHour:        8,
		SendInterval:     0,
		Location:         time.UTC,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return &testEnv{app: a, store: st, transport: tr, generator: gen}
}

// join marks the user a live member of both required chats.
func (e *testEnv) join(userID int64) {
	e.transport.setMember(channelChat, userID, domain.MemberStatusMember)
	e.transport.setMember(groupChat, userID, domain.MemberStatusMember)
}

func privateMsg(userID int64, text string) Message {
	return Message{
		UserID:      userID,
		ChatID:      chatIDFor(userID),
		ChatType:    "private",
		Handle:      fmt.Sprintf("user%d", userID),
		DisplayName: fmt.Sprintf("User %d", userID),
		Text:        text,
		Payload:     domain.Payload{Kind: domain.PayloadText, Text: text},
	}
}

func callbackFrom(userID int64, action domain.Action) Callback {
	return Callback{
		ID:          fmt.Sprintf("cb-%d", userID),
		UserID:      userID,
		DisplayName: fmt.Sprintf("User %d", userID),
		ChatID:      chatIDFor(userID),
		MessageID:   42,
		Action:      action,
	}
}
