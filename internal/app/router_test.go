package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"motivbot/internal/ratelimit"
	"motivbot/pkg/domain"
)

func TestUnauthorizedCommandSendsJoinPrompt(t *testing.T) {
	env := newTestEnv(t, nil)
	env.app.HandleMessage(context.Background(), privateMsg(7, "/ai"))

	last := env.transport.lastText(t)
	if !strings.Contains(last.Text, "join our channel") {
		t.Fatalf("expected join prompt, got %q", last.Text)
	}
	if len(last.Kb) != 3 {
		t.Fatalf("join prompt keyboard rows = %d, want channel, group and check", len(last.Kb))
	}
	check := last.Kb[2][0]
	if check.Action == nil || check.Action.Kind != domain.ActionCheckJoin {
		t.Fatalf("last row must be the check button, got %+v", check)
	}
	if last.Kb[0][0].URL != "https://t.me/motivation_channel" {
		t.Fatalf("channel join URL = %q", last.Kb[0][0].URL)
	}
}

func TestStopLeavesEveryFlow(t *testing.T) {
	ctx := context.Background()
	userID := int64(7)

	enterFlows := map[string]func(env *testEnv){
		"ai": func(env *testEnv) {
			env.app.HandleMessage(ctx, privateMsg(userID, "/ai"))
		},
		"submission": func(env *testEnv) {
			env.app.HandleMessage(ctx, privateMsg(userID, "/submit"))
		},
		"broadcast": func(env *testEnv) {
			env.app.HandleMessage(ctx, privateMsg(adminID, "/broadcast"))
		},
		"edit": func(env *testEnv) {
			env.app.HandleCallback(ctx, callbackFrom(adminID, domain.Action{Kind: domain.ActionEdit, ItemID: 1}))
		},
	}
	for name, enter := range enterFlows {
		for _, stop := range []string{"/stop", "back", " BACK ", "stop", "Stop"} {
			t.Run(name+" via "+strings.TrimSpace(stop), func(t *testing.T) {
				env := newTestEnv(t, nil)
				env.join(userID)
				actor := userID
				if name == "broadcast" || name == "edit" {
					actor = adminID
				}
				enter(env)

				env.app.HandleMessage(ctx, privateMsg(actor, stop))
				if !strings.Contains(env.transport.lastText(t).Text, "back to the main menu") {
					t.Fatalf("expected stop confirmation, got %q", env.transport.lastText(t).Text)
				}

				// Follow-up text must hit the idle fallback, not the flow.
				env.app.HandleMessage(ctx, privateMsg(actor, "hello there"))
				if !strings.Contains(env.transport.lastText(t).Text, "/help") {
					t.Fatalf("expected idle fallback after stop, got %q", env.transport.lastText(t).Text)
				}
				if got, _ := env.store.ListRecipientIDs(); name == "broadcast" && len(env.transport.payloads) > 0 {
					t.Fatalf("broadcast flow leaked after stop: payloads=%d recipients=%v", len(env.transport.payloads), got)
				}
			})
		}
	}
}

func TestStopFromIdleIsNoOp(t *testing.T) {
	env := newTestEnv(t, nil)
	env.app.HandleMessage(context.Background(), privateMsg(7, "/stop"))
	if !strings.Contains(env.transport.lastText(t).Text, "back to the main menu") {
		t.Fatalf("stop from idle must still confirm, got %q", env.transport.lastText(t).Text)
	}
}

func TestDailyToggle(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	userID := int64(7)

	env.app.HandleMessage(ctx, privateMsg(userID, "/daily"))
	if !strings.Contains(env.transport.lastText(t).Text, "turned off") {
		t.Fatalf("first toggle should turn the default opt-in off, got %q", env.transport.lastText(t).Text)
	}
	u, _, _ := env.store.GetUser(userID)
	if u.DailyOptIn {
		t.Fatalf("opt-in flag not persisted")
	}

	env.app.HandleMessage(ctx, privateMsg(userID, "/daily"))
	if !strings.Contains(env.transport.lastText(t).Text, "turned on") {
		t.Fatalf("second toggle should turn it back on, got %q", env.transport.lastText(t).Text)
	}
}

func TestGroupStartRedirectsToPrivateChat(t *testing.T) {
	env := newTestEnv(t, nil)
	msg := privateMsg(7, "/start")
	msg.ChatType = "supergroup"
	msg.ChatID = "-100777"
	env.app.HandleMessage(context.Background(), msg)

	last := env.transport.lastText(t)
	if last.ChatID != "-100777" {
		t.Fatalf("redirect must go to the group chat, got %q", last.ChatID)
	}
	if last.Kb[0][0].URL != "https://t.me/motivbot" {
		t.Fatalf("redirect button URL = %q", last.Kb[0][0].URL)
	}
}

func TestGroupChatterIsIgnored(t *testing.T) {
	env := newTestEnv(t, nil)
	msg := privateMsg(7, "just chatting")
	msg.ChatType = "supergroup"
	env.app.HandleMessage(context.Background(), msg)
	if len(env.transport.texts) != 0 {
		t.Fatalf("group chatter must not be answered, sent %d texts", len(env.transport.texts))
	}
}

func TestAIFlowAnswersAndStaysActive(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	userID := int64(7)
	env.join(userID)

	env.app.HandleMessage(ctx, privateMsg(userID, "/ai"))
	env.app.HandleMessage(ctx, privateMsg(userID, "how do I stay motivated?"))
	if env.transport.lastText(t).Text != "generated answer" {
		t.Fatalf("expected generated answer, got %q", env.transport.lastText(t).Text)
	}

	// The flow persists until the user leaves it.
	env.app.HandleMessage(ctx, privateMsg(userID, "and another question"))
	if env.transport.lastText(t).Text != "generated answer" {
		t.Fatalf("follow-up question must stay in the flow, got %q", env.transport.lastText(t).Text)
	}
}

func TestAIFlowDegradesOnGeneratorError(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	env.generator.err = errors.New("upstream down")
	userID := int64(7)
	env.join(userID)

	env.app.HandleMessage(ctx, privateMsg(userID, "/ai"))
	env.app.HandleMessage(ctx, privateMsg(userID, "question"))
	if !strings.Contains(env.transport.lastText(t).Text, "Something went wrong") {
		t.Fatalf("expected degraded reply, got %q", env.transport.lastText(t).Text)
	}

	// A retry in the same flow works once the generator recovers.
	env.generator.err = nil
	env.app.HandleMessage(ctx, privateMsg(userID, "question"))
	if env.transport.lastText(t).Text != "generated answer" {
		t.Fatalf("retry after failure must stay in the flow, got %q", env.transport.lastText(t).Text)
	}
}

func TestAIFlowRateLimited(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	limiter, err := ratelimit.NewFixedWindowLimiter(client, "test:ai", 1, time.Minute)
	if err != nil {
		t.Fatalf("limiter: %v", err)
	}
	env := newTestEnv(t, func(cfg *Config) { cfg.Limiter = limiter })
	userID := int64(7)
	env.join(userID)

	env.app.HandleMessage(ctx, privateMsg(userID, "/ai"))
	env.app.HandleMessage(ctx, privateMsg(userID, "first"))
	if env.transport.lastText(t).Text != "generated answer" {
		t.Fatalf("first query must pass, got %q", env.transport.lastText(t).Text)
	}
	env.app.HandleMessage(ctx, privateMsg(userID, "second"))
	if !strings.Contains(env.transport.lastText(t).Text, "too quickly") {
		t.Fatalf("second query must be limited, got %q", env.transport.lastText(t).Text)
	}
}

func TestUnknownCommand(t *testing.T) {
	env := newTestEnv(t, nil)
	env.app.HandleMessage(context.Background(), privateMsg(7, "/frobnicate"))
	if !strings.Contains(env.transport.lastText(t).Text, "Unknown command") {
		t.Fatalf("got %q", env.transport.lastText(t).Text)
	}
}

func TestParseCommand(t *testing.T) {
	cases := []struct {
		text string
		cmd  string
		ok   bool
	}{
		{"/start", "start", true},
		{"/START", "start", true},
		{"  /ai@motivbot extra words ", "ai", true},
		{"/", "", false},
		{"hello", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		cmd, ok := parseCommand(tc.text)
		if cmd != tc.cmd || ok != tc.ok {
			t.Fatalf("parseCommand(%q) = (%q,%v), want (%q,%v)", tc.text, cmd, ok, tc.cmd, tc.ok)
		}
	}
}

func TestCheckJoinCallback(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	userID := int64(7)
	cb := callbackFrom(userID, domain.Action{Kind: domain.ActionCheckJoin})

	env.app.HandleCallback(ctx, cb)
	if ans := env.transport.lastAnswer(t); !ans.Alert || !strings.Contains(ans.Text, "not joined") {
		t.Fatalf("unjoined check must alert, got %+v", ans)
	}

	env.join(userID)
	if err := env.store.EnsureUser(domain.User{ID: userID}); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	env.app.HandleCallback(ctx, cb)
	if len(env.transport.deleted) != 1 || env.transport.deleted[0] != cb.MessageID {
		t.Fatalf("join prompt must be deleted, got %v", env.transport.deleted)
	}
	if !strings.Contains(env.transport.lastText(t).Text, "you are in") {
		t.Fatalf("expected welcome, got %q", env.transport.lastText(t).Text)
	}
}

func TestAdminOnlyCallbacksRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, kind := range []domain.ActionKind{
		domain.ActionApprove, domain.ActionReject, domain.ActionEdit,
		domain.ActionDelete, domain.ActionAdminBroadcast, domain.ActionAdminStats,
	} {
		env.app.HandleCallback(context.Background(), callbackFrom(7, domain.Action{Kind: kind, ItemID: 1}))
		ans := env.transport.lastAnswer(t)
		if !ans.Alert || !strings.Contains(ans.Text, "admins only") {
			t.Fatalf("kind %s: expected admin rejection, got %+v", kind, ans)
		}
	}
}
