package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"motivbot/pkg/domain"
)

func TestDailyDeliveryNoApprovedItems(t *testing.T) {
	env := newTestEnv(t, nil)
	if err := env.store.EnsureUser(domain.User{ID: 1}); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	if err := env.store.SetMembership(1, true, true); err != nil {
		t.Fatalf("set membership: %v", err)
	}

	res := env.app.RunDailyDelivery(context.Background())
	if res.Sent != 0 || res.Failed != 0 {
		t.Fatalf("result = %+v, want nothing sent", res)
	}
	if len(env.transport.payloads) != 0 {
		t.Fatalf("no approved items, yet %d payloads went out", len(env.transport.payloads))
	}
	if len(env.store.Broadcasts()) != 0 {
		t.Fatalf("an empty run must not be logged")
	}
}

func TestDailyDeliveryEligibleRecipientsOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)

	// 1: eligible. 2: opted out. 3: not a member. 4: deactivated.
	for _, id := range []int64{1, 2, 3, 4} {
		if err := env.store.EnsureUser(domain.User{ID: id}); err != nil {
			t.Fatalf("ensure user: %v", err)
		}
	}
	mustDo := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	mustDo(env.store.SetMembership(1, true, true))
	mustDo(env.store.SetMembership(2, true, true))
	mustDo(env.store.SetDailyOptIn(2, false))
	mustDo(env.store.SetMembership(3, true, false))
	mustDo(env.store.SetMembership(4, true, true))
	mustDo(env.store.DeactivateUser(4))

	itemID, err := env.store.CreateItem("Rise and shine", 1)
	mustDo(err)
	mustDo(env.store.SetItemStatus(itemID, domain.StatusApproved))

	res := env.app.RunDailyDelivery(ctx)
	if res.Sent != 1 || res.Failed != 0 {
		t.Fatalf("result = %+v, want exactly the eligible user", res)
	}
	if got := env.transport.payloadChats(); len(got) != 1 || got[0] != "1" {
		t.Fatalf("deliveries = %v, want [1]", got)
	}
	p := env.transport.payloads[0]
	if !strings.Contains(p.Payload.Text, "Motivation of the day") || !strings.Contains(p.Payload.Text, "Rise and shine") {
		t.Fatalf("payload text = %q", p.Payload.Text)
	}
	if p.Kb[0][0].Action.Kind != domain.ActionLike {
		t.Fatalf("daily delivery must carry engagement controls")
	}

	logs := env.store.Broadcasts()
	if len(logs) != 1 || logs[0].Kind != "daily" {
		t.Fatalf("audit log = %+v", logs)
	}
}

func TestNextRunAfter(t *testing.T) {
	base := time.Date(2025, 6, 1, 7, 0, 0, 0, time.UTC)
	cases := []struct {
		now  time.Time
		hour int
		min  int
		want time.Time
	}{
		{base, 8, 0, time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)},
		{base.Add(2 * time.Hour), 8, 0, time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)},
		{time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC), 8, 0, time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)},
		{time.Date(2025, 6, 30, 23, 59, 0, 0, time.UTC), 8, 30, time.Date(2025, 7, 1, 8, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		if got := nextRunAfter(tc.now, tc.hour, tc.min); !got.Equal(tc.want) {
			t.Fatalf("nextRunAfter(%v, %02d:%02d) = %v, want %v", tc.now, tc.hour, tc.min, got, tc.want)
		}
	}
}
