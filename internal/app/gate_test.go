package app

import (
	"context"
	"errors"
	"testing"

	"motivbot/pkg/domain"
)

func TestIsAuthorizedAdminBypass(t *testing.T) {
	env := newTestEnv(t, nil)
	if !env.app.IsAuthorized(context.Background(), adminID) {
		t.Fatalf("admin must pass the gate without any membership")
	}
}

func TestIsAuthorizedMembershipMatrix(t *testing.T) {
	cases := []struct {
		name    string
		channel domain.MemberStatus
		group   domain.MemberStatus
		want    bool
	}{
		{"both members", domain.MemberStatusMember, domain.MemberStatusMember, true},
		{"channel admin counts", domain.MemberStatusAdministrator, domain.MemberStatusCreator, true},
		{"restricted still counts", domain.MemberStatusRestricted, domain.MemberStatusMember, true},
		{"channel only", domain.MemberStatusMember, domain.MemberStatusLeft, false},
		{"group only", domain.MemberStatusKicked, domain.MemberStatusMember, false},
		{"left both", domain.MemberStatusLeft, domain.MemberStatusLeft, false},
		{"unknown status", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			userID := int64(7)
			if err := env.store.EnsureUser(domain.User{ID: userID}); err != nil {
				t.Fatalf("ensure user: %v", err)
			}
			env.transport.setMember(channelChat, userID, tc.channel)
			env.transport.setMember(groupChat, userID, tc.group)
			if got := env.app.IsAuthorized(context.Background(), userID); got != tc.want {
				t.Fatalf("IsAuthorized() = %v, want %v", got, tc.want)
			}
			u, ok, err := env.store.GetUser(userID)
			if err != nil || !ok {
				t.Fatalf("get user: ok=%v err=%v", ok, err)
			}
			if u.InChannel != tc.channel.Active() || u.InGroup != tc.group.Active() {
				t.Fatalf("persisted flags = (%v,%v), want (%v,%v)",
					u.InChannel, u.InGroup, tc.channel.Active(), tc.group.Active())
			}
		})
	}
}

func TestIsAuthorizedFailsClosedOnLookupError(t *testing.T) {
	env := newTestEnv(t, nil)
	userID := int64(7)
	if err := env.store.EnsureUser(domain.User{ID: userID}); err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	env.transport.memberErr = errors.New("api down")
	if env.app.IsAuthorized(context.Background(), userID) {
		t.Fatalf("gate must fail closed when the membership lookup errors")
	}
	u, _, err := env.store.GetUser(userID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.InChannel || u.InGroup {
		t.Fatalf("flags must not be persisted on a failed lookup")
	}
}
