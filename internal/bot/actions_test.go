package bot

import (
	"testing"

	"motivbot/pkg/domain"
)

func TestActionRoundTrip(t *testing.T) {
	actions := []domain.Action{
		{Kind: domain.ActionApprove, ItemID: 12},
		{Kind: domain.ActionReject, ItemID: 1},
		{Kind: domain.ActionEdit, ItemID: 7},
		{Kind: domain.ActionDelete, ItemID: 99},
		{Kind: domain.ActionLike, ItemID: 3},
		{Kind: domain.ActionShare, ItemID: 3},
		{Kind: domain.ActionCheckJoin},
		{Kind: domain.ActionAdminBroadcast},
		{Kind: domain.ActionAdminStats},
	}
	for _, want := range actions {
		data := EncodeAction(want)
		if data == "" {
			t.Fatalf("no encoding for %+v", want)
		}
		got, ok := DecodeAction(data)
		if !ok {
			t.Fatalf("decode %q failed", data)
		}
		if got != want {
			t.Fatalf("round trip %q: got %+v want %+v", data, got, want)
		}
	}
}

func TestDecodeActionWireFormat(t *testing.T) {
	got, ok := DecodeAction("approve_motivation_42")
	if !ok || got.Kind != domain.ActionApprove || got.ItemID != 42 {
		t.Fatalf("wire format changed: got %+v ok=%v", got, ok)
	}
}

func TestDecodeActionRejectsGarbage(t *testing.T) {
	for _, data := range []string{
		"",
		"approve",
		"approve_motivation_",
		"approve_motivation_x",
		"approve_motivation_-1",
		"publish_motivation_1",
		"approve_something_1",
		"approve_motivation_1_2",
	} {
		if _, ok := DecodeAction(data); ok {
			t.Fatalf("decoded garbage %q", data)
		}
	}
}
