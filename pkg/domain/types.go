package domain

import "time"

// ItemStatus is the moderation state of a submitted motivation.
type ItemStatus string

const (
	StatusPending  ItemStatus = "pending"
	StatusApproved ItemStatus = "approved"
	StatusRejected ItemStatus = "rejected"
)

// User is a bot user keyed by the platform user id.
type User struct {
	ID           int64
	Handle       string
	DisplayName  string
	InChannel    bool
	InGroup      bool
	DailyOptIn   bool
	Active       bool
	LastActiveAt time.Time
	CreatedAt    time.Time
}

// Item is a user-submitted motivation subject to review.
type Item struct {
	ID          int64
	Text        string
	SubmitterID int64
	Status      ItemStatus
	Likes       int64
	Shares      int64
	CreatedAt   time.Time
}

// MemberStatus mirrors the chat platform's membership states.
type MemberStatus string

const (
	MemberStatusCreator       MemberStatus = "creator"
	MemberStatusAdministrator MemberStatus = "administrator"
	MemberStatusMember        MemberStatus = "member"
	MemberStatusRestricted    MemberStatus = "restricted"
	MemberStatusLeft          MemberStatus = "left"
	MemberStatusKicked        MemberStatus = "kicked"
	MemberStatusBanned        MemberStatus = "banned"
)

// Active reports whether the status counts as a live membership.
func (s MemberStatus) Active() bool {
	switch s {
	case MemberStatusLeft, MemberStatusKicked, MemberStatusBanned, "":
		return false
	}
	return true
}

// PayloadKind identifies the media kind of an outbound payload.
type PayloadKind string

const (
	PayloadText     PayloadKind = "text"
	PayloadPhoto    PayloadKind = "photo"
	PayloadVideo    PayloadKind = "video"
	PayloadDocument PayloadKind = "document"
)

// Payload is a broadcastable message: plain text or a media file
// reference with an optional caption.
type Payload struct {
	Kind    PayloadKind `json:"kind"`
	Text    string      `json:"text,omitempty"`
	FileID  string      `json:"fileId,omitempty"`
	Caption string      `json:"caption,omitempty"`
}

// ActionKind tags a button action decoded at the transport boundary.
type ActionKind string

const (
	ActionApprove        ActionKind = "approve"
	ActionReject         ActionKind = "reject"
	ActionEdit           ActionKind = "edit"
	ActionDelete         ActionKind = "delete"
	ActionLike           ActionKind = "like"
	ActionShare          ActionKind = "share"
	ActionCheckJoin      ActionKind = "check_join"
	ActionAdminBroadcast ActionKind = "admin_broadcast"
	ActionAdminStats     ActionKind = "admin_stats"
)

// Action is a decoded button press. ItemID is zero for actions that do
// not reference an item.
type Action struct {
	Kind   ActionKind
	ItemID int64
}

// Button is one inline control. Exactly one of Action or URL is set.
type Button struct {
	Label  string
	Action *Action
	URL    string
}

// Keyboard is a grid of inline controls attached to a message.
type Keyboard [][]Button

// BroadcastResult aggregates per-recipient delivery outcomes.
type BroadcastResult struct {
	Sent   int
	Failed int
}

// Stats is the admin-facing usage summary.
type Stats struct {
	TotalUsers      int64
	SubscribedUsers int64
	TotalItems      int64
	ApprovedItems   int64
	PendingItems    int64
	RejectedItems   int64
	TotalLikes      int64
	TotalShares     int64
}
