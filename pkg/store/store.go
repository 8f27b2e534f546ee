package store

import "motivbot/pkg/domain"

// Store defines persistence operations for users, motivations, and
// like marks. All implementations must keep an item's like counter
// equal to the number of like marks referencing it.
type Store interface {
	// users
	EnsureUser(u domain.User) error
	GetUser(id int64) (domain.User, bool, error)
	SetMembership(id int64, inChannel, inGroup bool) error
	SetDailyOptIn(id int64, optIn bool) error
	DeactivateUser(id int64) error
	ListRecipientIDs() ([]int64, error)
	ListDailyRecipientIDs() ([]int64, error)

	// items
	CreateItem(text string, submitterID int64) (int64, error)
	GetItem(id int64) (domain.Item, bool, error)
	SetItemStatus(id int64, status domain.ItemStatus) error
	SetItemText(id int64, text string) error
	DeleteItem(id int64) error
	RandomApprovedItem() (domain.Item, bool, error)

	// engagement
	ToggleLike(userID, itemID int64) (liked bool, likes int64, err error)
	AddShare(itemID int64) (shares int64, err error)
	CountLikes(itemID int64) (int64, error)

	// reporting
	Stats() (domain.Stats, error)
	LogBroadcast(kind string, payload domain.Payload, result domain.BroadcastResult) error
}
