package store

import (
	"time"

	"gorm.io/datatypes"
)

// GORM models used for persistence.
type UserModel struct {
	ID           int64  `gorm:"primaryKey;autoIncrement:false"`
	Handle       string
	DisplayName  string
	InChannel    bool      `gorm:"not null;default:false"`
	InGroup      bool      `gorm:"not null;default:false"`
	DailyOptIn   bool      `gorm:"not null;default:true"`
	Active       bool      `gorm:"not null;default:true;index"`
	LastActiveAt time.Time `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (UserModel) TableName() string { return "users" }

type ItemModel struct {
	ID          int64     `gorm:"primaryKey"`
	Text        string    `gorm:"type:text;not null"`
	SubmitterID int64     `gorm:"index"`
	Status      string    `gorm:"not null;index"`
	Likes       int64     `gorm:"not null;default:0"`
	Shares      int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (ItemModel) TableName() string { return "items" }

// LikeMarkModel holds one like per (user, item) pair; the composite
// primary key is what makes the toggle race-safe.
type LikeMarkModel struct {
	UserID int64 `gorm:"primaryKey;autoIncrement:false"`
	ItemID int64 `gorm:"primaryKey;autoIncrement:false;index"`
}

func (LikeMarkModel) TableName() string { return "like_marks" }

// BroadcastModel is one fan-out run in the audit log.
type BroadcastModel struct {
	ID        string         `gorm:"primaryKey"`
	Kind      string         `gorm:"not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	Sent      int            `gorm:"not null"`
	Failed    int            `gorm:"not null"`
	CreatedAt time.Time      `gorm:"not null;index"`
}

func (BroadcastModel) TableName() string { return "broadcasts" }
