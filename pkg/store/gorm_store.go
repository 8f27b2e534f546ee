package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"motivbot/pkg/domain"
)

// GormStore implements Store using GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&UserModel{}, &ItemModel{}, &LikeMarkModel{}, &BroadcastModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// EnsureUser inserts the user if absent and refreshes identity fields
// and the last-active timestamp.
func (s *GormStore) EnsureUser(u domain.User) error {
	now := time.Now().UTC()
	m := UserModel{
		ID:           u.ID,
		Handle:       u.Handle,
		DisplayName:  u.DisplayName,
		DailyOptIn:   true,
		Active:       true,
		LastActiveAt: now,
		CreatedAt:    now,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&m).Error; err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return s.db.Model(&UserModel{}).Where("id = ?", u.ID).UpdateColumns(map[string]any{
		"handle":         u.Handle,
		"display_name":   u.DisplayName,
		"last_active_at": now,
	}).Error
}

func (s *GormStore) GetUser(id int64) (domain.User, bool, error) {
	var m UserModel
	err := s.db.First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return userFromModel(m), true, nil
}

func (s *GormStore) SetMembership(id int64, inChannel, inGroup bool) error {
	res := s.db.Model(&UserModel{}).Where("id = ?", id).UpdateColumns(map[string]any{
		"in_channel": inChannel,
		"in_group":   inGroup,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) SetDailyOptIn(id int64, optIn bool) error {
	res := s.db.Model(&UserModel{}).Where("id = ?", id).UpdateColumn("daily_opt_in", optIn)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateUser marks a recipient unreachable so future fan-outs skip them.
func (s *GormStore) DeactivateUser(id int64) error {
	res := s.db.Model(&UserModel{}).Where("id = ?", id).UpdateColumn("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListRecipientIDs() ([]int64, error) {
	var ids []int64
	err := s.db.Model(&UserModel{}).Where("active").Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (s *GormStore) ListDailyRecipientIDs() ([]int64, error) {
	var ids []int64
	err := s.db.Model(&UserModel{}).
		Where("in_channel AND in_group AND daily_opt_in AND active").
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (s *GormStore) CreateItem(text string, submitterID int64) (int64, error) {
	m := ItemModel{
		Text:        text,
		SubmitterID: submitterID,
		Status:      string(domain.StatusPending),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.Create(&m).Error; err != nil {
		return 0, fmt.Errorf("create item: %w", err)
	}
	return m.ID, nil
}

func (s *GormStore) GetItem(id int64) (domain.Item, bool, error) {
	var m ItemModel
	err := s.db.First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Item{}, false, nil
	}
	if err != nil {
		return domain.Item{}, false, err
	}
	return itemFromModel(m), true, nil
}

func (s *GormStore) SetItemStatus(id int64, status domain.ItemStatus) error {
	res := s.db.Model(&ItemModel{}).Where("id = ?", id).UpdateColumn("status", string(status))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) SetItemText(id int64, text string) error {
	res := s.db.Model(&ItemModel{}).Where("id = ?", id).UpdateColumn("text", text)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteItem removes the item and its like marks.
func (s *GormStore) DeleteItem(id int64) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ?", id).Delete(&LikeMarkModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ItemModel{}, "id = ?", id).Error
	})
}

func (s *GormStore) RandomApprovedItem() (domain.Item, bool, error) {
	var m ItemModel
	err := s.db.Where("status = ?", string(domain.StatusApproved)).
		Order("RANDOM()").
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Item{}, false, nil
	}
	if err != nil {
		return domain.Item{}, false, err
	}
	return itemFromModel(m), true, nil
}

// ToggleLike flips the like mark for (userID, itemID) and adjusts the
// counter in the same transaction. The counter only moves when a mark
// row was actually inserted or deleted, so concurrent toggles cannot
// drift counter and marks apart.
func (s *GormStore) ToggleLike(userID, itemID int64) (bool, int64, error) {
	var liked bool
	var likes int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		del := tx.Where("user_id = ? AND item_id = ?", userID, itemID).Delete(&LikeMarkModel{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected > 0 {
			if err := tx.Model(&ItemModel{}).Where("id = ?", itemID).
				UpdateColumn("likes", gorm.Expr("likes - 1")).Error; err != nil {
				return err
			}
			liked = false
		} else {
			ins := tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&LikeMarkModel{UserID: userID, ItemID: itemID})
			if ins.Error != nil {
				return ins.Error
			}
			if ins.RowsAffected > 0 {
				if err := tx.Model(&ItemModel{}).Where("id = ?", itemID).
					UpdateColumn("likes", gorm.Expr("likes + 1")).Error; err != nil {
					return err
				}
			}
			liked = true
		}
		var m ItemModel
		if err := tx.Select("likes").First(&m, "id = ?", itemID).Error; err != nil {
			return err
		}
		likes = m.Likes
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("toggle like: %w", err)
	}
	return liked, likes, nil
}

func (s *GormStore) AddShare(itemID int64) (int64, error) {
	var shares int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&ItemModel{}).Where("id = ?", itemID).
			UpdateColumn("shares", gorm.Expr("shares + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		var m ItemModel
		if err := tx.Select("shares").First(&m, "id = ?", itemID).Error; err != nil {
			return err
		}
		shares = m.Shares
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("add share: %w", err)
	}
	return shares, nil
}

func (s *GormStore) CountLikes(itemID int64) (int64, error) {
	var n int64
	err := s.db.Model(&LikeMarkModel{}).Where("item_id = ?", itemID).Count(&n).Error
	return n, err
}

func (s *GormStore) Stats() (domain.Stats, error) {
	var st domain.Stats
	if err := s.db.Model(&UserModel{}).Count(&st.TotalUsers).Error; err != nil {
		return st, err
	}
	if err := s.db.Model(&UserModel{}).Where("in_channel AND in_group").Count(&st.SubscribedUsers).Error; err != nil {
		return st, err
	}
	if err := s.db.Model(&ItemModel{}).Count(&st.TotalItems).Error; err != nil {
		return st, err
	}
	if err := s.db.Model(&ItemModel{}).Where("status = ?", string(domain.StatusApproved)).Count(&st.ApprovedItems).Error; err != nil {
		return st, err
	}
	if err := s.db.Model(&ItemModel{}).Where("status = ?", string(domain.StatusPending)).Count(&st.PendingItems).Error; err != nil {
		return st, err
	}
	st.RejectedItems = st.TotalItems - st.ApprovedItems - st.PendingItems
	type sums struct {
		Likes  int64
		Shares int64
	}
	var agg sums
	if err := s.db.Model(&ItemModel{}).
		Select("COALESCE(SUM(likes),0) AS likes, COALESCE(SUM(shares),0) AS shares").
		Scan(&agg).Error; err != nil {
		return st, err
	}
	st.TotalLikes = agg.Likes
	st.TotalShares = agg.Shares
	return st, nil
}

func (s *GormStore) LogBroadcast(kind string, payload domain.Payload, result domain.BroadcastResult) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal broadcast payload: %w", err)
	}
	m := BroadcastModel{
		ID:        uuid.New().String(),
		Kind:      kind,
		Payload:   raw,
		Sent:      result.Sent,
		Failed:    result.Failed,
		CreatedAt: time.Now().UTC(),
	}
	return s.db.Create(&m).Error
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Handle:       m.Handle,
		DisplayName:  m.DisplayName,
		InChannel:    m.InChannel,
		InGroup:      m.InGroup,
		DailyOptIn:   m.DailyOptIn,
		Active:       m.Active,
		LastActiveAt: m.LastActiveAt,
		CreatedAt:    m.CreatedAt,
	}
}

func itemFromModel(m ItemModel) domain.Item {
	return domain.Item{
		ID:          m.ID,
		Text:        m.Text,
		SubmitterID: m.SubmitterID,
		Status:      domain.ItemStatus(m.Status),
		Likes:       m.Likes,
		Shares:      m.Shares,
		CreatedAt:   m.CreatedAt,
	}
}
