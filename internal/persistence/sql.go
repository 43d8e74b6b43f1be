package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/angelmondragon/rocketshoes-cart/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartSnapshot is the row holding one persisted blob.
type CartSnapshot struct {
	StorageKey string    `gorm:"column:storage_key;primaryKey;size:255"`
	Payload    string    `gorm:"column:payload;type:text;not null"`
	ItemCount  int       `gorm:"column:item_count;not null;default:0"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null"`
}

func (CartSnapshot) TableName() string { return "cart_snapshots" }

// SQLStore persists blobs in the cart_snapshots table.
type SQLStore struct {
	client *db.Client
	now    func() time.Time
}

func NewSQLStore(client *db.Client) (*SQLStore, error) {
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &SQLStore{client: client, now: time.Now}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, error) {
	var row CartSnapshot
	err := s.client.DB().WithContext(ctx).Where("storage_key = ?", key).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("load cart snapshot: %w", err)
	}
	return row.Payload, nil
}

func (s *SQLStore) Set(ctx context.Context, key, blob string) error {
	row := CartSnapshot{
		StorageKey: key,
		Payload:    blob,
		ItemCount:  countItems(blob),
		UpdatedAt:  s.now().UTC(),
	}
	err := s.client.DB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "storage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "item_count", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// countItems reports the number of entries when blob is a JSON array.
func countItems(blob string) int {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(blob), &items); err != nil {
		return 0
	}
	return len(items)
}
