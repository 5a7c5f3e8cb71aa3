package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is the GORM entity for the kv_entries table. Values are JSON text;
// a NULL expires_at means the key never expires.
type KVEntry struct {
	Key       string     `gorm:"primaryKey;size:128"`
	Value     []byte     `gorm:"type:jsonb;not null"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

func (KVEntry) TableName() string { return "kv_entries" }

// GormKV is the Postgres-backed KV implementation. Expiry is enforced lazily
// on read and by a periodic sweep.
type GormKV struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewGormKV creates a Postgres-backed KV.
func NewGormKV(db *gorm.DB, log *zap.Logger) *GormKV {
	return &GormKV{db: db, log: log}
}

// Get returns the value for key, treating expired rows as absent.
func (g *GormKV) Get(ctx context.Context, key string) ([]byte, error) {
	var ent KVEntry
	err := g.db.WithContext(ctx).Where("key = ?", key).First(&ent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	if ent.ExpiresAt != nil && !time.Now().Before(*ent.ExpiresAt) {
		_ = g.db.WithContext(ctx).Delete(&KVEntry{}, "key = ?", key).Error
		return nil, ErrKeyNotFound
	}
	return ent.Value, nil
}

// Set upserts the value and resets the TTL.
func (g *GormKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	ent := KVEntry{Key: key, Value: value}
	if ttl > 0 {
		exp := time.Now().Add(ttl)
		ent.ExpiresAt = &exp
	}
	return g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&ent).Error
}

// Delete removes key; absent keys are a no-op.
func (g *GormKV) Delete(ctx context.Context, key string) error {
	return g.db.WithContext(ctx).Delete(&KVEntry{}, "key = ?", key).Error
}

// Sweep deletes all expired rows once and returns the number removed.
func (g *GormKV) Sweep(ctx context.Context) (int64, error) {
	res := g.db.WithContext(ctx).Where("expires_at IS NOT NULL AND expires_at <= ?", time.Now()).Delete(&KVEntry{})
	return res.RowsAffected, res.Error
}

// RunSweeper sweeps expired rows every interval until ctx is cancelled.
func (g *GormKV) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := g.Sweep(ctx)
			if err != nil {
				g.log.Warn("kv sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				g.log.Debug("kv sweep removed expired keys", zap.Int64("count", n))
			}
		}
	}
}
