package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billing-engine/internal/core"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntityCollection is the row model shared by the GORM and pgx backends.
type EntityCollection struct {
	Name      string `gorm:"primaryKey;size:64"`
	Payload   string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (EntityCollection) TableName() string { return "entity_collections" }

// GormBackend stores collections through GORM (SQLite or PostgreSQL).
type GormBackend struct {
	db *gorm.DB
}

// NewGormBackend migrates the entity_collections table and returns the backend.
func NewGormBackend(db *gorm.DB) (*GormBackend, error) {
	if err := db.AutoMigrate(&EntityCollection{}); err != nil {
		return nil, fmt.Errorf("automigrate entity_collections: %w", err)
	}
	return &GormBackend{db: db}, nil
}

func (b *GormBackend) Load(ctx context.Context, name core.Collection) ([]byte, error) {
	var row EntityCollection
	err := b.db.WithContext(ctx).First(&row, "name = ?", string(name)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(row.Payload), nil
}

func (b *GormBackend) Save(ctx context.Context, name core.Collection, payload []byte) error {
	row := EntityCollection{Name: string(name), Payload: string(payload), UpdatedAt: time.Now().UTC()}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&row).Error
}

func (b *GormBackend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying connection pool.
func (b *GormBackend) Close() error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
