// Package store persists vault records and the provider account on top of gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arencloud/chione/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VaultStore struct {
	db *gorm.DB
}

func NewVaultStore(db *gorm.DB) *VaultStore { return &VaultStore{db: db} }

// FindByName returns nil, nil when no record exists.
func (s *VaultStore) FindByName(ctx context.Context, name string) (*models.Vault, error) {
	var v models.Vault
	err := s.db.WithContext(ctx).
		Preload("Archives", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("name = ?", name).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find vault %q: %w", name, err)
	}
	// nil means never fetched; a fetched but empty inventory is an empty slice
	if v.InventoryCachedAt == nil {
		v.Archives = nil
	} else if v.Archives == nil {
		v.Archives = []models.Archive{}
	}
	return &v, nil
}

// Upsert writes the whole record, keyed by name. Archives are written only the
// first time a record carries them; a cached inventory is never replaced.
func (s *VaultStore) Upsert(ctx context.Context, v *models.Vault) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Vault
		err := tx.Select("id", "inventory_cached_at", "created_at").Where("name = ?", v.Name).Take(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			v.ID = 0
		case err != nil:
			return fmt.Errorf("lookup vault %q: %w", v.Name, err)
		default:
			v.ID = existing.ID
			v.CreatedAt = existing.CreatedAt
		}

		writeArchives := v.Archives != nil && existing.InventoryCachedAt == nil
		if writeArchives {
			now := time.Now().UTC()
			v.InventoryCachedAt = &now
		} else if existing.InventoryCachedAt != nil {
			v.InventoryCachedAt = existing.InventoryCachedAt
		}

		if err := tx.Omit(clause.Associations).Save(v).Error; err != nil {
			return fmt.Errorf("save vault %q: %w", v.Name, err)
		}
		if !writeArchives {
			return nil
		}
		if err := tx.Where("vault_id = ?", v.ID).Delete(&models.Archive{}).Error; err != nil {
			return fmt.Errorf("clear archives of %q: %w", v.Name, err)
		}
		if len(v.Archives) == 0 {
			return nil
		}
		rows := make([]models.Archive, len(v.Archives))
		for i, a := range v.Archives {
			a.ID = 0
			a.VaultID = v.ID
			a.Position = i
			rows[i] = a
		}
		if err := tx.CreateInBatches(rows, 500).Error; err != nil {
			return fmt.Errorf("save archives of %q: %w", v.Name, err)
		}
		v.Archives = rows
		return nil
	})
}

// CreateIfAbsent inserts v unless a vault with the same name exists. It
// reports whether the row was created.
func (s *VaultStore) CreateIfAbsent(ctx context.Context, v *models.Vault) (bool, error) {
	v.ID = 0
	res := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(v)
	if res.Error != nil {
		return false, fmt.Errorf("create vault %q: %w", v.Name, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// List returns stored vaults without their archives.
func (s *VaultStore) List(ctx context.Context) ([]models.Vault, error) {
	var out []models.Vault
	if err := s.db.WithContext(ctx).Order("name asc").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list vaults: %w", err)
	}
	return out, nil
}
