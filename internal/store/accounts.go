package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/arencloud/chione/internal/models"
	"github.com/arencloud/chione/internal/secret"

	"gorm.io/gorm"
)

var (
	ErrNotConfigured     = errors.New("no account configuration found")
	ErrAlreadyConfigured = errors.New("account already configured")
)

// AccountStore keeps the single provider account row. The secret key is sealed
// at rest when a sealer is configured.
type AccountStore struct {
	db     *gorm.DB
	sealer *secret.Sealer
}

func NewAccountStore(db *gorm.DB, sealer *secret.Sealer) *AccountStore {
	return &AccountStore{db: db, sealer: sealer}
}

// Current returns the saved account with its secret opened.
func (s *AccountStore) Current(ctx context.Context) (*models.AccountConfig, error) {
	var a models.AccountConfig
	err := s.db.WithContext(ctx).Order("id asc").First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotConfigured
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if a.SecretKey, err = s.sealer.Open(a.SecretKey); err != nil {
		return nil, err
	}
	return &a, nil
}

// Save creates the account row, or overwrites it when replace is set.
func (s *AccountStore) Save(ctx context.Context, in models.AccountConfig, replace bool) (*models.AccountConfig, error) {
	sealed, err := s.sealer.Seal(in.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("seal secret: %w", err)
	}
	row := in
	row.SecretKey = sealed
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.AccountConfig
		err := tx.Order("id asc").First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row.ID = 0
			return tx.Create(&row).Error
		case err != nil:
			return err
		case !replace:
			return ErrAlreadyConfigured
		}
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
		return tx.Save(&row).Error
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyConfigured) {
			return nil, err
		}
		return nil, fmt.Errorf("save account: %w", err)
	}
	row.SecretKey = in.SecretKey
	return &row, nil
}
