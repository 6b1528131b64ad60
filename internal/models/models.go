package models

import (
	"time"
)

// InventoryStatus tracks where a vault's inventory-retrieval job stands.
type InventoryStatus string

const (
	InventoryNotRequested InventoryStatus = "not_requested"
	InventoryRequested    InventoryStatus = "requested"
	InventoryAvailable    InventoryStatus = "available"
)

func (s InventoryStatus) Valid() bool {
	switch s {
	case InventoryNotRequested, InventoryRequested, InventoryAvailable:
		return true
	}
	return false
}

// Vault is the persisted view of a provider vault and its inventory job.
// The descriptive fields are a snapshot taken when the vault was first seen.
type Vault struct {
	ID                uint            `gorm:"primaryKey" json:"-"`
	Name              string          `gorm:"uniqueIndex;not null" json:"name"`
	ARN               string          `json:"arn"`
	SizeInBytes       int64           `json:"sizeInBytes"`
	CreationDate      string          `json:"creationDate"`
	ArchiveCount      int64           `json:"archiveCount"`
	InventoryStatus   InventoryStatus `gorm:"not null;default:not_requested" json:"inventoryStatus"`
	InventoryJobID    string          `json:"inventoryJobId,omitempty"`
	InventoryCachedAt *time.Time      `json:"inventoryCachedAt,omitempty"`
	// Archives is nil until the inventory has been fetched once.
	Archives  []Archive `gorm:"foreignKey:VaultID;constraint:OnDelete:CASCADE" json:"archives,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Cached reports whether the archive list has been fetched and stored.
func (v *Vault) Cached() bool { return v.InventoryCachedAt != nil || v.Archives != nil }

// Archive is one entry of a vault inventory. Position keeps provider order.
type Archive struct {
	ID           uint   `gorm:"primaryKey" json:"-"`
	VaultID      uint   `gorm:"index;not null" json:"-"`
	Position     int    `gorm:"not null" json:"-"`
	ArchiveID    string `gorm:"not null" json:"id"`
	Description  string `json:"description"`
	CreationDate string `json:"creationDate"`
	Size         int64  `json:"size"`
	TreeHash     string `json:"sha256TreeHash,omitempty"`
}

func (Archive) TableName() string { return "vault_archives" }

// AccountConfig holds the provider credentials. There is at most one row.
type AccountConfig struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Account     string    `gorm:"not null" json:"account"`
	AccessKey   string    `gorm:"not null" json:"key"`
	SecretKey   string    `gorm:"not null" json:"secret"`
	Region      string    `gorm:"not null" json:"region"`
	SNSTopicARN string    `json:"snsTopicArn,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Redacted returns a copy safe to hand back to API callers.
func (a AccountConfig) Redacted() AccountConfig {
	if a.SecretKey != "" {
		a.SecretKey = "********"
	}
	return a
}
