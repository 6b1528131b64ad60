package inventory

import "github.com/arencloud/chione/internal/models"

// The transitions below never touch the input; they return the next record.

func requestedWith(v models.Vault, jobID string) models.Vault {
	v.InventoryStatus = models.InventoryRequested
	v.InventoryJobID = jobID
	return v
}

func markedAvailable(v models.Vault) models.Vault {
	v.InventoryStatus = models.InventoryAvailable
	return v
}

// markedLost resets a vault whose job the provider no longer knows about so the
// next reconciliation starts a new one.
func markedLost(v models.Vault) models.Vault {
	v.InventoryStatus = models.InventoryNotRequested
	v.InventoryJobID = ""
	return v
}

func withArchives(v models.Vault, archives []models.Archive) models.Vault {
	if archives == nil {
		archives = []models.Archive{}
	}
	v.Archives = archives
	return v
}
