package inventory

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/arencloud/chione/internal/models"
)

// inventoryDocument is the JSON body of a completed inventory-retrieval job.
type inventoryDocument struct {
	VaultARN      string `json:"VaultARN"`
	InventoryDate string `json:"InventoryDate"`
	ArchiveList   []struct {
		ArchiveID          string `json:"ArchiveId"`
		ArchiveDescription string `json:"ArchiveDescription"`
		CreationDate       string `json:"CreationDate"`
		Size               int64  `json:"Size"`
		SHA256TreeHash     string `json:"SHA256TreeHash"`
	} `json:"ArchiveList"`
}

// ParseInventory decodes a job output into archives, in provider order. The
// result is never nil.
func ParseInventory(r io.Reader) ([]models.Archive, error) {
	var doc inventoryDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode inventory: %w", err)
	}
	out := make([]models.Archive, 0, len(doc.ArchiveList))
	for _, a := range doc.ArchiveList {
		if a.ArchiveID == "" {
			return nil, fmt.Errorf("decode inventory: archive #%d has no id", len(out))
		}
		out = append(out, models.Archive{
			ArchiveID:    a.ArchiveID,
			Description:  a.ArchiveDescription,
			CreationDate: a.CreationDate,
			Size:         a.Size,
			TreeHash:     a.SHA256TreeHash,
		})
	}
	return out, nil
}
