package inventory

import (
	"context"
	"fmt"

	"github.com/arencloud/chione/internal/glacier"
	"github.com/arencloud/chione/internal/models"
)

// SyncVaults lists the provider's vaults and creates a record for each one not
// seen before. Known records are returned untouched, so job state and cached
// inventories survive. The result follows the provider's order.
func (s *Service) SyncVaults(ctx context.Context) ([]models.Vault, error) {
	p, err := s.providers.Provider(ctx)
	if err != nil {
		return nil, err
	}
	live, err := p.ListVaults(ctx)
	if err != nil {
		return nil, providerFailure("list vaults", "*", err)
	}

	out := make([]models.Vault, 0, len(live))
	created := 0
	for _, lv := range live {
		v, err := s.store.FindByName(ctx, lv.Name)
		if err != nil {
			return nil, err
		}
		if v == nil {
			nv := discovered(lv)
			ok, err := s.store.CreateIfAbsent(ctx, &nv)
			if err != nil {
				return nil, err
			}
			if ok {
				created++
				out = append(out, nv)
				continue
			}
			// someone else created it between the lookup and the insert
			if v, err = s.store.FindByName(ctx, lv.Name); err != nil {
				return nil, err
			}
			if v == nil {
				return nil, fmt.Errorf("vault %q: insert conflicted but no record found", lv.Name)
			}
		}
		out = append(out, *v)
	}
	s.logger.Info("vaults synced", "listed", len(live), "created", created)
	return out, nil
}

func discovered(lv glacier.VaultSummary) models.Vault {
	return models.Vault{
		Name:            lv.Name,
		ARN:             lv.ARN,
		SizeInBytes:     lv.SizeInBytes,
		CreationDate:    lv.CreationDate,
		ArchiveCount:    lv.ArchiveCount,
		InventoryStatus: models.InventoryNotRequested,
	}
}
