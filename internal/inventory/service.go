// Package inventory drives inventory-retrieval jobs for stored vaults and
// caches their results so each job output is downloaded once.
package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/arencloud/chione/internal/glacier"
	"github.com/arencloud/chione/internal/logging"
	"github.com/arencloud/chione/internal/models"

	"golang.org/x/sync/singleflight"
)

// Inventory is the answer to an inventory request. Pending means the job has
// not finished yet and the caller should ask again later.
type Inventory struct {
	Vault    string                 `json:"vault"`
	Status   models.InventoryStatus `json:"status"`
	Pending  bool                   `json:"pending"`
	Archives []models.Archive       `json:"archives"`
}

// Service serializes work per vault name inside this process: concurrent
// callers for the same vault share one reconciliation and one output fetch.
// Separate processes may still race; the store keeps the first cached list.
type Service struct {
	store     Store
	providers ProviderSource
	logger    logging.Logger
	flights   singleflight.Group
}

func NewService(store Store, providers ProviderSource, logger logging.Logger) *Service {
	return &Service{store: store, providers: providers, logger: logger.With("component", "inventory")}
}

type reconciled struct {
	vault  models.Vault
	status models.InventoryStatus
}

// Inventory returns the cached archive list of a vault, driving its job
// forward when nothing is cached yet.
func (s *Service) Inventory(ctx context.Context, name string) (Inventory, error) {
	v, err := s.lookup(ctx, name)
	if err != nil {
		return Inventory{}, err
	}
	if v.Cached() {
		cacheHits.Inc()
		return cachedInventory(*v), nil
	}

	rec, err := s.reconcile(ctx, name, true)
	if err != nil {
		return Inventory{}, err
	}
	if rec.vault.Cached() {
		return cachedInventory(rec.vault), nil
	}
	if rec.status != models.InventoryAvailable {
		return Inventory{Vault: name, Status: rec.status, Pending: true}, nil
	}
	return s.fetch(ctx, name)
}

// Status reconciles a vault and reports where its job stands. It starts a job
// for a vault that has none.
func (s *Service) Status(ctx context.Context, name string) (models.InventoryStatus, error) {
	if _, err := s.lookup(ctx, name); err != nil {
		return "", err
	}
	rec, err := s.reconcile(ctx, name, true)
	if err != nil {
		return "", err
	}
	return rec.status, nil
}

// PollStatus is Status without the side effect of starting a job: only a
// requested vault is checked with the provider.
func (s *Service) PollStatus(ctx context.Context, name string) (models.InventoryStatus, error) {
	v, err := s.lookup(ctx, name)
	if err != nil {
		return "", err
	}
	if v.InventoryStatus != models.InventoryRequested {
		return v.InventoryStatus, nil
	}
	rec, err := s.reconcile(ctx, name, false)
	if err != nil {
		return "", err
	}
	return rec.status, nil
}

// RequestInventory starts an inventory job; the vault must be not_requested.
func (s *Service) RequestInventory(ctx context.Context, name string) (models.Vault, error) {
	v, err := s.lookup(ctx, name)
	if err != nil {
		return models.Vault{}, err
	}
	if v.InventoryStatus != models.InventoryNotRequested {
		return *v, fmt.Errorf("vault %q is %s: %w", name, v.InventoryStatus, ErrAlreadyRequested)
	}
	rec, err := s.reconcile(ctx, name, true)
	if err != nil {
		return models.Vault{}, err
	}
	return rec.vault, nil
}

// Vaults lists stored records without asking the provider.
func (s *Service) Vaults(ctx context.Context) ([]models.Vault, error) {
	return s.store.List(ctx)
}

func (s *Service) lookup(ctx context.Context, name string) (*models.Vault, error) {
	v, err := s.store.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("vault %q: %w", name, ErrUnknownVault)
	}
	return v, nil
}

// reconcile runs one reconciler step on the freshly loaded record. When
// allowStart is false a not_requested vault is reported as is.
func (s *Service) reconcile(ctx context.Context, name string, allowStart bool) (reconciled, error) {
	key := "reconcile/" + name
	if !allowStart {
		key = "poll/" + name
	}
	// the shared call outlives any single caller
	ctx = context.WithoutCancel(ctx)
	res, err, _ := s.flights.Do(key, func() (any, error) {
		v, err := s.lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		if v.Cached() || v.InventoryStatus == models.InventoryAvailable ||
			(!allowStart && v.InventoryStatus != models.InventoryRequested) {
			return reconciled{vault: *v, status: v.InventoryStatus}, nil
		}
		p, err := s.providers.Provider(ctx)
		if err != nil {
			return nil, err
		}
		next, status, err := NewReconciler(p, s.store, s.logger).Reconcile(ctx, *v)
		if err != nil {
			return nil, err
		}
		return reconciled{vault: next, status: status}, nil
	})
	if err != nil {
		return reconciled{}, err
	}
	return res.(reconciled), nil
}

// fetch downloads and caches the output of an available vault's job.
func (s *Service) fetch(ctx context.Context, name string) (Inventory, error) {
	ctx = context.WithoutCancel(ctx)
	res, err, _ := s.flights.Do("fetch/"+name, func() (any, error) {
		v, err := s.lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		if v.Cached() {
			return cachedInventory(*v), nil
		}
		if v.InventoryStatus != models.InventoryAvailable {
			return Inventory{Vault: name, Status: v.InventoryStatus, Pending: true}, nil
		}
		p, err := s.providers.Provider(ctx)
		if err != nil {
			return nil, err
		}
		body, err := p.JobOutput(ctx, name, v.InventoryJobID)
		if errors.Is(err, glacier.ErrJobNotFound) {
			jobsLost.Inc()
			s.logger.Info("inventory job output gone, resetting", "vault", name, "jobId", v.InventoryJobID)
			next := markedLost(*v)
			if err := s.store.Upsert(ctx, &next); err != nil {
				return nil, err
			}
			return Inventory{Vault: name, Status: next.InventoryStatus, Pending: true}, nil
		}
		if err != nil {
			return nil, providerFailure("get job output", name, err)
		}
		defer body.Close()
		outputFetches.Inc()
		archives, err := ParseInventory(body)
		if err != nil {
			return nil, providerFailure("parse job output", name, err)
		}
		next := withArchives(*v, archives)
		if err := s.store.Upsert(ctx, &next); err != nil {
			return nil, err
		}
		s.logger.Info("inventory cached", "vault", name, "jobId", v.InventoryJobID, "archives", len(archives))
		return cachedInventory(next), nil
	})
	if err != nil {
		return Inventory{}, err
	}
	return res.(Inventory), nil
}

func cachedInventory(v models.Vault) Inventory {
	archives := v.Archives
	if archives == nil {
		archives = []models.Archive{}
	}
	return Inventory{Vault: v.Name, Status: v.InventoryStatus, Archives: archives}
}
