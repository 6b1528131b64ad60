package inventory

import (
	"context"
	"io"

	"github.com/arencloud/chione/internal/glacier"
	"github.com/arencloud/chione/internal/models"
)

// Provider is the archive provider as the core sees it; *glacier.Client
// satisfies it.
type Provider interface {
	ListVaults(ctx context.Context) ([]glacier.VaultSummary, error)
	StartJob(ctx context.Context, vault string, req glacier.JobRequest) (string, error)
	DescribeJob(ctx context.Context, vault, jobID string) (glacier.JobState, error)
	JobOutput(ctx context.Context, vault, jobID string) (io.ReadCloser, error)
}

// ProviderSource hands out a provider bound to the active account.
type ProviderSource interface {
	Provider(ctx context.Context) (Provider, error)
}

type ProviderSourceFunc func(ctx context.Context) (Provider, error)

func (f ProviderSourceFunc) Provider(ctx context.Context) (Provider, error) { return f(ctx) }

// Store persists vault records; *store.VaultStore satisfies it.
type Store interface {
	// FindByName returns nil, nil when the vault is unknown.
	FindByName(ctx context.Context, name string) (*models.Vault, error)
	Upsert(ctx context.Context, v *models.Vault) error
	// CreateIfAbsent inserts v unless a record with its name exists and
	// reports whether it did.
	CreateIfAbsent(ctx context.Context, v *models.Vault) (bool, error)
	List(ctx context.Context) ([]models.Vault, error)
}
