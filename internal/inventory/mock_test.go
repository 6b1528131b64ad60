package inventory

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/arencloud/chione/internal/glacier"
	"github.com/arencloud/chione/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) ListVaults(ctx context.Context) ([]glacier.VaultSummary, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]glacier.VaultSummary)
	return v, args.Error(1)
}

func (m *mockProvider) StartJob(ctx context.Context, vault string, req glacier.JobRequest) (string, error) {
	args := m.Called(ctx, vault, req)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) DescribeJob(ctx context.Context, vault, jobID string) (glacier.JobState, error) {
	args := m.Called(ctx, vault, jobID)
	return args.Get(0).(glacier.JobState), args.Error(1)
}

func (m *mockProvider) JobOutput(ctx context.Context, vault, jobID string) (io.ReadCloser, error) {
	args := m.Called(ctx, vault, jobID)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func sourceOf(p Provider) ProviderSource {
	return ProviderSourceFunc(func(context.Context) (Provider, error) { return p, nil })
}

func body(s string) io.ReadCloser { return io.NopCloser(strings.NewReader(s)) }

// memStore is an in-memory Store that hands out copies, like a database would.
type memStore struct {
	mu      sync.Mutex
	vaults  map[string]models.Vault
	upserts int
	creates int
	failOn  string // "upsert" makes Upsert fail
}

func newMemStore(vs ...models.Vault) *memStore {
	s := &memStore{vaults: map[string]models.Vault{}}
	for _, v := range vs {
		s.vaults[v.Name] = clone(v)
	}
	return s
}

func clone(v models.Vault) models.Vault {
	if v.Archives != nil {
		v.Archives = append([]models.Archive{}, v.Archives...)
	}
	return v
}

func (s *memStore) FindByName(ctx context.Context, name string) (*models.Vault, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vaults[name]
	if !ok {
		return nil, nil
	}
	c := clone(v)
	return &c, nil
}

func (s *memStore) Upsert(ctx context.Context, v *models.Vault) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn == "upsert" {
		return errors.New("database is locked")
	}
	s.upserts++
	s.vaults[v.Name] = clone(*v)
	return nil
}

func (s *memStore) CreateIfAbsent(ctx context.Context, v *models.Vault) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vaults[v.Name]; ok {
		return false, nil
	}
	s.creates++
	s.vaults[v.Name] = clone(*v)
	return true, nil
}

func (s *memStore) List(ctx context.Context) ([]models.Vault, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Vault, 0, len(s.vaults))
	for _, v := range s.vaults {
		out = append(out, clone(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) get(name string) models.Vault {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.vaults[name])
}
