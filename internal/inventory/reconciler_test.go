package inventory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/arencloud/chione/internal/glacier"
	"github.com/arencloud/chione/internal/logging"
	"github.com/arencloud/chione/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var inventoryJob = glacier.JobRequest{Type: glacier.JobInventoryRetrieval}

func vault(status models.InventoryStatus, jobID string) models.Vault {
	return models.Vault{Name: "photos", ARN: "arn:aws:glacier:us-east-1:123:vaults/photos", InventoryStatus: status, InventoryJobID: jobID}
}

func TestReconcileNotRequestedStartsJob(t *testing.T) {
	p := &mockProvider{}
	p.On("StartJob", mock.Anything, "photos", inventoryJob).Return("job-1", nil).Once()
	st := newMemStore()
	in := vault(models.InventoryNotRequested, "")

	out, status, err := NewReconciler(p, st, logging.Nop()).Reconcile(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, models.InventoryRequested, status)
	assert.Equal(t, "job-1", out.InventoryJobID)
	assert.Equal(t, 1, st.upserts)
	assert.Equal(t, "job-1", st.get("photos").InventoryJobID)
	assert.Equal(t, models.InventoryNotRequested, in.InventoryStatus, "input must not be mutated")
	p.AssertExpectations(t)
}

func TestReconcileStartFailureLeavesRecord(t *testing.T) {
	p := &mockProvider{}
	p.On("StartJob", mock.Anything, "photos", inventoryJob).Return("", errors.New("throttled")).Once()
	st := newMemStore(vault(models.InventoryNotRequested, ""))

	_, status, err := NewReconciler(p, st, logging.Nop()).Reconcile(context.Background(), vault(models.InventoryNotRequested, ""))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "start job", pe.Op)
	assert.Equal(t, models.InventoryNotRequested, status)
	assert.Equal(t, 0, st.upserts)
}

func TestReconcileRequested(t *testing.T) {
	cases := []struct {
		name       string
		state      glacier.JobState
		err        error
		wantStatus models.InventoryStatus
		wantJobID  string
		wantWrites int
		wantErr    bool
	}{
		{name: "completed", state: glacier.JobState{Completed: true}, wantStatus: models.InventoryAvailable, wantJobID: "job-1", wantWrites: 1},
		{name: "running", state: glacier.JobState{StatusCode: "InProgress"}, wantStatus: models.InventoryRequested, wantJobID: "job-1"},
		{name: "lost", err: fmt.Errorf("describe: %w", glacier.ErrJobNotFound), wantStatus: models.InventoryNotRequested, wantJobID: "", wantWrites: 1},
		{name: "provider down", err: errors.New("connection reset"), wantStatus: models.InventoryRequested, wantJobID: "job-1", wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := &mockProvider{}
			p.On("DescribeJob", mock.Anything, "photos", "job-1").Return(c.state, c.err).Once()
			st := newMemStore(vault(models.InventoryRequested, "job-1"))

			out, status, err := NewReconciler(p, st, logging.Nop()).Reconcile(context.Background(), vault(models.InventoryRequested, "job-1"))
			if c.wantErr {
				assert.ErrorIs(t, err, ErrProviderUnavailable)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, c.wantStatus, status)
			assert.Equal(t, c.wantJobID, out.InventoryJobID)
			assert.Equal(t, c.wantWrites, st.upserts)
			stored := st.get("photos")
			assert.Equal(t, c.wantStatus, stored.InventoryStatus)
			assert.Equal(t, c.wantJobID, stored.InventoryJobID)
			p.AssertExpectations(t)
			p.AssertNotCalled(t, "StartJob", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestReconcileRequestedWithoutJobIDResets(t *testing.T) {
	p := &mockProvider{}
	st := newMemStore()

	out, status, err := NewReconciler(p, st, logging.Nop()).Reconcile(context.Background(), vault(models.InventoryRequested, ""))
	require.NoError(t, err)
	assert.Equal(t, models.InventoryNotRequested, status)
	assert.Empty(t, out.InventoryJobID)
	p.AssertNotCalled(t, "DescribeJob", mock.Anything, mock.Anything, mock.Anything)
}

func TestReconcileAvailableIsTerminal(t *testing.T) {
	p := &mockProvider{}
	st := newMemStore()

	_, status, err := NewReconciler(p, st, logging.Nop()).Reconcile(context.Background(), vault(models.InventoryAvailable, "job-1"))
	require.NoError(t, err)
	assert.Equal(t, models.InventoryAvailable, status)
	assert.Equal(t, 0, st.upserts)
	assert.Empty(t, p.Calls)
}

func TestReconcileUnknownStatus(t *testing.T) {
	_, _, err := NewReconciler(&mockProvider{}, newMemStore(), logging.Nop()).Reconcile(context.Background(), vault("not_found", ""))
	assert.Error(t, err)
}

func TestReconcileStoreFailureIsReturned(t *testing.T) {
	p := &mockProvider{}
	p.On("DescribeJob", mock.Anything, "photos", "job-1").Return(glacier.JobState{Completed: true}, nil).Once()
	st := newMemStore(vault(models.InventoryRequested, "job-1"))
	st.failOn = "upsert"

	_, _, err := NewReconciler(p, st, logging.Nop()).Reconcile(context.Background(), vault(models.InventoryRequested, "job-1"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrProviderUnavailable))
	assert.Equal(t, models.InventoryRequested, st.get("photos").InventoryStatus)
}

func TestRepeatedReconcileNeverSkipsRequested(t *testing.T) {
	p := &mockProvider{}
	p.On("StartJob", mock.Anything, "photos", inventoryJob).Return("job-1", nil).Once()
	p.On("DescribeJob", mock.Anything, "photos", "job-1").Return(glacier.JobState{}, nil)
	st := newMemStore(vault(models.InventoryNotRequested, ""))
	r := NewReconciler(p, st, logging.Nop())

	v := st.get("photos")
	seen := []models.InventoryStatus{}
	for i := 0; i < 4; i++ {
		var status models.InventoryStatus
		var err error
		v, status, err = r.Reconcile(context.Background(), v)
		require.NoError(t, err)
		seen = append(seen, status)
	}
	assert.Equal(t, []models.InventoryStatus{
		models.InventoryRequested, models.InventoryRequested, models.InventoryRequested, models.InventoryRequested,
	}, seen)
	p.AssertNumberOfCalls(t, "StartJob", 1)
}

func TestTransitionsArePure(t *testing.T) {
	in := vault(models.InventoryRequested, "job-1")
	lost := markedLost(in)
	assert.Equal(t, models.InventoryNotRequested, lost.InventoryStatus)
	assert.Empty(t, lost.InventoryJobID)
	assert.Equal(t, "job-1", in.InventoryJobID)

	av := markedAvailable(in)
	assert.Equal(t, models.InventoryAvailable, av.InventoryStatus)
	assert.Equal(t, "job-1", av.InventoryJobID)

	assert.NotNil(t, withArchives(in, nil).Archives)
	assert.Nil(t, in.Archives)
}
