package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/arencloud/chione/internal/glacier"
	"github.com/arencloud/chione/internal/logging"
	"github.com/arencloud/chione/internal/models"
)

// Reconciler advances one vault's inventory job by at most one step. Each call
// makes at most one provider call and, when the state changes, one upsert.
type Reconciler struct {
	provider Provider
	store    Store
	logger   logging.Logger
}

func NewReconciler(p Provider, s Store, logger logging.Logger) *Reconciler {
	return &Reconciler{provider: p, store: s, logger: logger}
}

// Reconcile returns the record as stored after the step and its status.
// Provider failures other than a purged job come back as *ProviderError and
// leave the record untouched.
func (r *Reconciler) Reconcile(ctx context.Context, v models.Vault) (models.Vault, models.InventoryStatus, error) {
	switch v.InventoryStatus {
	case models.InventoryAvailable:
		return v, models.InventoryAvailable, nil

	case models.InventoryRequested:
		if v.InventoryJobID == "" {
			r.logger.Error("requested vault has no job id, resetting", "vault", v.Name)
			return r.persist(ctx, markedLost(v))
		}
		st, err := r.provider.DescribeJob(ctx, v.Name, v.InventoryJobID)
		switch {
		case errors.Is(err, glacier.ErrJobNotFound):
			jobsLost.Inc()
			r.logger.Info("inventory job lost, resetting", "vault", v.Name, "jobId", v.InventoryJobID)
			return r.persist(ctx, markedLost(v))
		case err != nil:
			return v, v.InventoryStatus, providerFailure("describe job", v.Name, err)
		case st.Completed:
			jobsCompleted.Inc()
			r.logger.Info("inventory job completed", "vault", v.Name, "jobId", v.InventoryJobID, "statusCode", st.StatusCode)
			return r.persist(ctx, markedAvailable(v))
		default:
			r.logger.Debug("inventory job still running", "vault", v.Name, "jobId", v.InventoryJobID)
			return v, models.InventoryRequested, nil
		}

	case models.InventoryNotRequested, "":
		id, err := r.provider.StartJob(ctx, v.Name, glacier.JobRequest{Type: glacier.JobInventoryRetrieval})
		if err != nil {
			return v, models.InventoryNotRequested, providerFailure("start job", v.Name, err)
		}
		jobsStarted.Inc()
		r.logger.Info("inventory job started", "vault", v.Name, "jobId", id)
		return r.persist(ctx, requestedWith(v, id))
	}
	return v, v.InventoryStatus, fmt.Errorf("vault %q: unknown inventory status %q", v.Name, v.InventoryStatus)
}

func (r *Reconciler) persist(ctx context.Context, next models.Vault) (models.Vault, models.InventoryStatus, error) {
	if err := r.store.Upsert(ctx, &next); err != nil {
		return next, next.InventoryStatus, err
	}
	return next, next.InventoryStatus, nil
}

func providerFailure(op, vault string, err error) error {
	pe := &ProviderError{Op: op, Vault: vault, Err: err}
	providerErrors.WithLabelValues(op).Inc()
	return pe
}
