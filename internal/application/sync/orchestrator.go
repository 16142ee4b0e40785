package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/menucloud/backend/internal/domain/catalog"
	"github.com/menucloud/backend/internal/domain/erp"
	syncdomain "github.com/menucloud/backend/internal/domain/sync"
	"github.com/menucloud/backend/internal/domain/tenant"
	"github.com/menucloud/backend/internal/infrastructure/runlock"
	"go.uber.org/zap"
)

// RunError marks a run that terminated in a phase. Record-level errors
// never produce a RunError; only configuration and connection-level
// failures do.
type RunError struct {
	Phase syncdomain.Phase
	Err   error
}

// Error implements the error interface
func (e *RunError) Error() string {
	return fmt.Sprintf("sync failed in phase %s: %v", e.Phase, e.Err)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Err
}

// RunResult aggregates the per-phase reports of a completed run
type RunResult struct {
	Categories *syncdomain.Report `json:"categories,omitempty"`
	Products   *syncdomain.Report `json:"products,omitempty"`
	Prices     *syncdomain.Report `json:"prices,omitempty"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
}

// Orchestrator drives reconciliation runs for tenants. Each run holds
// the tenant's lock end to end and opens the external connection per
// phase, releasing it on every exit path.
type Orchestrator struct {
	tenants    tenant.Repository
	categories catalog.CategoryRepository
	opener     erp.Opener
	catRecon   *CategoryReconciler
	prodRecon  *ProductReconciler
	locker     runlock.Locker
	log        *zap.Logger
}

// NewOrchestrator creates a sync orchestrator
func NewOrchestrator(
	tenants tenant.Repository,
	categories catalog.CategoryRepository,
	opener erp.Opener,
	catRecon *CategoryReconciler,
	prodRecon *ProductReconciler,
	locker runlock.Locker,
	log *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		tenants:    tenants,
		categories: categories,
		opener:     opener,
		catRecon:   catRecon,
		prodRecon:  prodRecon,
		locker:     locker,
		log:        log.Named("sync"),
	}
}

// TestConnection probes the tenant's ERP credentials without touching
// the catalog. Incomplete settings fail the probe with the validation
// message; no lock is taken.
func (o *Orchestrator) TestConnection(ctx context.Context, tenantID uuid.UUID) (bool, string, error) {
	t, err := o.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return false, "", err
	}

	ok, message := o.opener.Test(ctx, t.ERP)
	return ok, message, nil
}

// FullSync runs the complete phase sequence: categories, products, and
// optionally a price refresh. The tenant's last sync date advances only
// when every phase completes.
func (o *Orchestrator) FullSync(ctx context.Context, tenantID uuid.UUID, withPrices bool) (*RunResult, error) {
	release, err := o.locker.Acquire(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer release()

	t, err := o.loadSyncableTenant(ctx, tenantID)
	if err != nil {
		return nil, &RunError{Phase: syncdomain.PhaseIdle, Err: err}
	}

	result := &RunResult{StartedAt: time.Now()}
	phase := syncdomain.PhaseIdle

	// Categories
	phase = o.advance(phase, syncdomain.PhaseCategories, tenantID)
	var categoryIndex map[string]uuid.UUID
	err = o.withSession(ctx, t.ERP, func(session erp.Session) error {
		records, fetchErr := session.FetchCategories(ctx)
		if fetchErr != nil {
			return fetchErr
		}
		var reconErr error
		result.Categories, categoryIndex, reconErr = o.catRecon.Reconcile(ctx, tenantID, records)
		return reconErr
	})
	if err != nil {
		return result, &RunError{Phase: phase, Err: err}
	}

	// Products
	phase = o.advance(phase, syncdomain.PhaseProducts, tenantID)
	err = o.withSession(ctx, t.ERP, func(session erp.Session) error {
		records, fetchErr := session.FetchProducts(ctx)
		if fetchErr != nil {
			return fetchErr
		}
		var reconErr error
		result.Products, reconErr = o.prodRecon.Reconcile(ctx, tenantID, records, categoryIndex)
		return reconErr
	})
	if err != nil {
		return result, &RunError{Phase: phase, Err: err}
	}

	// Price refresh, optional
	if withPrices {
		phase = o.advance(phase, syncdomain.PhaseStockRefresh, tenantID)
		err = o.withSession(ctx, t.ERP, func(session erp.Session) error {
			records, fetchErr := session.FetchPrices(ctx)
			if fetchErr != nil {
				return fetchErr
			}
			var reconErr error
			result.Prices, reconErr = o.prodRecon.RefreshPrices(ctx, tenantID, records)
			return reconErr
		})
		if err != nil {
			return result, &RunError{Phase: phase, Err: err}
		}
	}

	o.advance(phase, syncdomain.PhaseDone, tenantID)
	result.FinishedAt = time.Now()

	if err := o.tenants.MarkSynced(ctx, tenantID, result.FinishedAt); err != nil {
		return result, &RunError{Phase: syncdomain.PhaseDone, Err: err}
	}

	o.log.Info("full sync finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Duration("elapsed", result.FinishedAt.Sub(result.StartedAt)))

	return result, nil
}

// SyncCategories reconciles only the category phase
func (o *Orchestrator) SyncCategories(ctx context.Context, tenantID uuid.UUID) (*syncdomain.Report, error) {
	release, err := o.locker.Acquire(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer release()

	t, err := o.loadSyncableTenant(ctx, tenantID)
	if err != nil {
		return nil, &RunError{Phase: syncdomain.PhaseIdle, Err: err}
	}

	var report *syncdomain.Report
	err = o.withSession(ctx, t.ERP, func(session erp.Session) error {
		records, fetchErr := session.FetchCategories(ctx)
		if fetchErr != nil {
			return fetchErr
		}
		var reconErr error
		report, _, reconErr = o.catRecon.Reconcile(ctx, tenantID, records)
		return reconErr
	})
	if err != nil {
		return nil, &RunError{Phase: syncdomain.PhaseCategories, Err: err}
	}

	if err := o.tenants.MarkSynced(ctx, tenantID, time.Now()); err != nil {
		return report, &RunError{Phase: syncdomain.PhaseDone, Err: err}
	}
	return report, nil
}

// SyncProducts reconciles only the product phase, resolving category
// references against the already-synced catalog.
func (o *Orchestrator) SyncProducts(ctx context.Context, tenantID uuid.UUID) (*syncdomain.Report, error) {
	release, err := o.locker.Acquire(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer release()

	t, err := o.loadSyncableTenant(ctx, tenantID)
	if err != nil {
		return nil, &RunError{Phase: syncdomain.PhaseIdle, Err: err}
	}

	categoryIndex, err := o.loadCategoryIndex(ctx, tenantID)
	if err != nil {
		return nil, &RunError{Phase: syncdomain.PhaseProducts, Err: err}
	}

	var report *syncdomain.Report
	err = o.withSession(ctx, t.ERP, func(session erp.Session) error {
		records, fetchErr := session.FetchProducts(ctx)
		if fetchErr != nil {
			return fetchErr
		}
		var reconErr error
		report, reconErr = o.prodRecon.Reconcile(ctx, tenantID, records, categoryIndex)
		return reconErr
	})
	if err != nil {
		return nil, &RunError{Phase: syncdomain.PhaseProducts, Err: err}
	}

	if err := o.tenants.MarkSynced(ctx, tenantID, time.Now()); err != nil {
		return report, &RunError{Phase: syncdomain.PhaseDone, Err: err}
	}
	return report, nil
}

// RefreshPrices applies current external prices without a full sync.
// The price phase alone does not advance the last sync date.
func (o *Orchestrator) RefreshPrices(ctx context.Context, tenantID uuid.UUID) (*syncdomain.Report, error) {
	release, err := o.locker.Acquire(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	defer release()

	t, err := o.loadSyncableTenant(ctx, tenantID)
	if err != nil {
		return nil, &RunError{Phase: syncdomain.PhaseIdle, Err: err}
	}

	var report *syncdomain.Report
	err = o.withSession(ctx, t.ERP, func(session erp.Session) error {
		records, fetchErr := session.FetchPrices(ctx)
		if fetchErr != nil {
			return fetchErr
		}
		var reconErr error
		report, reconErr = o.prodRecon.RefreshPrices(ctx, tenantID, records)
		return reconErr
	})
	if err != nil {
		return nil, &RunError{Phase: syncdomain.PhaseStockRefresh, Err: err}
	}
	return report, nil
}

// loadSyncableTenant loads the tenant and checks its credentials before
// any connection attempt.
func (o *Orchestrator) loadSyncableTenant(ctx context.Context, tenantID uuid.UUID) (*tenant.Tenant, error) {
	t, err := o.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !t.ERP.Enabled {
		return nil, fmt.Errorf("erp sync is disabled for tenant %s", t.Slug)
	}
	if err := t.ERP.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// loadCategoryIndex builds the code→ID index from the local catalog
func (o *Orchestrator) loadCategoryIndex(ctx context.Context, tenantID uuid.UUID) (map[string]uuid.UUID, error) {
	all, err := o.categories.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	index := make(map[string]uuid.UUID, len(all))
	for _, c := range all {
		if c.HasCode() {
			index[c.CodeValue()] = c.ID
		}
	}
	return index, nil
}

// advance moves the run to the next phase, asserting the transition is
// a legal edge of the phase machine.
func (o *Orchestrator) advance(from, to syncdomain.Phase, tenantID uuid.UUID) syncdomain.Phase {
	if !syncdomain.CanTransition(from, to) {
		o.log.Error("illegal phase transition",
			zap.String("tenant_id", tenantID.String()),
			zap.String("from", string(from)),
			zap.String("to", string(to)))
		return from
	}
	o.log.Debug("phase transition",
		zap.String("tenant_id", tenantID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(to)))
	return to
}

// withSession opens an ERP session, runs fn, and closes the session on
// every exit path.
func (o *Orchestrator) withSession(ctx context.Context, settings tenant.ERPSettings, fn func(erp.Session) error) error {
	session, err := o.opener.Open(ctx, settings)
	if err != nil {
		return err
	}
	defer session.Close()

	return fn(session)
}
