// Package sync orchestrates catalog reconciliation against a tenant's
// external ERP. Reconcilers upsert by ERP code and collect record-level
// failures without aborting the run; the orchestrator drives the phase
// state machine and owns connection and lock lifecycles.
package sync

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/menucloud/backend/internal/domain/catalog"
	"github.com/menucloud/backend/internal/domain/erp"
	"github.com/menucloud/backend/internal/domain/shared"
	syncdomain "github.com/menucloud/backend/internal/domain/sync"
	"go.uber.org/zap"
)

// CategoryReconciler upserts external category records into the catalog
type CategoryReconciler struct {
	categories catalog.CategoryRepository
	events     shared.EventPublisher
	log        *zap.Logger
}

// NewCategoryReconciler creates a category reconciler
func NewCategoryReconciler(categories catalog.CategoryRepository, events shared.EventPublisher, log *zap.Logger) *CategoryReconciler {
	return &CategoryReconciler{categories: categories, events: events, log: log.Named("sync.categories")}
}

// Reconcile upserts every record by (tenant, code) and resolves parent
// links in a second pass, so ordering in the source never matters. It
// returns the phase report and a code→ID index for product resolution.
func (r *CategoryReconciler) Reconcile(ctx context.Context, tenantID uuid.UUID, records []erp.CategoryRecord) (*syncdomain.Report, map[string]uuid.UUID, error) {
	report := syncdomain.NewReport(syncdomain.PhaseCategories)

	type pending struct {
		category *catalog.Category
		record   erp.CategoryRecord
		created  bool
		changed  bool
	}

	index := make(map[string]uuid.UUID, len(records))
	resolved := make([]*pending, 0, len(records))
	byCode := make(map[string]*pending, len(records))

	// First pass: upsert fields, no parent links yet.
	for i, record := range records {
		code := strings.ToUpper(strings.TrimSpace(record.Code))
		if code == "" {
			report.AddError(record.Name, syncdomain.ErrCodeValidation, "category code is empty")
			continue
		}
		if _, seen := byCode[code]; seen {
			report.AddError(code, syncdomain.ErrCodeDuplicate, "duplicate category code in source")
			continue
		}

		existing, err := r.categories.FindByCode(ctx, tenantID, code)
		switch {
		case err == nil:
			changed, applyErr := existing.ApplyExternal(record.Name, i)
			if applyErr != nil {
				report.AddError(code, syncdomain.ErrCodeValidation, applyErr.Error())
				continue
			}
			p := &pending{category: existing, record: record, changed: changed}
			resolved = append(resolved, p)
			byCode[code] = p

		case errors.Is(err, shared.ErrNotFound):
			created, newErr := catalog.NewExternalCategory(tenantID, code, record.Name, i)
			if newErr != nil {
				report.AddError(code, syncdomain.ErrCodeValidation, newErr.Error())
				continue
			}
			p := &pending{category: created, record: record, created: true}
			resolved = append(resolved, p)
			byCode[code] = p

		default:
			report.AddError(code, syncdomain.ErrCodePersistence, err.Error())
		}
	}

	// Second pass: resolve parent links against the full set.
	for _, p := range resolved {
		var parentID *uuid.UUID
		if p.record.ParentCode != nil {
			parentCode := strings.ToUpper(strings.TrimSpace(*p.record.ParentCode))
			parent, ok := byCode[parentCode]
			if !ok {
				report.AddError(p.category.CodeValue(), syncdomain.ErrCodeReference,
					"parent category "+parentCode+" not found in source")
				// category stays a root node
			} else {
				id := parent.category.ID
				parentID = &id
			}
		}
		if p.category.SetParent(parentID) {
			p.changed = true
		}
	}

	for _, p := range resolved {
		if !p.created && !p.changed {
			index[p.category.CodeValue()] = p.category.ID
			report.AddSkipped()
			continue
		}

		if err := r.categories.Save(ctx, p.category); err != nil {
			report.AddError(p.category.CodeValue(), syncdomain.ErrCodePersistence, err.Error())
			continue
		}
		publishEvents(ctx, r.events, p.category)

		index[p.category.CodeValue()] = p.category.ID
		if p.created {
			report.AddCreated()
		} else {
			report.AddUpdated()
		}
	}

	r.log.Info("category reconciliation finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(report.Errors)))

	return report, index, nil
}

// publishEvents flushes an aggregate's pending domain events after a
// successful save. Event handling must not fail the run.
func publishEvents(ctx context.Context, events shared.EventPublisher, aggregate shared.AggregateRoot) {
	if events == nil {
		return
	}
	pending := aggregate.GetDomainEvents()
	if len(pending) == 0 {
		return
	}
	_ = events.Publish(ctx, pending...)
	aggregate.ClearDomainEvents()
}
