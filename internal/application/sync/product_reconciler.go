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

// ProductReconciler upserts external product records into the catalog
type ProductReconciler struct {
	products catalog.ProductRepository
	events   shared.EventPublisher
	log      *zap.Logger
}

// NewProductReconciler creates a product reconciler
func NewProductReconciler(products catalog.ProductRepository, events shared.EventPublisher, log *zap.Logger) *ProductReconciler {
	return &ProductReconciler{products: products, events: events, log: log.Named("sync.products")}
}

// Reconcile upserts every record by (tenant, code). A record whose
// category code is not in the index is an error and is skipped; it never
// aborts the loop. Platform-local product fields are preserved.
func (r *ProductReconciler) Reconcile(ctx context.Context, tenantID uuid.UUID, records []erp.ProductRecord, categoryIndex map[string]uuid.UUID) (*syncdomain.Report, error) {
	report := syncdomain.NewReport(syncdomain.PhaseProducts)
	seen := make(map[string]struct{}, len(records))

	for _, record := range records {
		code := strings.ToUpper(strings.TrimSpace(record.Code))
		if code == "" {
			report.AddError(record.Name, syncdomain.ErrCodeValidation, "product code is empty")
			continue
		}
		if _, dup := seen[code]; dup {
			report.AddError(code, syncdomain.ErrCodeDuplicate, "duplicate product code in source")
			continue
		}
		seen[code] = struct{}{}

		categoryCode := strings.ToUpper(strings.TrimSpace(record.CategoryCode))
		categoryID, ok := categoryIndex[categoryCode]
		if !ok {
			report.AddError(code, syncdomain.ErrCodeReference,
				"category "+categoryCode+" not found for product")
			continue
		}

		existing, err := r.products.FindByCode(ctx, tenantID, code)
		switch {
		case err == nil:
			changed, applyErr := existing.ApplyExternal(record.Name, categoryID, record.Price,
				record.CalorieCount, record.CookTime)
			if applyErr != nil {
				report.AddError(code, syncdomain.ErrCodeValidation, applyErr.Error())
				continue
			}
			if !changed {
				report.AddSkipped()
				continue
			}
			if saveErr := r.products.Save(ctx, existing); saveErr != nil {
				report.AddError(code, syncdomain.ErrCodePersistence, saveErr.Error())
				continue
			}
			publishEvents(ctx, r.events, existing)
			report.AddUpdated()

		case errors.Is(err, shared.ErrNotFound):
			created, newErr := catalog.NewExternalProduct(tenantID, categoryID, code, record.Name,
				record.Price, record.CalorieCount, record.CookTime)
			if newErr != nil {
				report.AddError(code, syncdomain.ErrCodeValidation, newErr.Error())
				continue
			}
			if saveErr := r.products.Save(ctx, created); saveErr != nil {
				report.AddError(code, syncdomain.ErrCodePersistence, saveErr.Error())
				continue
			}
			publishEvents(ctx, r.events, created)
			report.AddCreated()

		default:
			report.AddError(code, syncdomain.ErrCodePersistence, err.Error())
		}
	}

	r.log.Info("product reconciliation finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("created", report.Created),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(report.Errors)))

	return report, nil
}

// RefreshPrices applies current external prices to synced products. A
// price row whose product is not in the catalog is skipped; the catalog
// may legitimately trail the ERP between full syncs.
func (r *ProductReconciler) RefreshPrices(ctx context.Context, tenantID uuid.UUID, records []erp.PriceRecord) (*syncdomain.Report, error) {
	report := syncdomain.NewReport(syncdomain.PhaseStockRefresh)

	for _, record := range records {
		code := strings.ToUpper(strings.TrimSpace(record.ProductCode))
		if code == "" {
			continue
		}

		existing, err := r.products.FindByCode(ctx, tenantID, code)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			report.AddSkipped()
			continue
		case err != nil:
			report.AddError(code, syncdomain.ErrCodePersistence, err.Error())
			continue
		}

		changed, priceErr := existing.UpdatePrice(record.Price)
		if priceErr != nil {
			report.AddError(code, syncdomain.ErrCodeValidation, priceErr.Error())
			continue
		}
		if !changed {
			report.AddSkipped()
			continue
		}
		if saveErr := r.products.Save(ctx, existing); saveErr != nil {
			report.AddError(code, syncdomain.ErrCodePersistence, saveErr.Error())
			continue
		}
		publishEvents(ctx, r.events, existing)
		report.AddUpdated()
	}

	r.log.Info("price refresh finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("updated", report.Updated),
		zap.Int("skipped", report.Skipped),
		zap.Int("errors", len(report.Errors)))

	return report, nil
}
