// Package importer turns tenant-uploaded spreadsheets into catalog
// entries. Unlike ERP reconciliation, imported rows carry no stable
// code, so identity is decided by fuzzy name matching: near-duplicate
// products are skipped and near-matching category names reuse the
// existing category instead of spawning a new one.
package importer

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/menucloud/backend/internal/domain/catalog"
	"github.com/menucloud/backend/internal/domain/matching"
	"github.com/menucloud/backend/internal/domain/shared"
	syncdomain "github.com/menucloud/backend/internal/domain/sync"
	"github.com/menucloud/backend/internal/infrastructure/rowset"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options tunes import behavior. The two thresholds are separate
// because skipping a duplicate is cheap to undo while merging two
// categories is not, so category reuse demands higher confidence.
type Options struct {
	// DuplicateThreshold is the minimum confidence at which an imported
	// product name counts as a duplicate of an existing one
	DuplicateThreshold float64
	// CategoryReuseThreshold is the minimum confidence at which a
	// category name reuses an existing category
	CategoryReuseThreshold float64
	// MaxErrors caps the collected record errors
	MaxErrors int
}

// DefaultOptions returns the default import options
func DefaultOptions() Options {
	return Options{
		DuplicateThreshold:     0.6,
		CategoryReuseThreshold: 0.8,
		MaxErrors:              100,
	}
}

// Result summarizes an import run
type Result struct {
	Added             int                      `json:"added_count"`
	Duplicates        int                      `json:"duplicate_count"`
	CategoriesCreated int                      `json:"categories_created_count"`
	Errors            []syncdomain.RecordError `json:"errors,omitempty"`
	TotalErrors       int                      `json:"total_errors,omitempty"`
}

// catalogIndex is the in-memory snapshot one import run matches
// against. It is loaded once, owned by a single call, and mutated as
// rows are accepted so later rows see earlier ones.
type catalogIndex struct {
	productNames  []string
	categoryNames []string
	categoryIDs   []uuid.UUID
}

func (ix *catalogIndex) addProduct(name string) {
	ix.productNames = append(ix.productNames, name)
}

func (ix *catalogIndex) addCategory(name string, id uuid.UUID) {
	ix.categoryNames = append(ix.categoryNames, name)
	ix.categoryIDs = append(ix.categoryIDs, id)
}

// Service imports spreadsheet rows into a tenant's catalog
type Service struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	events     shared.EventPublisher
	opts       Options
	log        *zap.Logger
}

// NewService creates an import service
func NewService(products catalog.ProductRepository, categories catalog.CategoryRepository, events shared.EventPublisher, opts Options, log *zap.Logger) *Service {
	if opts.DuplicateThreshold <= 0 {
		opts.DuplicateThreshold = DefaultOptions().DuplicateThreshold
	}
	if opts.CategoryReuseThreshold <= 0 {
		opts.CategoryReuseThreshold = DefaultOptions().CategoryReuseThreshold
	}
	return &Service{products: products, categories: categories, events: events, opts: opts, log: log.Named("importer")}
}

// Import validates and persists spreadsheet rows for a tenant. Rows are
// processed strictly in file order: each accepted row extends the
// snapshot, so a file that repeats a product name or category name is
// deduplicated against itself as well as the existing catalog.
//
// Validation covers every row before anything is persisted; a file with
// invalid rows comes back with the full error list and no writes.
func (s *Service) Import(ctx context.Context, tenantID uuid.UUID, rows []rowset.Row) (*Result, error) {
	result := &Result{}

	errs := rowset.NewErrorCollection(s.opts.MaxErrors)
	prices := s.validate(rows, errs)
	if errs.HasErrors() {
		result.Errors = errs.Errors()
		result.TotalErrors = errs.TotalCount()
		return result, nil
	}

	index, err := s.loadIndex(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		name := row.Get(rowset.FieldName)

		if match := matching.Match(name, index.productNames); match.Confidence >= s.opts.DuplicateThreshold {
			s.log.Debug("skipping duplicate product",
				zap.String("name", name),
				zap.String("matched", match.Value),
				zap.Float64("confidence", match.Confidence))
			result.Duplicates++
			continue
		}

		categoryID, created, err := s.resolveCategory(ctx, tenantID, row.Get(rowset.FieldCategory), index)
		if err != nil {
			errs.AddRow(row.Line, syncdomain.ErrCodePersistence, err.Error())
			continue
		}
		if created {
			result.CategoriesCreated++
		}

		product, err := catalog.NewProduct(tenantID, categoryID, name, prices[row.Line])
		if err != nil {
			errs.AddRow(row.Line, syncdomain.ErrCodeValidation, err.Error())
			continue
		}
		applyOptionalFields(product, row)

		if err := s.products.Save(ctx, product); err != nil {
			errs.AddRow(row.Line, syncdomain.ErrCodePersistence, err.Error())
			continue
		}
		s.publishEvents(ctx, product)

		index.addProduct(name)
		result.Added++
	}

	result.Errors = errs.Errors()
	result.TotalErrors = errs.TotalCount()

	s.log.Info("import finished",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("added", result.Added),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("categories_created", result.CategoriesCreated),
		zap.Int("errors", result.TotalErrors))

	return result, nil
}

// ImportRecords resolves raw header and cell records through the
// mapping and imports the result. A single unknown header rejects the
// whole file before any row is looked at.
func (s *Service) ImportRecords(ctx context.Context, tenantID uuid.UUID, headers []string, records [][]string, mapping rowset.HeaderMapping) (*Result, error) {
	rows, unknown := mapping.BuildRows(headers, records)
	if len(unknown) > 0 {
		return nil, &rowset.UnknownHeadersError{Headers: unknown}
	}
	return s.Import(ctx, tenantID, rows)
}

// validate checks required fields and numeric formats on every row,
// returning parsed prices keyed by line number.
func (s *Service) validate(rows []rowset.Row, errs *rowset.ErrorCollection) map[int]decimal.Decimal {
	prices := make(map[int]decimal.Decimal, len(rows))

	for _, row := range rows {
		if row.Get(rowset.FieldName) == "" {
			errs.AddRow(row.Line, syncdomain.ErrCodeValidation, "product name is required")
		}
		if row.Get(rowset.FieldCategory) == "" {
			errs.AddRow(row.Line, syncdomain.ErrCodeValidation, "category is required")
		}

		for _, field := range []string{rowset.FieldCalories, rowset.FieldCookTime} {
			if raw := row.Get(field); raw != "" {
				if _, ok := parseOptionalInt(raw); !ok {
					errs.AddRow(row.Line, syncdomain.ErrCodeValidation, field+" "+raw+" is not a whole number")
				}
			}
		}

		raw := row.Get(rowset.FieldPrice)
		if raw == "" {
			errs.AddRow(row.Line, syncdomain.ErrCodeValidation, "price is required")
			continue
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			errs.AddRow(row.Line, syncdomain.ErrCodeValidation, "price "+raw+" is not a number")
			continue
		}
		if price.IsNegative() {
			errs.AddRow(row.Line, syncdomain.ErrCodeValidation, "price cannot be negative")
			continue
		}
		prices[row.Line] = price
	}

	return prices
}

// loadIndex takes the one snapshot of the tenant's catalog this run
// matches against.
func (s *Service) loadIndex(ctx context.Context, tenantID uuid.UUID) (*catalogIndex, error) {
	names, err := s.products.ListNames(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	categories, err := s.categories.FindAllForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	index := &catalogIndex{productNames: names}
	for _, c := range categories {
		index.addCategory(c.Name, c.ID)
	}
	return index, nil
}

// resolveCategory reuses an existing category when the name matches at
// the reuse threshold, otherwise creates one and extends the snapshot
// so later rows in the same file hit it.
func (s *Service) resolveCategory(ctx context.Context, tenantID uuid.UUID, name string, index *catalogIndex) (uuid.UUID, bool, error) {
	if match := matching.Match(name, index.categoryNames); match.Confidence >= s.opts.CategoryReuseThreshold {
		return index.categoryIDs[match.Index], false, nil
	}

	category, err := catalog.NewCategory(tenantID, name)
	if err != nil {
		return uuid.Nil, false, err
	}
	if err := s.categories.Save(ctx, category); err != nil {
		return uuid.Nil, false, err
	}
	s.publishEvents(ctx, category)

	index.addCategory(name, category.ID)
	return category.ID, true, nil
}

// applyOptionalFields copies the optional numeric columns onto the
// product. Values were validated as integers beforehand.
func applyOptionalFields(product *catalog.Product, row rowset.Row) {
	if v, ok := parseOptionalInt(row.Get(rowset.FieldCalories)); ok {
		product.CalorieCount = v
	}
	if v, ok := parseOptionalInt(row.Get(rowset.FieldCookTime)); ok {
		product.CookTimeMinutes = v
	}
	if url := row.Get(rowset.FieldImageURL); url != "" {
		_ = product.SetImage(url)
	}
}

// publishEvents flushes an aggregate's pending domain events after a
// successful save
func (s *Service) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.events == nil {
		return
	}
	pending := aggregate.GetDomainEvents()
	if len(pending) == 0 {
		return
	}
	_ = s.events.Publish(ctx, pending...)
	aggregate.ClearDomainEvents()
}

// parseOptionalInt parses a non-negative integer cell value
func parseOptionalInt(raw string) (*int, bool) {
	if raw == "" {
		return nil, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return nil, false
	}
	return &v, true
}
