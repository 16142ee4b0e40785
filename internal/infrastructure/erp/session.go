package erp

import (
	"context"
	"database/sql"
	"time"

	"github.com/menucloud/backend/internal/domain/erp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// The external ERP exposes one fixed schema: inv_category and inv_item
// hold the catalog, inv_item_price holds prices keyed by item code.
const (
	queryCategories = `SELECT id, code, name, parent_code, is_active, is_published
FROM inv_category
WHERE is_active = 1 AND is_published = 1
ORDER BY code`

	queryProducts = `SELECT i.id, i.code, i.name, i.category_code,
	COALESCE(p.price, 0) AS price, i.energy_kcal, i.prep_minutes,
	i.is_active, i.is_published
FROM inv_item i
LEFT JOIN inv_item_price p ON p.item_code = i.code
WHERE i.is_active = 1 AND i.is_published = 1
ORDER BY i.code`

	queryPrices = `SELECT p.item_code, p.price
FROM inv_item_price p
INNER JOIN inv_item i ON i.code = p.item_code
WHERE i.is_active = 1 AND i.is_published = 1`
)

// session reads records from an open ERP connection
type session struct {
	db      *sql.DB
	timeout time.Duration
	log     *zap.Logger
}

func newSession(db *sql.DB, timeout time.Duration, log *zap.Logger) *session {
	return &session{db: db, timeout: timeout, log: log}
}

// FetchCategories returns all active, published external categories
func (s *session) FetchCategories(ctx context.Context) ([]erp.CategoryRecord, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(queryCtx, queryCategories)
	if err != nil {
		return nil, erp.NewConnectionError("fetch categories", err)
	}
	defer rows.Close()

	var records []erp.CategoryRecord
	for rows.Next() {
		var (
			record     erp.CategoryRecord
			parentCode sql.NullString
		)
		if err := rows.Scan(&record.ExternalID, &record.Code, &record.Name,
			&parentCode, &record.IsActive, &record.IsPublished); err != nil {
			return nil, erp.NewConnectionError("scan category", err)
		}
		if parentCode.Valid && parentCode.String != "" {
			record.ParentCode = &parentCode.String
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, erp.NewConnectionError("fetch categories", err)
	}

	s.log.Debug("fetched external categories", zap.Int("count", len(records)))

	return records, nil
}

// FetchProducts returns all active, published external products joined
// with their prices. A product without a price row carries zero.
func (s *session) FetchProducts(ctx context.Context) ([]erp.ProductRecord, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(queryCtx, queryProducts)
	if err != nil {
		return nil, erp.NewConnectionError("fetch products", err)
	}
	defer rows.Close()

	var records []erp.ProductRecord
	for rows.Next() {
		var (
			record   erp.ProductRecord
			price    decimal.Decimal
			calories sql.NullInt64
			cookTime sql.NullInt64
		)
		if err := rows.Scan(&record.ExternalID, &record.Code, &record.Name,
			&record.CategoryCode, &price, &calories, &cookTime,
			&record.IsActive, &record.IsPublished); err != nil {
			return nil, erp.NewConnectionError("scan product", err)
		}
		record.Price = price
		if calories.Valid {
			v := int(calories.Int64)
			record.CalorieCount = &v
		}
		if cookTime.Valid {
			v := int(cookTime.Int64)
			record.CookTime = &v
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, erp.NewConnectionError("fetch products", err)
	}

	s.log.Debug("fetched external products", zap.Int("count", len(records)))

	return records, nil
}

// FetchPrices returns current prices keyed by product code
func (s *session) FetchPrices(ctx context.Context) ([]erp.PriceRecord, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(queryCtx, queryPrices)
	if err != nil {
		return nil, erp.NewConnectionError("fetch prices", err)
	}
	defer rows.Close()

	var records []erp.PriceRecord
	for rows.Next() {
		var record erp.PriceRecord
		if err := rows.Scan(&record.ProductCode, &record.Price); err != nil {
			return nil, erp.NewConnectionError("scan price", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, erp.NewConnectionError("fetch prices", err)
	}

	return records, nil
}

// Close releases the underlying connection pool
func (s *session) Close() error {
	return s.db.Close()
}

var _ erp.Session = (*session)(nil)
