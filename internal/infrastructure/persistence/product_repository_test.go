package persistence

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/menucloud/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormProductRepository_FindByCode(t *testing.T) {
	t.Run("uppercases code before lookup", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormProductRepository(db)

		tenantID := uuid.New()
		categoryID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "code", "name", "category_id", "price"}).
			AddRow(uuid.New(), tenantID, "1001", "Espresso", categoryID, "3.50")

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
			WithArgs(tenantID, "1001", 1).
			WillReturnRows(rows)

		product, err := repo.FindByCode(context.Background(), tenantID, "1001")
		require.NoError(t, err)

		assert.Equal(t, "Espresso", product.Name)
		assert.Equal(t, categoryID, product.CategoryID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps missing row to not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewGormProductRepository(db)

		tenantID := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
			WithArgs(tenantID, "9999", 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByCode(context.Background(), tenantID, "9999")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductRepository_ListNames(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormProductRepository(db)

	tenantID := uuid.New()

	rows := sqlmock.NewRows([]string{"name"}).
		AddRow("Cappuccino").
		AddRow("Espresso")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "name" FROM "products"`)).
		WithArgs(tenantID).
		WillReturnRows(rows)

	names, err := repo.ListNames(context.Background(), tenantID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Cappuccino", "Espresso"}, names)
}
