package sync

import (
	"context"
	"errors"
	"testing"

	"github.com/menucloud/backend/internal/domain/catalog"
	"github.com/menucloud/backend/internal/domain/erp"
	"github.com/menucloud/backend/internal/domain/shared"
	syncdomain "github.com/menucloud/backend/internal/domain/sync"
	"github.com/menucloud/backend/internal/domain/tenant"
	"github.com/menucloud/backend/internal/infrastructure/runlock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type orchestratorFixture struct {
	tenants    *MockTenantRepository
	categories *MockCategoryRepository
	products   *MockProductRepository
	opener     *MockOpener
	session    *MockSession
	orch       *Orchestrator
}

func newOrchestratorFixture() *orchestratorFixture {
	f := &orchestratorFixture{
		tenants:    new(MockTenantRepository),
		categories: new(MockCategoryRepository),
		products:   new(MockProductRepository),
		opener:     new(MockOpener),
		session:    new(MockSession),
	}

	log := zap.NewNop()
	bus := shared.NewInProcessEventBus()
	f.orch = NewOrchestrator(
		f.tenants,
		f.categories,
		f.opener,
		NewCategoryReconciler(f.categories, bus, log),
		NewProductReconciler(f.products, bus, log),
		runlock.NewMemoryLocker(),
		log,
	)
	return f
}

func newCategoryFixture(tnt *tenant.Tenant, code, name string) ([]catalog.Category, error) {
	c, err := catalog.NewExternalCategory(tnt.ID, code, name, 0)
	if err != nil {
		return nil, err
	}
	return []catalog.Category{*c}, nil
}

func syncableTenant(t *testing.T) *tenant.Tenant {
	t.Helper()

	tnt, err := tenant.NewTenant("Cafe Aroma", "cafe-aroma")
	require.NoError(t, err)
	require.NoError(t, tnt.ConfigureERP(tenant.ERPSettings{
		Server:   "192.168.1.5",
		Database: "erp_main",
		Username: "sync",
		Password: "secret",
		Port:     3306,
		Enabled:  true,
	}))
	return tnt
}

func TestOrchestrator_FullSync(t *testing.T) {
	ctx := context.Background()

	t.Run("clean run creates categories and products and marks the tenant", func(t *testing.T) {
		f := newOrchestratorFixture()
		tnt := syncableTenant(t)

		f.tenants.On("FindByID", ctx, tnt.ID).Return(tnt, nil)
		f.opener.On("Open", ctx, tnt.ERP).Return(f.session, nil)
		f.session.On("Close").Return(nil)

		f.session.On("FetchCategories", ctx).Return([]erp.CategoryRecord{
			{Code: "10", Name: "Drinks"},
			{Code: "20", Name: "Desserts"},
		}, nil)
		f.session.On("FetchProducts", ctx).Return([]erp.ProductRecord{
			{Code: "1", Name: "Espresso", CategoryCode: "10", Price: decimal.RequireFromString("3.50")},
			{Code: "2", Name: "Latte", CategoryCode: "10", Price: decimal.RequireFromString("4.25")},
			{Code: "3", Name: "Tiramisu", CategoryCode: "20", Price: decimal.RequireFromString("6.00")},
		}, nil)

		f.categories.On("FindByCode", ctx, tnt.ID, mock.Anything).Return(nil, shared.ErrNotFound)
		f.categories.On("Save", ctx, mock.Anything).Return(nil)
		f.products.On("FindByCode", ctx, tnt.ID, mock.Anything).Return(nil, shared.ErrNotFound)
		f.products.On("Save", ctx, mock.Anything).Return(nil)
		f.tenants.On("MarkSynced", ctx, tnt.ID, mock.AnythingOfType("time.Time")).Return(nil)

		result, err := f.orch.FullSync(ctx, tnt.ID, false)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Categories.Created)
		assert.Equal(t, 3, result.Products.Created)
		assert.Nil(t, result.Prices)
		f.tenants.AssertCalled(t, "MarkSynced", ctx, tnt.ID, mock.AnythingOfType("time.Time"))
		f.session.AssertNumberOfCalls(t, "Close", 2)
	})

	t.Run("connection failure in product phase fails the run and keeps last sync date", func(t *testing.T) {
		f := newOrchestratorFixture()
		tnt := syncableTenant(t)

		f.tenants.On("FindByID", ctx, tnt.ID).Return(tnt, nil)
		f.opener.On("Open", ctx, tnt.ERP).Return(f.session, nil)
		f.session.On("Close").Return(nil)

		f.session.On("FetchCategories", ctx).Return([]erp.CategoryRecord{{Code: "10", Name: "Drinks"}}, nil)
		f.session.On("FetchProducts", ctx).Return(nil, erp.NewConnectionError("fetch products", errors.New("server has gone away")))

		f.categories.On("FindByCode", ctx, tnt.ID, "10").Return(nil, shared.ErrNotFound)
		f.categories.On("Save", ctx, mock.Anything).Return(nil)

		result, err := f.orch.FullSync(ctx, tnt.ID, false)
		require.Error(t, err)

		var runErr *RunError
		require.True(t, errors.As(err, &runErr))
		assert.Equal(t, syncdomain.PhaseProducts, runErr.Phase)
		assert.True(t, erp.IsConnectionError(runErr.Err))

		// the category phase had already completed
		assert.Equal(t, 1, result.Categories.Created)
		f.tenants.AssertNotCalled(t, "MarkSynced", mock.Anything, mock.Anything, mock.Anything)
		f.session.AssertNumberOfCalls(t, "Close", 2)
	})

	t.Run("disabled tenant fails before any connection", func(t *testing.T) {
		f := newOrchestratorFixture()
		tnt := syncableTenant(t)
		tnt.ERP.Enabled = false

		f.tenants.On("FindByID", ctx, tnt.ID).Return(tnt, nil)

		_, err := f.orch.FullSync(ctx, tnt.ID, false)
		require.Error(t, err)

		var runErr *RunError
		require.True(t, errors.As(err, &runErr))
		assert.Equal(t, syncdomain.PhaseIdle, runErr.Phase)
		f.opener.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
	})

	t.Run("incomplete credentials fail before any connection", func(t *testing.T) {
		f := newOrchestratorFixture()
		tnt := syncableTenant(t)
		tnt.ERP.Password = ""

		f.tenants.On("FindByID", ctx, tnt.ID).Return(tnt, nil)

		_, err := f.orch.FullSync(ctx, tnt.ID, false)
		require.Error(t, err)
		f.opener.AssertNotCalled(t, "Open", mock.Anything, mock.Anything)
	})

	t.Run("price refresh phase runs when requested", func(t *testing.T) {
		f := newOrchestratorFixture()
		tnt := syncableTenant(t)

		f.tenants.On("FindByID", ctx, tnt.ID).Return(tnt, nil)
		f.opener.On("Open", ctx, tnt.ERP).Return(f.session, nil)
		f.session.On("Close").Return(nil)

		f.session.On("FetchCategories", ctx).Return([]erp.CategoryRecord{}, nil)
		f.session.On("FetchProducts", ctx).Return([]erp.ProductRecord{}, nil)
		f.session.On("FetchPrices", ctx).Return([]erp.PriceRecord{}, nil)
		f.tenants.On("MarkSynced", ctx, tnt.ID, mock.AnythingOfType("time.Time")).Return(nil)

		result, err := f.orch.FullSync(ctx, tnt.ID, true)
		require.NoError(t, err)

		require.NotNil(t, result.Prices)
		f.session.AssertNumberOfCalls(t, "Close", 3)
	})

	t.Run("second concurrent run for the same tenant is rejected", func(t *testing.T) {
		f := newOrchestratorFixture()
		tnt := syncableTenant(t)

		locker := runlock.NewMemoryLocker()
		f.orch.locker = locker

		release, err := locker.Acquire(ctx, tnt.ID)
		require.NoError(t, err)
		defer release()

		_, err = f.orch.FullSync(ctx, tnt.ID, false)
		assert.ErrorIs(t, err, runlock.ErrAlreadyRunning)
	})
}

func TestOrchestrator_TestConnection(t *testing.T) {
	ctx := context.Background()
	f := newOrchestratorFixture()
	tnt := syncableTenant(t)

	f.tenants.On("FindByID", ctx, tnt.ID).Return(tnt, nil)
	f.opener.On("Test", ctx, tnt.ERP).Return(true, "connection successful")

	ok, message, err := f.orch.TestConnection(ctx, tnt.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "connection successful", message)
}

func TestOrchestrator_SyncProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves categories from the local catalog", func(t *testing.T) {
		f := newOrchestratorFixture()
		tnt := syncableTenant(t)

		drinks, err := newCategoryFixture(tnt, "10", "Drinks")
		require.NoError(t, err)

		f.tenants.On("FindByID", ctx, tnt.ID).Return(tnt, nil)
		f.categories.On("FindAllForTenant", ctx, tnt.ID).Return(drinks, nil)
		f.opener.On("Open", ctx, tnt.ERP).Return(f.session, nil)
		f.session.On("Close").Return(nil)
		f.session.On("FetchProducts", ctx).Return([]erp.ProductRecord{
			{Code: "1", Name: "Espresso", CategoryCode: "10", Price: decimal.RequireFromString("3.50")},
		}, nil)
		f.products.On("FindByCode", ctx, tnt.ID, "1").Return(nil, shared.ErrNotFound)
		f.products.On("Save", ctx, mock.Anything).Return(nil)
		f.tenants.On("MarkSynced", ctx, tnt.ID, mock.AnythingOfType("time.Time")).Return(nil)

		report, err := f.orch.SyncProducts(ctx, tnt.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, report.Created)
	})
}
