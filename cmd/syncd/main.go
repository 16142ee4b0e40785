// syncd runs catalog reconciliation and spreadsheet imports for a
// tenant from the command line.
//
// Usage:
//
//	syncd test-connection -tenant <slug>
//	syncd sync            -tenant <slug> [-prices]
//	syncd sync-categories -tenant <slug>
//	syncd sync-products   -tenant <slug>
//	syncd refresh-prices  -tenant <slug>
//	syncd import          -tenant <slug> -file menu.xlsx
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/menucloud/backend/internal/application/importer"
	appsync "github.com/menucloud/backend/internal/application/sync"
	"github.com/menucloud/backend/internal/domain/shared"
	"github.com/menucloud/backend/internal/domain/tenant"
	"github.com/menucloud/backend/internal/infrastructure/config"
	erpconn "github.com/menucloud/backend/internal/infrastructure/erp"
	"github.com/menucloud/backend/internal/infrastructure/logger"
	"github.com/menucloud/backend/internal/infrastructure/persistence"
	"github.com/menucloud/backend/internal/infrastructure/rowset"
	"github.com/menucloud/backend/internal/infrastructure/runlock"
	"github.com/menucloud/backend/internal/infrastructure/spreadsheet"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]

	flags := flag.NewFlagSet(command, flag.ExitOnError)
	tenantSlug := flags.String("tenant", "", "Tenant slug")
	withPrices := flags.Bool("prices", false, "Refresh prices after a full sync")
	filePath := flags.String("file", "", "Spreadsheet file to import (XLSX)")
	_ = flags.Parse(os.Args[2:])

	if *tenantSlug == "" {
		fmt.Fprintln(os.Stderr, "missing required -tenant flag")
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLogger(log, gormlogger.Warn))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to migrate schema", zap.Error(err))
	}

	tenants := persistence.NewGormTenantRepository(db.DB)
	categories := persistence.NewGormCategoryRepository(db.DB)
	products := persistence.NewGormProductRepository(db.DB)

	opener := erpconn.NewManager(erpconn.Options{
		ConnectTimeout: cfg.Sync.ConnectTimeout,
		RequestTimeout: cfg.Sync.RequestTimeout,
	}, log)

	var locker runlock.Locker = runlock.NewMemoryLocker()
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = client.Close() }()
		locker = runlock.NewRedisLocker(client, cfg.Sync.LockTTL, log)
	}

	events := shared.NewInProcessEventBus()

	orchestrator := appsync.NewOrchestrator(
		tenants,
		categories,
		opener,
		appsync.NewCategoryReconciler(categories, events, log),
		appsync.NewProductReconciler(products, events, log),
		locker,
		log,
	)

	importService := importer.NewService(products, categories, events, importer.Options{
		DuplicateThreshold:     cfg.Sync.DuplicateThreshold,
		CategoryReuseThreshold: cfg.Sync.CategoryReuseThreshold,
		MaxErrors:              cfg.Sync.MaxErrors,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	t, err := tenants.FindBySlug(ctx, *tenantSlug)
	if err != nil {
		log.Fatal("Failed to load tenant", zap.String("slug", *tenantSlug), zap.Error(err))
	}

	switch command {
	case "test-connection":
		ok, message, err := orchestrator.TestConnection(ctx, t.ID)
		if err != nil {
			log.Fatal("Connection test failed", zap.Error(err))
		}
		fmt.Printf("ok=%v message=%q\n", ok, message)
		if !ok {
			os.Exit(1)
		}

	case "sync":
		result, err := orchestrator.FullSync(ctx, t.ID, *withPrices)
		printOutcome(log, result, err)

	case "sync-categories":
		report, err := orchestrator.SyncCategories(ctx, t.ID)
		printOutcome(log, report, err)

	case "sync-products":
		report, err := orchestrator.SyncProducts(ctx, t.ID)
		printOutcome(log, report, err)

	case "refresh-prices":
		report, err := orchestrator.RefreshPrices(ctx, t.ID)
		printOutcome(log, report, err)

	case "import":
		if *filePath == "" {
			fmt.Fprintln(os.Stderr, "missing required -file flag")
			os.Exit(1)
		}
		runImport(ctx, log, importService, t, *filePath)

	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runImport(ctx context.Context, log *zap.Logger, service *importer.Service, t *tenant.Tenant, path string) {
	file, err := os.Open(path)
	if err != nil {
		log.Fatal("Failed to open import file", zap.String("path", path), zap.Error(err))
	}
	defer func() { _ = file.Close() }()

	rows, err := spreadsheet.ReadWorkbook(file, rowset.DefaultHeaderMapping())
	if err != nil {
		var unknownErr *rowset.UnknownHeadersError
		if errors.As(err, &unknownErr) {
			log.Fatal("Import rejected: unknown column headers",
				zap.Strings("headers", unknownErr.Headers))
		}
		log.Fatal("Failed to read workbook", zap.Error(err))
	}

	result, err := service.Import(ctx, t.ID, rows)
	printOutcome(log, result, err)
}

// printOutcome renders a run outcome as JSON on stdout, or fails the
// process with the error.
func printOutcome(log *zap.Logger, result any, err error) {
	if err != nil {
		var runErr *appsync.RunError
		if errors.As(err, &runErr) {
			log.Fatal("Sync failed",
				zap.String("phase", string(runErr.Phase)),
				zap.Error(runErr.Err))
		}
		log.Fatal("Operation failed", zap.Error(err))
	}

	out, marshalErr := json.MarshalIndent(result, "", "  ")
	if marshalErr != nil {
		log.Fatal("Failed to render result", zap.Error(marshalErr))
	}
	fmt.Println(string(out))
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: syncd <command> [flags]

Commands:
  test-connection  Probe the tenant's ERP credentials
  sync             Full reconciliation run (categories then products)
  sync-categories  Reconcile categories only
  sync-products    Reconcile products only
  refresh-prices   Apply current ERP prices
  import           Import an XLSX menu spreadsheet

Flags:
  -tenant <slug>   Tenant to operate on (required)
  -prices          With sync: refresh prices as a final phase
  -file <path>     With import: spreadsheet to load`)
}
