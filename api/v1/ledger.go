package v1

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fueleu-ledger/compliance-backend/internal/banking"
	"fueleu-ledger/compliance-backend/internal/borrowing"
	"fueleu-ledger/compliance-backend/internal/compliance"
	"fueleu-ledger/compliance-backend/internal/config"
	"fueleu-ledger/compliance-backend/internal/events"
	"fueleu-ledger/compliance-backend/internal/pooling"
	"fueleu-ledger/compliance-backend/internal/routes"
	"fueleu-ledger/compliance-backend/internal/statements"
	"fueleu-ledger/compliance-backend/pkg/database"
)

// Stores are the ledger repositories behind the API.
type Stores struct {
	Compliance compliance.Repository
	Banking    banking.Repository
	Borrowing  borrowing.Repository
	Pooling    pooling.Repository
	Routes     routes.Repository
	Statements statements.Repository
	Tx         database.Transactor
}

// PostgresStores backs every ledger with postgres. Statements are read
// through sqlx when readDB is set.
func PostgresStores(db *gorm.DB, readDB *sqlx.DB) *Stores {
	stores := &Stores{
		Compliance: compliance.NewRepository(db),
		Banking:    banking.NewRepository(db),
		Borrowing:  borrowing.NewRepository(db),
		Pooling:    pooling.NewRepository(db),
		Routes:     routes.NewRepository(db),
		Tx:         database.NewGormTransactor(db),
	}
	if readDB != nil {
		stores.Statements = statements.NewPostgresRepository(readDB)
	}
	return stores
}

// MemoryStores keeps every ledger in process memory.
func MemoryStores() *Stores {
	return &Stores{
		Compliance: compliance.NewMemoryRepository(),
		Banking:    banking.NewMemoryRepository(),
		Borrowing:  borrowing.NewMemoryRepository(),
		Pooling:    pooling.NewMemoryRepository(),
		Routes:     routes.NewMemoryRepository(),
		Tx:         database.NewLocalTransactor(),
	}
}

// Models lists every table the ledger owns.
func Models() []any {
	return []any{
		&compliance.ComplianceBalance{},
		&banking.BankEntry{},
		&banking.BankApplication{},
		&borrowing.BorrowEntry{},
		&pooling.Pool{},
		&pooling.PoolMember{},
		&routes.Route{},
	}
}

// LedgerAPI holds the ledger services and their handlers
type LedgerAPI struct {
	Compliance *compliance.Service
	Banking    *banking.Service
	Borrowing  *borrowing.Service
	Pooling    *pooling.Service
	Routes     *routes.Service
	Statements *statements.Service
	Events     *events.Hub

	handlers []interface{ RegisterRoutes(*gin.RouterGroup) }
}

// SetupLedgerAPI wires the services over stores.
func SetupLedgerAPI(stores *Stores, cfg config.ComplianceConfig, logger *zap.Logger) *LedgerAPI {
	routeService := routes.NewService(stores.Routes, stores.Tx, logger, cfg.DefaultComparisonYear)

	var source compliance.FuelSource = routes.NewFuelSource(stores.Routes, logger)
	if cfg.MockInputsEnabled {
		source = &compliance.FallbackSource{
			Primary:  source,
			Fallback: compliance.NewStaticSource(cfg.MockActualIntensity, cfg.MockEnergyScopeMJ),
		}
	}

	borrowLedger := borrowing.NewLedger(stores.Borrowing, stores.Tx, logger)
	complianceService := compliance.NewService(stores.Compliance, source, stores.Banking, borrowLedger, stores.Tx, logger)
	bankingService := banking.NewService(stores.Banking, complianceService, stores.Tx, logger)
	borrowingService := borrowing.NewService(stores.Borrowing, borrowLedger, complianceService, stores.Tx, logger)
	poolingService := pooling.NewService(stores.Pooling, complianceService, stores.Tx, logger)

	hub := events.NewHub(logger)
	bankingService.SetPublisher(hub)
	borrowingService.SetPublisher(hub)
	poolingService.SetPublisher(hub)

	statementRepo := stores.Statements
	if statementRepo == nil {
		statementRepo = statements.NewLedgerReader(stores.Compliance, stores.Banking, stores.Borrowing, stores.Pooling)
	}
	statementService := statements.NewService(statementRepo, logger)

	return &LedgerAPI{
		Compliance: complianceService,
		Banking:    bankingService,
		Borrowing:  borrowingService,
		Pooling:    poolingService,
		Routes:     routeService,
		Statements: statementService,
		Events:     hub,
		handlers: []interface{ RegisterRoutes(*gin.RouterGroup) }{
			compliance.NewHandler(complianceService, logger),
			banking.NewHandler(bankingService, logger),
			borrowing.NewHandler(borrowingService, logger),
			pooling.NewHandler(poolingService, logger),
			routes.NewHandler(routeService, logger),
			statements.NewHandler(statementService, logger),
			events.NewHandler(hub, logger),
		},
	}
}

// RegisterRoutes registers every ledger route on the router group
func (api *LedgerAPI) RegisterRoutes(router *gin.RouterGroup) {
	for _, h := range api.handlers {
		h.RegisterRoutes(router)
	}
}

// Close disconnects event subscribers.
func (api *LedgerAPI) Close() {
	api.Events.Close()
}

// Seed loads the reference routes when enabled.
func (api *LedgerAPI) Seed(ctx context.Context, cfg config.ComplianceConfig) error {
	if !cfg.SeedRoutes {
		return nil
	}
	if err := api.Routes.Seed(ctx); err != nil {
		return fmt.Errorf("failed to seed routes: %w", err)
	}
	return nil
}
