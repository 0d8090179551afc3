// Package app wires configuration, storage, clients, and services into a
// running MCP tool server. It is the shared core used by both
// cmd/papertrader-server and cmd/papertrader-mcp.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/calebmartin/papertrader/internal/clients/polygon"
	"github.com/calebmartin/papertrader/internal/clients/yahoo"
	"github.com/calebmartin/papertrader/internal/common"
	"github.com/calebmartin/papertrader/internal/interfaces"
	"github.com/calebmartin/papertrader/internal/market"
	"github.com/calebmartin/papertrader/internal/services/account"
	"github.com/calebmartin/papertrader/internal/storage/accountdb"
	"github.com/calebmartin/papertrader/internal/storage/marketfs"
)

// App holds all initialized services, clients, and the MCP server.
type App struct {
	Config        *common.Config
	Logger        *common.Logger
	AccountStore  interfaces.AccountStore
	MarketStore   *marketfs.Store
	YahooClient   *yahoo.Client
	PolygonClient *polygon.Client
	Resolver      interfaces.PriceResolver
	Ledger        interfaces.LedgerService
	MCPServer     *server.MCPServer
	StartupTime   time.Time

	schedulerCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes storage, clients, services, and the MCP server.
// configPath may be empty, in which case the default resolution logic is
// used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Config resolution: explicit path, PAPERTRADER_CONFIG, binary dir,
	// then the development fallback.
	if configPath == "" {
		configPath = os.Getenv("PAPERTRADER_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "papertrader.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/papertrader.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative storage paths to the binary directory.
	if config.Storage.Accounts.Path != "" && !filepath.IsAbs(config.Storage.Accounts.Path) {
		config.Storage.Accounts.Path = filepath.Join(binDir, config.Storage.Accounts.Path)
	}
	if config.Storage.Market.Path != "" && !filepath.IsAbs(config.Storage.Market.Path) {
		config.Storage.Market.Path = filepath.Join(binDir, config.Storage.Market.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	accountStore, err := accountdb.NewStore(logger, config.Storage.Accounts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize account storage: %w", err)
	}

	marketStore, err := marketfs.NewStore(logger, config.Storage.Market.Path)
	if err != nil {
		accountStore.Close()
		return nil, fmt.Errorf("failed to initialize market storage: %w", err)
	}

	yahooClient := yahoo.NewClient(
		yahoo.WithBaseURL(config.Clients.Yahoo.BaseURL),
		yahoo.WithLogger(logger),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	if config.Clients.Polygon.APIKey == "" {
		logger.Warn().Msg("Polygon API key not configured - non-NSE symbols will resolve to no price")
	}
	polygonClient := polygon.NewClient(config.Clients.Polygon.APIKey,
		polygon.WithBaseURL(config.Clients.Polygon.BaseURL),
		polygon.WithLogger(logger),
		polygon.WithRateLimit(config.Clients.Polygon.RateLimit),
		polygon.WithTimeout(config.Clients.Polygon.GetTimeout()),
	)

	resolver := market.NewResolver(yahooClient, polygonClient, marketStore, config.Clients.Polygon.IsMinuteTier())
	ledger := account.NewService(accountStore, resolver, logger)

	mcpServer := server.NewMCPServer(
		"papertrader",
		common.GetVersion(),
		server.WithToolCapabilities(true),
	)

	a := &App{
		Config:        config,
		Logger:        logger,
		AccountStore:  accountStore,
		MarketStore:   marketStore,
		YahooClient:   yahooClient,
		PolygonClient: polygonClient,
		Resolver:      resolver,
		Ledger:        ledger,
		MCPServer:     mcpServer,
		StartupTime:   startupStart,
	}

	a.registerTools()

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: cancel scheduler, close storage.
func (a *App) Close() {
	if a.schedulerCancel != nil {
		a.schedulerCancel()
		a.schedulerCancel = nil
	}
	if a.MarketStore != nil {
		a.MarketStore.Close()
		a.MarketStore = nil
	}
	if a.AccountStore != nil {
		a.AccountStore.Close()
		a.AccountStore = nil
	}
}

// StartSnapshotScheduler launches the background portfolio snapshot
// goroutine for the configured accounts.
func (a *App) StartSnapshotScheduler() {
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	a.schedulerCancel = schedulerCancel
	go startSnapshotScheduler(schedulerCtx, a.Ledger, a.Config.Accounts, a.Config.Ledger.GetSnapshotInterval(), a.Logger)
}

// registerTools registers all MCP tools on the App's MCPServer.
func (a *App) registerTools() {
	s := a.MCPServer
	logger := a.Logger

	s.AddTool(createGetVersionTool(), handleGetVersion())
	s.AddTool(createLookupSharePriceTool(), handleLookupSharePrice(a.Resolver, logger))
	s.AddTool(createCheckMarketStatusTool(), handleCheckMarketStatus(a.Resolver))
	s.AddTool(createGetBalanceTool(), handleGetBalance(a.Ledger, logger))
	s.AddTool(createGetHoldingsTool(), handleGetHoldings(a.Ledger, logger))
	s.AddTool(createBuySharesTool(), handleBuyShares(a.Ledger, logger))
	s.AddTool(createSellSharesTool(), handleSellShares(a.Ledger, logger))
	s.AddTool(createDepositFundsTool(), handleDepositFunds(a.Ledger, logger))
	s.AddTool(createWithdrawFundsTool(), handleWithdrawFunds(a.Ledger, logger))
	s.AddTool(createGetAccountReportTool(), handleGetAccountReport(a.Ledger, logger))
	s.AddTool(createListTransactionsTool(), handleListTransactions(a.Ledger, logger))
	s.AddTool(createGetAuditLogTool(), handleGetAuditLog(a.Ledger, logger))
	s.AddTool(createGetStrategyTool(), handleGetStrategy(a.Ledger, logger))
	s.AddTool(createChangeStrategyTool(), handleChangeStrategy(a.Ledger, logger))
	s.AddTool(createResetAccountTool(), handleResetAccount(a.Ledger, logger))
	s.AddTool(createGetPortfolioCandlesTool(), handleGetPortfolioCandles(a.Ledger, logger))
	s.AddTool(createGetPortfolioChartTool(), handleGetPortfolioChart(a.Ledger, logger))
}
