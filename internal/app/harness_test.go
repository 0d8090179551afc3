package app

import (
	"context"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/calebmartin/papertrader/internal/common"
	"github.com/calebmartin/papertrader/internal/models"
)

// testHarness provides an in-process MCP client connected to a papertrader
// server with mock services. Tests configure mock behavior before calling
// tools.
type testHarness struct {
	t            *testing.T
	client       *client.Client
	mcpServer    *server.MCPServer
	mockLedger   *mockLedgerService
	mockResolver *mockPriceResolver
	logger       *common.Logger
}

// newTestHarness creates a papertrader MCP server with mock services and an
// in-process client. The client is already initialized and ready to call
// tools.
func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	logger := common.NewSilentLogger()
	mockLedger := &mockLedgerService{}
	mockResolver := &mockPriceResolver{}

	mcpServer := server.NewMCPServer(
		"papertrader-test",
		"test",
		server.WithToolCapabilities(true),
	)

	mcpServer.AddTool(createGetVersionTool(), handleGetVersion())
	mcpServer.AddTool(createLookupSharePriceTool(), handleLookupSharePrice(mockResolver, logger))
	mcpServer.AddTool(createCheckMarketStatusTool(), handleCheckMarketStatus(mockResolver))
	mcpServer.AddTool(createGetBalanceTool(), handleGetBalance(mockLedger, logger))
	mcpServer.AddTool(createGetHoldingsTool(), handleGetHoldings(mockLedger, logger))
	mcpServer.AddTool(createBuySharesTool(), handleBuyShares(mockLedger, logger))
	mcpServer.AddTool(createSellSharesTool(), handleSellShares(mockLedger, logger))
	mcpServer.AddTool(createDepositFundsTool(), handleDepositFunds(mockLedger, logger))
	mcpServer.AddTool(createWithdrawFundsTool(), handleWithdrawFunds(mockLedger, logger))
	mcpServer.AddTool(createGetAccountReportTool(), handleGetAccountReport(mockLedger, logger))
	mcpServer.AddTool(createListTransactionsTool(), handleListTransactions(mockLedger, logger))
	mcpServer.AddTool(createGetAuditLogTool(), handleGetAuditLog(mockLedger, logger))
	mcpServer.AddTool(createGetStrategyTool(), handleGetStrategy(mockLedger, logger))
	mcpServer.AddTool(createChangeStrategyTool(), handleChangeStrategy(mockLedger, logger))
	mcpServer.AddTool(createResetAccountTool(), handleResetAccount(mockLedger, logger))
	mcpServer.AddTool(createGetPortfolioCandlesTool(), handleGetPortfolioCandles(mockLedger, logger))
	mcpServer.AddTool(createGetPortfolioChartTool(), handleGetPortfolioChart(mockLedger, logger))

	c, err := client.NewInProcessClient(mcpServer)
	if err != nil {
		t.Fatalf("Failed to create in-process client: %v", err)
	}

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatalf("Failed to start client: %v", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "papertrader-test-client",
		Version: "1.0.0",
	}
	if _, err := c.Initialize(ctx, initReq); err != nil {
		c.Close()
		t.Fatalf("Failed to initialize MCP: %v", err)
	}

	h := &testHarness{
		t:            t,
		client:       c,
		mcpServer:    mcpServer,
		mockLedger:   mockLedger,
		mockResolver: mockResolver,
		logger:       logger,
	}

	t.Cleanup(h.close)
	return h
}

// callTool invokes an MCP tool by name with the given arguments.
func (h *testHarness) callTool(name string, args map[string]any) (*mcp.CallToolResult, error) {
	h.t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return h.client.CallTool(context.Background(), req)
}

// getTextContent extracts text from a content block at the given index.
func (h *testHarness) getTextContent(result *mcp.CallToolResult, index int) string {
	h.t.Helper()
	if index >= len(result.Content) {
		h.t.Fatalf("Content index %d out of range (have %d blocks)", index, len(result.Content))
	}
	tc, ok := result.Content[index].(mcp.TextContent)
	if !ok {
		h.t.Fatalf("Content[%d] is %T, not TextContent", index, result.Content[index])
	}
	return tc.Text
}

func (h *testHarness) close() {
	if h.client != nil {
		h.client.Close()
	}
}

// mockPriceResolver implements interfaces.PriceResolver with function
// fields for per-test behavior.
type mockPriceResolver struct {
	normalizeFn func(symbol string) string
	priceFn     func(ctx context.Context, symbol string) float64
	openFn      func(ctx context.Context) bool
}

func (m *mockPriceResolver) Normalize(symbol string) string {
	if m.normalizeFn != nil {
		return m.normalizeFn(symbol)
	}
	return symbol
}

func (m *mockPriceResolver) GetSharePrice(ctx context.Context, symbol string) float64 {
	if m.priceFn != nil {
		return m.priceFn(ctx, symbol)
	}
	return 0
}

func (m *mockPriceResolver) IsMarketOpen(ctx context.Context) bool {
	if m.openFn != nil {
		return m.openFn(ctx)
	}
	return true
}

// mockLedgerService implements interfaces.LedgerService with function
// fields for per-test behavior.
type mockLedgerService struct {
	getAccountFn       func(ctx context.Context, name string) (*models.Account, error)
	buyFn              func(ctx context.Context, name, symbol string, quantity int, rationale string) (*models.AccountReport, error)
	sellFn             func(ctx context.Context, name, symbol string, quantity int, rationale string) (*models.AccountReport, error)
	depositFn          func(ctx context.Context, name string, amount float64) (*models.Account, error)
	withdrawFn         func(ctx context.Context, name string, amount float64) (*models.Account, error)
	portfolioValueFn   func(ctx context.Context, name string) (float64, error)
	profitLossFn       func(ctx context.Context, name string) (float64, error)
	recordSnapshotFn   func(ctx context.Context, name string, when time.Time) (models.ValuePoint, bool, error)
	reportFn           func(ctx context.Context, name string) (*models.AccountReport, error)
	getHoldingsFn      func(ctx context.Context, name string) (map[string]int, error)
	listTransactionsFn func(ctx context.Context, name string) ([]models.Transaction, error)
	getStrategyFn      func(ctx context.Context, name string) (string, error)
	changeStrategyFn   func(ctx context.Context, name, strategy string) error
	resetFn            func(ctx context.Context, name, strategy string) error
	candlesFn          func(ctx context.Context, name, resolution string, start, end *time.Time) ([]models.Candle, error)
	chartFn            func(ctx context.Context, name string) ([]byte, error)
	listAuditLogFn     func(ctx context.Context, name string, limit int) ([]*models.AuditEntry, error)
}

func (m *mockLedgerService) GetAccount(ctx context.Context, name string) (*models.Account, error) {
	if m.getAccountFn != nil {
		return m.getAccountFn(ctx, name)
	}
	return models.NewAccount(name), nil
}

func (m *mockLedgerService) BuyShares(ctx context.Context, name, symbol string, quantity int, rationale string) (*models.AccountReport, error) {
	if m.buyFn != nil {
		return m.buyFn(ctx, name, symbol, quantity, rationale)
	}
	return &models.AccountReport{Account: *models.NewAccount(name)}, nil
}

func (m *mockLedgerService) SellShares(ctx context.Context, name, symbol string, quantity int, rationale string) (*models.AccountReport, error) {
	if m.sellFn != nil {
		return m.sellFn(ctx, name, symbol, quantity, rationale)
	}
	return &models.AccountReport{Account: *models.NewAccount(name)}, nil
}

func (m *mockLedgerService) Deposit(ctx context.Context, name string, amount float64) (*models.Account, error) {
	if m.depositFn != nil {
		return m.depositFn(ctx, name, amount)
	}
	return models.NewAccount(name), nil
}

func (m *mockLedgerService) Withdraw(ctx context.Context, name string, amount float64) (*models.Account, error) {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, name, amount)
	}
	return models.NewAccount(name), nil
}

func (m *mockLedgerService) PortfolioValue(ctx context.Context, name string) (float64, error) {
	if m.portfolioValueFn != nil {
		return m.portfolioValueFn(ctx, name)
	}
	return models.InitialBalance, nil
}

func (m *mockLedgerService) ProfitLoss(ctx context.Context, name string) (float64, error) {
	if m.profitLossFn != nil {
		return m.profitLossFn(ctx, name)
	}
	return 0, nil
}

func (m *mockLedgerService) RecordSnapshot(ctx context.Context, name string, when time.Time) (models.ValuePoint, bool, error) {
	if m.recordSnapshotFn != nil {
		return m.recordSnapshotFn(ctx, name, when)
	}
	return models.ValuePoint{Timestamp: when, Value: models.InitialBalance}, true, nil
}

func (m *mockLedgerService) Report(ctx context.Context, name string) (*models.AccountReport, error) {
	if m.reportFn != nil {
		return m.reportFn(ctx, name)
	}
	return &models.AccountReport{Account: *models.NewAccount(name), TotalPortfolioValue: models.InitialBalance}, nil
}

func (m *mockLedgerService) GetHoldings(ctx context.Context, name string) (map[string]int, error) {
	if m.getHoldingsFn != nil {
		return m.getHoldingsFn(ctx, name)
	}
	return map[string]int{}, nil
}

func (m *mockLedgerService) ListTransactions(ctx context.Context, name string) ([]models.Transaction, error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(ctx, name)
	}
	return []models.Transaction{}, nil
}

func (m *mockLedgerService) GetStrategy(ctx context.Context, name string) (string, error) {
	if m.getStrategyFn != nil {
		return m.getStrategyFn(ctx, name)
	}
	return "", nil
}

func (m *mockLedgerService) ChangeStrategy(ctx context.Context, name, strategy string) error {
	if m.changeStrategyFn != nil {
		return m.changeStrategyFn(ctx, name, strategy)
	}
	return nil
}

func (m *mockLedgerService) Reset(ctx context.Context, name, strategy string) error {
	if m.resetFn != nil {
		return m.resetFn(ctx, name, strategy)
	}
	return nil
}

func (m *mockLedgerService) PortfolioCandles(ctx context.Context, name, resolution string, start, end *time.Time) ([]models.Candle, error) {
	if m.candlesFn != nil {
		return m.candlesFn(ctx, name, resolution, start, end)
	}
	return []models.Candle{}, nil
}

func (m *mockLedgerService) RenderValueChart(ctx context.Context, name string) ([]byte, error) {
	if m.chartFn != nil {
		return m.chartFn(ctx, name)
	}
	return []byte{0x89, 0x50, 0x4E, 0x47}, nil
}

func (m *mockLedgerService) ListAuditLog(ctx context.Context, name string, limit int) ([]*models.AuditEntry, error) {
	if m.listAuditLogFn != nil {
		return m.listAuditLogFn(ctx, name, limit)
	}
	return nil, nil
}
