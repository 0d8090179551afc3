package app

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/calebmartin/papertrader/internal/common"
	"github.com/calebmartin/papertrader/internal/interfaces"
)

// handleGetVersion implements the get_version tool
func handleGetVersion() server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := fmt.Sprintf("Papertrader MCP Server\nVersion: %s\nBuild: %s\nCommit: %s\nStatus: OK",
			common.GetVersion(), common.GetBuild(), common.GetGitCommit())
		return textResult(result), nil
	}
}

// handleLookupSharePrice implements the lookup_share_price tool
func handleLookupSharePrice(resolver interfaces.PriceResolver, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}

		canonical := resolver.Normalize(symbol)
		price := resolver.GetSharePrice(ctx, canonical)
		if price == 0 {
			logger.Warn().Str("symbol", canonical).Msg("No price available")
			return errorResult(fmt.Sprintf("Error: no price available for '%s'", canonical)), nil
		}

		return textResult(fmt.Sprintf("The current price of %s is %.2f", canonical, price)), nil
	}
}

// handleCheckMarketStatus implements the check_market_status tool
func handleCheckMarketStatus(resolver interfaces.PriceResolver) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if resolver.IsMarketOpen(ctx) {
			return textResult("The market is currently open"), nil
		}
		return textResult("The market is currently closed"), nil
	}
}

// handleGetBalance implements the get_balance tool
func handleGetBalance(ledger interfaces.LedgerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}

		acct, err := ledger.GetAccount(ctx, name)
		if err != nil {
			logger.Error().Err(err).Str("account", name).Msg("Get balance failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return textResult(fmt.Sprintf("%.2f", acct.Balance)), nil
	}
}

// handleGetHoldings implements the get_holdings tool
func handleGetHoldings(ledger interfaces.LedgerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}

		holdings, err := ledger.GetHoldings(ctx, name)
		if err != nil {
			logger.Error().Err(err).Str("account", name).Msg("Get holdings failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		if len(holdings) == 0 {
			return textResult("No holdings"), nil
		}

		symbols := make([]string, 0, len(holdings))
		for s := range holdings {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)

		var sb strings.Builder
		for _, s := range symbols {
			sb.WriteString(fmt.Sprintf("%s: %d\n", s, holdings[s]))
		}
		return textResult(sb.String()), nil
	}
}

// handleBuyShares implements the buy_shares tool
func handleBuyShares(ledger interfaces.LedgerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}
		quantity := request.GetInt("quantity", 0)
		rationale := request.GetString("rationale", "")

		report, err := ledger.BuyShares(ctx, name, symbol, quantity, rationale)
		if err != nil {
			logger.Warn().Err(err).Str("account", name).Str("symbol", symbol).Msg("Buy rejected")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return jsonResult(report)
	}
}

// handleSellShares implements the sell_shares tool
func handleSellShares(ledger interfaces.LedgerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}
		symbol, err := request.RequireString("symbol")
		if err != nil || symbol == "" {
			return errorResult("Error: symbol parameter is required"), nil
		}
		quantity := request.GetInt("quantity", 0)
		rationale := request.GetString("rationale", "")

		report, err := ledger.SellShares(ctx, name, symbol, quantity, rationale)
		if err != nil {
			logger.Warn().Err(err).Str("account", name).Str("symbol", symbol).Msg("Sell rejected")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return jsonResult(report)
	}
}

// handleDepositFunds implements the deposit_funds tool
func handleDepositFunds(ledger interfaces.LedgerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}
		amount := request.GetFloat("amount", 0)

		acct, err := ledger.Deposit(ctx, name, amount)
		if err != nil {
			logger.Warn().Err(err).Str("account", name).Msg("Deposit rejected")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return textResult(fmt.Sprintf("Deposited %.2f. New balance: %.2f", amount, acct.Balance)), nil
	}
}

// handleWithdrawFunds implements the withdraw_funds tool
func handleWithdrawFunds(ledger interfaces.LedgerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}
		amount := request.GetFloat("amount", 0)

		acct, err := ledger.Withdraw(ctx, name, amount)
		if err != nil {
			logger.Warn().Err(err).Str("account", name).Msg("Withdrawal rejected")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return textResult(fmt.Sprintf("Withdrew %.2f. New balance: %.2f", amount, acct.Balance)), nil
	}
}

// handleGetAccountReport implements the get_account_report tool
func handleGetAccountReport(ledger interfaces.LedgerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}

		report, err := ledger.Report(ctx, name)
		if err != nil {
			logger.Error().Err(err).Str("account", name).Msg("Report failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return jsonResult(report)
	}
}

// handleListTransactions implements the list_transactions tool
func handleListTransactions(ledger interfaces.LedgerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}

		transactions, err := ledger.ListTransactions(ctx, name)
		if err != nil {
			logger.Error().Err(err).Str("account", name).Msg("List transactions failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return jsonResult(transactions)
	}
}

// handleGetAuditLog implements the get_audit_log tool
func handleGetAuditLog(ledger interfaces.LedgerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}
		limit := request.GetInt("limit", 50)

		entries, err := ledger.ListAuditLog(ctx, name, limit)
		if err != nil {
			logger.Error().Err(err).Str("account", name).Msg("List audit log failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return jsonResult(entries)
	}
}

// handleGetStrategy implements the get_strategy tool
func handleGetStrategy(ledger interfaces.LedgerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}

		strategy, err := ledger.GetStrategy(ctx, name)
		if err != nil {
			logger.Error().Err(err).Str("account", name).Msg("Get strategy failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		if strategy == "" {
			return textResult("No strategy set"), nil
		}
		return textResult(strategy), nil
	}
}

// handleChangeStrategy implements the change_strategy tool
func handleChangeStrategy(ledger interfaces.LedgerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}
		strategy, err := request.RequireString("strategy")
		if err != nil {
			return errorResult("Error: strategy parameter is required"), nil
		}

		if err := ledger.ChangeStrategy(ctx, name, strategy); err != nil {
			logger.Error().Err(err).Str("account", name).Msg("Change strategy failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult("Strategy updated"), nil
	}
}

// handleResetAccount implements the reset_account tool
func handleResetAccount(ledger interfaces.LedgerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}
		strategy := request.GetString("strategy", "")

		if err := ledger.Reset(ctx, name, strategy); err != nil {
			logger.Error().Err(err).Str("account", name).Msg("Reset failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}
		return textResult(fmt.Sprintf("Account '%s' reset", name)), nil
	}
}

// handleGetPortfolioCandles implements the get_portfolio_candles tool
func handleGetPortfolioCandles(ledger interfaces.LedgerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}
		resolution := request.GetString("resolution", "1min")

		var start, end *time.Time
		if raw := request.GetString("start", ""); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return errorResult(fmt.Sprintf("Error: invalid start time '%s'", raw)), nil
			}
			start = &t
		}
		if raw := request.GetString("end", ""); raw != "" {
			t, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return errorResult(fmt.Sprintf("Error: invalid end time '%s'", raw)), nil
			}
			end = &t
		}

		candles, err := ledger.PortfolioCandles(ctx, name, resolution, start, end)
		if err != nil {
			logger.Error().Err(err).Str("account", name).Msg("Portfolio candles failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return jsonResult(candles)
	}
}

// handleGetPortfolioChart implements the get_portfolio_chart tool
func handleGetPortfolioChart(ledger interfaces.LedgerService, logger *common.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := request.RequireString("name")
		if err != nil || name == "" {
			return errorResult("Error: name parameter is required"), nil
		}

		png, err := ledger.RenderValueChart(ctx, name)
		if err != nil {
			logger.Warn().Err(err).Str("account", name).Msg("Chart render failed")
			return errorResult(fmt.Sprintf("Error: %v", err)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.NewImageContent(base64.StdEncoding.EncodeToString(png), "image/png"),
			},
		}, nil
	}
}

// Helper functions

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(text),
		},
	}
}

func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Error: failed to encode result: %v", err)), nil
	}
	return textResult(string(data)), nil
}
