package app

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// createGetVersionTool returns the get_version tool definition
func createGetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the papertrader MCP server version and status. Use this to verify connectivity."),
	)
}

// createLookupSharePriceTool returns the lookup_share_price tool definition
func createLookupSharePriceTool() mcp.Tool {
	return mcp.NewTool("lookup_share_price",
		mcp.WithDescription("Look up the current price of a share. Symbols are normalized automatically; NSE tickers get a .NS suffix (e.g., 'RELIANCE.NS')."),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol to price (e.g., 'AAPL', 'RELIANCE.NS')"),
		),
	)
}

// createCheckMarketStatusTool returns the check_market_status tool definition
func createCheckMarketStatusTool() mcp.Tool {
	return mcp.NewTool("check_market_status",
		mcp.WithDescription("Check whether the exchange is currently open for trading."),
	)
}

// createGetBalanceTool returns the get_balance tool definition
func createGetBalanceTool() mcp.Tool {
	return mcp.NewTool("get_balance",
		mcp.WithDescription("Get the cash balance of a trading account."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Account name"),
		),
	)
}

// createGetHoldingsTool returns the get_holdings tool definition
func createGetHoldingsTool() mcp.Tool {
	return mcp.NewTool("get_holdings",
		mcp.WithDescription("Get the current share holdings of a trading account."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Account name"),
		),
	)
}

// createBuySharesTool returns the buy_shares tool definition
func createBuySharesTool() mcp.Tool {
	return mcp.NewTool("buy_shares",
		mcp.WithDescription("Buy shares of a stock at the current market price plus spread. Fails if the symbol cannot be priced or funds are insufficient."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Account name"),
		),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol to buy"),
		),
		mcp.WithNumber("quantity",
			mcp.Required(),
			mcp.Description("Number of shares to buy (positive integer)"),
		),
		mcp.WithString("rationale",
			mcp.Description("Why this trade fits the account strategy"),
		),
	)
}

// createSellSharesTool returns the sell_shares tool definition
func createSellSharesTool() mcp.Tool {
	return mcp.NewTool("sell_shares",
		mcp.WithDescription("Sell shares of a stock at the current market price minus spread. Fails if the account does not hold enough shares."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Account name"),
		),
		mcp.WithString("symbol",
			mcp.Required(),
			mcp.Description("Ticker symbol to sell"),
		),
		mcp.WithNumber("quantity",
			mcp.Required(),
			mcp.Description("Number of shares to sell (positive integer)"),
		),
		mcp.WithString("rationale",
			mcp.Description("Why this trade fits the account strategy"),
		),
	)
}

// createDepositFundsTool returns the deposit_funds tool definition
func createDepositFundsTool() mcp.Tool {
	return mcp.NewTool("deposit_funds",
		mcp.WithDescription("Deposit cash into a trading account."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Account name"),
		),
		mcp.WithNumber("amount",
			mcp.Required(),
			mcp.Description("Amount to deposit (positive)"),
		),
	)
}

// createWithdrawFundsTool returns the withdraw_funds tool definition
func createWithdrawFundsTool() mcp.Tool {
	return mcp.NewTool("withdraw_funds",
		mcp.WithDescription("Withdraw cash from a trading account. Fails if the balance is insufficient."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Account name"),
		),
		mcp.WithNumber("amount",
			mcp.Required(),
			mcp.Description("Amount to withdraw (positive)"),
		),
	)
}

// createGetAccountReportTool returns the get_account_report tool definition
func createGetAccountReportTool() mcp.Tool {
	return mcp.NewTool("get_account_report",
		mcp.WithDescription("Get a full account report: balance, holdings, transactions, portfolio value, and profit/loss. Records a value snapshot."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Account name"),
		),
	)
}

// createListTransactionsTool returns the list_transactions tool definition
func createListTransactionsTool() mcp.Tool {
	return mcp.NewTool("list_transactions",
		mcp.WithDescription("List the transactions of a trading account in execution order."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Account name"),
		),
	)
}

// createGetAuditLogTool returns the get_audit_log tool definition
func createGetAuditLogTool() mcp.Tool {
	return mcp.NewTool("get_audit_log",
		mcp.WithDescription("List the audit log of a trading account, newest first."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Account name"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return (default 50)"),
		),
	)
}

// createGetStrategyTool returns the get_strategy tool definition
func createGetStrategyTool() mcp.Tool {
	return mcp.NewTool("get_strategy",
		mcp.WithDescription("Get the investment strategy of a trading account."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Account name"),
		),
	)
}

// createChangeStrategyTool returns the change_strategy tool definition
func createChangeStrategyTool() mcp.Tool {
	return mcp.NewTool("change_strategy",
		mcp.WithDescription("Change the investment strategy of a trading account."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Account name"),
		),
		mcp.WithString("strategy",
			mcp.Required(),
			mcp.Description("New strategy text"),
		),
	)
}

// createResetAccountTool returns the reset_account tool definition
func createResetAccountTool() mcp.Tool {
	return mcp.NewTool("reset_account",
		mcp.WithDescription("Reset a trading account: restore the initial balance, clear holdings, transactions, and value history, and set a new strategy."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Account name"),
		),
		mcp.WithString("strategy",
			mcp.Description("Strategy to set after the reset"),
		),
	)
}

// createGetPortfolioCandlesTool returns the get_portfolio_candles tool definition
func createGetPortfolioCandlesTool() mcp.Tool {
	return mcp.NewTool("get_portfolio_candles",
		mcp.WithDescription("Get OHLCV candles aggregated from an account's portfolio value history. Volume counts shares traded in each bucket."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Account name"),
		),
		mcp.WithString("resolution",
			mcp.Description("Bucket width: 1min, 5min, 15min, 1h, 4h, 1d (default: 1min)"),
		),
		mcp.WithString("start",
			mcp.Description("Inclusive start bound, RFC 3339 (e.g., '2026-08-28T10:00:00Z')"),
		),
		mcp.WithString("end",
			mcp.Description("Inclusive end bound, RFC 3339"),
		),
	)
}

// createGetPortfolioChartTool returns the get_portfolio_chart tool definition
func createGetPortfolioChartTool() mcp.Tool {
	return mcp.NewTool("get_portfolio_chart",
		mcp.WithDescription("Render an account's portfolio value history as a PNG line chart."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Account name"),
		),
	)
}
