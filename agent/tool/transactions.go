package tool

import (
	"fmt"
	"sort"
	"time"

	"openbank-advisor/agent/bankdata"
	contractx "openbank-advisor/agent/contract"
)

const ToolSummarizeTransactions = "summarize_transactions"

type TypeSummary struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

type TransactionSummary struct {
	Count      int                    `json:"count"`
	WindowDays int                    `json:"window_days,omitempty"`
	Inflow     float64                `json:"inflow"`
	Outflow    float64                `json:"outflow"`
	NetFlow    float64                `json:"net_flow"`
	Fees       float64                `json:"fees"`
	ByType     map[string]TypeSummary `json:"by_type"`
	Symbols    []string               `json:"symbols,omitempty"`
}

func summarizeTransactionsTool() Definition {
	return Definition{
		Name: ToolSummarizeTransactions,
		Desc: "Summarize transaction history: flows, fees, and traded symbols.",
		Params: []Param{
			{
				Name: "window_days",
				Type: TypeInteger,
				Desc: "Restrict to the most recent N days of history",
			},
		},
		Enabled: true,
		Fn:      summarizeTransactions,
	}
}

func summarizeTransactions(args map[string]any, record *bankdata.CustomerRecord) (any, error) {
	if record == nil || record.Transactions == nil {
		return nil, fmt.Errorf("%w: transaction data is required", contractx.ErrInvalidArguments)
	}

	transactions := record.Transactions.Transactions
	out := TransactionSummary{ByType: map[string]TypeSummary{}}

	// The window is anchored on the newest transaction date, not wall-clock
	// time, so identical inputs always produce identical output.
	var cutoff time.Time
	if raw, ok := args["window_days"]; ok {
		days := raw.(int)
		if days <= 0 {
			return nil, fmt.Errorf("%w: window_days must be positive", contractx.ErrInvalidArguments)
		}
		out.WindowDays = days
		newest := newestDate(transactions)
		if !newest.IsZero() {
			cutoff = newest.AddDate(0, 0, -days)
		}
	}

	symbols := map[string]struct{}{}
	for _, tx := range transactions {
		if !cutoff.IsZero() {
			date, err := time.Parse("2006-01-02", tx.Date)
			if err != nil || date.Before(cutoff) {
				continue
			}
		}
		out.Count++
		out.Fees += tx.Fees

		summary := out.ByType[tx.Type]
		summary.Count++
		summary.Amount += tx.Amount
		out.ByType[tx.Type] = summary

		switch tx.Type {
		case "deposit", "dividend", "sell":
			out.Inflow += tx.Amount
		case "withdrawal", "buy":
			out.Outflow += tx.Amount
		}
		if tx.Symbol != "" {
			symbols[tx.Symbol] = struct{}{}
		}
	}
	out.NetFlow = out.Inflow - out.Outflow

	for symbol := range symbols {
		out.Symbols = append(out.Symbols, symbol)
	}
	sort.Strings(out.Symbols)
	return out, nil
}

func newestDate(transactions []bankdata.Transaction) time.Time {
	var newest time.Time
	for _, tx := range transactions {
		date, err := time.Parse("2006-01-02", tx.Date)
		if err != nil {
			continue
		}
		if date.After(newest) {
			newest = date
		}
	}
	return newest
}
