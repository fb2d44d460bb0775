package tool

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"openbank-advisor/agent/bankdata"
	contractx "openbank-advisor/agent/contract"
)

func testRecord() *bankdata.CustomerRecord {
	return &bankdata.CustomerRecord{
		CustomerOID: "CUST-1001",
		Portfolio: &bankdata.Portfolio{
			CustomerOID: "CUST-1001",
			TotalValue:  100000,
			CashBalance: 10000,
			Holdings: []bankdata.Holding{
				{Symbol: "AAPL", Quantity: 100, AvgCost: 150, CurrentPrice: 180, MarketValue: 18000, Percentage: 20, UnrealizedGainLoss: 3000},
				{Symbol: "MSFT", Quantity: 50, AvgCost: 300, CurrentPrice: 320, MarketValue: 16000, Percentage: 17.8, UnrealizedGainLoss: 1000},
				{Symbol: "GOOG", Quantity: 80, AvgCost: 130, CurrentPrice: 140, MarketValue: 11200, Percentage: 12.4, UnrealizedGainLoss: 800},
			},
			Allocation:  bankdata.Allocation{Stocks: 70, Bonds: 15, Cash: 10, Other: 5},
			Performance: bankdata.Performance{YTDChange: 8000, YTDChangePercent: 8.7},
		},
		Transactions: &bankdata.Transactions{
			CustomerOID: "CUST-1001",
			Transactions: []bankdata.Transaction{
				{TransactionID: "T1", Date: "2026-08-01", Type: "deposit", Amount: 5000},
				{TransactionID: "T2", Date: "2026-08-10", Type: "buy", Symbol: "AAPL", Amount: 1800, Fees: 5},
				{TransactionID: "T3", Date: "2026-08-20", Type: "sell", Symbol: "MSFT", Amount: 3200, Fees: 5},
				{TransactionID: "T4", Date: "2026-06-01", Type: "dividend", Symbol: "AAPL", Amount: 120},
			},
		},
		Risk: &bankdata.RiskMetrics{
			CustomerOID: "CUST-1001",
			RiskProfile: bankdata.RiskProfile{RiskScore: 6.5, RiskCategory: "moderate", Volatility: 0.18, SharpeRatio: 1.2, MaxDrawdown: -0.15},
			VarAnalysis: map[string]float64{"var_95": -2500},
			StressTests: map[string]float64{"market_crash": -18000},
			Diversification: bankdata.Diversification{
				SectorConcentration:     0.42,
				GeographicConcentration: 0.8,
				CorrelationRisk:         0.65,
			},
		},
	}
}

func TestInvokeUnknownTool(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	_, err := r.Invoke(context.Background(), "no_such_tool", nil, testRecord())
	if !errors.Is(err, contractx.ErrUnknownTool) {
		t.Fatalf("expected ErrUnknownTool, got %v", err)
	}
}

func TestInvokeDisabledTool(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	if err := r.SetEnabled(ToolAssessRisk, false); err != nil {
		t.Fatalf("disable tool: %v", err)
	}

	_, err := r.Invoke(context.Background(), ToolAssessRisk, nil, testRecord())
	if !errors.Is(err, contractx.ErrToolDisabled) {
		t.Fatalf("expected ErrToolDisabled, got %v", err)
	}
	if errors.Is(err, contractx.ErrUnknownTool) {
		t.Fatalf("disabled tool must not read as unknown: %v", err)
	}
}

func TestValidateRejectsUnknownArgument(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	err := r.Validate(ToolAnalyzePortfolio, map[string]any{"depth": 3})
	if !errors.Is(err, contractx.ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestValidateRejectsBadEnum(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	err := r.Validate(ToolAnalyzePortfolio, map[string]any{"analysis_type": "everything"})
	if !errors.Is(err, contractx.ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestValidateRejectsBadType(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	err := r.Validate(ToolSummarizeTransactions, map[string]any{"window_days": "thirty"})
	if !errors.Is(err, contractx.ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}

	err = r.Validate(ToolSummarizeTransactions, map[string]any{"window_days": 2.5})
	if !errors.Is(err, contractx.ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments for fractional integer, got %v", err)
	}
}

func TestValidateDoesNotRun(t *testing.T) {
	t.Parallel()

	calls := 0
	r := NewRegistry()
	err := r.Register(Definition{
		Name:    "probe",
		Enabled: true,
		Fn: func(args map[string]any, record *bankdata.CustomerRecord) (any, error) {
			calls++
			return nil, nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := r.Validate("probe", nil); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if calls != 0 {
		t.Fatalf("validate must not execute the tool, got %d calls", calls)
	}
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	err := r.Register(Definition{
		Name:    ToolAssessRisk,
		Enabled: true,
		Fn:      assessRisk,
	})
	if err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}

func TestInvokeDeterministic(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	args := map[string]any{"method": "risk_parity"}

	first, err := r.Invoke(context.Background(), ToolOptimizePortfolio, args, testRecord())
	if err != nil {
		t.Fatalf("first invoke: %v", err)
	}
	second, err := r.Invoke(context.Background(), ToolOptimizePortfolio, args, testRecord())
	if err != nil {
		t.Fatalf("second invoke: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different results:\n%+v\n%+v", first, second)
	}
}

func TestNamesSortedAndEnabledOnly(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	if err := r.SetEnabled(ToolOptimizePortfolio, false); err != nil {
		t.Fatalf("disable tool: %v", err)
	}

	want := []string{ToolAnalyzePortfolio, ToolAssessRisk, ToolSummarizeTransactions}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
