package tool

import (
	"context"
	"errors"
	"math"
	"testing"

	contractx "openbank-advisor/agent/contract"
)

func TestAnalyzePortfolioComprehensive(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	res, err := r.Invoke(context.Background(), ToolAnalyzePortfolio, nil, testRecord())
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}

	analysis, ok := res.Result.(PortfolioAnalysis)
	if !ok {
		t.Fatalf("unexpected result type %T", res.Result)
	}

	if analysis.AnalysisType != "comprehensive" {
		t.Fatalf("expected default analysis_type comprehensive, got %q", analysis.AnalysisType)
	}
	if analysis.TotalValue != 100000 || analysis.HoldingCount != 3 {
		t.Fatalf("unexpected totals: %+v", analysis)
	}
	if analysis.UnrealizedGainLoss != 4800 {
		t.Fatalf("expected unrealized gain 4800, got %v", analysis.UnrealizedGainLoss)
	}
	if len(analysis.TopHoldings) != 3 || analysis.TopHoldings[0].Symbol != "AAPL" {
		t.Fatalf("expected AAPL as top holding, got %+v", analysis.TopHoldings)
	}
	if analysis.TopHoldingPercent != 20 {
		t.Fatalf("expected top holding 20%%, got %v", analysis.TopHoldingPercent)
	}
	if math.Abs(analysis.Top3Percent-50.2) > 1e-9 {
		t.Fatalf("expected top3 50.2%%, got %v", analysis.Top3Percent)
	}
	if analysis.Allocation == nil || analysis.Performance == nil {
		t.Fatalf("comprehensive analysis must include allocation and performance: %+v", analysis)
	}
}

func TestAnalyzePortfolioPerformanceOnly(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	res, err := r.Invoke(context.Background(), ToolAnalyzePortfolio,
		map[string]any{"analysis_type": "performance"}, testRecord())
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}

	analysis := res.Result.(PortfolioAnalysis)
	if analysis.Performance == nil {
		t.Fatal("performance analysis must include performance data")
	}
	if analysis.Allocation != nil || len(analysis.TopHoldings) != 0 {
		t.Fatalf("performance analysis must omit composition data: %+v", analysis)
	}
}

func TestAnalyzePortfolioWithoutPortfolio(t *testing.T) {
	t.Parallel()

	record := testRecord()
	record.Portfolio = nil

	r := DefaultRegistry()
	_, err := r.Invoke(context.Background(), ToolAnalyzePortfolio, nil, record)
	if !errors.Is(err, contractx.ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestOptimizePortfolioMaxDiversification(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	res, err := r.Invoke(context.Background(), ToolOptimizePortfolio,
		map[string]any{"method": "max_diversification"}, testRecord())
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}

	opt := res.Result.(OptimizationResult)
	if len(opt.Weights) != 3 {
		t.Fatalf("expected 3 weights, got %d", len(opt.Weights))
	}
	for _, w := range opt.Weights {
		if w.TargetPercent != 33.33 {
			t.Fatalf("expected equal weights of 33.33, got %+v", opt.Weights)
		}
	}
}

func TestOptimizePortfolioRiskParityFavorsSmallPositions(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	res, err := r.Invoke(context.Background(), ToolOptimizePortfolio,
		map[string]any{"method": "risk_parity"}, testRecord())
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}

	opt := res.Result.(OptimizationResult)
	bySymbol := map[string]TargetWeight{}
	total := 0.0
	for _, w := range opt.Weights {
		bySymbol[w.Symbol] = w
		total += w.TargetPercent
	}
	if bySymbol["GOOG"].TargetPercent <= bySymbol["AAPL"].TargetPercent {
		t.Fatalf("risk parity must weight the smallest position highest: %+v", opt.Weights)
	}
	if math.Abs(total-100) > 0.05 {
		t.Fatalf("weights must sum to 100, got %v", total)
	}
}

func TestOptimizePortfolioMaxWeightCap(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	res, err := r.Invoke(context.Background(), ToolOptimizePortfolio,
		map[string]any{"method": "mean_variance", "max_weight": 40.0}, testRecord())
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}

	opt := res.Result.(OptimizationResult)
	for _, w := range opt.Weights {
		if w.TargetPercent > 40.01 {
			t.Fatalf("weight %v exceeds the 40%% cap: %+v", w, opt.Weights)
		}
	}
}

func TestOptimizePortfolioNoHoldings(t *testing.T) {
	t.Parallel()

	record := testRecord()
	record.Portfolio.Holdings = nil

	r := DefaultRegistry()
	_, err := r.Invoke(context.Background(), ToolOptimizePortfolio, nil, record)
	if !errors.Is(err, contractx.ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestAssessRiskComprehensive(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	res, err := r.Invoke(context.Background(), ToolAssessRisk, nil, testRecord())
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}

	assessment := res.Result.(RiskAssessment)
	if assessment.RiskScore != 6.5 || assessment.RiskCategory != "moderate" {
		t.Fatalf("unexpected risk profile: %+v", assessment)
	}
	if assessment.VarAnalysis["var_95"] != -2500 {
		t.Fatalf("expected var analysis carried through, got %+v", assessment.VarAnalysis)
	}
	if assessment.StressTests["market_crash"] != -18000 {
		t.Fatalf("expected stress tests carried through, got %+v", assessment.StressTests)
	}

	// sector 0.42 > 0.3 and correlation 0.65 > 0.5 both warn; volatility
	// 0.18 and top holding 20% stay quiet.
	if len(assessment.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", assessment.Warnings)
	}
}

func TestAssessRiskConcentrationWarnsOnTopHolding(t *testing.T) {
	t.Parallel()

	record := testRecord()
	record.Portfolio.Holdings[0].Percentage = 32

	r := DefaultRegistry()
	res, err := r.Invoke(context.Background(), ToolAssessRisk,
		map[string]any{"risk_type": "concentration"}, testRecord())
	if err != nil {
		t.Fatalf("invoke baseline: %v", err)
	}
	baseline := res.Result.(RiskAssessment)

	res, err = r.Invoke(context.Background(), ToolAssessRisk,
		map[string]any{"risk_type": "concentration"}, record)
	if err != nil {
		t.Fatalf("invoke concentrated: %v", err)
	}
	concentrated := res.Result.(RiskAssessment)

	if len(concentrated.Warnings) != len(baseline.Warnings)+1 {
		t.Fatalf("expected one extra warning for the oversized holding, got %v vs %v",
			concentrated.Warnings, baseline.Warnings)
	}
	if concentrated.VarAnalysis != nil || concentrated.StressTests != nil {
		t.Fatalf("concentration scope must omit var and stress data: %+v", concentrated)
	}
}

func TestAssessRiskWithoutMetrics(t *testing.T) {
	t.Parallel()

	record := testRecord()
	record.Risk = nil

	r := DefaultRegistry()
	_, err := r.Invoke(context.Background(), ToolAssessRisk, nil, record)
	if !errors.Is(err, contractx.ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
}

func TestSummarizeTransactionsAll(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	res, err := r.Invoke(context.Background(), ToolSummarizeTransactions, nil, testRecord())
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}

	summary := res.Result.(TransactionSummary)
	if summary.Count != 4 {
		t.Fatalf("expected 4 transactions, got %d", summary.Count)
	}
	if summary.Inflow != 5000+3200+120 {
		t.Fatalf("unexpected inflow %v", summary.Inflow)
	}
	if summary.Outflow != 1800 {
		t.Fatalf("unexpected outflow %v", summary.Outflow)
	}
	if summary.NetFlow != summary.Inflow-summary.Outflow {
		t.Fatalf("net flow mismatch: %+v", summary)
	}
	if summary.Fees != 10 {
		t.Fatalf("unexpected fees %v", summary.Fees)
	}
	if summary.ByType["buy"].Count != 1 || summary.ByType["deposit"].Amount != 5000 {
		t.Fatalf("unexpected by-type breakdown: %+v", summary.ByType)
	}
	want := []string{"AAPL", "MSFT"}
	if len(summary.Symbols) != 2 || summary.Symbols[0] != want[0] || summary.Symbols[1] != want[1] {
		t.Fatalf("expected symbols %v, got %v", want, summary.Symbols)
	}
}

func TestSummarizeTransactionsWindow(t *testing.T) {
	t.Parallel()

	// Newest transaction is 2026-08-20; a 30 day window keeps the three
	// August entries and drops the June dividend.
	r := DefaultRegistry()
	res, err := r.Invoke(context.Background(), ToolSummarizeTransactions,
		map[string]any{"window_days": 30}, testRecord())
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}

	summary := res.Result.(TransactionSummary)
	if summary.Count != 3 {
		t.Fatalf("expected 3 transactions in window, got %d", summary.Count)
	}
	if summary.WindowDays != 30 {
		t.Fatalf("expected window echoed back, got %+v", summary)
	}
	if _, ok := summary.ByType["dividend"]; ok {
		t.Fatalf("dividend outside the window must be excluded: %+v", summary.ByType)
	}
}

func TestSummarizeTransactionsBadWindow(t *testing.T) {
	t.Parallel()

	r := DefaultRegistry()
	_, err := r.Invoke(context.Background(), ToolSummarizeTransactions,
		map[string]any{"window_days": -5}, testRecord())
	if !errors.Is(err, contractx.ErrInvalidArguments) {
		t.Fatalf("expected ErrInvalidArguments, got %v", err)
	}
}
