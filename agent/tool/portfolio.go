package tool

import (
	"fmt"
	"math"
	"sort"

	"openbank-advisor/agent/bankdata"
	contractx "openbank-advisor/agent/contract"
)

const (
	ToolAnalyzePortfolio  = "analyze_portfolio"
	ToolOptimizePortfolio = "optimize_portfolio"
)

type HoldingWeight struct {
	Symbol      string  `json:"symbol"`
	MarketValue float64 `json:"market_value"`
	Percentage  float64 `json:"percentage"`
}

type PortfolioAnalysis struct {
	AnalysisType       string                `json:"analysis_type"`
	TotalValue         float64               `json:"total_value"`
	CashBalance        float64               `json:"cash_balance"`
	HoldingCount       int                   `json:"holding_count"`
	TopHoldings        []HoldingWeight       `json:"top_holdings,omitempty"`
	Allocation         *bankdata.Allocation  `json:"allocation,omitempty"`
	Performance        *bankdata.Performance `json:"performance,omitempty"`
	UnrealizedGainLoss float64               `json:"unrealized_gain_loss"`
	TopHoldingPercent  float64               `json:"top_holding_percent,omitempty"`
	Top3Percent        float64               `json:"top3_percent,omitempty"`
}

func analyzePortfolioTool() Definition {
	return Definition{
		Name: ToolAnalyzePortfolio,
		Desc: "Analyze portfolio performance, composition, and concentration.",
		Params: []Param{
			{
				Name:    "analysis_type",
				Type:    TypeString,
				Desc:    "Type of analysis to perform",
				Enum:    []string{"comprehensive", "performance", "risk", "composition"},
				Default: "comprehensive",
			},
		},
		Enabled: true,
		Fn:      analyzePortfolio,
	}
}

func analyzePortfolio(args map[string]any, record *bankdata.CustomerRecord) (any, error) {
	p := portfolioOf(record)
	if p == nil {
		return nil, fmt.Errorf("%w: portfolio data is required", contractx.ErrInvalidArguments)
	}
	analysisType := args["analysis_type"].(string)

	holdings := sortedHoldings(p.Holdings)
	out := PortfolioAnalysis{
		AnalysisType: analysisType,
		TotalValue:   p.TotalValue,
		CashBalance:  p.CashBalance,
		HoldingCount: len(holdings),
	}
	for _, h := range p.Holdings {
		out.UnrealizedGainLoss += h.UnrealizedGainLoss
	}

	if analysisType == "comprehensive" || analysisType == "composition" {
		allocation := p.Allocation
		out.Allocation = &allocation
		out.TopHoldings = topWeights(holdings, 5)
	}
	if analysisType == "comprehensive" || analysisType == "performance" {
		performance := p.Performance
		out.Performance = &performance
	}
	if analysisType == "comprehensive" || analysisType == "risk" {
		if len(holdings) > 0 {
			out.TopHoldingPercent = holdings[0].Percentage
		}
		for i := 0; i < len(holdings) && i < 3; i++ {
			out.Top3Percent += holdings[i].Percentage
		}
	}
	return out, nil
}

type TargetWeight struct {
	Symbol         string  `json:"symbol"`
	CurrentPercent float64 `json:"current_percent"`
	TargetPercent  float64 `json:"target_percent"`
}

type OptimizationResult struct {
	Method  string         `json:"method"`
	Weights []TargetWeight `json:"weights"`
}

func optimizePortfolioTool() Definition {
	return Definition{
		Name: ToolOptimizePortfolio,
		Desc: "Compute target portfolio weights under an optimization method.",
		Params: []Param{
			{
				Name:    "method",
				Type:    TypeString,
				Desc:    "Optimization method to use",
				Enum:    []string{"mean_variance", "risk_parity", "max_diversification"},
				Default: "mean_variance",
			},
			{
				Name: "max_weight",
				Type: TypeNumber,
				Desc: "Optional per-holding weight cap in percent",
			},
		},
		Enabled: true,
		Fn:      optimizePortfolio,
	}
}

func optimizePortfolio(args map[string]any, record *bankdata.CustomerRecord) (any, error) {
	p := portfolioOf(record)
	if p == nil {
		return nil, fmt.Errorf("%w: portfolio data is required", contractx.ErrInvalidArguments)
	}
	if len(p.Holdings) == 0 {
		return nil, fmt.Errorf("%w: portfolio has no holdings", contractx.ErrInvalidArguments)
	}
	method := args["method"].(string)

	holdings := sortedHoldings(p.Holdings)
	scores := make([]float64, len(holdings))
	for i, h := range holdings {
		switch method {
		case "risk_parity":
			// Without per-asset volatility, the current weight share is the
			// risk proxy: larger positions carry larger risk contributions.
			share := h.Percentage
			if share <= 0 {
				share = 0.1
			}
			scores[i] = 1 / share
		case "max_diversification":
			scores[i] = 1
		default: // mean_variance
			cost := h.AvgCost * h.Quantity
			gainFrac := 0.0
			if cost > 0 {
				gainFrac = h.UnrealizedGainLoss / cost
			}
			scores[i] = math.Max(1+gainFrac, 0.1)
		}
	}

	total := 0.0
	for _, s := range scores {
		total += s
	}
	weights := make([]float64, len(scores))
	for i, s := range scores {
		weights[i] = 100 * s / total
	}

	if raw, ok := args["max_weight"]; ok {
		capWeights(weights, raw.(float64))
	}

	out := OptimizationResult{Method: method, Weights: make([]TargetWeight, len(holdings))}
	for i, h := range holdings {
		out.Weights[i] = TargetWeight{
			Symbol:         h.Symbol,
			CurrentPercent: round2(h.Percentage),
			TargetPercent:  round2(weights[i]),
		}
	}
	return out, nil
}

// capWeights pins weights above the cap and redistributes the excess
// pro-rata over the rest until no weight exceeds the cap.
func capWeights(weights []float64, maxWeight float64) {
	if maxWeight <= 0 || maxWeight*float64(len(weights)) < 100 {
		return
	}
	for iter := 0; iter < len(weights); iter++ {
		excess := 0.0
		uncappedTotal := 0.0
		for _, w := range weights {
			if w > maxWeight {
				excess += w - maxWeight
			} else if w < maxWeight {
				uncappedTotal += w
			}
		}
		if excess == 0 || uncappedTotal == 0 {
			return
		}
		for i, w := range weights {
			if w > maxWeight {
				weights[i] = maxWeight
			} else if w < maxWeight {
				weights[i] = w + excess*w/uncappedTotal
			}
		}
	}
}

func portfolioOf(record *bankdata.CustomerRecord) *bankdata.Portfolio {
	if record == nil {
		return nil
	}
	return record.Portfolio
}

// sortedHoldings orders by market value descending, symbol as tiebreak, so
// results are deterministic regardless of upstream ordering.
func sortedHoldings(in []bankdata.Holding) []bankdata.Holding {
	holdings := append([]bankdata.Holding(nil), in...)
	sort.Slice(holdings, func(i, j int) bool {
		if holdings[i].MarketValue != holdings[j].MarketValue {
			return holdings[i].MarketValue > holdings[j].MarketValue
		}
		return holdings[i].Symbol < holdings[j].Symbol
	})
	return holdings
}

func topWeights(holdings []bankdata.Holding, n int) []HoldingWeight {
	if len(holdings) < n {
		n = len(holdings)
	}
	out := make([]HoldingWeight, n)
	for i := 0; i < n; i++ {
		out[i] = HoldingWeight{
			Symbol:      holdings[i].Symbol,
			MarketValue: holdings[i].MarketValue,
			Percentage:  holdings[i].Percentage,
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
