package tool

import (
	"fmt"

	"openbank-advisor/agent/bankdata"
	contractx "openbank-advisor/agent/contract"
)

const ToolAssessRisk = "assess_risk"

type RiskAssessment struct {
	RiskType        string                    `json:"risk_type"`
	RiskScore       float64                   `json:"risk_score"`
	RiskCategory    string                    `json:"risk_category"`
	Volatility      float64                   `json:"volatility"`
	SharpeRatio     float64                   `json:"sharpe_ratio"`
	MaxDrawdown     float64                   `json:"max_drawdown"`
	VarAnalysis     map[string]float64        `json:"var_analysis,omitempty"`
	StressTests     map[string]float64        `json:"stress_tests,omitempty"`
	Diversification *bankdata.Diversification `json:"diversification,omitempty"`
	Warnings        []string                  `json:"warnings,omitempty"`
}

func assessRiskTool() Definition {
	return Definition{
		Name: ToolAssessRisk,
		Desc: "Assess customer risk from risk metrics and portfolio concentration.",
		Params: []Param{
			{
				Name:    "risk_type",
				Type:    TypeString,
				Desc:    "Scope of the assessment",
				Enum:    []string{"comprehensive", "var", "stress", "concentration"},
				Default: "comprehensive",
			},
		},
		Enabled: true,
		Fn:      assessRisk,
	}
}

func assessRisk(args map[string]any, record *bankdata.CustomerRecord) (any, error) {
	if record == nil || record.Risk == nil {
		return nil, fmt.Errorf("%w: risk metrics are required", contractx.ErrInvalidArguments)
	}
	riskType := args["risk_type"].(string)
	risk := record.Risk

	out := RiskAssessment{
		RiskType:     riskType,
		RiskScore:    risk.RiskProfile.RiskScore,
		RiskCategory: risk.RiskProfile.RiskCategory,
		Volatility:   risk.RiskProfile.Volatility,
		SharpeRatio:  risk.RiskProfile.SharpeRatio,
		MaxDrawdown:  risk.RiskProfile.MaxDrawdown,
	}

	if riskType == "comprehensive" || riskType == "var" {
		out.VarAnalysis = risk.VarAnalysis
	}
	if riskType == "comprehensive" || riskType == "stress" {
		out.StressTests = risk.StressTests
	}
	if riskType == "comprehensive" || riskType == "concentration" {
		diversification := risk.Diversification
		out.Diversification = &diversification
		if diversification.SectorConcentration > 0.3 {
			out.Warnings = append(out.Warnings, "sector concentration exceeds 30%")
		}
		if diversification.CorrelationRisk > 0.5 {
			out.Warnings = append(out.Warnings, "high correlation between holdings")
		}
		if record.Portfolio != nil {
			holdings := sortedHoldings(record.Portfolio.Holdings)
			if len(holdings) > 0 && holdings[0].Percentage > 25 {
				out.Warnings = append(out.Warnings,
					fmt.Sprintf("top holding %s is %.1f%% of the portfolio", holdings[0].Symbol, holdings[0].Percentage))
			}
		}
	}
	if riskType == "comprehensive" {
		if risk.RiskProfile.Volatility > 0.2 {
			out.Warnings = append(out.Warnings, "portfolio volatility above 20%")
		}
	}
	return out, nil
}
