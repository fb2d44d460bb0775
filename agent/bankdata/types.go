package bankdata

// Field names one of the independently fetched customer sub-records.
type Field string

const (
	FieldProfile      Field = "profile"
	FieldPortfolio    Field = "portfolio"
	FieldAccounts     Field = "accounts"
	FieldTransactions Field = "transactions"
	FieldRisk         Field = "risk"
)

func AllFields() []Field {
	return []Field{FieldProfile, FieldPortfolio, FieldAccounts, FieldTransactions, FieldRisk}
}

// CustomerRecord is assembled per request and discarded with the response.
// Any sub-record may be nil; partial data is normal, not an error. Notes
// carries one diagnostic line per failed field fetch.
type CustomerRecord struct {
	CustomerOID  string        `json:"customer_oid"`
	Profile      *Profile      `json:"profile,omitempty"`
	Portfolio    *Portfolio    `json:"portfolio,omitempty"`
	Accounts     *Accounts     `json:"accounts,omitempty"`
	Transactions *Transactions `json:"transactions,omitempty"`
	Risk         *RiskMetrics  `json:"risk_metrics,omitempty"`
	Notes        []string      `json:"notes,omitempty"`
}

func (r *CustomerRecord) Has(f Field) bool {
	if r == nil {
		return false
	}
	switch f {
	case FieldProfile:
		return r.Profile != nil
	case FieldPortfolio:
		return r.Portfolio != nil
	case FieldAccounts:
		return r.Accounts != nil
	case FieldTransactions:
		return r.Transactions != nil
	case FieldRisk:
		return r.Risk != nil
	default:
		return false
	}
}

type Profile struct {
	Name                 string   `json:"name"`
	Email                string   `json:"email"`
	RiskTolerance        string   `json:"risk_tolerance"`
	InvestmentExperience string   `json:"investment_experience"`
	AnnualIncome         float64  `json:"annual_income"`
	NetWorth             float64  `json:"net_worth"`
	InvestmentGoals      []string `json:"investment_goals"`
	TimeHorizon          string   `json:"time_horizon"`
}

type profileEnvelope struct {
	CustomerOID string   `json:"customer_oid"`
	Profile     *Profile `json:"profile"`
}

type Portfolio struct {
	CustomerOID string      `json:"customer_oid"`
	TotalValue  float64     `json:"total_value"`
	CashBalance float64     `json:"cash_balance"`
	Holdings    []Holding   `json:"holdings"`
	Allocation  Allocation  `json:"allocation"`
	Performance Performance `json:"performance"`
}

type Holding struct {
	Symbol             string  `json:"symbol"`
	Name               string  `json:"name"`
	Quantity           float64 `json:"quantity"`
	CurrentPrice       float64 `json:"current_price"`
	MarketValue        float64 `json:"market_value"`
	Percentage         float64 `json:"percentage"`
	AvgCost            float64 `json:"avg_cost"`
	UnrealizedGainLoss float64 `json:"unrealized_gain_loss"`
}

type Allocation struct {
	Stocks float64 `json:"stocks"`
	Bonds  float64 `json:"bonds"`
	Cash   float64 `json:"cash"`
	Other  float64 `json:"other"`
}

type Performance struct {
	TodayChange        float64 `json:"today_change"`
	TodayChangePercent float64 `json:"today_change_percent"`
	MTDChange          float64 `json:"mtd_change"`
	MTDChangePercent   float64 `json:"mtd_change_percent"`
	YTDChange          float64 `json:"ytd_change"`
	YTDChangePercent   float64 `json:"ytd_change_percent"`
}

type Accounts struct {
	CustomerOID string    `json:"customer_oid"`
	Accounts    []Account `json:"accounts"`
	TotalAssets float64   `json:"total_assets"`
}

type Account struct {
	AccountID   string  `json:"account_id"`
	AccountType string  `json:"account_type"`
	AccountName string  `json:"account_name"`
	Balance     float64 `json:"balance"`
	Currency    string  `json:"currency"`
	Status      string  `json:"status"`
}

type Transactions struct {
	CustomerOID  string        `json:"customer_oid"`
	Transactions []Transaction `json:"transactions"`
}

type Transaction struct {
	TransactionID string  `json:"transaction_id"`
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"quantity"`
	Price         float64 `json:"price"`
	Amount        float64 `json:"amount"`
	Fees          float64 `json:"fees"`
	AccountID     string  `json:"account_id"`
}

type RiskMetrics struct {
	CustomerOID     string             `json:"customer_oid"`
	RiskProfile     RiskProfile        `json:"risk_profile"`
	VarAnalysis     map[string]float64 `json:"var_analysis"`
	StressTests     map[string]float64 `json:"stress_tests"`
	Diversification Diversification    `json:"diversification"`
}

type RiskProfile struct {
	RiskScore    float64 `json:"risk_score"`
	RiskCategory string  `json:"risk_category"`
	Volatility   float64 `json:"volatility"`
	Beta         float64 `json:"beta"`
	SharpeRatio  float64 `json:"sharpe_ratio"`
	MaxDrawdown  float64 `json:"max_drawdown"`
}

type Diversification struct {
	SectorConcentration     float64 `json:"sector_concentration"`
	GeographicConcentration float64 `json:"geographic_concentration"`
	CorrelationRisk         float64 `json:"correlation_risk"`
}

type MarketData struct {
	Timestamp     string                `json:"timestamp"`
	MarketData    []MarketQuote         `json:"market_data"`
	MarketIndices map[string]IndexQuote `json:"market_indices"`
}

type MarketQuote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
}

type IndexQuote struct {
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
}
