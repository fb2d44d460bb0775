package dispatch

import (
	"context"

	"openbank-advisor/agent/assemble"
	"openbank-advisor/agent/bankdata"
	"openbank-advisor/agent/catalog"
	contractx "openbank-advisor/agent/contract"
)

// BankClient is the narrow slice of the bank data client the dispatcher
// needs. The customer id stays opaque on this side of the boundary.
type BankClient interface {
	FetchCustomer(ctx context.Context, customerOID string, fields []bankdata.Field) (*bankdata.CustomerRecord, error)
	FetchMarketData(ctx context.Context, symbols []string) (*bankdata.MarketData, error)
}

// ToolInvoker is the slice of the tool registry the dispatcher needs.
type ToolInvoker interface {
	Validate(name string, args map[string]any) error
	Invoke(ctx context.Context, name string, args map[string]any, record *bankdata.CustomerRecord) (contractx.ToolResult, error)
}

// graphInput carries one request through the pipeline. Record is non-nil
// only when the caller prefetched customer data (comprehensive fan-out).
type graphInput struct {
	Req    contractx.Request
	Record *bankdata.CustomerRecord
}

type graphOutput struct {
	Data any
}

// graphState is the data carried forward between pipeline stages. Owned
// exclusively by one request's task; never shared.
type graphState struct {
	req   contractx.Request
	query string

	agentDef catalog.AgentDefinition
	hasAgent bool

	record     *bankdata.CustomerRecord
	market     *bankdata.MarketData
	toolResult *contractx.ToolResult
	payload    assemble.PromptPayload

	answer string
}
