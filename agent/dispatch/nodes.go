package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"openbank-advisor/agent/assemble"
	"openbank-advisor/agent/bankdata"
	"openbank-advisor/agent/catalog"
	contractx "openbank-advisor/agent/contract"
)

// analysisQueries are the canned user prompts rendered for analyze requests.
var analysisQueries = map[contractx.AnalysisKind]string{
	contractx.AnalysisPortfolio: "Provide a portfolio analysis for this customer's financial situation.",
	contractx.AnalysisRisk:      "Provide a risk analysis for this customer's financial situation.",
	contractx.AnalysisMarket:    "Provide a market analysis for this customer's financial situation.",
}

// analysisSeedTools names the deterministic tool whose output is seeded into
// the prompt for each analysis kind. Market analysis is seeded with live
// market data instead of a tool result.
var analysisSeedTools = map[contractx.AnalysisKind]string{
	contractx.AnalysisPortfolio: "analyze_portfolio",
	contractx.AnalysisRisk:      "assess_risk",
}

func validateRequest(in graphInput) (*graphState, error) {
	st := &graphState{req: in.Req, record: in.Record}

	switch in.Req.Kind {
	case contractx.RequestKindAgentQuery:
		st.query = strings.TrimSpace(in.Req.Query)
		if in.Req.Agent == "" {
			return nil, fmt.Errorf("%w: agent is required", contractx.ErrInvalidArguments)
		}
		if st.query == "" {
			return nil, fmt.Errorf("%w: query is required", contractx.ErrInvalidArguments)
		}
	case contractx.RequestKindToolCall:
		if in.Req.Tool == "" {
			return nil, fmt.Errorf("%w: tool is required", contractx.ErrInvalidArguments)
		}
		if in.Req.CustomerOID == "" {
			return nil, fmt.Errorf("%w: customer_oid is required", contractx.ErrInvalidArguments)
		}
	case contractx.RequestKindAnalyze:
		if in.Req.CustomerOID == "" {
			return nil, fmt.Errorf("%w: customer_oid is required", contractx.ErrInvalidArguments)
		}
		if _, ok := analysisQueries[in.Req.Analysis]; !ok {
			return nil, fmt.Errorf("%w: unknown analysis kind %q", contractx.ErrInvalidArguments, in.Req.Analysis)
		}
		st.query = analysisQueries[in.Req.Analysis]
	default:
		return nil, fmt.Errorf("%w: unknown request kind %q", contractx.ErrInvalidArguments, in.Req.Kind)
	}

	return st, nil
}

// resolveTarget binds the request to its agent or tool before any remote
// call is made, so unknown targets fail without touching the bank API.
func resolveTarget(st *graphState, agents *catalog.Catalog, tools ToolInvoker) (*graphState, error) {
	switch st.req.Kind {
	case contractx.RequestKindAgentQuery:
		def, err := agents.Resolve(st.req.Agent)
		if err != nil {
			return nil, err
		}
		st.agentDef = def
		st.hasAgent = true
	case contractx.RequestKindToolCall:
		if err := tools.Validate(st.req.Tool, st.req.Args); err != nil {
			return nil, err
		}
	case contractx.RequestKindAnalyze:
		def, err := agents.ForAnalysis(st.req.Analysis)
		if err != nil {
			return nil, err
		}
		st.agentDef = def
		st.hasAgent = true
	}
	return st, nil
}

// fetchData loads the customer record and, for market analyses, the market
// data for the portfolio's symbols. Invalid ids fail the request; a bank
// outage degrades it, leaving a record whose notes say what is missing.
func fetchData(ctx context.Context, st *graphState, bank BankClient) (*graphState, error) {
	if st.record == nil && st.req.CustomerOID != "" {
		record, err := bank.FetchCustomer(ctx, st.req.CustomerOID, bankdata.AllFields())
		if err != nil {
			if errors.Is(err, contractx.ErrInvalidArguments) {
				return nil, err
			}
			log.Warn().Err(err).Str("customer_oid", st.req.CustomerOID).Msg("customer data degraded")
			if record == nil {
				record = &bankdata.CustomerRecord{
					CustomerOID: st.req.CustomerOID,
					Notes:       []string{"customer data unavailable: " + err.Error()},
				}
			}
		}
		st.record = record
	}

	if st.req.Kind == contractx.RequestKindAnalyze && st.req.Analysis == contractx.AnalysisMarket {
		market, err := bank.FetchMarketData(ctx, holdingSymbols(st.record))
		if err != nil {
			log.Warn().Err(err).Msg("market data degraded")
			if st.record != nil {
				st.record.Notes = append(st.record.Notes, "market data unavailable: "+err.Error())
			}
		} else {
			st.market = market
		}
	}

	return st, nil
}

// holdingSymbols lists the distinct symbols held by the customer, sorted.
// An empty list asks the bank API for its default market snapshot.
func holdingSymbols(record *bankdata.CustomerRecord) []string {
	if record == nil || record.Portfolio == nil {
		return nil
	}
	seen := make(map[string]bool, len(record.Portfolio.Holdings))
	var symbols []string
	for _, h := range record.Portfolio.Holdings {
		if h.Symbol == "" || seen[h.Symbol] {
			continue
		}
		seen[h.Symbol] = true
		symbols = append(symbols, h.Symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// invokeTool runs the requested tool, or seeds an analysis prompt with the
// matching tool's output. Seed failures degrade instead of failing.
func invokeTool(ctx context.Context, st *graphState, tools ToolInvoker) (*graphState, error) {
	switch st.req.Kind {
	case contractx.RequestKindToolCall:
		result, err := tools.Invoke(ctx, st.req.Tool, st.req.Args, st.record)
		if err != nil {
			return nil, err
		}
		st.toolResult = &result
	case contractx.RequestKindAnalyze:
		name, ok := analysisSeedTools[st.req.Analysis]
		if !ok || !st.agentDef.AllowsTool(name) {
			return st, nil
		}
		result, err := tools.Invoke(ctx, name, nil, st.record)
		if err != nil {
			log.Warn().Err(err).Str("tool", name).Msg("analysis seed tool skipped")
			if st.record != nil {
				st.record.Notes = append(st.record.Notes, "tool "+name+" unavailable: "+err.Error())
			}
			return st, nil
		}
		st.toolResult = &result
	}
	return st, nil
}

func assemblePrompt(st *graphState) (*graphState, error) {
	if !st.hasAgent {
		return st, nil
	}
	st.payload = assemble.Build(st.agentDef, st.query, st.record, st.market, st.toolResult, st.req.Context)
	return st, nil
}

func callModel(ctx context.Context, st *graphState, models contractx.GeneratorRegistry) (*graphState, error) {
	if !st.hasAgent {
		return st, nil
	}
	gen, err := models.ForAgent(st.agentDef.Name)
	if err != nil {
		return nil, err
	}
	answer, err := gen.Generate(ctx, st.payload.System, st.payload.User)
	if err != nil {
		return nil, err
	}
	st.answer = answer
	return st, nil
}

func finalizeResponse(st *graphState) (graphOutput, error) {
	switch st.req.Kind {
	case contractx.RequestKindAgentQuery:
		return graphOutput{Data: contractx.AgentAnswer{
			Agent: st.agentDef.Name,
			Model: st.agentDef.Model,
			Text:  st.answer,
		}}, nil
	case contractx.RequestKindToolCall:
		return graphOutput{Data: *st.toolResult}, nil
	case contractx.RequestKindAnalyze:
		return graphOutput{Data: contractx.AnalysisResult{
			CustomerOID: st.req.CustomerOID,
			Kind:        st.req.Analysis,
			Agent:       st.agentDef.Name,
			Analysis:    st.answer,
		}}, nil
	}
	return graphOutput{}, fmt.Errorf("%w: no response for kind %q", contractx.ErrInternal, st.req.Kind)
}
