package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	"openbank-advisor/agent/bankdata"
	"openbank-advisor/agent/catalog"
	contractx "openbank-advisor/agent/contract"
)

// Dispatcher routes inbound requests to agents and tools. One instance
// serves all requests concurrently; per-request state lives in the graph.
type Dispatcher struct {
	agents *catalog.Catalog
	tools  ToolInvoker
	bank   BankClient
	models contractx.GeneratorRegistry

	runner compose.Runnable[graphInput, graphOutput]
}

func New(
	agents *catalog.Catalog,
	tools ToolInvoker,
	bank BankClient,
	models contractx.GeneratorRegistry,
) (*Dispatcher, error) {
	if agents == nil {
		return nil, errors.New("agent catalog is required")
	}
	if tools == nil {
		return nil, errors.New("tool registry is required")
	}
	if bank == nil {
		return nil, errors.New("bank data client is required")
	}
	if models == nil {
		return nil, errors.New("model registry is required")
	}

	d := &Dispatcher{
		agents: agents,
		tools:  tools,
		bank:   bank,
		models: models,
	}

	runner, err := d.compileGraph(context.Background())
	if err != nil {
		return nil, err
	}
	d.runner = runner

	return d, nil
}

// Dispatch handles one request end to end and always returns an envelope.
// Failures are classified into the error taxonomy; nothing panics out.
func (d *Dispatcher) Dispatch(ctx context.Context, req contractx.Request) (env contractx.Envelope) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("kind", string(req.Kind)).Msg("dispatch panic recovered")
			env = contractx.FailEnvelope(fmt.Errorf("%w: %v", contractx.ErrInternal, r))
		}
	}()

	req = normalizeRequest(req)

	if req.Kind == contractx.RequestKindAnalyze && req.Analysis == contractx.AnalysisComprehensive {
		return d.dispatchComprehensive(ctx, req)
	}

	out, err := d.runner.Invoke(ctx, graphInput{Req: req})
	if err != nil {
		log.Warn().Err(err).Str("kind", string(req.Kind)).Msg("dispatch failed")
		return contractx.FailEnvelope(err)
	}
	return contractx.OKEnvelope(out.Data)
}

// defaultAgent answers agent queries that name no agent.
const defaultAgent = "market_analyst"

// normalizeRequest fills the lenient defaults: an agent query without an
// agent goes to the market analyst, an analyze request without an analysis
// kind runs the comprehensive analysis.
func normalizeRequest(req contractx.Request) contractx.Request {
	if req.Kind == contractx.RequestKindAgentQuery && req.Agent == "" {
		req.Agent = defaultAgent
	}
	if req.Kind == contractx.RequestKindAnalyze && req.Analysis == "" {
		req.Analysis = contractx.AnalysisComprehensive
	}
	return req
}

// dispatchComprehensive runs the portfolio, risk, and market analyses
// concurrently over a single customer fetch and merges them into one report.
// A failed branch becomes an error section; the report itself stays ok.
func (d *Dispatcher) dispatchComprehensive(ctx context.Context, req contractx.Request) contractx.Envelope {
	if req.CustomerOID == "" {
		return contractx.FailEnvelope(fmt.Errorf("%w: customer_oid is required", contractx.ErrInvalidArguments))
	}

	record, err := d.bank.FetchCustomer(ctx, req.CustomerOID, bankdata.AllFields())
	if err != nil {
		if errors.Is(err, contractx.ErrInvalidArguments) {
			return contractx.FailEnvelope(err)
		}
		log.Warn().Err(err).Str("customer_oid", req.CustomerOID).Msg("customer data degraded")
		if record == nil {
			record = &bankdata.CustomerRecord{
				CustomerOID: req.CustomerOID,
				Notes:       []string{"customer data unavailable: " + err.Error()},
			}
		}
	}

	kinds := []contractx.AnalysisKind{
		contractx.AnalysisPortfolio,
		contractx.AnalysisRisk,
		contractx.AnalysisMarket,
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		sections = make(map[string]contractx.Section, len(kinds))
	)

	for _, kind := range kinds {
		wg.Add(1)
		go func(kind contractx.AnalysisKind) {
			defer wg.Done()
			section := d.runSection(ctx, req, record, kind)
			mu.Lock()
			sections[string(kind)] = section
			mu.Unlock()
		}(kind)
	}
	wg.Wait()

	return contractx.OKEnvelope(contractx.AnalysisReport{
		CustomerOID: req.CustomerOID,
		Kind:        contractx.AnalysisComprehensive,
		Sections:    sections,
	})
}

func (d *Dispatcher) runSection(
	ctx context.Context,
	req contractx.Request,
	record *bankdata.CustomerRecord,
	kind contractx.AnalysisKind,
) (section contractx.Section) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("analysis", string(kind)).Msg("analysis branch panic recovered")
			section = contractx.Section{Error: contractx.ErrorKindInternal + ": internal error"}
		}
	}()

	sub := contractx.Request{
		Kind:        contractx.RequestKindAnalyze,
		Analysis:    kind,
		CustomerOID: req.CustomerOID,
		Context:     req.Context,
	}

	// Each branch gets its own record copy since a failed seed tool appends
	// a note. The sub-records themselves are read-only.
	branchRecord := *record
	branchRecord.Notes = append([]string(nil), record.Notes...)

	out, err := d.runner.Invoke(ctx, graphInput{Req: sub, Record: &branchRecord})
	if err != nil {
		log.Warn().Err(err).Str("analysis", string(kind)).Msg("analysis branch failed")
		failed := contractx.FailEnvelope(err)
		return contractx.Section{Error: failed.Error.Kind + ": " + failed.Error.Message}
	}

	result, ok := out.Data.(contractx.AnalysisResult)
	if !ok {
		return contractx.Section{Error: contractx.ErrorKindInternal + ": internal error"}
	}
	return contractx.Section{Agent: result.Agent, Text: result.Analysis}
}
