package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/rs/zerolog/log"

	"openbank-advisor/agent/bankdata"
	"openbank-advisor/agent/catalog"
	contractx "openbank-advisor/agent/contract"
	"openbank-advisor/agent/llm"
)

// Dispatcher is the request router behind the HTTP surface.
type Dispatcher interface {
	Dispatch(ctx context.Context, req contractx.Request) contractx.Envelope
}

// CustomerFetcher serves the raw customer data passthrough endpoint.
type CustomerFetcher interface {
	FetchCustomer(ctx context.Context, customerOID string, fields []bankdata.Field) (*bankdata.CustomerRecord, error)
}

// StatusReporter exposes the startup model availability snapshot.
type StatusReporter interface {
	Status() map[string]llm.ModelStatus
}

type Handler struct {
	dispatcher Dispatcher
	agents     *catalog.Catalog
	toolNames  []string
	bank       CustomerFetcher
	models     StatusReporter
}

func NewHandler(
	dispatcher Dispatcher,
	agents *catalog.Catalog,
	toolNames []string,
	bank CustomerFetcher,
	models StatusReporter,
) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		agents:     agents,
		toolNames:  toolNames,
		bank:       bank,
		models:     models,
	}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /mcp/query", h.handleQuery)
	mux.HandleFunc("POST /mcp/call", h.handleCall)
	mux.HandleFunc("POST /mcp/analyze", h.handleAnalyze)
	mux.HandleFunc("GET /mcp/status", h.handleStatus)
	mux.HandleFunc("GET /mcp/customer/{oid}", h.handleCustomer)
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, contractx.RequestKindAgentQuery)
}

func (h *Handler) handleCall(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, contractx.RequestKindToolCall)
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, contractx.RequestKindAnalyze)
}

// dispatch decodes the body as a request of the endpoint's kind and routes
// it. The kind comes from the path, never from the payload.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, kind contractx.RequestKind) {
	var req contractx.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeEnvelope(w, contractx.FailEnvelope(
			fmt.Errorf("%w: malformed request body: %v", contractx.ErrInvalidArguments, err)))
		return
	}
	req.Kind = kind

	writeEnvelope(w, h.dispatcher.Dispatch(r.Context(), req))
}

type agentStatus struct {
	Name      string   `json:"name"`
	Model     string   `json:"model"`
	Role      string   `json:"role"`
	Tools     []string `json:"tools"`
	Available bool     `json:"available"`
}

type statusReport struct {
	Agents []agentStatus `json:"agents"`
	Tools  []string      `json:"tools"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	models := h.models.Status()

	defs := h.agents.Definitions()
	agents := make([]agentStatus, 0, len(defs))
	for _, def := range defs {
		agents = append(agents, agentStatus{
			Name:      def.Name,
			Model:     def.Model,
			Role:      def.Role,
			Tools:     def.Tools,
			Available: models[def.Name].Available,
		})
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i].Name < agents[j].Name })

	writeEnvelope(w, contractx.OKEnvelope(statusReport{Agents: agents, Tools: h.toolNames}))
}

func (h *Handler) handleCustomer(w http.ResponseWriter, r *http.Request) {
	oid := r.PathValue("oid")

	record, err := h.bank.FetchCustomer(r.Context(), oid, bankdata.AllFields())
	if err != nil {
		writeEnvelope(w, contractx.FailEnvelope(err))
		return
	}
	writeEnvelope(w, contractx.OKEnvelope(record))
}

// writeEnvelope always answers 200; failures travel inside the envelope.
func writeEnvelope(w http.ResponseWriter, env contractx.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(env); err != nil {
		log.Warn().Err(err).Msg("write response failed")
	}
}
