package contract

type RequestKind string

const (
	RequestKindAgentQuery RequestKind = "agent_query"
	RequestKindToolCall   RequestKind = "tool_call"
	RequestKindAnalyze    RequestKind = "analyze"
)

type AnalysisKind string

const (
	AnalysisPortfolio     AnalysisKind = "portfolio"
	AnalysisRisk          AnalysisKind = "risk"
	AnalysisMarket        AnalysisKind = "market"
	AnalysisComprehensive AnalysisKind = "comprehensive"
)

// Request is one inbound dispatch request. Kind selects which of the three
// shapes is populated; the zero fields of the other shapes are ignored.
type Request struct {
	Kind RequestKind `json:"kind"`

	// agent query
	Agent   string `json:"agent,omitempty"`
	Query   string `json:"query,omitempty"`
	Context string `json:"context,omitempty"`

	// tool call
	Tool string         `json:"tool,omitempty"`
	Args map[string]any `json:"args,omitempty"`

	// analyze
	Analysis AnalysisKind `json:"analysis_type,omitempty"`

	// CustomerOID is opaque to everything except the bank data client.
	CustomerOID string `json:"customer_oid,omitempty"`
}

type Envelope struct {
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *ErrorInfo `json:"error,omitempty"`
}

type ErrorInfo struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func OKEnvelope(data any) Envelope {
	return Envelope{OK: true, Data: data}
}

// FailEnvelope classifies err into the envelope error taxonomy. Internal
// errors get a redacted message; every other kind carries the wrapped text.
func FailEnvelope(err error) Envelope {
	kind := ErrorKind(err)
	message := "internal error"
	if kind != ErrorKindInternal && err != nil {
		message = err.Error()
	}
	return Envelope{OK: false, Error: &ErrorInfo{Kind: kind, Message: message}}
}

// ToolResult is the output of one deterministic tool invocation.
type ToolResult struct {
	Tool   string `json:"tool"`
	Result any    `json:"result"`
}

// AgentAnswer is the payload of a successful agent query or single analysis.
type AgentAnswer struct {
	Agent string `json:"agent"`
	Model string `json:"model"`
	Text  string `json:"text"`
}

// AnalysisResult is the payload of a single-kind analyze request.
type AnalysisResult struct {
	CustomerOID string       `json:"customer_oid"`
	Kind        AnalysisKind `json:"analysis_type"`
	Agent       string       `json:"agent"`
	Analysis    string       `json:"analysis"`
}

// Section is one labeled branch of a comprehensive analysis. A failed branch
// carries Error instead of Text; the merged response stays ok overall.
type Section struct {
	Agent string `json:"agent"`
	Text  string `json:"text,omitempty"`
	Error string `json:"error,omitempty"`
}

// AnalysisReport is the payload of an analyze request.
type AnalysisReport struct {
	CustomerOID string             `json:"customer_oid"`
	Kind        AnalysisKind       `json:"analysis_type"`
	Sections    map[string]Section `json:"sections"`
}
