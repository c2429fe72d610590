package analyzer

// Kind is the severity of a diagnostic
type Kind string

const (
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Diagnostic is one actionable finding. An empty Group means the finding is
// not attributed to a group.
type Diagnostic struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Group   string `json:"group,omitempty"`
}

// Pass names used for logging, metrics and spans
const (
	PassLoad       = "load"
	PassLost       = "lost"
	PassCycles     = "cycles"
	PassUndeclared = "undeclared"
	PassUICycles   = "ui_cycles"
)

func (a *Analyzer) emit(pass string, d Diagnostic) {
	a.diagnostics = append(a.diagnostics, d)
	a.metrics.CountDiagnostic(string(d.Kind), pass)
}

// Diagnostics returns the accumulated diagnostics in emission order
func (a *Analyzer) Diagnostics() []Diagnostic {
	out := make([]Diagnostic, len(a.diagnostics))
	copy(out, a.diagnostics)
	return out
}
