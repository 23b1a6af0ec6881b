package ir

import "fmt"

// Severity represents the severity level of a diagnostic.
type Severity uint8

const (
	// Info is an informational message.
	Info Severity = iota
	// Warning is a non-blocking issue.
	Warning
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Diagnostic is an informational record produced during compilation.
// Diagnostics never change the generated text.
type Diagnostic struct {
	Severity Severity
	Code     string // e.g. "hoisted-texture-sample"
	Message  string
	Entry    string // entry point or function the record belongs to
}

// String formats the diagnostic as "entry: severity[code]: message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s[%s]: %s", d.Entry, d.Severity, d.Code, d.Message)
}
