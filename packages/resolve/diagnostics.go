package resolve

import (
	"fmt"
	"strings"
)

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

type Kind int

const (
	// KindUnresolved: no provider recognized the name; the literal
	// placeholder text stays in the output.
	KindUnresolved Kind = iota
	// KindCircular: a name was revisited within one resolution chain.
	KindCircular
	// KindBadArgument: a system function rejected its arguments.
	KindBadArgument
	// KindDepthExceeded: recursive re-resolution hit the depth limit.
	KindDepthExceeded
)

// Diagnostic is one warning or error produced while resolving a
// descriptor. The core never prints these; callers surface them.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Field    string
	Name     string
	// Chain is the full reference chain for KindCircular.
	Chain   []string
	Message string
}

func (d Diagnostic) String() string {
	prefix := "warning"
	if d.Severity == SeverityError {
		prefix = "error"
	}
	if d.Field != "" {
		return fmt.Sprintf("%s: %s: %s", prefix, d.Field, d.Message)
	}
	return fmt.Sprintf("%s: %s", prefix, d.Message)
}

func unresolvedWarning(field, name string) Diagnostic {
	return Diagnostic{
		Kind:     KindUnresolved,
		Severity: SeverityWarning,
		Field:    field,
		Name:     name,
		Message:  "unresolved variable: " + name,
	}
}

func circularError(field string, chain []string) Diagnostic {
	return Diagnostic{
		Kind:     KindCircular,
		Severity: SeverityError,
		Field:    field,
		Name:     chain[len(chain)-1],
		Chain:    chain,
		Message:  "circular variable reference: " + strings.Join(chain, " -> "),
	}
}

func badArgumentError(field, name string, err error) Diagnostic {
	return Diagnostic{
		Kind:     KindBadArgument,
		Severity: SeverityError,
		Field:    field,
		Name:     name,
		Message:  err.Error(),
	}
}

func depthWarning(field, name string, limit int) Diagnostic {
	return Diagnostic{
		Kind:     KindDepthExceeded,
		Severity: SeverityWarning,
		Field:    field,
		Name:     name,
		Message:  fmt.Sprintf("%s: resolution depth limit (%d) reached", name, limit),
	}
}

// HasErrors reports whether any diagnostic is error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
