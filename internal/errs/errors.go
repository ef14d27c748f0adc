package errs

import "fmt"

// Kind classifies an infrastructure failure by the subsystem that raised
// it, so orchestration code can decide whether to abort, retry, or degrade
// without matching on message text.
type Kind string

const (
	ConfigurationError   Kind = "ConfigurationError"
	DiscoveryError       Kind = "DiscoveryError"
	ResolverError        Kind = "ResolverError"
	WorkerLaunchError    Kind = "WorkerLaunchError"
	WorkerExecutionError Kind = "WorkerExecutionError"
	BrokerTransportError Kind = "BrokerTransportError"
	BrokerAuthError      Kind = "BrokerAuthError"
	BrokerTimeoutError   Kind = "BrokerTimeoutError"
	AggregationError     Kind = "AggregationError"
	ReportingError       Kind = "ReportingError"
)

// Error is the single concrete error type every kind uses. Component and
// Resource are optional context, following the same shape for every kind
// so downstream logging can treat them uniformly.
type Error struct {
	Kind      Kind
	Operation string
	Component string
	Resource  string
	Cause     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: failed to %s", e.Kind, e.Operation)
	if e.Component != "" {
		msg += fmt.Sprintf(", component: %s", e.Component)
	}
	if e.Resource != "" {
		msg += fmt.Sprintf(", resource: %s", e.Resource)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(", cause: %s", e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error of the same Kind, so callers can
// write errors.Is(err, &errs.Error{Kind: errs.BrokerAuthError}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind == "" {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an Error of the given kind for operation, with an optional
// cause.
func New(kind Kind, operation string, cause error) *Error {
	return &Error{Kind: kind, Operation: operation, Cause: cause}
}

// Wrap builds an Error of the given kind, attaching component/resource
// context alongside the cause.
func Wrap(kind Kind, operation, component, resource string, cause error) *Error {
	return &Error{Kind: kind, Operation: operation, Component: component, Resource: resource, Cause: cause}
}

// OfKind reports whether err (or any error it wraps) is an *Error with
// the given Kind.
func OfKind(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}
