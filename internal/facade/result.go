package facade

type outcome int

const (
	outcomeFound outcome = iota
	outcomeNotFound
	outcomeFailed
)

// Result is the tagged outcome of a façade operation. "No data" conditions are
// NotFound, unexpected storage failures are Failed; both carry a descriptive
// human-readable message because the consumer is often a conversational loop
// that must narrate the outcome rather than handle a typed error. Nothing
// escapes the façade boundary as a raw error.
type Result struct {
	kind    outcome
	data    interface{}
	message string
}

// Found wraps data retrieved from storage.
func Found(data interface{}) Result {
	return Result{kind: outcomeFound, data: data}
}

// NotFound reports an expected "no data" condition with its narration text.
func NotFound(message string) Result {
	return Result{kind: outcomeNotFound, message: message}
}

// Failed reports an unexpected failure, already logged, as a user-safe message.
func Failed(message string) Result {
	return Result{kind: outcomeFailed, message: message}
}

// IsFound reports whether the operation produced data.
func (r Result) IsFound() bool { return r.kind == outcomeFound }

// IsFailed reports whether the operation hit an unexpected failure.
func (r Result) IsFailed() bool { return r.kind == outcomeFailed }

// Data returns the retrieved records, or nil for NotFound/Failed results.
func (r Result) Data() interface{} { return r.data }

// Message returns the narration text for NotFound/Failed results.
func (r Result) Message() string { return r.message }

// Narrate returns the value handed back to the invoker: the plain records when
// found, the descriptive text otherwise.
func (r Result) Narrate() interface{} {
	if r.kind == outcomeFound {
		return r.data
	}
	return r.message
}
