// Package apierror provides the response envelope and the typed error taxonomy
// shared by services and handlers. Services return these errors; handlers only
// map them to HTTP statuses. Internal details (DB errors, stack traces) never
// reach the client.
package apierror

// Envelope is the canonical body of every JSON response.
type Envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    any               `json:"data,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// New builds a failure envelope.
func New(msg string) *Envelope {
	return &Envelope{Success: false, Message: msg}
}

// OK builds a success envelope.
func OK(msg string, data any) *Envelope {
	return &Envelope{Success: true, Message: msg, Data: data}
}

// NewValidation wraps multiple field errors.
func NewValidation(fields map[string]string) *Envelope {
	return &Envelope{Success: false, Message: "Validation failed", Fields: fields}
}
