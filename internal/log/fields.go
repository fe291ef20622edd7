package log

// Shared attribute keys, so the same concept logs under the same name in
// every component.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldDurationHuman = "duration_human"
	FieldUserAgent     = "user_agent"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldCalculatorID  = "calculator_id"
)

// ComponentApp tags log lines from process-level wiring in the cmd mains.
const ComponentApp = "app"
