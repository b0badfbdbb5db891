package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldUserID        = "user_id"
	FieldTransactionID = "transaction_id"
	FieldStartDate     = "start_date"
	FieldEndDate       = "end_date"
	FieldEvent         = "event"
)

// Component names
const (
	ComponentApp      = "app"
	ComponentHTTP     = "http"
	ComponentAuth     = "auth"
	ComponentLedger   = "transaction"
	ComponentStats    = "stats"
	ComponentExport   = "export"
	ComponentCategory = "category"
	ComponentStorage  = "storage"
	ComponentCache    = "cache"
	ComponentEvents   = "events"
)

// Operation names
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpList      = "list"
	OpAggregate = "aggregate"
	OpExport    = "export"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpMigrate   = "migrate"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)

// LogFields is a builder for structured log attributes.
type LogFields map[string]any

// NewFields creates an empty LogFields.
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds the error message.
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds the operation name.
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithUser adds the acting user id.
func (f LogFields) WithUser(userID uint) LogFields {
	f[FieldUserID] = userID
	return f
}

// WithTransaction adds a transaction id.
func (f LogFields) WithTransaction(id uint) LogFields {
	f[FieldTransactionID] = id
	return f
}

// WithRange adds a date range.
func (f LogFields) WithRange(start, end string) LogFields {
	f[FieldStartDate] = start
	f[FieldEndDate] = end
	return f
}

// WithHTTP adds request/response fields.
func (f LogFields) WithHTTP(method, path string, status int, durationMs int64) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldStatusCode] = status
	f[FieldDuration] = durationMs
	return f
}

// ToSlice converts LogFields to key/value pairs for slog.
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
