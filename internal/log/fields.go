package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldCardID     = "card_id"
	FieldIssuer     = "issuer"
	FieldCategory   = "category"
	FieldRewardType = "reward_type"
	FieldBackend    = "backend"
	FieldSource     = "source"
	FieldCardCount  = "card_count"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentCatalog   = "catalog"
	ComponentOptimizer = "optimizer"
	ComponentCollector = "collector"
	ComponentWorker    = "worker"
	ComponentAMQP      = "amqp"
	ComponentBackend   = "backend"
	ComponentStorage   = "storage"
)

// Operations defines standard operation names
const (
	OpList     = "list"
	OpAdd      = "add"
	OpRemove   = "remove"
	OpReplace  = "replace"
	OpOptimize = "optimize"
	OpCollect  = "collect"
	OpRefresh  = "refresh"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
