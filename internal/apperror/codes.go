package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	// General validation
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	// Configuration
	CodeConfigurationError  Code = "CONFIGURATION_ERROR"
	CodeConfigPersistFailed Code = "CONFIG_PERSIST_FAILED"

	// External service errors
	CodeServiceTimeout     Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE"

	// System errors
	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Node health error codes
const (
	// Transport or timeout failure talking to an endpoint
	CodeNodeUnreachable Code = "NODE_UNREACHABLE"
	// The endpoint answered with a JSON-RPC error object
	CodeNodeRPCError Code = "NODE_RPC_ERROR"
	// The endpoint answered with a payload we cannot decode
	CodeInvalidNodeResponse Code = "INVALID_NODE_RESPONSE"
	CodeNodeNotConfigured   Code = "NODE_NOT_CONFIGURED"
	CodeInvalidNodeURL      Code = "INVALID_NODE_URL"

	// No registry entry for a reported chain id
	CodeChainNotFound Code = "CHAIN_NOT_FOUND"
	// Fallback endpoint missing or unreachable while the node syncs
	CodeFallbackUnavailable Code = "FALLBACK_UNAVAILABLE"

	// Host sampling
	CodeSystemMetricsFailed Code = "SYSTEM_METRICS_FAILED"

	// Circuit breaker errors
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeCircuitHalfOpen Code = "CIRCUIT_HALF_OPEN"
	CodeRateLimited     Code = "RATE_LIMITED"
)
