package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError:  "Configuration error",
	CodeConfigPersistFailed: "Failed to persist configuration",

	CodeServiceTimeout:     "Service request timeout",
	CodeServiceUnavailable: "Service temporarily unavailable",

	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	CodeNodeUnreachable:     "Node endpoint is unreachable",
	CodeNodeRPCError:        "Node returned a JSON-RPC error",
	CodeInvalidNodeResponse: "Node returned an unexpected response",
	CodeNodeNotConfigured:   "Node endpoint is not configured",
	CodeInvalidNodeURL:      "Invalid node URL",

	CodeChainNotFound:       "No fallback endpoint known for chain",
	CodeFallbackUnavailable: "Fallback endpoint unavailable",

	CodeSystemMetricsFailed: "Failed to sample system metrics",

	CodeCircuitOpen:     "Circuit breaker is open",
	CodeCircuitHalfOpen: "Circuit breaker is half-open",
	CodeRateLimited:     "Rate limit wait aborted",
}
