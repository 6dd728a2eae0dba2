package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E100-E199)
	// ============================================

	"E100": {
		Category: CategoryConfig,
		Message:  "Config file unreadable",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Config file malformed",
	},

	// ============================================
	// Transport Errors (E200-E299)
	// ============================================

	"E200": {
		Category: CategoryTransport,
		Message:  "WebSocket upgrade failed",
	},
	"E201": {
		Category: CategoryTransport,
		Message:  "Session closed",
	},
	"E202": {
		Category: CategoryTransport,
		Message:  "Frame encode failed",
	},
	"E203": {
		Category: CategoryTransport,
		Message:  "Frame write failed",
	},

	// ============================================
	// CLI Errors (E300-E399)
	// ============================================

	"E300": {
		Category: CategoryCLI,
		Message:  "Invalid request",
	},
}
