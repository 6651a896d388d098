package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Protocol Errors (E060-E069)
	// ============================================

	"E060": {
		Category: CategoryProtocol,
		Message:  "Handshake failed",
		Detail:   "The client did not send a valid Hello frame after opening the WebSocket.",
	},
	"E061": {
		Category: CategoryProtocol,
		Message:  "Protocol version mismatch",
		Detail:   "The thin client and the server speak different major protocol versions. Reload the page to fetch the current client.",
	},
	"E062": {
		Category: CategoryProtocol,
		Message:  "Malformed frame",
		Detail:   "A frame was shorter than its header declared or its payload could not be decoded.",
	},
	"E063": {
		Category: CategoryProtocol,
		Message:  "Unknown event kind",
		Detail:   "The client reported an event that is neither popstate nor hashchange.",
	},
	"E064": {
		Category: CategoryProtocol,
		Message:  "Unknown command",
		Detail:   "A command frame carried an op this peer does not understand.",
	},

	// ============================================
	// Navigation Errors (E100-E109)
	// ============================================

	"E100": {
		Category: CategoryNavigation,
		Message:  "Invalid URL",
		Detail:   "The value could not be parsed as an absolute URL.",
	},

	// ============================================
	// Config Errors (E120-E129)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file could not be parsed.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .json, .toml, .yaml or .yml.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration field has a value outside its allowed range.",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No lokation.json, lokation.toml or lokation.yaml was found in this directory or any parent.",
	},

	// ============================================
	// CLI Errors (E140-E149)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Invalid simulation step",
		Detail:   "Steps are push:<url>, hash:<fragment>, replace:<target>, replace, back, forward, go:<n>, navigate:<url> or listen.",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Missing argument",
		Detail:   "The command requires more arguments.",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
