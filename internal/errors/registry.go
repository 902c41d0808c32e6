package errors

import (
	"maps"
	"slices"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid vtree.json",
		Detail:   "The vtree.json configuration file is malformed.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or not one of the accepted values.",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Input file not readable",
		Detail:   "A tree document passed on the command line could not be opened.",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The preview server stopped with an error.",
	},

	// ============================================
	// Tree and Reconciliation Errors (E200-E219)
	// ============================================

	"E200": {
		Category: CategoryTree,
		Message:  "Invalid tree document",
		Detail:   "A node in the document has no recognizable kind, or a field has the wrong type.",
	},
	"E201": {
		Category: CategoryReconcile,
		Message:  "Unresolvable patch address",
		Detail:   "No live node exists at the patch route. The live tree was likely changed outside of reconciliation since the previous pass.",
	},
	"E202": {
		Category: CategoryReconcile,
		Message:  "Patch target is not an element",
		Detail:   "An attribute or child patch resolved to a text or comment node.",
	},

	// ============================================
	// Storage Errors (E220-E239)
	// ============================================

	"E220": {
		Category: CategoryStorage,
		Message:  "Snapshot not found",
		Detail:   "No stored tree exists for this application ID.",
	},
	"E221": {
		Category: CategoryStorage,
		Message:  "Snapshot decode failed",
		Detail:   "The stored tree is corrupt or was written by an incompatible version.",
	},
	"E222": {
		Category: CategoryStorage,
		Message:  "Snapshot store unavailable",
		Detail:   "The snapshot backend could not be opened or reached.",
	},

	// ============================================
	// Protocol Errors (E240-E259)
	// ============================================

	"E240": {
		Category: CategoryProtocol,
		Message:  "Invalid patch frame",
		Detail:   "A binary patch frame could not be decoded.",
	},
}

// GetAllCodes returns the registered codes in ascending order.
func GetAllCodes() []string {
	return slices.Sorted(maps.Keys(registry))
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
