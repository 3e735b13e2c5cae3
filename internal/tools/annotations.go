package tools

// ReadOnlyAnnotations marks tools that only inspect the template collection.
func ReadOnlyAnnotations() map[string]bool {
	return map[string]bool{
		"readOnlyHint":    true,
		"destructiveHint": false,
		"idempotentHint":  true,
		"openWorldHint":   false,
	}
}

// GenerationAnnotations marks the generate tool: it writes new artifacts but
// never destroys existing data, and repeated calls produce distinct
// documents.
func GenerationAnnotations() map[string]bool {
	return map[string]bool{
		"readOnlyHint":    false,
		"destructiveHint": false,
		"idempotentHint":  false,
		"openWorldHint":   false,
	}
}
