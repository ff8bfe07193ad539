// Package schemas embeds the JSON Schemas used to validate user documents.
package schemas

import _ "embed"

// OverridesSchemaJSON is the schema of an adjustment overrides document.
//
//go:embed overrides.schema.json
var OverridesSchemaJSON string
