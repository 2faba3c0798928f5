// SPDX-License-Identifier: MIT

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID = "request_id"
	FieldJobID     = "job_id"
	FieldModelID   = "model_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// Model fields
	FieldVariables   = "variables"
	FieldRegulations = "regulations"
	FieldParameters  = "parameters"

	// Analysis fields
	FieldStates    = "states"
	FieldWorkers   = "workers"
	FieldDirection = "direction"

	// Path fields
	FieldPath = "path"
)
