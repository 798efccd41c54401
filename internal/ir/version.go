package ir

// Version constants for the IR schema and the transformation engine.
const (
	// IRVersion is the IR schema version. Bumping it invalidates cached
	// transformation results.
	IRVersion = "1"

	// EngineVersion is the optchain version.
	EngineVersion = "0.1.0"
)
