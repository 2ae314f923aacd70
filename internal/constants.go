// Author: Fredrik Thulin <fredrik@ispik.se>

package internal

// Version is set at build time with -ldflags "-X soltrace/internal.Version=..."
var Version = "undefined"

// Function whose end lines carry a simplex state snapshot
const DefaultTargetFunction = "glp_simplex"

// Marker texts found after the '#' delimiter of a trace line
const (
	DefaultStartMarker      = "- start"
	DefaultEndMarker        = "- end"
	DefaultDiagnosticMarker = "MATLAB:"
)

// Tab separated fields inside the {...} segment of a target end line.
// The state vector is the half-open range [DefaultStateFirstField, DefaultStateLastField).
const (
	DefaultStateFirstField = 1
	DefaultStateLastField  = 13
	DefaultIterationField  = 27
)

// Base name of output files when none is given on the command line
const DefaultOutputBase = "output"

// Longest trace line accepted by the line reader. State snapshots make lines long.
const MaxLineLength = 1024 * 1024

// Snapshot file format version
const DatasetVersion = 1
