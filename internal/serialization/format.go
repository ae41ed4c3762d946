package serialization

import (
	"time"
)

// Format constants.
const (
	MagicBytes      = "BPRM"
	FormatVersion   = 1
	HeaderAlignment = 64   // Align tensor data to 64 bytes
	FixedHeaderSize = 64   // Fixed header size (0x40 bytes)
	ChecksumSize    = 32   // SHA-256 checksum size (32 bytes)
	ChecksumOffset  = 0x20 // Checksum offset in the fixed header
)

// DTypeFloat64 is the only element type stored in .bprm files.
const DTypeFloat64 = "float64"

// Flags for the .bprm format.
const (
	FlagHasRun      uint32 = 1 << 0 // bit 0: optimization run summary included
	FlagHasMetadata uint32 = 1 << 1 // bit 1: custom metadata included
)

// Header represents the JSON header in a .bprm file.
type Header struct {
	FormatVersion int               `json:"format_version"` // Version of the .bprm format
	ToolVersion   string            `json:"tool_version"`   // Version of buildopt that created this file
	CreatedAt     time.Time         `json:"created_at"`     // When the file was created
	Tensors       []TensorMeta      `json:"tensors"`        // Tensor metadata
	Kinds         map[string]string `json:"kinds"`          // Field kind per parameter name
	Run           *RunMeta          `json:"run,omitempty"`  // Optimization run summary (optional)
	Metadata      map[string]string `json:"metadata"`       // Custom metadata
}

// RunMeta summarizes the optimization run that produced a parameter set.
type RunMeta struct {
	ID       string    `json:"id"`        // Run identifier (UUID)
	Protein  string    `json:"protein"`   // Protein the run optimized against
	Strategy string    `json:"strategy"`  // Optimization strategy name
	Keys     []string  `json:"keys"`      // Optimized parameter keys
	Steps    int       `json:"steps"`     // Iterations performed
	State    string    `json:"state"`     // Terminal state (converged, exhausted)
	BestLoss float64   `json:"best_loss"` // Best loss observed
	Losses   []float64 `json:"losses"`    // Per-iteration loss history
}

// TensorMeta describes a tensor in the .bprm file.
type TensorMeta struct {
	Name   string `json:"name"`   // Tensor name (e.g., "CA.thetas.sin")
	DType  string `json:"dtype"`  // Data type (always "float64")
	Shape  []int  `json:"shape"`  // Tensor shape
	Offset int64  `json:"offset"` // Offset in the data section (bytes from start of tensor data)
	Size   int64  `json:"size"`   // Size in bytes
}

// dataOffset returns the absolute offset of the data section for a JSON
// header of headerSize bytes.
func dataOffset(headerSize uint64) int64 {
	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	currentPos := int64(FixedHeaderSize) + int64(headerSize)
	padding := (HeaderAlignment - (currentPos % HeaderAlignment)) % HeaderAlignment
	return currentPos + padding
}
