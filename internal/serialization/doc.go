// Package serialization provides the .bprm format for saving and loading
// build parameter sets.
//
// A .bprm file is a small checksummed binary container:
//
//	Format Structure:
//	  [64 bytes: fixed header]
//	    0x00-0x03  Magic "BPRM"
//	    0x04-0x07  Version (uint32 LE)
//	    0x08-0x0B  Flags (uint32 LE)
//	    0x0C-0x0F  Reserved
//	    0x10-0x17  Header size (uint64 LE)
//	    0x18-0x1F  Data size (uint64 LE)
//	    0x20-0x3F  SHA-256 of the data section
//	  [Header: JSON metadata]
//	  [Tensor data: little-endian float64, 64-byte aligned]
//
// The header records every tensor (name, shape, offset, size), the kind of
// every parameter field (frozen, linear or angular) and, for files written
// at the end of an optimization run, the run summary.
//
// Example usage:
//
//	// Save
//	if err := serialization.SaveSet("build_params.bprm", set, run); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load
//	set, header, err := serialization.LoadSet("build_params.bprm")
package serialization
