package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/sidechainnet/buildopt/internal/tensor"
)

const toolVersion = "0.3.0" // Current buildopt version

// Writer writes parameter sets in .bprm format.
type Writer struct {
	file   *os.File
	closed bool
}

// NewWriter creates a new .bprm file writer.
func NewWriter(path string) (*Writer, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for saving
	file, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file")
	}
	return &Writer{file: file}, nil
}

// WriteStateDict writes named tensors with header to the file.
//
// Tensors, FormatVersion, ToolVersion and CreatedAt of header are filled in
// by the writer; Kinds, Run and Metadata are kept as given.
func (w *Writer) WriteStateDict(stateDict map[string]*tensor.Tensor, header Header) error {
	if w.closed {
		return ErrClosed
	}
	return WriteTo(w.file, stateDict, header)
}

// Close closes the writer and the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// WriteTo writes the state dictionary to an io.Writer in .bprm format.
// Tensors are stored in name order so equal inputs produce equal files
// apart from the creation time.
func WriteTo(writer io.Writer, stateDict map[string]*tensor.Tensor, header Header) error {
	header.FormatVersion = FormatVersion
	header.ToolVersion = toolVersion
	header.CreatedAt = time.Now().UTC()
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}
	if header.Kinds == nil {
		header.Kinds = make(map[string]string)
	}

	// Calculate tensor offsets in a stable order and collect the data section.
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	var currentOffset int64
	var data bytes.Buffer
	header.Tensors = make([]TensorMeta, 0, len(names))
	for _, name := range names {
		t := stateDict[name]
		raw := t.Bytes()
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  DTypeFloat64,
			Shape:  []int(t.Shape().Clone()),
			Offset: currentOffset,
			Size:   int64(len(raw)),
		})
		currentOffset += int64(len(raw))
		data.Write(raw)
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return errors.Wrap(err, "failed to marshal header")
	}
	headerSize := uint64(len(headerJSON))
	if headerSize > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	checksum := ComputeChecksum(data.Bytes())

	fixedHeader := make([]byte, FixedHeaderSize)
	copy(fixedHeader[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(fixedHeader[4:8], uint32(FormatVersion))
	flags := uint32(0)
	if header.Run != nil {
		flags |= FlagHasRun
	}
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	binary.LittleEndian.PutUint32(fixedHeader[8:12], flags)
	// 0x0C-0x0F: Reserved (0)
	binary.LittleEndian.PutUint64(fixedHeader[16:24], headerSize)
	binary.LittleEndian.PutUint64(fixedHeader[24:32], uint64(data.Len()))
	copy(fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := writer.Write(fixedHeader); err != nil {
		return errors.Wrap(err, "failed to write fixed header")
	}
	if _, err := writer.Write(headerJSON); err != nil {
		return errors.Wrap(err, "failed to write header JSON")
	}

	// Pad so the tensor data starts on a HeaderAlignment boundary.
	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	if padding := dataOffset(headerSize) - int64(FixedHeaderSize) - int64(headerSize); padding > 0 {
		if _, err := writer.Write(make([]byte, padding)); err != nil {
			return errors.Wrap(err, "failed to write padding")
		}
	}

	if _, err := writer.Write(data.Bytes()); err != nil {
		return errors.Wrap(err, "failed to write tensor data")
	}
	return nil
}
