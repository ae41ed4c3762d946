package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/sidechainnet/buildopt/internal/tensor"
)

// Reader reads parameter sets from .bprm format.
type Reader struct {
	file       *os.File
	header     Header
	flags      uint32
	version    uint32
	dataOffset int64    // Offset where tensor data starts
	dataSize   int64    // Size of the data section
	checksum   [32]byte // SHA-256 checksum of the data section
	opts       ReaderOptions
	closed     bool
}

// ReaderOptions configures the behavior of Reader.
type ReaderOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// NewReader creates a new .bprm file reader with default options (strict validation).
func NewReader(path string) (*Reader, error) {
	return NewReaderWithOptions(path, ReaderOptions{
		ValidationLevel: ValidationStrict,
	})
}

// NewReaderWithOptions creates a new .bprm file reader with custom options.
func NewReaderWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for loading
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}

	reader := &Reader{file: file, opts: opts}
	if err := reader.parseHeader(); err != nil {
		_ = file.Close() // Best effort close on error
		return nil, errors.Wrap(err, "failed to parse header")
	}

	if err := ValidateHeader(&reader.header, reader.dataSize, opts.ValidationLevel); err != nil {
		_ = file.Close()
		return nil, errors.Wrap(err, "validation failed")
	}
	return reader, nil
}

// parseHeader reads the fixed header and the JSON header, then checks the
// data section against the stored checksum.
func (r *Reader) parseHeader() error {
	fixedHeader := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r.file, fixedHeader); err != nil {
		return errors.Wrap(err, "failed to read fixed header")
	}
	headerSize, dataSize, err := r.parseFixedHeader(fixedHeader)
	if err != nil {
		return err
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r.file, headerBytes); err != nil {
		return errors.Wrap(err, "failed to read header JSON")
	}
	if err := json.Unmarshal(headerBytes, &r.header); err != nil {
		return errors.Wrap(err, "failed to parse header JSON")
	}
	r.dataOffset = dataOffset(headerSize)

	fileInfo, err := r.file.Stat()
	if err != nil {
		return errors.Wrap(err, "failed to stat file")
	}
	//nolint:gosec // G115: dataSize is checked against the file size
	if r.dataOffset+int64(dataSize) > fileInfo.Size() {
		return errors.Wrapf(io.ErrUnexpectedEOF, "data section of %d bytes at offset %d exceeds file size %d",
			dataSize, r.dataOffset, fileInfo.Size())
	}
	r.dataSize = int64(dataSize) //nolint:gosec // G115: checked above

	if !r.opts.SkipChecksumValidation {
		computed, err := ComputeChecksumReader(io.NewSectionReader(r.file, r.dataOffset, r.dataSize))
		if err != nil {
			return errors.Wrap(err, "failed to read tensor data for checksum")
		}
		if err := ValidateChecksum(computed, r.checksum); err != nil {
			return err
		}
	}
	return nil
}

// parseFixedHeader decodes the 64-byte fixed header and returns the JSON
// header size and the data size.
func (r *Reader) parseFixedHeader(fixedHeader []byte) (headerSize, dataSize uint64, err error) {
	if string(fixedHeader[0:4]) != MagicBytes {
		return 0, 0, ErrInvalidMagic
	}
	r.version = binary.LittleEndian.Uint32(fixedHeader[4:8])
	if r.version != FormatVersion {
		return 0, 0, errors.Wrapf(ErrUnsupportedVersion, "got %d, expected %d", r.version, FormatVersion)
	}
	r.flags = binary.LittleEndian.Uint32(fixedHeader[8:12])
	headerSize = binary.LittleEndian.Uint64(fixedHeader[16:24])
	dataSize = binary.LittleEndian.Uint64(fixedHeader[24:32])
	copy(r.checksum[:], fixedHeader[ChecksumOffset:ChecksumOffset+ChecksumSize])
	if headerSize > MaxHeaderSize {
		return 0, 0, ErrHeaderTooLarge
	}
	return headerSize, dataSize, nil
}

// Header returns the file header.
func (r *Reader) Header() Header {
	return r.header
}

// Flags returns the flags of the fixed header.
func (r *Reader) Flags() uint32 {
	return r.flags
}

// Metadata returns the metadata map from the header.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns a list of all tensor names in the file.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, meta := range r.header.Tensors {
		names[i] = meta.Name
	}
	return names
}

// TensorInfo returns information about a specific tensor.
func (r *Reader) TensorInfo(name string) (*TensorMeta, error) {
	for _, meta := range r.header.Tensors {
		if meta.Name == name {
			return &meta, nil
		}
	}
	return nil, errors.Errorf("tensor %s not found", name)
}

// ReadTensorData reads raw tensor data for a given tensor name.
func (r *Reader) ReadTensorData(name string) ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}
	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	data := make([]byte, meta.Size)
	if _, err := r.file.ReadAt(data, r.dataOffset+meta.Offset); err != nil {
		return nil, errors.Wrapf(err, "failed to read tensor %s", name)
	}
	return data, nil
}

// LoadTensor loads a single tensor from the file.
func (r *Reader) LoadTensor(name string) (*tensor.Tensor, error) {
	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	data, err := r.ReadTensorData(name)
	if err != nil {
		return nil, err
	}
	return decodeTensor(meta, data)
}

// ReadStateDict reads all tensors into a state dictionary.
func (r *Reader) ReadStateDict() (map[string]*tensor.Tensor, error) {
	if r.closed {
		return nil, ErrClosed
	}
	stateDict := make(map[string]*tensor.Tensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		t, err := r.LoadTensor(meta.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load tensor %s", meta.Name)
		}
		stateDict[meta.Name] = t
	}
	return stateDict, nil
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}

// ReadFrom reads a state dictionary from an io.Reader, validating the
// checksum and the header strictly.
func ReadFrom(reader io.Reader) (map[string]*tensor.Tensor, Header, error) {
	fixedHeader := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(reader, fixedHeader); err != nil {
		return nil, Header{}, errors.Wrap(err, "failed to read fixed header")
	}
	var r Reader
	headerSize, dataSize, err := r.parseFixedHeader(fixedHeader)
	if err != nil {
		return nil, Header{}, err
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(reader, headerBytes); err != nil {
		return nil, Header{}, errors.Wrap(err, "failed to read header JSON")
	}
	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, Header{}, errors.Wrap(err, "failed to parse header JSON")
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	padding := dataOffset(headerSize) - int64(FixedHeaderSize) - int64(headerSize)
	if _, err := io.CopyN(io.Discard, reader, padding); err != nil {
		return nil, Header{}, errors.Wrap(err, "failed to read padding")
	}

	var data bytes.Buffer
	//nolint:gosec // G115: a short read is reported below
	if _, err := io.CopyN(&data, reader, int64(dataSize)); err != nil {
		return nil, Header{}, errors.Wrap(err, "failed to read tensor data")
	}
	if err := ValidateChecksum(ComputeChecksum(data.Bytes()), r.checksum); err != nil {
		return nil, Header{}, err
	}
	if err := ValidateHeader(&header, int64(data.Len()), ValidationStrict); err != nil {
		return nil, Header{}, errors.Wrap(err, "validation failed")
	}

	stateDict := make(map[string]*tensor.Tensor, len(header.Tensors))
	for i := range header.Tensors {
		meta := &header.Tensors[i]
		t, err := decodeTensor(meta, data.Bytes()[meta.Offset:meta.Offset+meta.Size])
		if err != nil {
			return nil, Header{}, err
		}
		stateDict[meta.Name] = t
	}
	return stateDict, header, nil
}

// decodeTensor converts the raw bytes of meta into a tensor.
func decodeTensor(meta *TensorMeta, data []byte) (*tensor.Tensor, error) {
	if meta.DType != DTypeFloat64 {
		return nil, errors.Wrapf(ErrUnsupportedDType, "tensor %s: %s", meta.Name, meta.DType)
	}
	shape := tensor.Shape(meta.Shape)
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid shape for tensor %s", meta.Name)
	}
	t, err := tensor.FromBytes(data, shape)
	if err != nil {
		return nil, errors.Wrapf(err, "tensor %s", meta.Name)
	}
	return t, nil
}
