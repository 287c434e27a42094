// Package errs defines the sentinel errors returned by the starpack codec.
//
// Every failure mode of the compression and decompression pipeline maps to
// exactly one sentinel defined here. Call sites wrap sentinels with
// fmt.Errorf("%w: ...") to attach context, so callers can classify failures
// with errors.Is:
//
//	n, err := blob.CompressChunk(chunk, nil, nil, dst, &par)
//	if errors.Is(err, errs.ErrSmallBuffer) {
//	    // grow dst and retry
//	}
package errs

import "errors"

var (
	// ErrSmallBuffer indicates the destination buffer was exhausted while
	// writing the bitstream or copying raw data.
	ErrSmallBuffer = errors.New("destination buffer too small")

	// ErrIntDecoder indicates an internal invariant violation inside the
	// bit-level coder, e.g. a request to put more than 32 bits at once.
	ErrIntDecoder = errors.New("internal decoder error")

	// ErrDataValueTooLarge indicates a sample or model value does not fit
	// into the configured max-used-bits width.
	ErrDataValueTooLarge = errors.New("data value too large")

	// ErrDataTypeUnsupported indicates an unknown or unsupported
	// compression data product type.
	ErrDataTypeUnsupported = errors.New("data type unsupported")

	// ErrModeUnsupported indicates an unknown compression mode.
	ErrModeUnsupported = errors.New("compression mode unsupported")

	// ErrCollectionSizeInconsistent indicates a collection data length
	// that is not a multiple of its record size.
	ErrCollectionSizeInconsistent = errors.New("collection size inconsistent")

	// ErrChunkSizeInconsistent indicates that the chunk byte size does not
	// match the sum of the embedded collection sizes.
	ErrChunkSizeInconsistent = errors.New("chunk size inconsistent")

	// ErrChunkTooLarge indicates the chunk exceeds the maximum original
	// size an entity can describe.
	ErrChunkTooLarge = errors.New("chunk too large")

	// ErrChunkNull indicates a nil chunk buffer.
	ErrChunkNull = errors.New("chunk buffer is nil")

	// ErrChunkSubserviceInconsistent indicates a chunk mixing collections
	// of incompatible subservices.
	ErrChunkSubserviceInconsistent = errors.New("chunk subservice inconsistent")

	// ErrColSubserviceUnsupported indicates a collection subservice with
	// no known record layout.
	ErrColSubserviceUnsupported = errors.New("collection subservice unsupported")

	// ErrColSizeInconsistent indicates an embedded collection whose
	// declared size contradicts the surrounding framing.
	ErrColSizeInconsistent = errors.New("collection size field inconsistent")

	// ErrCmpColTooLarge indicates a compressed collection exceeding the
	// 16-bit length prefix.
	ErrCmpColTooLarge = errors.New("compressed collection too large")

	// ErrParGeneric indicates invalid generic compression parameters
	// (mode, model value, lossy parameter or data type).
	ErrParGeneric = errors.New("invalid generic compression parameters")

	// ErrParSpecific indicates an invalid (cmp_par, spill) combination for
	// the selected data type.
	ErrParSpecific = errors.New("invalid specific compression parameters")

	// ErrParBuffers indicates overlapping or missing caller buffers.
	ErrParBuffers = errors.New("invalid buffer parameters")

	// ErrParNoModel indicates a model compression mode without a model
	// buffer.
	ErrParNoModel = errors.New("model mode requires a model buffer")

	// ErrParNull indicates a nil parameter set.
	ErrParNull = errors.New("compression parameters are nil")

	// ErrParMaxUsedBits indicates a max-used-bits table entry that is zero
	// or exceeds 32 bits.
	ErrParMaxUsedBits = errors.New("invalid max-used-bits value")

	// ErrEntityNull indicates a nil entity buffer.
	ErrEntityNull = errors.New("entity buffer is nil")

	// ErrEntityTooSmall indicates an entity shorter than its header.
	ErrEntityTooSmall = errors.New("entity too small")

	// ErrEntityHeader indicates an inconsistent entity header field.
	ErrEntityHeader = errors.New("invalid entity header")

	// ErrEntityTimestamp indicates a timestamp that does not fit into the
	// 48-bit header field.
	ErrEntityTimestamp = errors.New("invalid entity timestamp")

	// ErrMalformedBitstream indicates a compressed bitstream that violates
	// the escape-symbol discipline or runs past its declared end.
	ErrMalformedBitstream = errors.New("malformed bitstream")
)
