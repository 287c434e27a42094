// Package starpack implements the lossless and near-lossless compression
// codec for the in-flight telemetry of an astronomical imaging instrument.
//
// The codec layers bit-exact Golomb/Rice entropy coding over one of four
// pre-processing stages (raw copy, 1d differencing, and two model
// subtraction variants) with two escape-symbol disciplines for outliers.
// Heterogeneous science "collections" (imagettes and structured per-star
// records) are packed into chunks and wrapped into a versioned binary
// container, the compression entity.
//
// # Basic Usage
//
// Compressing a chunk of collections:
//
//	import "github.com/blue-bit-shift/starpack"
//
//	par := blob.Params{
//	    Mode:       format.ModeModelMulti,
//	    ModelValue: 8,
//	    NCImagette: 4,
//	}
//
//	bound, _ := starpack.CompressBound(chunk)
//	dst := make([]byte, bound)
//	n, err := starpack.Compress(chunk, model, updatedModel, dst, &par)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	entity := dst[:n]
//
// Decompressing an entity:
//
//	size, _ := starpack.Decompress(entity, nil, nil, nil) // size query
//	out := make([]byte, size)
//	_, err := starpack.Decompress(entity, model, updatedModel, out)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the blob
// package, which implements the chunk walker and the per-collection
// dispatch. The bit-level machinery lives in bitstream and encoding, the
// wire structures in section, and the error taxonomy in errs.
package starpack

import (
	"fmt"

	"github.com/blue-bit-shift/starpack/blob"
	"github.com/blue-bit-shift/starpack/errs"
	"github.com/blue-bit-shift/starpack/format"
	"github.com/blue-bit-shift/starpack/internal/hash"
	"github.com/blue-bit-shift/starpack/section"
)

// Init configures the entity header stamping: returnTimestamp supplies the
// 48-bit start and end timestamps, versionID identifies the producing
// software. Uninitialized, headers carry zero stamps.
//
// Init is meant to be called once at process start, before any compression.
func Init(returnTimestamp func() uint64, versionID uint32) {
	blob.Init(returnTimestamp, versionID)
}

// SetMaxUsedBits installs the process-wide max-used-bits table. The table
// version is recorded in every produced entity header.
func SetMaxUsedBits(table section.MaxUsedBits) error {
	return blob.SetMaxUsedBits(table)
}

// Compress compresses a chunk of collections into a compression entity in
// dst and returns the entity byte size. A nil dst computes the size only.
//
// See blob.CompressChunk for the buffer contracts.
func Compress(chunk, chunkModel, updatedChunkModel, dst []byte, par *blob.Params) (int, error) {
	return blob.CompressChunk(chunk, chunkModel, updatedChunkModel, dst, par)
}

// CompressBound returns the worst-case entity size for the chunk. Sizing
// dst with it guarantees Compress cannot fail with errs.ErrSmallBuffer.
func CompressBound(chunk []byte) (int, error) {
	return blob.CompressBound(chunk)
}

// Decompress decompresses a compression entity of any supported data type.
// A nil dst returns the required byte count without decoding.
func Decompress(entity, modelOfData, updatedModel, dst []byte) (int, error) {
	hdr, err := section.ParseEntityHeader(entity)
	if err != nil {
		return 0, err
	}

	switch {
	case hdr.DataType == format.DataTypeChunk:
		return blob.DecompressChunk(entity, modelOfData, updatedModel, dst)
	case hdr.DataType.IsImagette():
		return blob.DecompressImagetteEntity(entity, modelOfData, updatedModel, dst)
	default:
		return 0, fmt.Errorf("%w: entity data type %s", errs.ErrDataTypeUnsupported, hdr.DataType)
	}
}

// SetModelID writes the model id and counter into an already produced
// entity header without re-encoding.
func SetModelID(entity []byte, modelID uint16, modelCounter uint8) error {
	return blob.SetModelIDCounter(entity, modelID, modelCounter)
}

// ModelID derives a 16-bit model identifier from the model buffer contents,
// for callers that do not manage model ids themselves.
func ModelID(model []byte) uint16 {
	return hash.ModelID(model)
}
