package blob

import (
	"fmt"

	"github.com/blue-bit-shift/starpack/errs"
	"github.com/blue-bit-shift/starpack/section"
)

// BoundSize returns the worst-case entity size for a chunk of chunkSize
// bytes with numCollections collections:
//
//	roundUp4(NonImagetteHeaderSize + 2*numCollections + chunkSize)
//
// If the destination buffer is at least this large, CompressChunk never
// fails with ErrSmallBuffer.
func BoundSize(chunkSize, numCollections int) int {
	bound := section.NonImagetteHeaderSize + numCollections*cmpColSizeFieldLen + chunkSize

	return (bound + 3) &^ 0x3
}

// CompressBound walks the chunk, counts its collections and returns the
// worst-case compressed entity size. Callers use it to size the destination
// buffer of CompressChunk.
func CompressBound(chunk []byte) (int, error) {
	maxChunkSize := section.MaxOriginalSize - section.NonImagetteHeaderSize - cmpColSizeFieldLen

	if chunk == nil {
		return 0, errs.ErrChunkNull
	}
	if len(chunk) < section.CollectionHeaderSize {
		return 0, fmt.Errorf("%w: chunk of %d bytes", errs.ErrChunkSizeInconsistent, len(chunk))
	}
	if len(chunk) > maxChunkSize {
		return 0, fmt.Errorf("%w: chunk of %d bytes exceeds %d",
			errs.ErrChunkTooLarge, len(chunk), maxChunkSize)
	}

	numCollections := 0
	read := 0
	for read <= len(chunk)-section.CollectionHeaderSize {
		hdr, err := section.ParseCollectionHeader(chunk[read:])
		if err != nil {
			return 0, err
		}
		read += hdr.Size()
		numCollections++
	}
	if read != len(chunk) {
		return 0, fmt.Errorf("%w: collection sizes sum to %d, chunk is %d bytes",
			errs.ErrChunkSizeInconsistent, read, len(chunk))
	}

	bound := BoundSize(len(chunk), numCollections)
	if bound > section.MaxEntitySize {
		return 0, fmt.Errorf("%w: bound %d exceeds the maximum entity size", errs.ErrChunkTooLarge, bound)
	}

	return bound, nil
}
