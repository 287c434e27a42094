package blob

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/blue-bit-shift/starpack/bitstream"
	"github.com/blue-bit-shift/starpack/encoding"
	"github.com/blue-bit-shift/starpack/errs"
)

// readField reads one big-endian record field of 1, 2 or 4 bytes.
func readField(rec []byte, off, width int) uint32 {
	switch width {
	case 1:
		return uint32(rec[off])
	case 2:
		return uint32(binary.BigEndian.Uint16(rec[off:]))
	default:
		return binary.BigEndian.Uint32(rec[off:])
	}
}

// writeField writes one big-endian record field of 1, 2 or 4 bytes.
func writeField(rec []byte, off, width int, v uint32) {
	switch width {
	case 1:
		rec[off] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(rec[off:], uint16(v))
	default:
		binary.BigEndian.PutUint32(rec[off:], v)
	}
}

// fieldOffsets returns the byte offset of every schedule entry within one
// record.
func fieldOffsets(fields []fieldSpec) []int {
	offs := make([]int, len(fields))
	off := 0
	for i, f := range fields {
		offs[i] = off
		off += f.width
	}

	return offs
}

// buffersOverlap reports whether two byte ranges share memory.
func buffersOverlap(a, b []byte) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	aStart := uintptr(unsafe.Pointer(&a[0]))
	bStart := uintptr(unsafe.Pointer(&b[0]))

	return aStart < bStart+uintptr(len(b)) && bStart < aStart+uintptr(len(a))
}

// checkBuffers enforces the non-overlap predicates between the source, the
// model buffers and the destination (C11). The updated model may alias the
// model buffer for in-place updates.
func checkBuffers(cfg *Config, src, model, upModel, dst []byte) error {
	if src == nil {
		return errs.ErrChunkNull
	}
	if buffersOverlap(dst, src) {
		return fmt.Errorf("%w: destination overlaps source", errs.ErrParBuffers)
	}

	if cfg.Mode.IsModel() {
		if model == nil {
			return errs.ErrParNoModel
		}
		if len(model) < len(src) {
			return fmt.Errorf("%w: model buffer of %d bytes for %d bytes of data",
				errs.ErrParBuffers, len(model), len(src))
		}
		if upModel != nil && len(upModel) < len(src) {
			return fmt.Errorf("%w: updated model buffer of %d bytes for %d bytes of data",
				errs.ErrParBuffers, len(upModel), len(src))
		}
		if buffersOverlap(model, src) {
			return fmt.Errorf("%w: model overlaps source", errs.ErrParBuffers)
		}
		if buffersOverlap(model, dst) {
			return fmt.Errorf("%w: model overlaps destination", errs.ErrParBuffers)
		}
		if buffersOverlap(upModel, src) {
			return fmt.Errorf("%w: updated model overlaps source", errs.ErrParBuffers)
		}
		if buffersOverlap(upModel, dst) {
			return fmt.Errorf("%w: updated model overlaps destination", errs.ErrParBuffers)
		}
	}

	return nil
}

// padBitstream zero-fills the tail of the last 32-bit word after streamLen
// bits. The returned length is unchanged; padding never counts.
func padBitstream(dst []byte, capBytes int, streamLen uint32) error {
	if dst == nil {
		return nil
	}

	nPad := 32 - streamLen&0x1F
	if nPad < 32 {
		if _, err := bitstream.PutBits(dst, 0, uint(nPad), streamLen, bitstream.CapBits(capBytes)); err != nil {
			return err
		}
	}

	return nil
}

// compressData encodes one collection payload into dst starting at the
// byte-aligned bit offset streamLen and returns the new bit length.
//
// src holds the big-endian records without the collection header; model and
// upModel, when present, use the same layout. capBytes bounds the usable
// prefix of dst. A nil dst computes the compressed size only.
func compressData(cfg *Config, src, model, upModel, dst []byte, capBytes int, streamLen uint32) (uint32, error) {
	if streamLen&0x7 != 0 {
		return 0, fmt.Errorf("%w: stream length %d is not byte aligned", errs.ErrParGeneric, streamLen)
	}

	recSize := RecordSize(cfg.DataType)
	if recSize == 0 {
		return 0, fmt.Errorf("%w: %s", errs.ErrDataTypeUnsupported, cfg.DataType)
	}
	if len(src)%recSize != 0 {
		return 0, fmt.Errorf("%w: %d bytes is not a multiple of the %d byte record",
			errs.ErrCollectionSizeInconsistent, len(src), recSize)
	}

	samples := len(src) / recSize
	if samples == 0 { // nothing to compress
		return streamLen, nil
	}

	if cfg.Mode.IsRaw() {
		if dst != nil {
			off := int(streamLen >> 3)
			if off+len(src) > capBytes || off+len(src) > len(dst) {
				return 0, errs.ErrSmallBuffer
			}
			copy(dst[off:], src)
		}

		return streamLen + uint32(len(src))*8, nil
	}

	fields, err := scheduleFor(cfg)
	if err != nil {
		return 0, err
	}
	offs := fieldOffsets(fields)

	coders := make([]encoding.FieldCoder, len(fields))
	for i, f := range fields {
		coders[i] = encoding.NewFieldCoder(cfg.Mode, f.par.CmpPar, f.par.Spill, cfg.LossyPar, f.maxBits)
	}

	s := encoding.NewStream(dst, capBytes)
	modelMode := cfg.Mode.IsModel()
	pos := streamLen

	for i := 0; i < samples; i++ {
		rec := src[i*recSize : (i+1)*recSize]

		// in model modes the model buffer supplies the prediction; in
		// differencing modes the previous record does
		var mrec []byte
		if modelMode {
			mrec = model[i*recSize : (i+1)*recSize]
		} else if i > 0 {
			mrec = src[(i-1)*recSize : i*recSize]
		}

		for f := range fields {
			data := readField(rec, offs[f], fields[f].width)

			var mv uint32
			if mrec != nil {
				mv = readField(mrec, offs[f], fields[f].width)
			}

			pos, err = coders[f].Encode(s, pos, data, mv)
			if err != nil {
				return 0, err
			}

			if modelMode && upModel != nil {
				dataTerm := encoding.RoundInv(encoding.RoundFwd(data, cfg.LossyPar), cfg.LossyPar)
				up := encoding.UpdateModel(dataTerm, mv, uint32(cfg.ModelValue))
				writeField(upModel[i*recSize:(i+1)*recSize], offs[f], fields[f].width, up)
			}
		}
	}

	if err := padBitstream(dst, capBytes, pos); err != nil {
		return 0, err
	}

	return pos, nil
}

// decompressData decodes one compressed collection payload. stream holds the
// byte-aligned compressed block of the collection, streamBits its bit
// length; dst receives the big-endian records and defines the sample count.
func decompressData(cfg *Config, stream []byte, streamBits uint32, model, dst, upModel []byte) error {
	recSize := RecordSize(cfg.DataType)
	if recSize == 0 {
		return fmt.Errorf("%w: %s", errs.ErrDataTypeUnsupported, cfg.DataType)
	}
	if len(dst)%recSize != 0 {
		return fmt.Errorf("%w: %d bytes is not a multiple of the %d byte record",
			errs.ErrCollectionSizeInconsistent, len(dst), recSize)
	}

	samples := len(dst) / recSize
	if samples == 0 {
		return nil
	}

	fields, err := scheduleFor(cfg)
	if err != nil {
		return err
	}
	offs := fieldOffsets(fields)

	coders := make([]encoding.FieldCoder, len(fields))
	for i, f := range fields {
		coders[i] = encoding.NewFieldCoder(cfg.Mode, f.par.CmpPar, f.par.Spill, cfg.LossyPar, f.maxBits)
	}

	modelMode := cfg.Mode.IsModel()
	pos := uint32(0)

	for i := 0; i < samples; i++ {
		rec := dst[i*recSize : (i+1)*recSize]

		var mrec []byte
		if modelMode {
			mrec = model[i*recSize : (i+1)*recSize]
		} else if i > 0 {
			mrec = dst[(i-1)*recSize : i*recSize]
		}

		for f := range fields {
			var residual uint32
			residual, pos, err = coders[f].Decode(stream, streamBits, pos)
			if err != nil {
				return err
			}

			var mv uint32
			if mrec != nil {
				mv = readField(mrec, offs[f], fields[f].width)
			}

			mask := ^uint32(0) >> (32 - fields[f].maxBits)
			mR := encoding.RoundFwd(mv, cfg.LossyPar)
			if mR&^mask != 0 {
				return fmt.Errorf("%w: model value does not fit into %d bits",
					errs.ErrDataValueTooLarge, fields[f].maxBits)
			}

			dataR := (mR + residual) & mask
			data := encoding.RoundInv(dataR, cfg.LossyPar)
			writeField(rec, offs[f], fields[f].width, data)

			if modelMode && upModel != nil {
				up := encoding.UpdateModel(data, mv, uint32(cfg.ModelValue))
				writeField(upModel[i*recSize:(i+1)*recSize], offs[f], fields[f].width, up)
			}
		}
	}

	if streamBits < pos || streamBits-pos >= 8 {
		return fmt.Errorf("%w: compressed block length %d does not match decoded length %d",
			errs.ErrMalformedBitstream, streamBits, pos)
	}

	return nil
}

// CompressData compresses one collection payload of big-endian records and
// returns the bit length of the produced bitstream.
//
// This is the collection-level entry point underneath the chunk walker: no
// collection header is consumed and no entity framing is produced. A nil dst
// computes the compressed bit length only.
func CompressData(cfg *Config, src, model, updatedModel, dst []byte) (uint32, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if err := checkBuffers(cfg, src, model, updatedModel, dst); err != nil {
		return 0, err
	}

	c := *cfg
	c.MaxUsedBits = cfg.maxUsedBits()

	return compressData(&c, src, model, updatedModel, dst, len(dst), 0)
}

// DecompressData decompresses one collection payload previously produced by
// CompressData. dst must hold exactly the original payload size.
func DecompressData(cfg *Config, stream []byte, streamBits uint32, model, dst, updatedModel []byte) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Mode.IsModel() {
		if model == nil {
			return errs.ErrParNoModel
		}
		if len(model) < len(dst) {
			return fmt.Errorf("%w: model buffer of %d bytes for %d bytes of data",
				errs.ErrParBuffers, len(model), len(dst))
		}
		if updatedModel != nil && len(updatedModel) < len(dst) {
			return fmt.Errorf("%w: updated model buffer of %d bytes for %d bytes of data",
				errs.ErrParBuffers, len(updatedModel), len(dst))
		}
	}

	c := *cfg
	c.MaxUsedBits = cfg.maxUsedBits()

	if c.Mode.IsRaw() {
		if uint32(len(dst))*8 != streamBits {
			return fmt.Errorf("%w: raw stream of %d bits for %d byte payload",
				errs.ErrMalformedBitstream, streamBits, len(dst))
		}
		copy(dst, stream[:len(dst)])

		return nil
	}

	return decompressData(&c, stream, streamBits, model, dst, updatedModel)
}
