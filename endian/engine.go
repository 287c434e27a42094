// Package endian provides byte order utilities for the starpack wire format.
//
// Everything the codec puts on the wire is big-endian: entity headers,
// collection headers and the compressed bitstream. This package extends Go's
// standard encoding/binary package by combining ByteOrder and AppendByteOrder
// into a single EndianEngine interface and adds helpers for the 24-bit and
// 48-bit fields used by the entity header.
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import "encoding/binary"

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from
// encoding/binary into a single interface for convenient byte order
// operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian,
// making it fully compatible with existing Go code while providing access to
// both read/write and append operations.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// GetBigEndianEngine returns the big-endian engine, the wire order of every
// starpack structure.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// Uint24 decodes a big-endian 24-bit unsigned integer from b[0:3].
func Uint24(b []byte) uint32 {
	_ = b[2]
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
}

// PutUint24 encodes a big-endian 24-bit unsigned integer into b[0:3].
// The upper byte of v is discarded.
func PutUint24(b []byte, v uint32) {
	_ = b[2]
	b[0] = byte(v >> 16)
	b[1] = byte(v >> 8)
	b[2] = byte(v)
}

// Uint48 decodes a big-endian 48-bit unsigned integer from b[0:6].
func Uint48(b []byte) uint64 {
	_ = b[5]
	return uint64(b[0])<<40 | uint64(b[1])<<32 | uint64(b[2])<<24 |
		uint64(b[3])<<16 | uint64(b[4])<<8 | uint64(b[5])
}

// PutUint48 encodes a big-endian 48-bit unsigned integer into b[0:6].
// The upper two bytes of v are discarded.
func PutUint48(b []byte, v uint64) {
	_ = b[5]
	b[0] = byte(v >> 40)
	b[1] = byte(v >> 32)
	b[2] = byte(v >> 24)
	b[3] = byte(v >> 16)
	b[4] = byte(v >> 8)
	b[5] = byte(v)
}

// MaxUint24 is the largest value a 24-bit wire field can carry.
const MaxUint24 = 1<<24 - 1

// MaxUint48 is the largest value a 48-bit wire field can carry.
const MaxUint48 = 1<<48 - 1
