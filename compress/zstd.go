package compress

// ZstdCodec compresses with Zstandard. The implementation is selected at
// build time: the cgo build links the native libzstd binding, the pure-Go
// build uses klauspost/compress.
type ZstdCodec struct{}
