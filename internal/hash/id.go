// Package hash derives stable identifiers from buffer contents.
package hash

import "github.com/cespare/xxhash/v2"

// ModelID folds the xxHash64 digest of a model buffer into the 16-bit model
// identifier of the entity header. Entities produced from the same starting
// model get the same id.
func ModelID(model []byte) uint16 {
	h := xxhash.Sum64(model)

	return uint16(h ^ h>>16 ^ h>>32 ^ h>>48)
}
