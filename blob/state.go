package blob

import (
	"sync"

	"github.com/blue-bit-shift/starpack/section"
)

// Process-wide compressor state, configured once at startup: the timestamp
// hook and version identifier stamped into entity headers, and the
// max-used-bits table. The encoder only ever reads them, so a plain RWMutex
// keeps concurrent entity compressions safe.
var (
	stateMu     sync.RWMutex
	maxUsedBits = section.MaxUsedBitsV1()
	timestampFn = func() uint64 { return 0 }
	versionID   uint32
)

// Init configures how entity headers are stamped: returnTimestamp supplies
// the 48-bit start/end timestamps and version is the application software
// version identifier. A nil returnTimestamp leaves the current timestamp
// hook in place (initially one that returns zero).
func Init(returnTimestamp func() uint64, version uint32) {
	stateMu.Lock()
	defer stateMu.Unlock()

	if returnTimestamp != nil {
		timestampFn = returnTimestamp
	}
	versionID = version
}

// SetMaxUsedBits replaces the process-wide max-used-bits table. The table is
// validated before it is installed.
func SetMaxUsedBits(table section.MaxUsedBits) error {
	if err := table.Validate(); err != nil {
		return err
	}

	stateMu.Lock()
	defer stateMu.Unlock()
	maxUsedBits = table

	return nil
}

// currentMaxUsedBits returns a stable snapshot of the process-wide table.
func currentMaxUsedBits() *section.MaxUsedBits {
	stateMu.RLock()
	defer stateMu.RUnlock()

	table := maxUsedBits

	return &table
}

func currentTimestamp() uint64 {
	stateMu.RLock()
	defer stateMu.RUnlock()

	return timestampFn()
}

func currentVersionID() uint32 {
	stateMu.RLock()
	defer stateMu.RUnlock()

	return versionID
}
