// Command starpack compresses and decompresses instrument telemetry chunks
// from the command line.
//
// Data files are raw binary or whitespace-separated hex text; configuration
// files are key=value text. Exit code is zero on success and non-zero on any
// failure.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blue-bit-shift/starpack"
)

// toolVersionID identifies this tool in produced entity headers.
const toolVersionID = 0x00010000

var (
	flagHex   bool
	flagMmap  bool
	flagCodec string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "starpack",
		Short:         "starpack compresses and decompresses instrument telemetry",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&flagHex, "hex", "x", false,
		"read and write data files as hex text instead of binary")
	rootCmd.PersistentFlags().BoolVar(&flagMmap, "mmap", false,
		"memory-map input files instead of reading them")
	rootCmd.PersistentFlags().StringVar(&flagCodec, "codec", "none",
		"archive codec for entity files: none, zstd, s2 or lz4")

	rootCmd.AddCommand(newCompressCmd())
	rootCmd.AddCommand(newDecompressCmd())

	starpack.Init(currentTimestamp, toolVersionID)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// currentTimestamp returns the 48-bit header timestamp: coarse seconds in
// the upper 32 bits, 16-bit sub-second fraction below.
func currentTimestamp() uint64 {
	now := time.Now()
	coarse := uint64(now.Unix()) & 0xFFFFFFFF
	fine := uint64(now.Nanosecond()) * 0x10000 / 1_000_000_000

	return coarse<<16 | fine&0xFFFF
}
