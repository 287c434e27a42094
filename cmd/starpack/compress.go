package main

import (
	"fmt"
	"log"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/blue-bit-shift/starpack"
	"github.com/blue-bit-shift/starpack/blob"
)

func newCompressCmd() *cobra.Command {
	var (
		configPath string
		modelPath  string
		outPath    string
		setModelID bool
	)

	cmd := &cobra.Command{
		Use:   "compress -c config.cfg [flags] chunk...",
		Short: "compress chunk files into compression entities",
		Long: `Compress one or more chunk data files into compression entities.

With a single input, -o names the output entity file. With several inputs
the entities are written next to their chunks with a .cent suffix, and the
chunks are compressed in parallel.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			par, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				out := outPath
				if out == "" {
					out = args[0] + ".cent"
				}

				return compressOne(args[0], modelPath, out, par, setModelID)
			}

			if outPath != "" {
				return fmt.Errorf("-o is only valid with a single input file")
			}
			if modelPath != "" {
				return fmt.Errorf("-m is only valid with a single input file")
			}

			// each chunk gets its own buffers, so the compressions are
			// independent and can run concurrently
			g := new(errgroup.Group)
			g.SetLimit(runtime.GOMAXPROCS(0))

			for _, arg := range args {
				arg := arg
				g.Go(func() error {
					return compressOne(arg, "", arg+".cent", par, setModelID)
				})
			}

			return g.Wait()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "compression configuration file (required)")
	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "model data file for model modes")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output entity file")
	cmd.Flags().BoolVar(&setModelID, "model-id", false, "derive and set the entity model id from the model data")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func compressOne(chunkPath, modelPath, outPath string, par *blob.Params, setModelID bool) error {
	chunk, err := readDataFile(chunkPath)
	if err != nil {
		return err
	}

	var model, updatedModel []byte
	if modelPath != "" {
		if model, err = readDataFile(modelPath); err != nil {
			return err
		}
		updatedModel = model // in-place model update
	}

	bound, err := starpack.CompressBound(chunk)
	if err != nil {
		return fmt.Errorf("%s: %w", chunkPath, err)
	}

	dst := make([]byte, bound)
	n, err := starpack.Compress(chunk, model, updatedModel, dst, par)
	if err != nil {
		return fmt.Errorf("%s: %w", chunkPath, err)
	}
	entity := dst[:n]

	if setModelID {
		if err := starpack.SetModelID(entity, starpack.ModelID(model), 0); err != nil {
			return err
		}
	}

	if err := writeEntityFile(outPath, entity); err != nil {
		return err
	}

	if modelPath != "" {
		if err := writeDataFile(modelPath+".upmodel", updatedModel); err != nil {
			return err
		}
	}

	log.Printf("%s: %d -> %d bytes (%.2f%%)",
		filepath.Base(chunkPath), len(chunk), n, float64(n)*100/float64(len(chunk)))

	return nil
}
