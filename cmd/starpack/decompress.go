package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blue-bit-shift/starpack"
)

func newDecompressCmd() *cobra.Command {
	var (
		modelPath string
		outPath   string
	)

	cmd := &cobra.Command{
		Use:   "decompress [flags] entity",
		Short: "decompress a compression entity back into chunk data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := readEntityFile(args[0])
			if err != nil {
				return err
			}

			var model, updatedModel []byte
			if modelPath != "" {
				if model, err = readDataFile(modelPath); err != nil {
					return err
				}
				updatedModel = model
			}

			size, err := starpack.Decompress(entity, nil, nil, nil)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			dst := make([]byte, size)
			if _, err := starpack.Decompress(entity, model, updatedModel, dst); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			out := outPath
			if out == "" {
				out = strings.TrimSuffix(args[0], ".cent") + ".dat"
			}
			if err := writeDataFile(out, dst); err != nil {
				return err
			}

			if modelPath != "" {
				if err := writeDataFile(modelPath+".upmodel", updatedModel); err != nil {
					return err
				}
			}

			log.Printf("%s: %d -> %d bytes", filepath.Base(args[0]), len(entity), size)

			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "model data file for model modes")
	cmd.Flags().StringVarP(&outPath, "output", "o", "", "output data file")

	return cmd
}
