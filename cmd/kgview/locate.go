package main

import (
	"fmt"

	"github.com/OFFIS-RIT/kgview/pkg/textspan"

	"github.com/spf13/cobra"
)

func runLocate(cmd *cobra.Command, args []string) error {
	path := stdinName
	if len(args) > 1 {
		path = args[1]
	}

	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	offsets, err := textspan.Offsets(args[0], string(data))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for offset := range offsets {
		if _, err := fmt.Fprintln(out, offset); err != nil {
			return err
		}
	}
	return nil
}
