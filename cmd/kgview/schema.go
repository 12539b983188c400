package main

import (
	"encoding/json"
	"fmt"

	"github.com/OFFIS-RIT/kgview/pkg/graph"

	"github.com/spf13/cobra"
)

func runSchema(cmd *cobra.Command, args []string) error {
	schema := graph.PayloadSchema()
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
