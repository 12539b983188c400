package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/OFFIS-RIT/kgview/pkg/graph"
	"github.com/OFFIS-RIT/kgview/pkg/logger"
	"github.com/OFFIS-RIT/kgview/pkg/render"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

const stdinName = "-"

var errStdinRepeated = errors.New(`stdin ("-") can only be given once`)

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == stdinName {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func decodeInput(path string, data []byte) (graph.Response, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", graph.ErrMalformedInput, err)
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", graph.ErrMalformedInput, err)
		}
		data = converted
	}
	return graph.DecodeResponse(data)
}

// checkStdinOnce rejects more than one "-" argument, since stdin can only be
// read once.
func checkStdinOnce(args []string) error {
	seen := false
	for _, path := range args {
		if path != stdinName {
			continue
		}
		if seen {
			return errStdinRepeated
		}
		seen = true
	}
	return nil
}

func outputName(path string) string {
	if path == stdinName {
		return "stdin.graph.json"
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".graph.json"
}

func runAssemble(cmd *cobra.Command, args []string) error {
	parallel, _ := cmd.Flags().GetInt("parallel")
	outDir, _ := cmd.Flags().GetString("out")
	if parallel <= 0 {
		parallel = 1
	}
	if len(args) == 0 {
		args = []string{stdinName}
	}
	if err := checkStdinOnce(args); err != nil {
		return err
	}

	runID, err := gonanoid.New()
	if err != nil {
		return fmt.Errorf("failed to create run id: %w", err)
	}
	log := logger.With("run", runID)
	log.Info("[Assemble] Processing", "total_inputs", len(args), "parallel", parallel)

	cfg := render.ConfigFromEnv()
	views := make([]render.View, len(args))

	eg, gCtx := errgroup.WithContext(cmd.Context())
	eg.SetLimit(parallel)
	for i, path := range args {
		eg.Go(func() error {
			select {
			case <-gCtx.Done():
				return nil
			default:
			}

			data, err := readInput(path, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			resp, err := decodeInput(path, data)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", path, err)
			}

			res := graph.Assemble(resp)
			if res.Dropped() > 0 {
				log.Warn("[Assemble] Dropped malformed elements", "input", path, "dropped", res.Dropped(), "err", res.Err())
			}
			views[i] = render.Build(res, cfg)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	if outDir == "" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		for _, view := range views {
			if err := enc.Encode(view); err != nil {
				return fmt.Errorf("failed to write view: %w", err)
			}
		}
		log.Info("[Assemble] Completed", "total_inputs", len(args))
		return nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	for i, view := range views {
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode view for %s: %w", args[i], err)
		}
		target := filepath.Join(outDir, outputName(args[i]))
		if err := os.WriteFile(target, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		log.Debug("[Assemble] Wrote view", "input", args[i], "output", target)
	}

	log.Info("[Assemble] Completed", "total_inputs", len(args), "out", outDir)
	return nil
}
