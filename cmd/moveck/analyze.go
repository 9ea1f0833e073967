package main

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"moveck/internal/fixture"
	"moveck/internal/mir"
	"moveck/internal/moves"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] path...",
	Short: "Analyze body fixtures and dump their move data",
	Long:  `Analyze loads TOML body fixtures, runs the gather pass and prints the move-path tree and event tables. Directories are searched for *.toml files and processed in parallel.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().Bool("snapshot", false, "write a msgpack snapshot next to each input (<file>.movedata)")
	analyzeCmd.Flags().Bool("dump-body", false, "also dump the input body")
	analyzeCmd.Flags().Int("jobs", 0, "parallel workers for directories (0 = GOMAXPROCS)")
}

type analyzeResult struct {
	path   string
	output []byte
	err    error
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	writeSnapshot, err := cmd.Flags().GetBool("snapshot")
	if err != nil {
		return fmt.Errorf("failed to get snapshot flag: %w", err)
	}
	dumpBody, err := cmd.Flags().GetBool("dump-body")
	if err != nil {
		return fmt.Errorf("failed to get dump-body flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")

	files, err := collectFixtureFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no fixture files found")
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]analyzeResult, len(files))

	g, gctx := errgroup.WithContext(context.Background())
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = analyzeFile(path, writeSnapshot, dumpBody)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	header := color.New(color.FgCyan, color.Bold)
	header.DisableColor()
	if useColor(cmd, os.Stdout) {
		header.EnableColor()
	}

	failed := 0
	for _, res := range results {
		if !quiet {
			header.Fprintf(os.Stdout, "== %s\n", res.path)
		}
		os.Stdout.Write(res.output)
		if res.err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s: %v\n", res.path, res.err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d bodies failed", failed, len(files))
	}
	return nil
}

// collectFixtureFiles expands arguments into a sorted list of fixture files.
func collectFixtureFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(path, ".toml") {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func analyzeFile(path string, writeSnapshot, dumpBody bool) analyzeResult {
	var buf bytes.Buffer

	body, typesIn, err := fixture.Load(path)
	if err != nil {
		return analyzeResult{path: path, err: err}
	}
	if err := mir.Validate(body, typesIn); err != nil {
		return analyzeResult{path: path, err: fmt.Errorf("invalid body: %w", err)}
	}
	if dumpBody {
		if err := mir.DumpBody(&buf, body, typesIn); err != nil {
			return analyzeResult{path: path, output: buf.Bytes(), err: err}
		}
	}

	data, err := moves.Gather(body, typesIn)
	if err != nil {
		return analyzeResult{path: path, output: buf.Bytes(), err: err}
	}
	if err := moves.DumpMoveData(&buf, data); err != nil {
		return analyzeResult{path: path, output: buf.Bytes(), err: err}
	}

	if writeSnapshot {
		snap := data.Snapshot(body.Name)
		if err := moves.WriteSnapshot(path+".movedata", snap); err != nil {
			return analyzeResult{path: path, output: buf.Bytes(), err: fmt.Errorf("failed to write snapshot: %w", err)}
		}
	}

	return analyzeResult{path: path, output: buf.Bytes()}
}
