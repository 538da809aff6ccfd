package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/oisee/bcdump/pkg/batch"
	"github.com/oisee/bcdump/pkg/bytecode"
	"github.com/oisee/bcdump/pkg/ir"
	"github.com/oisee/bcdump/pkg/report"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bcdump",
		Short: "Decompile LuaJIT-style bytecode dumps into a control-flow graph and IR",
	}

	var skipPrototype bool

	loadCmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Parse a dump and print its header and a per-prototype summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDump(args[0], failurePolicy(skipPrototype))
			if err != nil {
				return err
			}
			fmt.Printf("Dump %s\n", args[0])
			fmt.Printf("  flags: 0x%02X\n", d.Flags)
			fmt.Printf("  name:  %q\n", d.Name)
			fmt.Printf("  prototypes: %d\n\n", len(d.Prototypes()))

			tbl := report.NewProtoTable()
			for i, p := range d.Prototypes() {
				cfg := p.CFG()
				tbl.Add(report.ProtoSummary{
					Index:        i,
					Blocks:       cfg.NodeCount(),
					Edges:        cfg.EdgeCount(),
					Instructions: len(p.Instructions),
				})
			}
			for _, row := range tbl.Rows() {
				fmt.Printf("  [%3d] blocks=%-4d edges=%-4d instructions=%d\n",
					row.Index, row.Blocks, row.Edges, row.Instructions)
			}
			return nil
		},
	}
	loadCmd.Flags().BoolVar(&skipPrototype, "skip-prototype", false, "skip prototypes that fail to decode instead of aborting the dump")

	var cfgProto int
	cfgCmd := &cobra.Command{
		Use:   "cfg <file>",
		Short: "Print prototype N's control-flow graph as an edge list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDump(args[0], failurePolicy(skipPrototype))
			if err != nil {
				return err
			}
			p, err := prototypeAt(d, cfgProto)
			if err != nil {
				return err
			}
			cfg := p.CFG()
			for _, key := range cfg.Keys() {
				block, _ := cfg.NodeWeight(key)
				fmt.Printf("block %d (%d instructions)\n", key, block.Len())
				for _, idx := range cfg.Outputs(key) {
					fmt.Printf("  -> %d [%s]\n", cfg.EdgeTo(idx), cfg.EdgeWeight(idx))
				}
			}
			return nil
		},
	}
	cfgCmd.Flags().IntVar(&cfgProto, "proto", 0, "prototype index")
	cfgCmd.Flags().BoolVar(&skipPrototype, "skip-prototype", false, "skip prototypes that fail to decode instead of aborting the dump")

	var liftProto int
	liftCmd := &cobra.Command{
		Use:   "lift <file>",
		Short: "Lift prototype N to IR and print its statements per block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := loadDump(args[0], failurePolicy(skipPrototype))
			if err != nil {
				return err
			}
			p, err := prototypeAt(d, liftProto)
			if err != nil {
				return err
			}
			irCFG, _, err := ir.Lift(p)
			if err != nil {
				return fmt.Errorf("lifting prototype %d: %w", liftProto, err)
			}
			for _, key := range irCFG.Keys() {
				block, _ := irCFG.NodeWeight(key)
				fmt.Printf("block %d:\n", key)
				for _, stmt := range block.Stmts {
					fmt.Printf("  %#v\n", stmt)
				}
			}
			return nil
		},
	}
	liftCmd.Flags().IntVar(&liftProto, "proto", 0, "prototype index")
	liftCmd.Flags().BoolVar(&skipPrototype, "skip-prototype", false, "skip prototypes that fail to decode instead of aborting the dump")

	var numWorkers int
	batchCmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Concurrently load every dump file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := filepath.Glob(filepath.Join(args[0], "*.luac"))
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return fmt.Errorf("no *.luac dumps found in %s", args[0])
			}

			wp := batch.NewWorkerPool(numWorkers)
			wp.Policy = failurePolicy(skipPrototype)
			summaries := wp.RunFiles(paths)

			tbl := report.NewDumpTable()
			tbl.AddAll(summaries)
			fmt.Println()
			for _, row := range tbl.Rows() {
				if row.Err != nil {
					fmt.Printf("  %-40s FAILED: %v\n", row.Path, row.Err)
					continue
				}
				fmt.Printf("  %-40s prototypes=%-4d blocks=%-4d edges=%d\n",
					row.Path, row.Prototypes, row.Blocks, row.Edges)
			}
			if failed := tbl.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d dumps failed to load", len(failed), tbl.Len())
			}
			return nil
		},
	}
	batchCmd.Flags().IntVar(&numWorkers, "workers", 0, "number of concurrent workers (0 = NumCPU)")
	batchCmd.Flags().BoolVar(&skipPrototype, "skip-prototype", false, "skip prototypes that fail to decode instead of aborting their dump")

	rootCmd.AddCommand(loadCmd, cfgCmd, liftCmd, batchCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func failurePolicy(skip bool) bytecode.FailurePolicy {
	if skip {
		return bytecode.SkipOnFailure
	}
	return bytecode.AbortOnFailure
}

func loadDump(path string, policy bytecode.FailurePolicy) (*bytecode.Dump, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return bytecode.LoadDumpWithPolicy(f, policy)
}

func prototypeAt(d *bytecode.Dump, idx int) (*bytecode.Prototype, error) {
	protos := d.Prototypes()
	if idx < 0 || idx >= len(protos) {
		return nil, fmt.Errorf("prototype index %d out of range [0,%d)", idx, len(protos))
	}
	return protos[idx], nil
}
