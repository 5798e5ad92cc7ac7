// Command patchcore applies, analyzes, and undoes LLM-proposed
// FILE:/SEARCH/REPLACE patch blocks against a working directory.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/DanielGr12/ai-code-integrator/patchcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", os.Args[0], err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: patchcore <apply|analyze|undo|history> -C <dir> ...")
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "apply":
		return runApply(args)
	case "analyze":
		return runAnalyze(args)
	case "undo":
		return runUndo(args)
	case "history":
		return runHistory(args)
	default:
		return fmt.Errorf("unknown subcommand %q (want apply, analyze, undo, history)", cmd)
	}
}

func openEngine(dir string) (*patchcore.Engine, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return patchcore.Open(context.Background(), dir, logger)
}

func runApply(args []string) error {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	dir := fs.String("C", ".", "working directory to patch")
	autoStage := fs.Bool("stage", false, "git add modified files after a successful apply")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: patchcore apply -C <dir> <patchfile>")
	}
	text, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	e, err := openEngine(*dir)
	if err != nil {
		return err
	}
	defer e.Close()

	blocks := e.Parse(string(text))
	verdicts := e.Analyze(blocks)
	printVerdicts(os.Stdout, verdicts)

	for i := range blocks {
		blocks[i].Enabled = verdicts[i].Status != patchcore.StatusError
	}

	result, err := e.Apply(blocks, *autoStage)
	if err != nil {
		return err
	}
	bold := color.New(color.Bold).SprintFunc()
	fmt.Printf("\n%s %d file(s) modified\n", bold("applied:"), len(result.ModifiedPaths))
	for _, p := range result.ModifiedPaths {
		fmt.Printf("  %s\n", p)
	}
	if result.ExtraMessage != "" {
		fmt.Println(result.ExtraMessage)
	}
	return nil
}

func runAnalyze(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	dir := fs.String("C", ".", "working directory to patch")
	explain := fs.Bool("explain", false, "print a re-promptable AI error report for each non-success verdict")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return fmt.Errorf("usage: patchcore analyze -C <dir> <patchfile>")
	}
	text, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	e, err := openEngine(*dir)
	if err != nil {
		return err
	}
	defer e.Close()

	blocks := e.Parse(string(text))
	verdicts := e.Analyze(blocks)
	printVerdicts(os.Stdout, verdicts)

	if *explain {
		for _, v := range verdicts {
			if v.Status == patchcore.StatusSuccess {
				continue
			}
			fmt.Println()
			fmt.Println(v.RenderForModel())
		}
	}
	return nil
}

func runUndo(args []string) error {
	fs := flag.NewFlagSet("undo", flag.ExitOnError)
	dir := fs.String("C", ".", "working directory to patch")
	fs.Parse(args)

	e, err := openEngine(*dir)
	if err != nil {
		return err
	}
	defer e.Close()

	result, err := e.UndoLast()
	if err != nil {
		if err == patchcore.ErrTamperDetected {
			color.New(color.FgRed, color.Bold).Fprintln(os.Stdout, "STOP:", err)
			return nil
		}
		return err
	}
	fmt.Println(result.Message)
	for _, p := range result.RestoredPaths {
		fmt.Printf("  %s\n", p)
	}
	return nil
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	dir := fs.String("C", ".", "working directory to patch")
	limit := fs.Int("limit", 10, "maximum number of transactions to print")
	fs.Parse(args)

	e, err := openEngine(*dir)
	if err != nil {
		return err
	}
	defer e.Close()

	records := e.HistorySummary(*limit)
	if len(records) == 0 {
		fmt.Println("no transactions recorded")
		return nil
	}
	for _, rec := range records {
		when := time.Unix(rec.Timestamp, 0)
		fmt.Printf("%s  %s (%s, %d file(s))\n", rec.ID, when.Format(time.RFC3339), humanize.Time(when), len(rec.Files))
		for _, op := range rec.Files {
			fmt.Printf("  %-7s %s\n", op.Action, op.Path)
		}
	}
	return nil
}

func printVerdicts(w io.Writer, verdicts []patchcore.Verdict) {
	for _, v := range verdicts {
		icon := statusIcon(v.Status)
		fmt.Fprintf(w, "%s %s: %s\n", icon, v.Filename, v.Message)
		if v.DiffPreview != "" {
			fmt.Fprint(w, v.DiffPreview)
		}
		if v.ErrorContext != "" {
			fmt.Fprintln(w, v.ErrorContext)
		}
		for _, s := range v.Suggestions {
			fmt.Fprintf(w, "    - %s\n", s)
		}
	}
}

func statusIcon(s patchcore.Status) string {
	switch s {
	case patchcore.StatusSuccess:
		return color.GreenString("✅")
	case patchcore.StatusWarning:
		return color.YellowString("⚠")
	default:
		return color.RedString("❌")
	}
}
