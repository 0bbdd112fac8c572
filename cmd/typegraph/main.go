package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/typegraph/dedup"
	"github.com/wippyai/typegraph/diff"
	"github.com/wippyai/typegraph/types"
	"github.com/wippyai/typegraph/witimport"
)

func main() {
	var (
		witFile     = flag.String("wit", "", "Path to WIT resolve JSON (wasm-tools component wit -j)")
		against     = flag.String("against", "", "Second WIT resolve JSON to diff against")
		dedupTypes  = flag.Bool("dedup", false, "Print groups of structurally identical types")
		ptrSize     = flag.Uint("ptr", 4, "Pointer size in bytes for string and list data")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging")
	)
	flag.Parse()

	if *witFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: typegraph -wit <resolve.json> [-v]")
		fmt.Fprintln(os.Stderr, "       typegraph -wit <resolve.json> -dedup")
		fmt.Fprintln(os.Stderr, "       typegraph -wit <old.json> -against <new.json>")
		fmt.Fprintln(os.Stderr, "       typegraph -wit <resolve.json> -i  (interactive mode)")
		os.Exit(1)
	}

	ptr, err := pointerSize(*ptrSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	log, err := newLogger(*verbose, *interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	types.SetLogger(log)
	witimport.SetLogger(log)
	diff.SetLogger(log)

	opts := witimport.DefaultOptions()
	opts.PointerSize = ptr

	err = run(log, *witFile, *against, opts, *dedupTypes, *interactive)
	if errors.Is(err, errDiffers) {
		_ = log.Sync()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// errDiffers makes the process exit with status 2 when -against finds
// differences.
var errDiffers = errors.New("repositories differ")

func run(log *zap.Logger, witFile, against string, opts witimport.Options, dedupTypes, interactive bool) error {
	repo, err := witimport.Load(witFile, opts)
	if err != nil {
		return err
	}
	log.Info("loaded", zap.String("file", witFile), zap.Int("types", repo.Len()))

	switch {
	case interactive:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode needs a terminal")
		}
		return runInteractive(repo, witFile)

	case against != "":
		other, err := witimport.Load(against, opts)
		if err != nil {
			return err
		}
		report, err := diff.Compare(repo, other)
		if err != nil {
			return err
		}
		if err := report.Write(os.Stdout); err != nil {
			return err
		}
		if !report.Empty() {
			return errDiffers
		}
		return nil

	case dedupTypes:
		return printGroups(repo, log)

	default:
		return printTypes(repo)
	}
}

func printTypes(repo *types.Repository) error {
	h := types.NewHasher()
	for t := range repo.All() {
		if _, err := fmt.Printf("%4d  %-8s %-40s %6d  %016x\n",
			t.ID(), t.Kind(), t.Name(), t.Size(), h.Hash(t)); err != nil {
			return err
		}
	}
	return nil
}

func printGroups(repo *types.Repository, log *zap.Logger) error {
	idx := dedup.New(dedup.Options{Memoize: true, Logger: log})
	for t := range repo.All() {
		idx.Insert(t)
	}

	groups := idx.Groups()
	for _, g := range groups {
		fmt.Printf("%016x  %s\n", g.Hash, g.Canonical)
		for _, m := range g.Members[1:] {
			fmt.Printf("                  = #%d %s\n", m.ID(), m.Name())
		}
	}
	_, err := fmt.Printf("%d types, %d distinct, %d duplicate groups\n", repo.Len(), idx.Len(), len(groups))
	return err
}

// pointerSize validates the -ptr flag.
func pointerSize(v uint) (uint32, error) {
	if v < 1 || v > 8 {
		return 0, fmt.Errorf("-ptr must be between 1 and 8, got %d", v)
	}
	return uint32(v), nil
}

// newLogger builds a development logger for -v and a production logger
// otherwise. The TUI owns the terminal, so it only logs with -v.
func newLogger(verbose, interactive bool) (*zap.Logger, error) {
	switch {
	case verbose:
		return zap.NewDevelopment()
	case interactive:
		return zap.NewNop(), nil
	default:
		return zap.NewProduction()
	}
}
