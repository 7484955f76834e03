package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jacksonlee411/Shelves-And-Sectors/internal/seed"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/domain/types"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/infrastructure/persistence"
	"github.com/jacksonlee411/Shelves-And-Sectors/modules/taxonomy/services"
	"github.com/jacksonlee411/Shelves-And-Sectors/pkg/branchcode"
)

func main() {
	if len(os.Args) < 2 {
		fatalf("usage: taxtool <seed-validate|code-suggest|tree-print> [args]")
	}

	switch os.Args[1] {
	case "seed-validate":
		seedValidate(os.Args[2:])
	case "code-suggest":
		codeSuggest(os.Args[2:])
	case "tree-print":
		treePrint(os.Args[2:])
	default:
		fatalf("unknown subcommand: %s", os.Args[1])
	}
}

func seedValidate(args []string) {
	fs := flag.NewFlagSet("seed-validate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var path string
	fs.StringVar(&path, "path", "", "seed yaml path")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}
	if path == "" {
		fatalf("missing --path")
	}

	store, err := loadSeedStore(path)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("ok: %d nodes, %d products\n", len(store.All()), len(store.AllProducts()))
}

func codeSuggest(args []string) {
	fs := flag.NewFlagSet("code-suggest", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var name, taken string
	fs.StringVar(&name, "name", "", "node name to derive a code from")
	fs.StringVar(&taken, "taken", "", "comma-separated codes already in use")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}
	if name == "" {
		fatalf("missing --name")
	}

	existing := make(map[string]bool)
	for _, code := range strings.Split(taken, ",") {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			existing[code] = true
		}
	}
	code, err := branchcode.Suggest(name, existing)
	if err != nil {
		fatal(err)
	}
	fmt.Println(code)
}

func treePrint(args []string) {
	fs := flag.NewFlagSet("tree-print", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	var path string
	fs.StringVar(&path, "path", "", "seed yaml path")
	if err := fs.Parse(args); err != nil {
		fatal(err)
	}
	if path == "" {
		fatalf("missing --path")
	}

	store, err := loadSeedStore(path)
	if err != nil {
		fatal(err)
	}
	forest := services.BuildForest(store.All(), store.AllProducts())
	printForest(forest, 0)
}

func loadSeedStore(path string) (*persistence.MemoryStore, error) {
	f, err := seed.Load(path)
	if err != nil {
		return nil, err
	}
	store := persistence.NewMemoryStore()
	svc := services.NewTaxonomyWriteService(store, store)
	if err := seed.Apply(context.Background(), f, store, svc); err != nil {
		return nil, err
	}
	return store, nil
}

func printForest(forest []*types.TreeNode, indent int) {
	for _, tn := range forest {
		fmt.Printf("%s%s [%s] (%s, %d products)\n",
			strings.Repeat("  ", indent), tn.Name, tn.BranchCode, tn.Type, tn.ProductCount)
		printForest(tn.Children, indent+1)
	}
}

func fatal(err error) {
	if err == nil {
		os.Exit(1)
	}
	fatalf("%v", err)
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
