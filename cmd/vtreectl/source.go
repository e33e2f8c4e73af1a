package main

import (
	"context"

	"github.com/joshuapare/vtree/internal/source"
	"github.com/joshuapare/vtree/pkg/vtree"
)

var (
	sortChildren bool
	collation    string
	charset      string
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&sortChildren, "sort", false, "Collate children by name (JSON sources)")
	rootCmd.PersistentFlags().StringVar(&collation, "lang", "", "Collation language tag for --sort")
	rootCmd.PersistentFlags().StringVar(&charset, "charset", "", "JSON source charset: utf-8, windows-1252 or latin1")
}

// openSource opens a JSON document or, by extension, a SQLite database.
func openSource(ctx context.Context, path string) (*source.Source, error) {
	printVerbose("Opening source: %s\n", path)
	return source.Open(ctx, path, source.Options{Sort: sortChildren, Language: collation, Charset: charset})
}

// treeOptions builds tree options from the loaded config for src. field
// names the attribute shown in the value column.
func treeOptions(src *source.Source, field string) vtree.Options {
	opts := vtree.OptionsFromConfig(cfg)
	opts.Binding = src.Binding
	opts.Key = src.Path
	opts.Columns = source.Columns(field)
	return opts
}
