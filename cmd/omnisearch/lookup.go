package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/omnisearch/internal/app"
	"github.com/kailas-cloud/omnisearch/internal/domain/preview"
	"github.com/kailas-cloud/omnisearch/internal/domain/route"
)

func newPreviewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <query>",
		Short: "Probe every category for query and print the preview",
		Args:  cobra.ExactArgs(1),
		Example: `omnisearch preview 0x5 -n testnet
omnisearch preview 3Zj6ZqZbo4bDKWKpLp5jYJ8NTtBJ4Nyj7oQwjRWdCqNm`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app.App) error {
				items, err := a.Search.Preview(ctx, opts.network, args[0])
				if err != nil {
					return fmt.Errorf("preview: %w", err)
				}
				renderPreview(cmd.OutOrStdout(), items)
				return nil
			})
		},
	}
}

func newResolveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "resolve <query>",
		Short:   "Commit query and print the route it navigates to",
		Args:    cobra.ExactArgs(1),
		Example: "omnisearch resolve 0xCAFE",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), opts, func(ctx context.Context, a *app.App) error {
				target, err := a.Search.Commit(ctx, opts.network, args[0])
				if err != nil {
					return fmt.Errorf("resolve: %w", err)
				}
				renderTarget(cmd.OutOrStdout(), target)
				return nil
			})
		},
	}
}

// withApp loads config, wires the app and runs fn against it.
func withApp(ctx context.Context, opts *rootOptions, fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := opts.newLogger(cfg)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	a, err := app.Build(app.OptionsFromConfig(&cfg, store, logger))
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	return fn(ctx, a)
}

func renderPreview(w io.Writer, items []preview.Item) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"category", "matched", "id"})
	table.SetAutoWrapText(false)
	for _, it := range items {
		id := ""
		if v, ok := it.Result()["id"].(string); ok {
			id = v
		}
		table.Append([]string{it.Category().String(), fmt.Sprint(it.Matched()), id})
	}
	table.Render()
}

var kindColor = map[route.Kind]*color.Color{
	route.Matched:  color.New(color.FgGreen),
	route.Fallback: color.New(color.FgYellow),
	route.NotFound: color.New(color.FgRed),
}

func renderTarget(w io.Writer, t route.Target) {
	kind := string(t.Kind)
	if c, ok := kindColor[t.Kind]; ok {
		kind = c.Sprint(kind)
	}
	fmt.Fprintf(w, "%s\t%s\n", kind, t.Path)
	if t.Category != "" {
		fmt.Fprintf(w, "category\t%s\n", t.Category)
	}
	for _, k := range slices.Sorted(maps.Keys(t.Payload)) {
		fmt.Fprintf(w, "%s\t%v\n", k, t.Payload[k])
	}
}
