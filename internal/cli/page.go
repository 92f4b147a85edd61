package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pagedeck/pagedeck/internal/config"
	"github.com/pagedeck/pagedeck/pkg/block"
	"github.com/pagedeck/pagedeck/pkg/cache"
	"github.com/pagedeck/pagedeck/pkg/engine"
	"github.com/pagedeck/pagedeck/pkg/filter"
	"github.com/pagedeck/pagedeck/pkg/grid"
	"github.com/pagedeck/pagedeck/pkg/render"
	"github.com/pagedeck/pagedeck/pkg/store"
)

// shortID abbreviates a block ID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// loadConfig resolves the effective configuration from the --config and
// --data persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if data, _ := cmd.Flags().GetString("data"); data != "" {
		cfg.DataDir = data
	}
	return cfg, nil
}

// openFileStore opens the local page store for CLI commands. CLI commands
// always work against the file backend; the mongo backend is for serve.
func openFileStore(cmd *cobra.Command) (*store.FileStore, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return store.NewFileStore(cfg.StoreDir())
}

func newPageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Manage pages in the local store",
	}
	cmd.AddCommand(newPageNewCmd())
	cmd.AddCommand(newPageListCmd())
	cmd.AddCommand(newPageShowCmd())
	cmd.AddCommand(newPageExportCmd())
	return cmd
}

func newPageNewCmd() *cobra.Command {
	var title string
	var tags []string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an empty page",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			st, err := openFileStore(cmd)
			if err != nil {
				return err
			}

			p := &block.Page{
				ID:     uuid.NewString(),
				Title:  title,
				Blocks: []block.Block{},
				Tags:   engine.NormalizeTags(tags),
			}
			if err := st.Put(cmd.Context(), p); err != nil {
				return err
			}
			logger.Info("created page", "id", p.ID, "title", p.Title)
			fmt.Println(p.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "Untitled", "page title")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "page tags")
	return cmd
}

func newPageListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pages",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openFileStore(cmd)
			if err != nil {
				return err
			}
			pages, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(pages) == 0 {
				fmt.Println(StyleDim.Render("no pages"))
				return nil
			}
			for _, p := range pages {
				line := fmt.Sprintf("%s  %s  %s",
					StyleDim.Render(p.ID),
					StyleValue.Render(p.Title),
					StyleDim.Render(fmt.Sprintf("(%d blocks)", p.BlockCount)))
				fmt.Println(line)
			}
			return nil
		},
	}
}

func newPageShowCmd() *cobra.Command {
	var tags []string

	cmd := &cobra.Command{
		Use:   "show <page-id>",
		Short: "Show a page's blocks with their grid placement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openFileStore(cmd)
			if err != nil {
				return err
			}
			p, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			active := engine.NormalizeTags(tags)
			columns := grid.ComputeColumnMap(p.Blocks)

			fmt.Println(StyleTitle.Render(p.Title))
			for i, b := range p.Blocks {
				col := "left"
				if columns[b.ID] == grid.ColRight {
					col = "right"
				}
				width := "full"
				if b.Span == block.SpanHalf {
					width = "half"
				}
				marker := " "
				if !filter.IsVisible(b, active) {
					marker = StyleDim.Render("~") // hidden by filter
				}
				fmt.Printf("%s %2d. %-12s %-5s %-5s %s %s\n",
					marker, i+1,
					styleBlockType.Render(string(b.Type)),
					width, col,
					StyleDim.Render(shortID(b.ID)),
					styleBlockTag.Render(strings.Join(b.Tags, ",")))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tags", nil, "mark blocks hidden by this tag filter")
	return cmd
}

func newPageExportCmd() *cobra.Command {
	var out string
	var tags []string

	cmd := &cobra.Command{
		Use:   "export <page-id>",
		Short: "Render a page to a standalone HTML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			st, err := store.NewFileStore(cfg.StoreDir())
			if err != nil {
				return err
			}
			p, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			// Diagram SVGs are cached on disk so repeated exports of
			// unchanged diagrams skip graphviz entirely.
			artifactCache, err := cache.NewFileCache(cfg.CacheDir())
			if err != nil {
				return err
			}
			renderer := render.NewRenderer(block.Default(), logger).
				WithDiagrams(render.NewGraphviz(artifactCache, cfg.CacheTTL()))

			if out == "" {
				out = p.ID + ".html"
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			defer f.Close()

			prog := newProgress(logger)
			if err := renderer.Page(cmd.Context(), f, p, engine.NormalizeTags(tags)); err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Exported %d blocks to %s", len(p.Blocks), out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (defaults to <page-id>.html)")
	cmd.Flags().StringSliceVar(&tags, "tags", nil, "render with this tag filter active")
	return cmd
}
