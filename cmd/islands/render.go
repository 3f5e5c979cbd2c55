package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	islands "github.com/goliatone/go-islands"
	"github.com/goliatone/go-islands/pkg/config"
	"github.com/goliatone/go-islands/pkg/page"
)

func newRenderCmd(root *rootOptions) *cobra.Command {
	var (
		configPath string
		pagePath   string
		outPath    string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a page document to HTML",
		Example: `  islands render --page pages/index.yaml
  islands render --config site/islands.yaml --page pages/index.yaml --out dist/index.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := root.logger(cmd.ErrOrStderr())

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			doc, err := page.LoadDocument(pagePath)
			if err != nil {
				return err
			}

			session, err := islands.Open(ctx, cfg, islands.WithLogger(logger))
			if err != nil {
				return err
			}
			html, err := session.RenderPage(ctx, doc)
			if err != nil {
				return err
			}

			if outPath == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), html)
				return err
			}
			if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			logger.Info("page written", "path", outPath, "bytes", len(html))
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFile, "project configuration file")
	cmd.Flags().StringVarP(&pagePath, "page", "p", "", "page document (YAML or JSON)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (stdout if empty)")
	_ = cmd.MarkFlagRequired("page")
	return cmd
}

// loadConfig falls back to the defaults when the default file is absent.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == config.DefaultFile && errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return nil, err
}

func newRenderersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "renderers",
		Short: "List the renderers a configuration can reference",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range islands.NewLoader().List() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
