package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/spf13/cobra"

	islands "github.com/goliatone/go-islands"
	"github.com/goliatone/go-islands/pkg/config"
	"github.com/goliatone/go-islands/pkg/loader"
)

// errAborted reports that the user interrupted a prompt.
var errAborted = errors.New("islands: prompt aborted")

// prompter abstracts the terminal so the init flow can be tested.
type prompter interface {
	MultiSelect(ctx context.Context, message string, options, defaults []string) ([]string, error)
	Input(ctx context.Context, message, def string) (string, error)
	Confirm(ctx context.Context, message string, def bool) (bool, error)
}

type surveyPrompter struct{}

func newSurveyPrompter() prompter {
	return surveyPrompter{}
}

func (surveyPrompter) MultiSelect(ctx context.Context, message string, options, defaults []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []string
	prompt := &survey.MultiSelect{
		Message: message,
		Options: options,
		Default: defaults,
	}
	if err := survey.AskOne(prompt, &out); err != nil {
		return nil, translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Input(ctx context.Context, message, def string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	if err := survey.AskOne(&survey.Input{Message: message, Default: def}, &out); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (surveyPrompter) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}

func newInitCmd(p prompter) *cobra.Command {
	var (
		path  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Interactively write a project configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			cfg, err := promptConfig(cmd.Context(), p, islands.NewLoader().List())
			if err != nil {
				return err
			}
			data, err := cfg.Marshal()
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", path)
			return err
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", config.DefaultFile, "configuration file to write")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// promptConfig asks for the renderers to install, in priority order, the
// package base URL, and whether custom elements fall back to plain HTML.
func promptConfig(ctx context.Context, p prompter, available []string) (*config.Config, error) {
	frameworks := make([]string, 0, len(available))
	for _, name := range available {
		if name != config.DefaultFallback {
			frameworks = append(frameworks, name)
		}
	}

	selected, err := p.MultiSelect(ctx, "Renderers to install (resolution follows this order):", frameworks, frameworks)
	if err != nil {
		return nil, err
	}
	base, err := p.Input(ctx, "Package base URL:", config.DefaultBaseURL)
	if err != nil {
		return nil, err
	}
	fallback, err := p.Confirm(ctx, "Render unclaimed custom elements as plain HTML?", true)
	if err != nil {
		return nil, err
	}

	cfg := config.Default()
	for _, name := range selected {
		cfg.Renderers = append(cfg.Renderers, loader.Reference{Name: name})
	}
	if trimmed := strings.TrimSpace(base); trimmed != "" {
		cfg.Packages.BaseURL = trimmed
	}
	if !fallback {
		cfg.Fallback = nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
