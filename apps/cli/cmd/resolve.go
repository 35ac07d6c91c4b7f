package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/devraw/restfile/packages/builtin"
	"github.com/devraw/restfile/packages/core/config"
	"github.com/devraw/restfile/packages/core/env"
	"github.com/devraw/restfile/packages/core/selector"
	"github.com/devraw/restfile/packages/resolve"
	"github.com/devraw/restfile/packages/store"
)

var (
	resolveEnvironment string
	resolveConfigPath  string
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <file> [name]",
	Short: "Resolve the variables of a request block and print it",
	Long: `Parse a document, resolve {{...}} placeholders against the active
environment profile, file variables and the process environment, and
print the resulting request. Nothing is sent.

Examples:
  restfile resolve api.http
  restfile resolve api.http login
  restfile resolve api.http --env staging`,
	Args: cobra.RangeArgs(1, 2),
	RunE: resolveCommand,
}

func init() {
	resolveCmd.Flags().StringVarP(&resolveEnvironment, "env", "e", "", "environment profile to resolve against")
	resolveCmd.Flags().StringVarP(&resolveConfigPath, "config", "c", "", "path to a config file")
}

func resolveCommand(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(resolveConfigPath)
	if err != nil {
		return err
	}
	envName := resolveEnvironment
	if envName == "" {
		envName = cfg.DefaultEnvironment
	}
	profile := env.LoadEnvironment(cfg.Environments, envName)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	opts := []builtin.Option{builtin.WithLocation(loc)}
	if cfg.DotenvPath != "" {
		dotenv, err := env.LoadDotEnv(cfg.DotenvPath)
		if err != nil {
			return err
		}
		opts = append(opts, builtin.WithDotenv(dotenv))
	}

	doc := selector.Split(string(data))
	if len(doc.Blocks) == 0 {
		return fmt.Errorf("no request blocks in %s", args[0])
	}

	blocks := doc.Blocks
	if len(args) == 2 {
		blocks = nil
		for _, b := range doc.Blocks {
			if b.Name == args[1] {
				blocks = append(blocks, b)
			}
		}
		if len(blocks) == 0 {
			return fmt.Errorf("no block named %q in %s", args[1], args[0])
		}
	}

	resolver := resolve.NewResolver(
		resolve.NewSystemProvider(opts...),
		&resolve.RequestProvider{Snapshot: store.New().Snapshot()},
		&resolve.FileProvider{Variables: doc.Variables},
		&resolve.EnvironmentProvider{Vars: profile.Variables},
		&resolve.ProcessEnvProvider{},
	)

	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	for _, block := range blocks {
		d, warnings, err := parseBlock(block)
		if err != nil {
			red.Fprintf(out, "%s\n", err)
			continue
		}
		resolved, diags := resolver.Resolve(d, &resolve.Context{
			Document: args[0],
			Offset:   block.Range.Start,
		})

		bold.Fprintf(out, "%s %s\n", resolved.Method, resolved.URL)
		for _, h := range resolved.Headers.All() {
			fmt.Fprintf(out, "%s: %s\n", h.Name, h.Value)
		}
		if resolved.Body != "" {
			fmt.Fprintf(out, "\n%s\n", resolved.Body)
		}
		if resolved.FileRef != "" {
			fmt.Fprintf(out, "\n< %s\n", resolved.FileRef)
		}
		for _, w := range warnings {
			yellow.Fprintf(out, "warning: %s\n", w)
		}
		for _, diag := range diags {
			if diag.Severity == resolve.SeverityError {
				red.Fprintf(out, "%s\n", diag)
			} else {
				yellow.Fprintf(out, "%s\n", diag)
			}
		}
		fmt.Fprintln(out)
	}

	return nil
}
