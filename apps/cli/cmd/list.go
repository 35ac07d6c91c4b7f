package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/devraw/restfile/packages/core/parser"
	"github.com/devraw/restfile/packages/core/selector"
	"github.com/devraw/restfile/packages/curl"
)

var listCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List the request blocks in a .http file",
	Long: `List every request block in a document with its name, method and URL.

Examples:
  restfile list api.http`,
	Args: cobra.ExactArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	doc := selector.Split(string(data))
	if len(doc.Blocks) == 0 {
		return fmt.Errorf("no request blocks in %s", args[0])
	}

	bold := color.New(color.Bold)
	dim := color.New(color.Faint)
	yellow := color.New(color.FgYellow)

	for i, block := range doc.Blocks {
		d, warnings, err := parseBlock(block)
		if err != nil {
			color.Red("  [%d] %s", i, err)
			continue
		}
		name := d.Name
		if name == "" {
			name = block.Name
		}
		if name == "" {
			name = fmt.Sprintf("request %d", i)
		}
		bold.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
		fmt.Fprintf(cmd.OutOrStdout(), "    %s %s\n", d.Method, d.URL)
		line, col := doc.Source().Position(block.Range.Start)
		dim.Fprintf(cmd.OutOrStdout(), "    at %d:%d\n", line, col)
		for _, w := range warnings {
			yellow.Fprintf(cmd.OutOrStdout(), "    warning: %s\n", w)
		}
	}

	return nil
}

func parseBlock(block *selector.Block) (*parser.Descriptor, []curl.Warning, error) {
	var (
		d        *parser.Descriptor
		warnings []curl.Warning
		err      error
	)
	if curl.IsCurl(block.Text) {
		d, warnings, err = curl.Parse(block.Text)
	} else {
		d, err = parser.Parse(block.Text)
	}
	if err != nil {
		return nil, warnings, err
	}
	d.Name = block.Name
	parser.ApplyMetadata(d, block.Metadata)
	return d, warnings, nil
}
