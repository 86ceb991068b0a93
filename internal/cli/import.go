package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clustermap/pkg/conversation"
)

type importOpts struct {
	format string
	output string
}

func (c *CLI) importCommand() *cobra.Command {
	opts := importOpts{output: "conversations.json"}

	cmd := &cobra.Command{
		Use:   "import <export.json>...",
		Short: "Normalize chat exports into a conversations file",
		Long: `Import reads Claude or Kura chat exports and writes them as one
conversations file ready for analysis. The format is detected per file unless
--format is given. Files are read concurrently; duplicate chat ids across
files are rejected.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runImport(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.format, "format", "auto", "export format: auto, claude, kura")
	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "output file")
	return cmd
}

func (c *CLI) runImport(ctx context.Context, paths []string, opts importOpts) error {
	f, err := conversation.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	convs, err := conversation.LoadFiles(ctx, paths, f)
	if err != nil {
		return err
	}
	if err := conversation.WriteFile(convs, opts.output); err != nil {
		return err
	}
	prog.done("imported", "files", len(paths), "conversations", len(convs))

	printSuccess("Imported %d conversations (%d messages)", len(convs), conversation.MessageCount(convs))
	printFile(opts.output)
	printNextStep("Analyse them", "clustermap analyse "+opts.output)
	return nil
}
