package cli

import (
	"fmt"
	"io"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
)

const appName = "api-spec-converter"

// Execute runs the api-spec-converter CLI.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd constructs the root command so tests can exercise the CLI easily.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Convert OpenAPI, Swagger and project documents to RAML",
		Long:          "api-spec-converter reads OpenAPI 3, Swagger 2 or flat project documents and writes RAML 1.0 or 0.8.",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.SetFlagErrorFunc(flagUsageError)

	cmd.PersistentFlags().StringP("config", "c", "", "Config file path (YAML or JSON)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Log dropped input and loader details to stderr")

	for _, sub := range []*cobra.Command{newConvertCmd(), newInitCmd()} {
		sub.SetFlagErrorFunc(flagUsageError)
		cmd.AddCommand(sub)
	}
	return cmd
}

// flagUsageError turns cobra flag errors (like unknown flags) into usage
// errors that carry the command's help text.
func flagUsageError(c *cobra.Command, err error) error {
	return wrapUsageError(err, "%v\n\n%s", err, c.UsageString())
}

// newLogger returns the CLI logger: warnings only, or everything down to debug
// when verbose.
func newLogger(w io.Writer, verbose bool) hclog.Logger {
	level := hclog.Warn
	if verbose {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   appName,
		Level:  level,
		Output: w,
	})
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
