package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const defaultConfigName = "api-spec-converter.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Stdout     io.Writer
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample api-spec-converter configuration file",
		Long:  "Write a commented configuration file that documents every convert option.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			return initRunner(cmd.Context(), &InitConfig{
				OutputPath: out,
				Force:      force,
				Stdout:     cmd.OutOrStdout(),
			})
		},
	}

	cmd.Flags().String("out", defaultConfigName, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(_ context.Context, cfg *InitConfig) error {
	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigName
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force && st.Mode().IsRegular() {
		return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
	}

	if err := writeFileAtomic(absPath, []byte(strings.TrimSpace(sampleConfigYAML)+"\n")); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	if cfg.Stdout != nil {
		printf(cfg.Stdout, "Wrote sample config to %s\n", absPath)
	}
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# api-spec-converter configuration (YAML or JSON)
# All fields are optional. Command-line flags override config values.
# Keys are matched ignoring case, "-" and "_".

# A path or http(s) URL, or a list of them. OpenAPI 3, Swagger 2 and project
# documents are detected automatically.
# input: ./openapi.yaml

# RAML version to write (raml10|raml08). Defaults to raml10.
# format: raml10

# Output syntax. Only yaml is supported.
# syntax: yaml

# Output file, or a directory when there are several inputs. Omit for stdout.
# out: ./api.raml

# Only include endpoints with these tags (comma-separated or list).
# includeTags: [public, read]

# Exclude endpoints with these tags (comma-separated or list).
# excludeTags: [internal]

# Only include these HTTP methods.
# methods: [get, post]

# Only include endpoints whose path matches one of these regular expressions.
# paths: ['^/pets']

# Maximum number of inputs converted at once.
# concurrency: 4

# Report planned writes without writing files.
# dryRun: false

# Overwrite existing output files.
# force: false

# Timeout for each HTTP request when an input is a URL.
# httpTimeout: 10s

# Retries for transient HTTP failures (5xx, 429, network errors).
# retries: 3

# Let a remote document reference local files.
# allowFileRefs: false

# Log dropped input and loader details to stderr.
# verbose: false
`
