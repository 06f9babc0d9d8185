package cli

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/dyaskur/api-spec-converter/internal/raml"
	"github.com/dyaskur/api-spec-converter/internal/raml/raml08"
	"github.com/dyaskur/api-spec-converter/internal/raml/raml10"
	"github.com/dyaskur/api-spec-converter/internal/spec"
)

// ConvertConfig captures all inputs that influence the convert command after
// merging defaults, config file values, and CLI overrides.
type ConvertConfig struct {
	Inputs      []string
	Format      string
	Syntax      string
	Out         string
	IncludeTags []string
	ExcludeTags []string
	Methods     []string
	Paths       []string
	ConfigPath  string
	Concurrency int
	DryRun      bool
	Force       bool
	Verbose     bool

	// HTTPTimeout, Retries and AllowFileRefs tune the loader for remote inputs.
	HTTPTimeout   time.Duration
	Retries       int
	AllowFileRefs bool

	Stdout io.Writer
	Stderr io.Writer
}

func defaultConvertConfig() ConvertConfig {
	return ConvertConfig{
		Format:      "raml10",
		Syntax:      "yaml",
		Concurrency: 4,
		HTTPTimeout: 10 * time.Second,
		Retries:     3,
	}
}

// formats lists the RAML versions the convert command can write.
var formats = map[string]func() raml.Format{
	"raml10": func() raml.Format { return raml10.New() },
	"raml08": func() raml.Format { return raml08.New() },
}

var convertRunner = runConvert

func newConvertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [input...]",
		Short: "Convert API documents to RAML",
		Long: "Convert OpenAPI 3, Swagger 2 or project documents to RAML. " +
			"Inputs are local paths or http(s) URLs, given with --input or as arguments. " +
			"Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  api-spec-converter convert --input openapi.yaml --out api.raml
  api-spec-converter convert --format raml08 --out ./raml a.yaml b.json
  api-spec-converter --config converter.yaml convert --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConvertConfig(cmd, args)
			if err != nil {
				return err
			}
			return convertRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path or URL to the OpenAPI, Swagger or project document")
	flags.String("format", "", "RAML version to write (raml10|raml08); defaults to raml10")
	flags.String("syntax", "", "Output syntax; only yaml is supported")
	flags.StringP("out", "o", "", "Output file, or directory when converting several inputs (stdout when omitted)")
	flags.StringSlice("include-tags", nil, "Only include endpoints with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude endpoints with these tags")
	flags.StringSlice("methods", nil, "Only include these HTTP methods")
	flags.StringSlice("paths", nil, "Only include endpoints whose path matches one of these regular expressions")
	flags.Int("concurrency", 0, "Maximum number of inputs converted at once")
	flags.Bool("dry-run", false, "Report planned writes without writing files")
	flags.Bool("force", false, "Overwrite existing output files")
	flags.Duration("http-timeout", 0, "Timeout for each HTTP request made while loading (default 10s)")
	flags.Int("retries", 0, "Retries for transient HTTP failures (default 3)")
	flags.Bool("allow-file-refs", false, "Allow a remote document to reference local files")

	return cmd
}

func resolveConvertConfig(cmd *cobra.Command, args []string) (*ConvertConfig, error) {
	cfg := defaultConvertConfig()
	cfg.Stdout = cmd.OutOrStdout()
	cfg.Stderr = cmd.ErrOrStderr()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		fc, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		fc.apply(&cfg)
	}

	if err := applyConvertFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}
	if len(args) > 0 {
		if cmd.Flags().Changed("input") {
			cfg.Inputs = append(cfg.Inputs, args...)
		} else {
			cfg.Inputs = args
		}
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyConvertFlagOverrides(flags *pflag.FlagSet, cfg *ConvertConfig) error {
	stringFlags := map[string]*string{
		"format": &cfg.Format,
		"syntax": &cfg.Syntax,
		"out":    &cfg.Out,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	if flags.Changed("input") {
		v, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Inputs = []string{v}
	}

	sliceFlags := map[string]*[]string{
		"include-tags": &cfg.IncludeTags,
		"exclude-tags": &cfg.ExcludeTags,
		"methods":      &cfg.Methods,
		"paths":        &cfg.Paths,
	}
	for name, dst := range sliceFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	boolFlags := map[string]*bool{
		"dry-run":         &cfg.DryRun,
		"force":           &cfg.Force,
		"verbose":         &cfg.Verbose,
		"allow-file-refs": &cfg.AllowFileRefs,
	}
	for name, dst := range boolFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	intFlags := map[string]*int{
		"concurrency": &cfg.Concurrency,
		"retries":     &cfg.Retries,
	}
	for name, dst := range intFlags {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if flags.Changed("http-timeout") {
		v, err := flags.GetDuration("http-timeout")
		if err != nil {
			return err
		}
		cfg.HTTPTimeout = v
	}
	return nil
}

func (c *ConvertConfig) normalize() {
	c.Inputs = cleanList(c.Inputs)
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Syntax = strings.ToLower(strings.TrimSpace(c.Syntax))
	c.Out = strings.TrimSpace(c.Out)
	c.IncludeTags = cleanList(c.IncludeTags)
	c.ExcludeTags = cleanList(c.ExcludeTags)
	c.Methods = cleanList(c.Methods)
	for i, m := range c.Methods {
		c.Methods[i] = strings.ToLower(m)
	}
	c.Paths = cleanList(c.Paths)
	if c.Format == "" {
		c.Format = "raml10"
	}
	if c.Syntax == "" {
		c.Syntax = "yaml"
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
}

var knownMethods = map[spec.HttpMethod]struct{}{
	spec.GET: {}, spec.POST: {}, spec.PUT: {}, spec.DELETE: {},
	spec.PATCH: {}, spec.HEAD: {}, spec.OPTIONS: {}, spec.TRACE: {},
}

func (c *ConvertConfig) validate() error {
	if len(c.Inputs) == 0 {
		return newUsageError("convert: an input is required (--input, argument or config file)")
	}
	if _, ok := formats[c.Format]; !ok {
		return newUsageError(fmt.Sprintf("convert: unsupported --format %q (allowed: raml10, raml08)", c.Format))
	}
	if c.Syntax != "yaml" {
		err := &raml.UnsupportedFormatError{Format: c.Syntax}
		return wrapUsageError(err, "convert: %v", err)
	}
	for _, m := range c.Methods {
		if _, ok := knownMethods[spec.HttpMethod(m)]; !ok {
			return newUsageError(fmt.Sprintf("convert: unknown HTTP method %q", m))
		}
	}
	if c.HTTPTimeout <= 0 {
		return newUsageError(fmt.Sprintf("convert: --http-timeout must be positive, got %s", c.HTTPTimeout))
	}
	if c.Retries < 0 {
		return newUsageError(fmt.Sprintf("convert: --retries must not be negative, got %d", c.Retries))
	}
	if overlap := intersect(c.IncludeTags, c.ExcludeTags); len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("convert: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}
	return nil
}

func (c *ConvertConfig) filterOptions() []spec.FilterOption {
	var opts []spec.FilterOption
	if len(c.IncludeTags) > 0 {
		opts = append(opts, spec.WithIncludeTags(c.IncludeTags))
	}
	if len(c.ExcludeTags) > 0 {
		opts = append(opts, spec.WithExcludeTags(c.ExcludeTags))
	}
	if len(c.Methods) > 0 {
		methods := make([]spec.HttpMethod, len(c.Methods))
		for i, m := range c.Methods {
			methods[i] = spec.HttpMethod(m)
		}
		opts = append(opts, spec.WithMethods(methods))
	}
	if len(c.Paths) > 0 {
		opts = append(opts, spec.WithPathPatterns(c.Paths))
	}
	return opts
}

func (c *ConvertConfig) loaderOptions(logger hclog.Logger) []spec.Option {
	return []spec.Option{
		spec.WithHTTPTimeout(c.HTTPTimeout),
		spec.WithMaxRetries(c.Retries),
		spec.WithAllowFileRefs(c.AllowFileRefs),
		spec.WithLoaderLogger(logger),
	}
}

// conversion is the outcome of converting one input.
type conversion struct {
	input  string
	target string
	data   []byte
	err    error
}

func runConvert(ctx context.Context, cfg *ConvertConfig) error {
	logger := newLogger(cfg.Stderr, cfg.Verbose)
	newFormat := formats[cfg.Format]

	targets, err := outputTargets(cfg.Inputs, cfg.Out)
	if err != nil {
		return err
	}

	results := make([]conversion, len(cfg.Inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Concurrency)
	for i, input := range cfg.Inputs {
		results[i] = conversion{input: input, target: targets[i]}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			l := logger.With("input", input)
			results[i].data, results[i].err = convertOne(gctx, input, cfg, newFormat(), l)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var errs *multierror.Error
	for _, r := range results {
		if r.err != nil {
			errs = multierror.Append(errs, r.err)
			continue
		}
		if err := emit(cfg, r); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if errs.ErrorOrNil() == nil {
		return nil
	}
	if len(errs.Errors) == 1 {
		return errs.Errors[0]
	}
	return errs
}

// convertOne loads, filters, exports and renders one input.
func convertOne(ctx context.Context, input string, cfg *ConvertConfig, format raml.Format, logger hclog.Logger) ([]byte, error) {
	p, err := spec.Load(ctx, input, cfg.loaderOptions(logger.Named("loader"))...)
	if err != nil {
		return nil, describeLoadError(input, err)
	}
	before := len(p.Endpoints)
	p.Filter(cfg.filterOptions()...)
	if dropped := before - len(p.Endpoints); dropped > 0 {
		logger.Debug("endpoints filtered out", "count", dropped)
	}

	exporter, err := raml.New(format, raml.WithLogger(logger.Named("raml")))
	if err != nil {
		return nil, err
	}
	doc, err := exporter.Export(p)
	if err != nil {
		return nil, fmt.Errorf("%s: export: %w", input, err)
	}
	out, err := doc.Render(cfg.Syntax)
	if err != nil {
		return nil, fmt.Errorf("%s: render: %w", input, err)
	}
	return out, nil
}

// outputTargets decides where each input is written. An empty target means
// stdout. With several inputs out is a directory (default ".") and each input
// gets <name>.raml, with a numeric suffix on name clashes.
func outputTargets(inputs []string, out string) ([]string, error) {
	targets := make([]string, len(inputs))
	if len(inputs) == 1 {
		if out != "-" {
			targets[0] = out
		}
		return targets, nil
	}
	if out == "-" {
		return nil, newUsageError("convert: --out must be a directory when converting several inputs")
	}
	if out == "" {
		out = "."
	}
	if st, err := os.Stat(out); err == nil && !st.IsDir() {
		return nil, newUsageError(fmt.Sprintf("convert: --out %q is a file; several inputs need a directory", out))
	}

	used := make(map[string]int, len(inputs))
	for i, input := range inputs {
		name := outputBaseName(input)
		used[name]++
		if n := used[name]; n > 1 {
			name = fmt.Sprintf("%s-%d", name, n)
		}
		targets[i] = filepath.Join(out, name+".raml")
	}
	return targets, nil
}

// outputBaseName derives an output name from a path or URL: the last path
// element without its extension.
func outputBaseName(input string) string {
	base := filepath.Base(input)
	if u, err := url.Parse(input); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		base = path.Base(u.Path)
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	switch base {
	case "", ".", "/":
		return "api"
	}
	return base
}

// emit writes one result to stdout or its target file.
func emit(cfg *ConvertConfig, r conversion) error {
	if r.target == "" {
		if cfg.DryRun {
			printf(cfg.Stdout, "Would write %d bytes for %s to stdout\n", len(r.data), r.input)
			return nil
		}
		_, err := cfg.Stdout.Write(r.data)
		return err
	}

	absPath, err := filepath.Abs(r.target)
	if err != nil {
		return fmt.Errorf("convert: resolve output path: %w", err)
	}
	if st, err := os.Stat(absPath); err == nil {
		if st.IsDir() {
			return newUsageError(fmt.Sprintf("convert: %q is a directory", absPath))
		}
		if !cfg.Force {
			return newUsageError(fmt.Sprintf("convert: %q already exists (use --force to overwrite)", absPath))
		}
	}
	if cfg.DryRun {
		printf(cfg.Stdout, "Would write %d bytes for %s to %s\n", len(r.data), r.input, absPath)
		return nil
	}
	if err := writeFileAtomic(absPath, r.data); err != nil {
		return err
	}
	printf(cfg.Stderr, "Wrote %s\n", absPath)
	return nil
}
