package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shoenig/test/must"

	"github.com/dyaskur/api-spec-converter/internal/raml"
)

// captureConvert runs the root command with args and returns the resolved
// convert config instead of converting.
func captureConvert(t *testing.T, args ...string) (*ConvertConfig, error) {
	t.Helper()

	var captured *ConvertConfig
	convertRunner = func(_ context.Context, cfg *ConvertConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { convertRunner = runConvert })

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return captured, err
}

func TestConvertConfigFromFlags(t *testing.T) {
	cfg, err := captureConvert(t,
		"--verbose",
		"convert",
		"--input", "spec.yaml",
		"--format", "RAML08",
		"--out", "./build/api.raml",
		"--include-tags", "foo,bar,foo",
		"--exclude-tags", "baz",
		"--methods", "GET,post",
		"--paths", "^/pets",
		"--concurrency", "8",
		"--dry-run",
		"--force",
		"--http-timeout", "30s",
		"--retries", "0",
		"--allow-file-refs",
	)
	must.NoError(t, err)
	must.NotNil(t, cfg)

	must.Eq(t, []string{"spec.yaml"}, cfg.Inputs)
	must.Eq(t, "raml08", cfg.Format)
	must.Eq(t, "yaml", cfg.Syntax)
	must.Eq(t, "./build/api.raml", cfg.Out)
	must.Eq(t, []string{"foo", "bar"}, cfg.IncludeTags)
	must.Eq(t, []string{"baz"}, cfg.ExcludeTags)
	must.Eq(t, []string{"get", "post"}, cfg.Methods)
	must.Eq(t, []string{"^/pets"}, cfg.Paths)
	must.Eq(t, 8, cfg.Concurrency)
	must.True(t, cfg.DryRun)
	must.True(t, cfg.Force)
	must.True(t, cfg.Verbose)
	must.Len(t, 4, cfg.filterOptions())
	must.Eq(t, 30*time.Second, cfg.HTTPTimeout)
	must.Eq(t, 0, cfg.Retries)
	must.True(t, cfg.AllowFileRefs)
}

func TestConvertConfigPositionalInputs(t *testing.T) {
	cfg, err := captureConvert(t, "convert", "--input", "a.yaml", "b.yaml", "c.json")
	must.NoError(t, err)
	must.Eq(t, []string{"a.yaml", "b.yaml", "c.json"}, cfg.Inputs)
	must.Eq(t, "raml10", cfg.Format)
	must.Eq(t, 4, cfg.Concurrency)
	must.Eq(t, 10*time.Second, cfg.HTTPTimeout)
	must.Eq(t, 3, cfg.Retries)
	must.False(t, cfg.AllowFileRefs)
}

func TestConvertConfigPrecedence(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := strings.TrimSpace(`
input: [config-a.yaml, config-b.yaml]
Format: raml08
out: from-config
include_tags:
  - cfgFoo
exclude-tags: cfgBar,cfgBaz
methods: get
dryRun: "true"
force: false
verbose: true
concurrency: 2
http-timeout: 5s
retries: 1
`) + "\n"
	must.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o600))

	cfg, err := captureConvert(t,
		"--config", configPath,
		"convert",
		"--input", "flag-spec.yaml",
		"--include-tags", "flagTag",
		"--dry-run=false",
		"--force",
	)
	must.NoError(t, err)

	must.Eq(t, []string{"flag-spec.yaml"}, cfg.Inputs)
	must.Eq(t, "raml08", cfg.Format)
	must.Eq(t, "from-config", cfg.Out)
	must.Eq(t, []string{"flagTag"}, cfg.IncludeTags)
	must.Eq(t, []string{"cfgBar", "cfgBaz"}, cfg.ExcludeTags)
	must.Eq(t, []string{"get"}, cfg.Methods)
	must.Eq(t, 2, cfg.Concurrency)
	must.False(t, cfg.DryRun)
	must.True(t, cfg.Force)
	must.True(t, cfg.Verbose)
	must.Eq(t, configPath, cfg.ConfigPath)
	must.Eq(t, 5*time.Second, cfg.HTTPTimeout)
	must.Eq(t, 1, cfg.Retries)
}

func TestConvertConfigFileInputs(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	must.NoError(t, os.WriteFile(configPath, []byte(`{"input": "one.yaml"}`), 0o600))

	cfg, err := captureConvert(t, "--config", configPath, "convert")
	must.NoError(t, err)
	must.Eq(t, []string{"one.yaml"}, cfg.Inputs)
}

func TestConvertConfigErrors(t *testing.T) {
	dir := t.TempDir()
	badConfig := filepath.Join(dir, "bad.yaml")
	must.NoError(t, os.WriteFile(badConfig, []byte("unknown: value\n"), 0o600))

	cases := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing input", args: []string{"convert"}, want: "an input is required"},
		{name: "unknown format", args: []string{"convert", "--input", "a", "--format", "raml2"}, want: "unsupported --format"},
		{name: "unknown method", args: []string{"convert", "--input", "a", "--methods", "fetch"}, want: `unknown HTTP method "fetch"`},
		{name: "tag overlap", args: []string{"convert", "--input", "a", "--include-tags", "x", "--exclude-tags", "x"}, want: "overlap: x"},
		{name: "zero timeout", args: []string{"convert", "--input", "a", "--http-timeout", "0s"}, want: "--http-timeout must be positive"},
		{name: "negative retries", args: []string{"convert", "--input", "a", "--retries", "-1"}, want: "--retries must not be negative"},
		{name: "unknown config key", args: []string{"--config", badConfig, "convert", "--input", "a"}, want: "unknown"},
		{name: "missing config", args: []string{"--config", filepath.Join(dir, "nope.yaml"), "convert"}, want: "read config file"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := captureConvert(t, tc.args...)
			must.ErrorIs(t, err, ErrUsage)
			must.ErrorContains(t, err, tc.want)
		})
	}
}

func TestConvertConfigUnsupportedSyntax(t *testing.T) {
	_, err := captureConvert(t, "convert", "--input", "a.yaml", "--syntax", "json")
	must.ErrorIs(t, err, ErrUsage)
	must.ErrorIs(t, err, raml.ErrUnsupportedFormat)
}

func TestOutputTargets(t *testing.T) {
	t.Parallel()

	single, err := outputTargets([]string{"a.yaml"}, "")
	must.NoError(t, err)
	must.Eq(t, []string{""}, single)

	dash, err := outputTargets([]string{"a.yaml"}, "-")
	must.NoError(t, err)
	must.Eq(t, []string{""}, dash)

	dir := t.TempDir()
	many, err := outputTargets([]string{"x/pets.yaml", "y/pets.json", "https://example.com/specs/store.yaml?v=2", "https://example.com"}, dir)
	must.NoError(t, err)
	must.Eq(t, []string{
		filepath.Join(dir, "pets.raml"),
		filepath.Join(dir, "pets-2.raml"),
		filepath.Join(dir, "store.raml"),
		filepath.Join(dir, "api.raml"),
	}, many)

	file := filepath.Join(dir, "file.raml")
	must.NoError(t, os.WriteFile(file, nil, 0o600))
	_, err = outputTargets([]string{"a", "b"}, file)
	must.ErrorIs(t, err, ErrUsage)
}
