package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the keys accepted in a config file. Key matching ignores
// case, "-" and "_".
type fileConfig struct {
	Input       []string `mapstructure:"input"`
	Format      *string  `mapstructure:"format"`
	Syntax      *string  `mapstructure:"syntax"`
	Out         *string  `mapstructure:"out"`
	IncludeTags []string `mapstructure:"includeTags"`
	ExcludeTags []string `mapstructure:"excludeTags"`
	Methods     []string `mapstructure:"methods"`
	Paths       []string `mapstructure:"paths"`
	Concurrency *int     `mapstructure:"concurrency"`
	DryRun      *bool    `mapstructure:"dryRun"`
	Force       *bool    `mapstructure:"force"`
	Verbose     *bool    `mapstructure:"verbose"`

	HTTPTimeout   *time.Duration `mapstructure:"httpTimeout"`
	Retries       *int           `mapstructure:"retries"`
	AllowFileRefs *bool          `mapstructure:"allowFileRefs"`
}

// readConfigFile parses a YAML or JSON config file. Unknown keys are an
// error.
func readConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapUsageError(err, "read config file %q: %v", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, wrapUsageError(err, "parse config file %q: %v", path, err)
	}

	var fc fileConfig
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &fc,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		MatchName: func(mapKey, fieldName string) bool {
			return normalizeKey(mapKey) == normalizeKey(fieldName)
		},
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("config decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, wrapUsageError(err, "config file %q: %v", path, err)
	}
	return &fc, nil
}

// apply copies the values set in the file onto cfg.
func (fc *fileConfig) apply(cfg *ConvertConfig) {
	if fc.Input != nil {
		cfg.Inputs = fc.Input
	}
	setIf(&cfg.Format, fc.Format)
	setIf(&cfg.Syntax, fc.Syntax)
	setIf(&cfg.Out, fc.Out)
	setIf(&cfg.Concurrency, fc.Concurrency)
	setIf(&cfg.DryRun, fc.DryRun)
	setIf(&cfg.Force, fc.Force)
	setIf(&cfg.Verbose, fc.Verbose)
	setIf(&cfg.HTTPTimeout, fc.HTTPTimeout)
	setIf(&cfg.Retries, fc.Retries)
	setIf(&cfg.AllowFileRefs, fc.AllowFileRefs)
	if fc.IncludeTags != nil {
		cfg.IncludeTags = fc.IncludeTags
	}
	if fc.ExcludeTags != nil {
		cfg.ExcludeTags = fc.ExcludeTags
	}
	if fc.Methods != nil {
		cfg.Methods = fc.Methods
	}
	if fc.Paths != nil {
		cfg.Paths = fc.Paths
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func normalizeKey(raw string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(strings.ToLower(strings.TrimSpace(raw)))
}

// cleanList trims entries and drops blanks and duplicates, keeping order.
func cleanList(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	in := make(map[string]struct{}, len(a))
	for _, item := range a {
		in[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := in[item]; ok {
			result = append(result, item)
		}
	}
	return result
}
