package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/Fepozopo/docfix/pkg/stdimg"
)

// EnvPrefix prefixes every environment variable docfix reads.
const EnvPrefix = "DOCFIX_"

// EnvName maps a tunable or flag name to its environment variable:
// "bright-bias" -> "DOCFIX_BRIGHT_BIAS".
func EnvName(name string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// LoadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is only an error when
// required is true.
func LoadEnvFile(path string, required bool) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// registerTunableFlags adds one string flag per entry of stdimg.Params.
func registerTunableFlags(flags *pflag.FlagSet) {
	for _, p := range stdimg.Params {
		flags.String(p.Name, "", fmt.Sprintf("%s (default %s)", p.Description, p.Default))
	}
}

// ResolveOptions layers the tunables: defaults, then environment, then each
// --set name=value in order, then the dedicated tunable flags that were given.
func ResolveOptions(flags *pflag.FlagSet, sets []string, lookup func(string) (string, bool)) (stdimg.Options, error) {
	opts := stdimg.DefaultOptions()
	for _, p := range stdimg.Params {
		if v, ok := lookup(EnvName(p.Name)); ok && v != "" {
			if err := opts.Set(p.Name, v); err != nil {
				return opts, fmt.Errorf("%s: %w", EnvName(p.Name), err)
			}
		}
	}
	for _, s := range sets {
		name, value, ok := strings.Cut(s, "=")
		if !ok {
			return opts, fmt.Errorf("invalid --set %q: want name=value", s)
		}
		if err := opts.Set(strings.TrimSpace(name), value); err != nil {
			return opts, fmt.Errorf("--set %s: %w", s, err)
		}
	}
	if flags == nil {
		return opts, nil
	}
	for _, p := range stdimg.Params {
		f := flags.Lookup(p.Name)
		if f == nil || !f.Changed {
			continue
		}
		if err := opts.Set(p.Name, f.Value.String()); err != nil {
			return opts, fmt.Errorf("--%s: %w", p.Name, err)
		}
	}
	return opts, nil
}

// bindEnv fills every named flag the user did not pass from its DOCFIX_
// environment variable.
func bindEnv(flags *pflag.FlagSet, lookup func(string) (string, bool), names ...string) error {
	for _, name := range names {
		f := flags.Lookup(name)
		if f == nil || f.Changed {
			continue
		}
		if v, ok := lookup(EnvName(name)); ok && v != "" {
			if err := flags.Set(name, v); err != nil {
				return fmt.Errorf("%s: %w", EnvName(name), err)
			}
		}
	}
	return nil
}
