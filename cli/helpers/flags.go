package helpers

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ChangedFlags returns the typed values of every flag set on the command
// line, keyed by flag name. Defaults are left to the configuration layer.
func ChangedFlags(cmd *cobra.Command) map[string]any {
	out := make(map[string]any)
	flags := cmd.Flags()
	flags.Visit(func(f *pflag.Flag) {
		out[f.Name] = flagValue(flags, f)
	})
	return out
}

func flagValue(flags *pflag.FlagSet, f *pflag.Flag) any {
	var (
		v   any
		err error
	)
	switch f.Value.Type() {
	case "stringSlice":
		v, err = flags.GetStringSlice(f.Name)
	case "int":
		v, err = flags.GetInt(f.Name)
	case "bool":
		v, err = flags.GetBool(f.Name)
	case "duration":
		v, err = flags.GetDuration(f.Name)
	default:
		return f.Value.String()
	}
	if err != nil {
		return f.Value.String()
	}
	return v
}
