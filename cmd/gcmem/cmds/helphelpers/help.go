package helphelpers

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Prepare hides root flags that cobra should parse but that are noise in
// the usage output of subcommands they don't apply to. Destructive; cmd can
// not be reused after it has been called.
func Prepare(cmd *cobra.Command) {
	switch cmd.Name() {
	case "version":
		hideAllFlags(cmd)
	}
}

func hideAllFlags(cmd *cobra.Command) {
	cmd.InheritedFlags().VisitAll(func(f *pflag.Flag) {
		f.Hidden = true
	})
}
