// Package flagx extracts a known subset of command-line flags so that each
// configuration layer can parse its own flags without tripping over others.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"
)

// FilterArgs returns only the allowed flags from args, together with their
// values.
//
// Both "-f value" and "-f=value" forms are recognised. A value is taken from
// the next argument only when it does not itself start with a dash.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := lo.Keyify(allowedFlags)

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}

		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// LookupString returns the value of the last occurrence of any of the given
// string flags in args. Names are given without the leading dash.
func LookupString(args []string, names ...string) string {
	dashed := lo.Map(names, func(n string, _ int) string { return "-" + n })

	var value string
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	for _, n := range names {
		fs.StringVar(&value, n, "", "")
	}
	_ = fs.Parse(FilterArgs(args, dashed))

	return value
}

// JsonConfigFlags returns the config file path passed with -c or -config,
// or an empty string when neither is present.
func JsonConfigFlags() string {
	return LookupString(os.Args[1:], "c", "config")
}

// EnvFileFlags returns the dotenv file path passed with -env, or an empty
// string when it is absent.
func EnvFileFlags() string {
	return LookupString(os.Args[1:], "env")
}
