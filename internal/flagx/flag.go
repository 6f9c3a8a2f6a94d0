package flagx

import (
	"flag"
	"os"
	"strings"
)

// FilterArgs keeps only the flags named in allowed (plus their values) from
// args, so a package can parse its own flags without tripping over flags
// registered elsewhere in the binary.
//
// Both the "-f value" and "-f=value" spellings survive the filter.
// Everything else, including positional arguments, is dropped. The result
// is never nil.
func FilterArgs(args []string, allowed []string) []string {
	keep := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		keep[name] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		// "-f=value" travels as a single token.
		if name, _, found := strings.Cut(arg, "="); found {
			if _, ok := keep[name]; ok {
				out = append(out, arg)
			}
			continue
		}

		if _, ok := keep[arg]; !ok {
			continue
		}
		out = append(out, arg)

		// A following token is this flag's value unless it is a flag itself.
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}

	return out
}

// JsonConfigFlags returns the config file path passed via -c or -config,
// or "" when neither flag is present. All other arguments are ignored so
// the caller's own flag set stays undisturbed.
func JsonConfigFlags() string {
	var config string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return config
}
