// Command brainfuck runs programs written in the eight-instruction
// tape language.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	version = "Version 1.1"
	author  = "Author: Tilman Roeder"
)

func banner() string { return titleStyle.Render(version) + "\n" + author }

func main() {
	log.SetPrefix("brainfuck")
	log.SetReportTimestamp(false)

	if err := execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// execute runs the command line args. Unrecognized flags are reported on
// stderr and otherwise ignored.
func execute(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := newCommand(stdin, stdout, stderr)
	args, unknown := stripUnknownFlags(cmd.Flags(), args)
	for _, f := range unknown {
		fmt.Fprintln(stderr, noticeMsg("Command line flag %q not recognized.", f))
	}
	cmd.SetArgs(args)
	return cmd.Execute()
}

func newCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "brainfuck [-himv] filename",
		Short:   "Run a program written in the eight-instruction tape language",
		Version: version,
		Args:    cobra.ArbitraryArgs, // arguments after the file name are ignored

		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate(banner() + "\n")
	addFlags(cmd.Flags())
	cmd.Flags().SetInterspersed(false)

	help := cmd.HelpFunc()
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		fmt.Fprintf(c.OutOrStdout(), "%s\n\n", banner())
		help(c, args)
	})

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Usage()
		}
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		if cfg.Verbose {
			log.SetLevel(log.DebugLevel)
		}

		if cfg.Dev {
			return devMode(cfg, args[0])
		}

		if prof := cfg.CPUProfile; prof != "" {
			f, err := os.Create(prof)
			if err != nil {
				return fmt.Errorf("creating CPU profile file: %w", err)
			}
			defer f.Close()
			if err := pprof.StartCPUProfile(f); err != nil {
				return err
			}
			defer pprof.StopCPUProfile()
		}

		return run(cfg, args[0], cmd.InOrStdin(), cmd.OutOrStdout())
	}
	return cmd
}

// stripUnknownFlags removes the flags that f does not define from args,
// up to the first non-flag argument, and returns them as unknown.
// Known shorthands in a cluster with unknown ones are kept, so "-ix"
// becomes "-i" with "-x" reported.
func stripUnknownFlags(f *pflag.FlagSet, args []string) (kept, unknown []string) {
	kept = make([]string, 0, len(args)) // nil args make cobra read os.Args
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" || a == "-" || !strings.HasPrefix(a, "-") {
			return append(kept, args[i:]...), unknown
		}
		var (
			known      string
			bad        []string
			takesValue bool
		)
		if name, ok := strings.CutPrefix(a, "--"); ok {
			if lookupLong(f, name, &takesValue) {
				known = a
			} else {
				bad = []string{a}
			}
		} else {
			known, bad, takesValue = splitShorthand(f, a[1:])
		}
		unknown = append(unknown, bad...)
		if known == "" {
			continue
		}
		kept = append(kept, known)
		if takesValue && i+1 < len(args) {
			i++
			kept = append(kept, args[i])
		}
	}
	return kept, unknown
}

// lookupLong reports whether the long flag in arg (without its dashes) is
// defined in f, and sets takesValue if it needs the following argument as
// its value. The help and version flags are added by cobra during Execute.
func lookupLong(f *pflag.FlagSet, arg string, takesValue *bool) bool {
	name, _, hasValue := strings.Cut(arg, "=")
	if name == "help" || name == "version" {
		return true
	}
	fl := f.Lookup(name)
	if fl == nil {
		return false
	}
	*takesValue = !hasValue && fl.NoOptDefVal == ""
	return true
}

// splitShorthand splits a shorthand cluster into an argument holding its
// known flags and the unknown flags, and reports whether the known
// argument needs the following argument as its value.
func splitShorthand(f *pflag.FlagSet, short string) (known string, unknown []string, takesValue bool) {
	var b strings.Builder
	for i, c := range short {
		if c == 'h' || c == 'v' {
			b.WriteRune(c)
			continue
		}
		if c >= utf8.RuneSelf {
			unknown = append(unknown, "-"+string(c))
			continue
		}
		fl := f.ShorthandLookup(string(c))
		if fl == nil {
			unknown = append(unknown, "-"+string(c))
			continue
		}
		b.WriteRune(c)
		if fl.NoOptDefVal == "" {
			// Any remaining characters are the value.
			rest := short[i+1:]
			b.WriteString(rest)
			return "-" + b.String(), unknown, rest == ""
		}
	}
	if b.Len() == 0 {
		return "", unknown, false
	}
	return "-" + b.String(), unknown, false
}
