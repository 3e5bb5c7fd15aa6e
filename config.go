package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nf/brainfuck/machine"
)

const envPrefix = "BRAINFUCK"

type config struct {
	PrintInt   bool
	Memory     bool
	EOF        machine.EOFPolicy
	Input      string
	Dev        bool
	Debug      bool
	Verbose    bool
	CPUProfile string
}

func (c *config) style() machine.PrintStyle {
	if c.PrintInt {
		return machine.Int
	}
	return machine.Char
}

func addFlags(f *pflag.FlagSet) {
	f.BoolP("print-int", "i", false, "print data from tape as base 10 numbers")
	f.BoolP("memory", "m", false, "print memory after script halts")
	f.String("eof", machine.EOFMinusOne.String(), "value stored by , at end of input: minus-one, zero or unchanged")
	f.String("input", "", "read program input from `file` instead of stdin")
	f.Bool("dev", false, "re-run the program whenever its source file changes")
	f.Bool("debug", false, "run the program in the interactive debugger (implies -dev)")
	f.Bool("verbose", false, "log execution statistics")
	f.String("cpu-profile", "", "write CPU profile to `file`")
	f.String("config", "", "read settings from config `file` (toml, yaml or json)")
}

// loadConfig merges, from lowest to highest precedence, the flag defaults,
// the config file, BRAINFUCK_* environment variables and explicitly set
// flags.
func loadConfig(f *pflag.FlagSet) (*config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(f); err != nil {
		return nil, err
	}
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	eof, err := machine.ParseEOFPolicy(v.GetString("eof"))
	if err != nil {
		return nil, err
	}
	return &config{
		PrintInt:   v.GetBool("print-int"),
		Memory:     v.GetBool("memory"),
		EOF:        eof,
		Input:      v.GetString("input"),
		Dev:        v.GetBool("dev") || v.GetBool("debug"),
		Debug:      v.GetBool("debug"),
		Verbose:    v.GetBool("verbose"),
		CPUProfile: v.GetString("cpu-profile"),
	}, nil
}
