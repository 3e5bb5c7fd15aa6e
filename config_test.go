package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/nf/brainfuck/machine"
)

func parseFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	f := pflag.NewFlagSet("test", pflag.ContinueOnError)
	addFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatal(err)
	}
	return f
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(parseFlags(t))
	if err != nil {
		t.Fatal(err)
	}
	want := config{EOF: machine.EOFMinusOne}
	if *cfg != want {
		t.Errorf("config = %+v, want %+v", *cfg, want)
	}
	if g := cfg.style(); g != machine.Char {
		t.Errorf("style() = %v, want char", g)
	}
}

func TestLoadConfigFlags(t *testing.T) {
	cfg, err := loadConfig(parseFlags(t, "-im", "--eof=zero", "--debug", "--input", "in.txt"))
	if err != nil {
		t.Fatal(err)
	}
	want := config{
		PrintInt: true,
		Memory:   true,
		EOF:      machine.EOFZero,
		Input:    "in.txt",
		Dev:      true,
		Debug:    true,
	}
	if *cfg != want {
		t.Errorf("config = %+v, want %+v", *cfg, want)
	}
	if g := cfg.style(); g != machine.Int {
		t.Errorf("style() = %v, want int", g)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("BRAINFUCK_PRINT_INT", "true")
	t.Setenv("BRAINFUCK_EOF", "unchanged")
	cfg, err := loadConfig(parseFlags(t))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.PrintInt || cfg.EOF != machine.EOFUnchanged {
		t.Errorf("config = %+v, want print-int and eof unchanged from env", *cfg)
	}

	// Explicit flags win over the environment.
	cfg, err = loadConfig(parseFlags(t, "--eof=zero"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.EOF != machine.EOFZero {
		t.Errorf("EOF = %v, want zero", cfg.EOF)
	}
}

func TestLoadConfigFile(t *testing.T) {
	name := filepath.Join(t.TempDir(), "bf.toml")
	if err := os.WriteFile(name, []byte("memory = true\neof = \"zero\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(parseFlags(t, "--config", name))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Memory || cfg.EOF != machine.EOFZero {
		t.Errorf("config = %+v, want memory and eof zero from file", *cfg)
	}

	if _, err := loadConfig(parseFlags(t, "--config", name+".missing")); err == nil {
		t.Error("loadConfig with missing config file succeeded")
	}
}

func TestLoadConfigBadEOF(t *testing.T) {
	if _, err := loadConfig(parseFlags(t, "--eof=sometimes")); err == nil {
		t.Error("loadConfig with bad eof succeeded")
	}
}
