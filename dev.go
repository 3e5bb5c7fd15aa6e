package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/howeyc/fsnotify"

	"github.com/nf/brainfuck/source"
)

// devMode runs the program in file, re-running it from scratch whenever
// file changes. If cfg.Debug is set the program runs under the debugger.
func devMode(cfg *config, file string) error {
	file = filepath.Clean(file)

	var (
		runner *Runner
		quit   = make(chan struct{})
	)
	if cfg.Debug {
		debug := newDebugger()
		runner = NewRunner(cfg, debug.output, true, debug.StateFunc)
		debug.run = runner
		log.SetPrefix("")
		log.SetOutput(debug.log)
		go func() {
			if err := debug.Run(); err != nil {
				log.Fatal("debug", "err", err)
			}
			log.SetOutput(os.Stderr)
			log.SetPrefix("brainfuck")
			close(quit)
			runner.Debug("exit", 0)
		}()
	} else {
		runner = NewRunner(cfg, os.Stdout, false, nil)
	}

	return watchAndRun(file, runner, quit)
}

// watchAndRun loads file and runs it under runner, resetting runner with
// a fresh build whenever file changes. It returns once runner exits or
// quit is closed, without waiting for runner to finish.
func watchAndRun(file string, runner *Runner, quit <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Watch(filepath.Dir(file)); err != nil {
		return err
	}

	stop := make(chan struct{})
	defer close(stop)
	progCh := make(chan *source.Program)
	go func() {
		started := false
		build := time.After(1 * time.Millisecond)
		for {
			select {
			case <-build:
				log.Info("dev: build", "file", filepath.Base(file))
				prog, err := source.Load(file)
				if err != nil {
					log.Error("dev: " + formatError(err))
					break
				}
				if !started {
					log.Info("dev: start", "instructions", prog.Len())
					select {
					case progCh <- prog:
					case <-quit:
						return
					case <-stop:
						return
					}
					started = true
				} else {
					log.Info("dev: reset", "instructions", prog.Len())
					runner.Reset(prog)
				}
			case ev, ok := <-watcher.Event:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) == file && !ev.IsAttrib() {
					build = time.After(100 * time.Millisecond)
				}
			case err, ok := <-watcher.Error:
				if !ok {
					return
				}
				log.Error("dev: watcher", "err", err)
			case <-quit:
				return
			case <-stop:
				return
			}
		}
	}()

	select {
	case prog := <-progCh:
		runner.Run(prog)
	case <-quit:
	}
	return nil
}
