//go:build !js

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-backdrop/engine"
	"github.com/Carmen-Shannon/oxy-backdrop/engine/console"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const prompt = "backdrop> "

// repl reads command lines from in and prints results from the tick thread.
type repl struct {
	mu          *sync.Mutex
	in          io.Reader
	out         *termenv.Output
	interactive bool
}

func newREPL(in *os.File, out *os.File) *repl {
	return &repl{
		mu:          &sync.Mutex{},
		in:          in,
		out:         termenv.NewOutput(out),
		interactive: term.IsTerminal(int(in.Fd())),
	}
}

// run submits each line to the engine until stdin closes.
func (r *repl) run(eng engine.Engine) {
	r.showPrompt()
	scanner := bufio.NewScanner(r.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			r.showPrompt()
			continue
		}
		if line == "quit" || line == "exit" {
			eng.Quit()
			return
		}
		if !eng.Submit(line) {
			r.showPrompt()
		}
	}
}

// print writes a command result. Called on the tick thread.
func (r *repl) print(_ string, res console.Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case err != nil:
		fmt.Fprintln(r.out, r.out.String(err.Error()).Foreground(r.out.Color("1")))
	case res.Clear:
		r.out.ClearScreen()
		r.out.MoveCursor(1, 1)
	case strings.HasSuffix(res.Output, "command not found"):
		fmt.Fprintln(r.out, r.out.String(res.Output).Foreground(r.out.Color("3")))
	case res.Output != "":
		fmt.Fprintln(r.out, res.Output)
	}
	r.promptLocked()
}

func (r *repl) showPrompt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.promptLocked()
}

func (r *repl) promptLocked() {
	if r.interactive {
		fmt.Fprint(r.out, r.out.String(prompt).Bold())
	}
}
