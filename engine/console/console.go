package console

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mattn/go-shellwords"
)

// ShaderSelector is the selection surface the console drives, usually the engine.
type ShaderSelector interface {
	ListShaders() []string
	SelectShader(name string) bool
	ActiveShader() string
	NextShader() string
	PreviousShader() string
}

// Result is the outcome of one command line.
type Result struct {
	// Output is the text to print, possibly multi-line. Empty means print nothing.
	Output string
	// Clear asks the host to clear its terminal.
	Clear bool
}

// command is one console verb.
type command struct {
	usage string
	run   func(c *console, args []string) Result
}

// console is the implementation of the Console interface.
type console struct {
	selector      ShaderSelector
	profileToggle func(bool)
	commands      map[string]command
	order         []string
}

// Console runs text commands against a ShaderSelector.
//
// Lines are split with shell-word rules so quoted names work: shader "my shader".
type Console interface {
	// Execute parses and runs one command line.
	//
	// Parameters:
	//   - line: the raw command line
	//
	// Returns:
	//   - Result: the text to show; unknown commands produce "<line>: command not found"
	//   - error: a parse error for malformed quoting
	Execute(line string) (Result, error)

	// Commands returns the command names in help order.
	//
	// Returns:
	//   - []string: the command names
	Commands() []string
}

var _ Console = &console{}

// NewConsole creates a Console bound to selector.
//
// Parameters:
//   - selector: the shader selection target
//   - options: variadic list of ConsoleBuilderOption functions
//
// Returns:
//   - Console: the console
func NewConsole(selector ShaderSelector, options ...ConsoleBuilderOption) Console {
	c := &console{
		selector: selector,
	}
	for _, opt := range options {
		opt(c)
	}
	c.register()
	return c
}

func (c *console) register() {
	c.commands = map[string]command{}
	add := func(name, usage string, run func(c *console, args []string) Result) {
		c.commands[name] = command{usage: usage, run: run}
		c.order = append(c.order, name)
	}

	add("help", "help (list commands)", runHelp)
	add("shaders", "shaders (list available shaders)", runShaders)
	add("shader", "shader [name] (switch shader)", runShader)
	add("next", "next (switch to the next shader)", func(c *console, _ []string) Result {
		return switched(c.selector.NextShader())
	})
	add("prev", "prev (switch to the previous shader)", func(c *console, _ []string) Result {
		return switched(c.selector.PreviousShader())
	})
	if c.profileToggle != nil {
		add("profile", "profile on|off (frame statistics)", runProfile)
	}
	add("clear", "clear", func(*console, []string) Result {
		return Result{Clear: true}
	})
}

func (c *console) Commands() []string {
	return append([]string(nil), c.order...)
}

func (c *console) Execute(line string) (Result, error) {
	args, err := shellwords.Parse(line)
	if err != nil {
		return Result{}, fmt.Errorf("console: parse %q: %w", line, err)
	}
	if len(args) == 0 {
		return Result{}, nil
	}

	cmd, ok := c.commands[args[0]]
	if !ok {
		return Result{Output: fmt.Sprintf("%s: command not found", strings.TrimSpace(line))}, nil
	}
	return cmd.run(c, args[1:]), nil
}

func runHelp(c *console, _ []string) Result {
	var b strings.Builder
	b.WriteString("Available commands:")
	for _, name := range c.order {
		b.WriteString("\n  ")
		b.WriteString(c.commands[name].usage)
	}
	return Result{Output: b.String()}
}

func runShaders(c *console, _ []string) Result {
	names := c.selector.ListShaders()
	if len(names) == 0 {
		return Result{Output: "No shaders available"}
	}

	active := c.selector.ActiveShader()
	lines := make([]string, 0, len(names))
	for _, name := range names {
		if name == active {
			lines = append(lines, fmt.Sprintf("  %s (active)", name))
			continue
		}
		lines = append(lines, "  "+name)
	}
	return Result{Output: fmt.Sprintf("Available shaders:\n%s\n\nUse 'shader [name]' to switch", strings.Join(lines, "\n"))}
}

func runShader(c *console, args []string) Result {
	if len(args) != 1 {
		return Result{Output: "Usage: shader [name]"}
	}
	name := args[0]
	names := c.selector.ListShaders()
	if !slices.Contains(names, name) {
		return Result{Output: fmt.Sprintf("Shader '%s' not found. Available shaders:\n  %s",
			name, strings.Join(names, "\n  "))}
	}
	c.selector.SelectShader(name)
	return switched(name)
}

func runProfile(c *console, args []string) Result {
	if len(args) != 1 {
		return Result{Output: "Usage: profile on|off"}
	}
	switch strings.ToLower(args[0]) {
	case "on":
		c.profileToggle(true)
		return Result{Output: "Profiling enabled"}
	case "off":
		c.profileToggle(false)
		return Result{Output: "Profiling disabled"}
	default:
		return Result{Output: "Usage: profile on|off"}
	}
}

func switched(name string) Result {
	if name == "" {
		return Result{Output: "No shaders available"}
	}
	return Result{Output: "Shader set to: " + name}
}
