package command

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

// DefaultCommand runs when the first argument does not name a command, so
// "blockfs <input> [output]" means "blockfs build <input> [output]".
var DefaultCommand = "build"

// Output is where help and usage text goes.
var Output io.Writer = os.Stdout

// RunCLI is the main entrypoint for executing commands.
// It parses arguments, resolves subcommands, applies flags, and runs the target command.
func RunCLI(args []string) {
	if err := Execute(args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// Execute resolves and runs the command named by args.
func Execute(args []string) error {
	if len(args) == 0 {
		args = []string{"help"}
	}

	node, remaining, err := ResolveCommand(args)
	if err != nil {
		if _, ok := GetCommand(DefaultCommand); !ok {
			return err
		}
		node, remaining, err = ResolveCommand(append([]string{DefaultCommand}, args...))
		if err != nil {
			return err
		}
	}

	cmd := node.Cmd

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(Output)
	fs.Usage = func() {
		fmt.Fprintf(Output, "Usage: %s\n\n%s\n", cmd.Usage(), cmd.Help())
	}
	cmd.Flags(fs)
	if err := fs.Parse(remaining); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parsing flags: %w", err)
	}

	ctx := &Context{
		Args:  fs.Args(),
		Flags: fs,
	}

	return cmd.Run(ctx)
}
