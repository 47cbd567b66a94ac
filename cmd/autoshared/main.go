package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// commands is a register of all commands of this program. The name is
// matched with the first argument given.
//
// A command is given stdin, stdout and the command line arguments without
// the program and command name. It parses its own flags.
//
// Commands are kept small so that they can be combined with a pipe:
//
//   $ autoshared keyaddr
//   $ cat create_group.json | autoshared sign | autoshared submit
//
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"init":    cmdInit,
	"keyaddr": cmdKeyaddr,
	"keygen":  cmdKeygen,
	"sign":    cmdSign,
	"start":   cmdStart,
	"submit":  cmdSubmit,
	"version": cmdVersion,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s runs and operates an autoshare ledger.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> --help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}
	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	fmt.Fprintln(out, gitHash)
	return nil
}

// gitHash is set during the compilation time.
var gitHash = "dev"

// env returns the value of an environment variable if set, otherwise the
// fallback.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func defaultHome() string {
	return env("AUTOSHARE_HOME", filepath.Join(os.ExpandEnv("$HOME"), ".autoshared"))
}
