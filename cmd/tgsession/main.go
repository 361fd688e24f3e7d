// Command tgsession detects Telegram client sessions and converts them to the
// canonical session layout.
package main

import (
	"fmt"
	"os"
)

func main() {
	a := newApp()
	if err := execute(a, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// execute runs one command line and always releases what the command set up.
func execute(a *app, args []string) error {
	defer a.finish()
	cmd := rootCmd(a)
	cmd.SetArgs(args)
	return cmd.Execute()
}
