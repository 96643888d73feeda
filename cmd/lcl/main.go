// Command lcl searches and browses the Linux command library.
//
// Usage:
//
//	lcl search <query>
//	lcl show <name>
//	lcl browse
package main

import (
	"fmt"
	"os"

	"github.com/Adithya-Monish-Kumar-K/linux-command-library/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "lcl: %v\n", err)
		os.Exit(1)
	}
}
