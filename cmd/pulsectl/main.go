// Command pulsectl runs schema migrations and seeds demo data.
package main

import (
	"fmt"
	"os"

	"pulse/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
