// Command linedump lays out an HTML fragment with the linebox engine,
// and prints its line boxes or paints them in a PNG image.
//
// Usage:
//
//	linedump dump page.html --width 300 --text-overflow ellipsis
//	linedump render page.html --png out.png
//
// Every flag may also be set with a LINEDUMP_* environment variable
// (LINEDUMP_LINE_CLAMP=2) or in a YAML or TOML config file.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "linedump:", err)
		os.Exit(1)
	}
}
