// Command linkclean resolves share links from the terminal, copies the clean
// link and keeps a short history.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newApp(os.Stdin, os.Stdout, os.Stderr).run(os.Args[1:]); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
