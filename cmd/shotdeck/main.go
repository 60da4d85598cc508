// Command shotdeck creates and edits production folder structures from the
// command line, using the same engine as the desktop agent.
package main

import "os"

func main() {
	if err := NewRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
