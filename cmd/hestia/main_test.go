package main

import (
	"os"
	"testing"
)

func TestEntryPoint_Version(t *testing.T) {
	args := os.Args
	defer func() { os.Args = args }()

	os.Args = []string{"hestia", "version"}
	// returns normally when the command succeeds; a failure would exit the test binary
	main()
}
