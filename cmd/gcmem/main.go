package main

import (
	"os"

	"github.com/gcmem/gcmem/cmd/gcmem/cmds"
	"github.com/gcmem/gcmem/pkg/logflags"
)

func main() {
	defer logflags.Close()
	if err := cmds.New().Execute(); err != nil {
		os.Exit(1)
	}
}
