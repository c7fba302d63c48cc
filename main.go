package main

import (
	"os"

	"github.com/mlihgenel/slydetrim/cmd"
)

var (
	version = "0.1.0"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, date)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
