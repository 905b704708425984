package main

import (
	"os"

	wbcmder "github.com/andrehe001/semanticworkbench/cmd/wb"
)

func main() {
	cmd := wbcmder.NewWbCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
