package main

import (
	"fmt"
	"os"
)

const (
	appName = "Pomotasks"
	appID   = "com.pomotasks.app"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
