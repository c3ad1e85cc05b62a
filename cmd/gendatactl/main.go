package main

import (
	"os"

	"github.com/gendata/gendata-api/internal/logging"
)

func main() {
	logging.Setup()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
