package main

import (
	"os"

	"shufflerd/internal/testctl"
)

func main() { os.Exit(testctl.Main()) }
