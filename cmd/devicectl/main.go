// Devicectl manages a device catalog file without running the server.
//
// Usage:
//
//	devicectl [command] [flags]
//
// The catalog is read from --file (devices.txt by default). Files ending in
// .yaml or .yml use the YAML layout, anything else the line format.
package main

import (
	"fmt"
	"os"

	"liyu1981.xyz/device-manager-service/pkg/common"
)

func main() {
	common.ConfigureLogger(common.LoggerOpts{Console: false})

	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
