// edgeo-snmp is a command-line SNMP client for testing, debugging, and monitoring.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
