// ABOUTME: Entry point for the weather-portal CLI
// ABOUTME: Terminal client for signing in and viewing the weather forecast

package main

import (
	"fmt"
	"os"

	"github.com/galaxy-weather/weather-portal/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
