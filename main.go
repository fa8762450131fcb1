package main

import (
	"flag"
	"fmt"
	"os"

	"supertube/internal/di"
	"supertube/internal/structures"
)

func main() {
	flags := &structures.CliFlags{}
	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the configuration file")
	flag.BoolVar(&flags.DebugMode, "debug", false, "log to stderr in addition to log files")
	flag.Parse()

	_, err := di.InitApp(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "supertube: %v\n", err)
		os.Exit(1)
	}
}
