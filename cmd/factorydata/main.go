// Command factorydata builds, inspects and records Matter factory-data
// containers.
package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"github.com/roach88/factorydata/internal/cli"
	"github.com/roach88/factorydata/internal/logging"
)

func main() {
	logging.ConfigureRuntime()

	if err := cli.NewRootCommand().Execute(); err != nil {
		code := cli.GetExitCode(err)
		log.Error().Err(err).Int("exit_code", code).Msg("factorydata failed")
		os.Exit(code)
	}
}
