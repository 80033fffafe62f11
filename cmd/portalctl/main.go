// Command portalctl runs administrative tasks against the portal database.
package main

import (
	"os"

	"github.com/selvaalegre/portal/internal/pkg/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error().Err(err).Msg("portalctl failed")
		os.Exit(1)
	}
}
