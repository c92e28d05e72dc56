package main

import (
	log "github.com/sirupsen/logrus"

	"gitlab.com/fleetops/whitelistd/internal/errortracking"
)

func capturingFatal(err error, fields ...errortracking.CaptureOption) {
	errortracking.CaptureErrWithStackTrace(err, fields...)
	fatal(err, "capturing fatal")
}

func fatal(err error, message string) {
	log.WithError(err).Fatal(message)
}
