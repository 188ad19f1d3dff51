package utils

import (
	"log"

	"github.com/rollbar/rollbar-go"
)

var reportingEnabled bool

// InitErrorReporting enables Rollbar when a token is configured
func InitErrorReporting(token, env, codeVersion string) {
	if token == "" {
		rollbar.SetEnabled(false)
		return
	}
	rollbar.SetToken(token)
	rollbar.SetEnvironment(env)
	rollbar.SetCodeVersion(codeVersion)
	rollbar.SetServerRoot("eduhub")
	rollbar.SetEnabled(true)
	reportingEnabled = true
	log.Printf("Error reporting enabled (env=%s)", env)
}

// ReportError logs the error and forwards it to Rollbar when enabled
func ReportError(err error, extras map[string]interface{}) {
	if err == nil {
		return
	}
	log.Printf("[ERROR] %v %v", err, extras)
	if reportingEnabled {
		rollbar.Error(err, extras)
	}
}

// FlushErrorReporting waits for queued reports to be sent
func FlushErrorReporting() {
	if reportingEnabled {
		rollbar.Close()
	}
}
