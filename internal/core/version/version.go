// Package version provides build information for paygate binaries
package version

import "runtime"

// BuildInfo holds version information about the service build
type BuildInfo struct {
	Service   string `json:"service"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
}

// Set via -ldflags "-X 'paygate/internal/core/version.version=v0.1.0'
// -X 'paygate/internal/core/version.commit=abcd' -X 'paygate/internal/core/version.date=2026-01-02'"
var (
	service = "paygate"
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Info returns the build information for the named binary
// an empty name reports the module default
func Info(name ...string) BuildInfo {
	svc := service
	if len(name) > 0 && name[0] != "" {
		svc = name[0]
	}
	return BuildInfo{
		Service:   svc,
		Version:   version,
		Commit:    commit,
		Date:      date,
		GoVersion: runtime.Version(),
	}
}

// UserAgent is sent on outbound calls to the ledger and webhooks
func UserAgent() string { return service + "/" + version }
