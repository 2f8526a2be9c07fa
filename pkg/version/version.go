// Package version provides version information for the best-prices application.
package version

// Version is the current version of the best-prices application.
const Version = "0.1.0"

// AgentString returns the full agent string with versioning.
// Format: @tc/best-prices@v{version}
func AgentString() string {
	return "@tc/best-prices@v" + Version
}
