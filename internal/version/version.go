package version

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// TapVersion is the version reported by the injected module's
// GetShellTapVersion export. Bumped whenever the shared-memory
// contract changes.
const TapVersion = 1
