package version

// Version is the current version of the argo-montecarlo tool.
// This value is set at build time using ldflags:
// -ldflags "-X github.com/rxtech-lab/argo-montecarlo/internal/version.Version=1.2.3"
var Version = "v0.1.0"

// GetVersion returns the current version of the tool.
func GetVersion() string {
	return Version
}
