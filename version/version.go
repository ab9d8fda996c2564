package version

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit string

	// Version is the built software's version.
	Version = SpotxSemVer
)

func init() {
	if GitCommit != "" {
		Version += "-" + GitCommit
	}
}

const (
	// SpotxSemVer is the semantic version of spotx.
	// Must be a string because scripts read this file.
	SpotxSemVer = "0.1.0"
)

// StateVersion versions the storage layout of the exchange modules. Stores
// written by a different state version cannot be replayed on.
const StateVersion uint64 = 1
