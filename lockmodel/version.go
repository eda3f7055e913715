package lockmodel

import "github.com/kolkov/lockmodel/internal/program"

// Version information for lockmodel.
const (
	// Version is the current version of the lock model.
	Version = "0.1.0"

	// VersionMajor is the major version number.
	VersionMajor = 0

	// VersionMinor is the minor version number.
	VersionMinor = 1

	// VersionPatch is the patch version number.
	VersionPatch = 0
)

// Info provides information about the lock model build.
type Info struct {
	// Version is the module version string.
	Version string

	// Algorithm is the exploration algorithm used.
	Algorithm string

	// ScenarioFormat is the scenario file major version the parser reads.
	ScenarioFormat string
}

// GetInfo returns information about the lock model.
//
// Example:
//
//	info := lockmodel.GetInfo()
//	fmt.Printf("lockmodel %s (%s)\n", info.Version, info.Algorithm)
func GetInfo() Info {
	return Info{
		Version:        Version,
		Algorithm:      "stateless DFS over choice prefixes",
		ScenarioFormat: program.SupportedMajor,
	}
}
