package loudness

// Library version.
const (
	VersionMajor = 1
	VersionMinor = 0
	VersionPatch = 0
)

// Version returns the library version.
func Version() (major, minor, patch int) {
	return VersionMajor, VersionMinor, VersionPatch
}
