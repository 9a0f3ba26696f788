package interfaces

// ArtifactStore persists diagnostic artifacts produced during a run
type ArtifactStore interface {
	// Save writes data under name and returns the stored path
	Save(name string, data []byte) (string, error)

	// Dir returns the directory artifacts are written to
	Dir() string
}
