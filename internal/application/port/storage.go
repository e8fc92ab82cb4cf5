package port

// FileStore persists uploaded receipt files. Paths are relative to the
// store's base directory; implementations must refuse traversal outside it.
type FileStore interface {
	// Save writes content under relPath, creating parent directories.
	// Returns the absolute path of the stored file.
	Save(relPath string, content []byte) (string, error)

	// Read returns the content stored under relPath.
	Read(relPath string) ([]byte, error)

	// Exists reports whether relPath holds a stored file.
	Exists(relPath string) bool
}
