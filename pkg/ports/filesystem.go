package ports

// FileSystem is the file access used for output files, summaries, debug
// dumps and verification input.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces path with data, creating missing parent
	// directories. Readers never see a partially written file.
	WriteFile(path string, data []byte) error

	MkdirAll(path string) error
	Exists(path string) (bool, error)
}
