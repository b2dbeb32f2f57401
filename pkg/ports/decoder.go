package ports

// DecoderContext is one live decoder instance inside the engine.
// Implementations are not safe for concurrent use.
type DecoderContext interface {
	// Decode submits one compressed chunk. A nil or empty chunk asks the
	// engine to release any frame it is holding back.
	Decode(data []byte) error

	// NextImage returns the next decoded image after cursor and advances it.
	// The image is owned by the engine and valid until the next Decode or Destroy.
	NextImage(cursor *Cursor) (ImageHandle, bool)

	// Destroy releases the context. It must be called exactly once.
	Destroy() error
}
