package loader

import (
	"io"
)

// loaderBackend defines the generic interface for decoding scene documents from streams.
// Concrete implementations (e.g., tomlLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Decode reads a scene document from the given stream.
	// Fields the stream leaves out keep their default values.
	//
	// Parameters:
	//   - r: the reader providing the document
	//
	// Returns:
	//   - *SceneDocument: the decoded document
	//   - error: error if the stream is malformed or names an unknown field
	Decode(r io.Reader) (*SceneDocument, error)
}
