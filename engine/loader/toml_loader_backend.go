package loader

import (
	"errors"
	"fmt"
	"io"

	"github.com/Carmen-Shannon/oxy-rt/engine/raytracer"
	"github.com/pelletier/go-toml/v2"
)

// tomlLoaderBackend decodes scene documents written in TOML.
type tomlLoaderBackend struct{}

var _ loaderBackend = &tomlLoaderBackend{}

func newTOMLLoaderBackend() *tomlLoaderBackend {
	return &tomlLoaderBackend{}
}

func (b *tomlLoaderBackend) Decode(r io.Reader) (*SceneDocument, error) {
	doc := &SceneDocument{
		Render: raytracer.DefaultRenderParams(0, 0),
	}

	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(doc); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("unknown fields in scene document:\n%s", strict.String())
		}
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("malformed scene document at line %d column %d: %w", row, col, err)
		}
		return nil, fmt.Errorf("failed to decode scene document: %w", err)
	}
	return doc, nil
}
