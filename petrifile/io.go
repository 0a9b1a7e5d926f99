package petrifile

import (
	"context"
	"io"
)

// Service reads and writes one version of the petrifile format.
type Service interface {
	Load(ctx context.Context, r io.Reader) (*Definition, error)
	Save(ctx context.Context, w io.Writer, d *Definition) error
	Version() Version
	// FileVersion reports the version declared by the file at path, or
	// Unknown when the file is not in this service's format.
	FileVersion(path string) (Version, error)
}

type Version string

const (
	Unknown Version = ""
	V1      Version = "v1"
)
