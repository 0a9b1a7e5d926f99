package yaml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	pf "github.com/jt05610/cpn/petrifile"
	"github.com/jt05610/cpn/petrifile/v1"
	"gopkg.in/yaml.v3"
)

var _ pf.Service = (*Service)(nil)

var ErrWrongVersion = errors.New("wrong petrifile version")

type Service struct {
}

func (s *Service) Load(_ context.Context, r io.Reader) (*pf.Definition, error) {
	var f petrifile.Petrifile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, err
	}
	if f.Petri != pf.V1 && f.Petri != pf.Unknown {
		return nil, fmt.Errorf("%w: %s", ErrWrongVersion, f.Petri)
	}
	return f.Definition()
}

func (s *Service) Save(_ context.Context, w io.Writer, d *pf.Definition) error {
	f, err := petrifile.FromDefinition(d)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return err
	}
	return enc.Close()
}

func (s *Service) Version() pf.Version {
	return pf.V1
}

// FileVersion reads only the petri key of the file. Files without one are
// taken to be v1.
func (s *Service) FileVersion(path string) (pf.Version, error) {
	f, err := os.Open(path)
	if err != nil {
		return pf.Unknown, err
	}
	defer func() {
		_ = f.Close()
	}()
	var header struct {
		Petri pf.Version `yaml:"petri"`
	}
	if err := yaml.NewDecoder(f).Decode(&header); err != nil {
		return pf.Unknown, err
	}
	if header.Petri == pf.Unknown {
		return pf.V1, nil
	}
	return header.Petri, nil
}
