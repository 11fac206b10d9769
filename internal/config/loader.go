package config

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSrc string

// Loader unifies the built-in schema with a list of CUE files. Files are read
// lazily, once.
type Loader struct {
	getRoot func() (cue.Value, error)
}

type source struct {
	name    string
	content []byte
}

func NewLoader(filePaths ...string) Loader {
	return newLoader(func() ([]source, error) {
		var sources []source
		for _, filePath := range filePaths {
			content, err := os.ReadFile(filePath)
			if err != nil {
				return nil, err
			}
			sources = append(sources, source{name: filePath, content: content})
		}
		return sources, nil
	})
}

// NewLoaderFromString is NewLoader for in-memory configuration.
func NewLoaderFromString(name, src string) Loader {
	return newLoader(func() ([]source, error) {
		return []source{{name: name, content: []byte(src)}}, nil
	})
}

func newLoader(read func() ([]source, error)) Loader {
	return Loader{
		getRoot: sync.OnceValues(func() (cue.Value, error) {
			ctx := cuecontext.New()

			schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
			if err := schema.Err(); err != nil {
				return cue.Value{}, err
			}
			root := schema.LookupPath(cue.ParsePath("#Options"))
			if err := root.Err(); err != nil {
				return cue.Value{}, err
			}

			sources, err := read()
			if err != nil {
				return cue.Value{}, err
			}
			for _, src := range sources {
				value := ctx.CompileBytes(src.content, cue.Filename(src.name))
				if err := value.Err(); err != nil {
					return cue.Value{}, err
				}
				root = root.Unify(value)
				if err := root.Err(); err != nil {
					return cue.Value{}, fmt.Errorf("%s: %w", src.name, err)
				}
			}

			if err := root.Validate(cue.Concrete(true)); err != nil {
				return cue.Value{}, err
			}
			return root, nil
		}),
	}
}

func (l Loader) Load() (Options, error) {
	var opts Options
	root, err := l.getRoot()
	if err != nil {
		return opts, fmt.Errorf("error loading configuration: %w", err)
	}
	if err := root.Decode(&opts); err != nil {
		return opts, fmt.Errorf("error decoding configuration: %w", err)
	}
	if err := opts.check(); err != nil {
		return opts, err
	}
	return opts, nil
}

// Lookup decodes the value at path into target.
func (l Loader) Lookup(path string, target any) error {
	root, err := l.getRoot()
	if err != nil {
		return err
	}
	value := root.LookupPath(cue.ParsePath(path))
	if err := value.Err(); err != nil {
		return err
	}
	return value.Decode(target)
}
