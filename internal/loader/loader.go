package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is read when no path is given.
	DefaultPath = ".env"
	// DefaultEncoding is used when no encoding is given.
	DefaultEncoding = "utf-8"
)

var (
	// ErrUnknownEncoding is returned for an encoding name that is not recognised.
	ErrUnknownEncoding = errors.New("unknown text encoding")
	// ErrUnsupportedValue is returned when a YAML value cannot be flattened to a string.
	ErrUnsupportedValue = errors.New("unsupported value")
)

// Loader reads flat key/value pairs from dotenv or YAML files.
type Loader struct {
	logger *zap.Logger
}

// New creates a Loader. A nil logger discards output.
func New(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// Load reads every path in order and merges their pairs; when a key appears in
// more than one file the first file wins. Files ending in .yaml or .yml are
// parsed as YAML, anything else as dotenv.
//
// Load keeps going after a failing file and returns the pairs it could read
// together with the combined error. A missing DefaultPath is not an error.
// Quiet silences the informational lines only.
func (l *Loader) Load(paths []string, encodingName string, quiet bool) (map[string]string, error) {
	explicit := len(paths) > 0
	if !explicit {
		paths = []string{DefaultPath}
	}

	enc, err := lookupEncoding(encodingName)
	if err != nil {
		return map[string]string{}, err
	}

	out := make(map[string]string)
	var errs error
	for _, path := range paths {
		pairs, err := readFile(path, enc)
		if err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				l.logger.Debug("no environment file found", zap.String("path", path))
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("load %s: %w", path, err))
			continue
		}

		added := 0
		for key, value := range pairs {
			if _, seen := out[key]; seen {
				continue
			}
			out[key] = value
			added++
		}

		if !quiet {
			l.logger.Info("loaded environment file",
				zap.String("path", path),
				zap.Int("keys", len(pairs)),
				zap.Int("applied", added),
			)
		}
	}

	return out, errs
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownEncoding, name)
	}
	if canonical, _ := htmlindex.Name(enc); canonical == DefaultEncoding {
		return nil, nil
	}
	return enc, nil
}

func readFile(path string, enc encoding.Encoding) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if enc != nil {
		r = enc.NewDecoder().Reader(f)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAML(r)
	default:
		pairs, err := godotenv.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("parse dotenv: %w", err)
		}
		return pairs, nil
	}
}

// parseYAML flattens a YAML mapping into KEY=value pairs. Nested mapping keys
// are joined with '_' and sequences are joined with ','. Null values are
// treated as absent.
func parseYAML(r io.Reader) (map[string]string, error) {
	var doc map[string]any
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	out := make(map[string]string, len(doc))
	if err := flatten("", doc, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) error {
	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		name := key
		if prefix != "" {
			name = prefix + "_" + key
		}

		switch v := node[key].(type) {
		case nil:
			continue
		case map[string]any:
			if err := flatten(name, v, out); err != nil {
				return err
			}
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				s, err := cast.ToStringE(item)
				if err != nil {
					return fmt.Errorf("%w at %s", ErrUnsupportedValue, name)
				}
				parts = append(parts, s)
			}
			out[name] = strings.Join(parts, ",")
		default:
			s, err := cast.ToStringE(v)
			if err != nil {
				return fmt.Errorf("%w at %s", ErrUnsupportedValue, name)
			}
			out[name] = s
		}
	}
	return nil
}
