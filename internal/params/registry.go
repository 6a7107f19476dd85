package params

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/calder-vision/spinbridge/internal/infrastructure/logging"
)

// Kind is the declared value type of a parameter.
type Kind int

// Parameter kinds. KindInvalid marks entries whose declared type was
// not recognized; they stay in the registry but fail at apply time.
const (
	KindInvalid Kind = iota
	KindFloat
	KindInt
	KindBool
	KindEnum
)

// String returns the file-format name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	default:
		return "invalid"
	}
}

// parseKind maps a declared type token to a Kind.
func parseKind(s string) Kind {
	switch s {
	case "float":
		return KindFloat
	case "int":
		return KindInt
	case "bool":
		return KindBool
	case "enum":
		return KindEnum
	default:
		return KindInvalid
	}
}

// Descriptor maps a logical parameter name to its device node.
type Descriptor struct {
	// Name is the logical name callers use, e.g. "exposure_time".
	Name string

	// Kind is the declared value type.
	Kind Kind

	// Node is the device node the value is written to, e.g.
	// "ExposureTime".
	Node string
}

// Registry holds the parameter definitions loaded from the parameter
// file, preserving file order.
//
// Thread Safety:
//   - Read-only after Load. Safe for concurrent use.
type Registry struct {
	order  []string
	byName map[string]Descriptor
}

// Load reads parameter definitions from path.
//
// Each definition is one line of three whitespace-separated tokens,
// individually quotable with double quotes:
//
//	logical_name  kind  device_node
//
// Lines whose first token starts with '#' are comments. Blank lines
// are ignored. Lines with a token count other than three are skipped
// with a warning. An unrecognized kind is kept as KindInvalid so the
// name still exists; applying it fails without touching the device.
//
// Parameters:
//   - path: Parameter file path
//   - log: Logger for skip warnings
//
// Returns:
//   - *Registry: Loaded definitions in file order
//   - error: If the file cannot be opened or read
func Load(path string, log *logging.Logger) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFileUnreadable, path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	reg := &Registry{
		byName: make(map[string]Descriptor),
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		tokens := splitQuoted(line)
		if len(tokens) == 0 {
			continue
		}
		if strings.HasPrefix(tokens[0], "#") {
			continue
		}
		if len(tokens) != 3 {
			log.Warn("skipping bad camera param line", "line", line)
			continue
		}

		name := tokens[0]
		desc := Descriptor{
			Name: name,
			Kind: parseKind(tokens[1]),
			Node: tokens[2],
		}
		if desc.Kind == KindInvalid {
			log.Warn("unknown parameter kind",
				"name", name,
				"kind", tokens[1])
		}

		if _, exists := reg.byName[name]; !exists {
			reg.order = append(reg.order, name)
		}
		reg.byName[name] = desc
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrFileUnreadable, path, err)
	}

	return reg, nil
}

// Names returns the parameter names in file order.
func (r *Registry) Names() []string {
	return r.order
}

// Lookup returns the descriptor for a logical name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Len returns the number of registered parameters.
func (r *Registry) Len() int {
	return len(r.order)
}

// splitQuoted splits a line into whitespace-separated tokens, where a
// token may be wrapped in double quotes to include spaces. Quotes are
// stripped from the token. An unterminated quote runs to end of line.
func splitQuoted(line string) []string {
	var tokens []string
	i := 0
	n := len(line)
	for i < n {
		// skip whitespace
		for i < n && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= n {
			break
		}

		var sb strings.Builder
		if line[i] == '"' {
			i++
			for i < n && line[i] != '"' {
				sb.WriteByte(line[i])
				i++
			}
			if i < n {
				i++ // closing quote
			}
		} else {
			for i < n && line[i] != ' ' && line[i] != '\t' {
				sb.WriteByte(line[i])
				i++
			}
		}
		tokens = append(tokens, sb.String())
	}
	return tokens
}
