package shader

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
)

// VertexStageName is the entry name reserved for the shared vertex stage.
const VertexStageName = "vs"

// sourceExt is the file extension of shader library files.
const sourceExt = ".wgsl"

//go:embed assets/shaders/*.wgsl
var embeddedShaders embed.FS

// Entry is a named WGSL source. The entry named VertexStageName is the shared vertex
// stage, every other entry is a selectable fragment stage.
type Entry struct {
	Name   string
	Source string
}

// LoadFS reads every *.wgsl file directly under dir in fsys, keyed by file stem and sorted by name.
//
// Parameters:
//   - fsys: the filesystem to read from
//   - dir: the directory inside fsys
//
// Returns:
//   - []Entry: the loaded entries
//   - error: an error if the directory or a file cannot be read
func LoadFS(fsys fs.FS, dir string) ([]Entry, error) {
	dirEntries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("shader: read library %q: %w", dir, err)
	}

	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() || path.Ext(de.Name()) != sourceExt {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, de.Name()))
		if err != nil {
			return nil, fmt.Errorf("shader: read %q: %w", de.Name(), err)
		}
		entries = append(entries, Entry{
			Name:   strings.TrimSuffix(de.Name(), sourceExt),
			Source: string(data),
		})
	}
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return entries, nil
}

// LoadDir reads every *.wgsl file in a directory on disk.
//
// Parameters:
//   - dir: the directory path
//
// Returns:
//   - []Entry: the loaded entries
//   - error: an error if the directory or a file cannot be read
func LoadDir(dir string) ([]Entry, error) {
	return LoadFS(os.DirFS(dir), ".")
}

// Embedded returns the built-in shader library: the shared vertex stage plus the default, fire, ice and plasma backgrounds.
func Embedded() ([]Entry, error) {
	return LoadFS(embeddedShaders, "assets/shaders")
}
