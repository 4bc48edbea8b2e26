// Package uploads stores user-provided audio files on disk and exposes them
// under the /audio/ URL prefix.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// URLPrefix is the public path uploaded files are served under.
const URLPrefix = "/audio/"

// Saved describes a stored upload.
type Saved struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Store keeps uploaded audio files in a single flat directory.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory uploads are stored in.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the reader's contents under a sanitized version of filename and
// returns the stored entry. Name collisions get a numeric suffix rather than
// overwriting the existing file.
func (s *Store) Save(filename string, r io.Reader) (Saved, error) {
	name := sanitizeFilename(filename)
	if name == "" {
		return Saved{}, fmt.Errorf("invalid filename %q", filename)
	}
	if !isAudioFile(name) {
		return Saved{}, fmt.Errorf("unsupported file type %q", path.Ext(name))
	}

	name = s.uniqueName(name)
	dst := filepath.Join(s.dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return Saved{}, fmt.Errorf("create upload file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return Saved{}, fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return Saved{}, fmt.Errorf("close upload: %w", err)
	}

	log.Info().Str("file", name).Msg("Stored uploaded audio file")
	return Saved{Name: name, URL: URLPrefix + name}, nil
}

// List returns all stored audio files sorted by name.
func (s *Store) List() ([]Saved, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	var files []Saved
	for _, e := range entries {
		if e.IsDir() || !isAudioFile(e.Name()) {
			continue
		}
		files = append(files, Saved{Name: e.Name(), URL: URLPrefix + e.Name()})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Open opens a stored file by name for download. Path traversal outside the
// upload directory is rejected.
func (s *Store) Open(name string) (*os.File, error) {
	clean := filepath.Base(name)
	if clean != name || clean == "." || clean == ".." {
		return nil, fmt.Errorf("invalid file name %q", name)
	}
	return os.Open(filepath.Join(s.dir, clean))
}

// uniqueName appends " (n)" before the extension until the name is free.
func (s *Store) uniqueName(name string) string {
	if _, err := os.Stat(filepath.Join(s.dir, name)); os.IsNotExist(err) {
		return name
	}

	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Stat(filepath.Join(s.dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
	}
}

// sanitizeFilename strips any path components and characters that are not
// safe in a flat file store.
func sanitizeFilename(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_', r == ' ', r == '(', r == ')':
			return r
		default:
			return '_'
		}
	}, name)

	if name == "." || name == ".." || strings.TrimLeft(name, "._ ") == "" {
		return ""
	}
	return name
}

func isAudioFile(filePath string) bool {
	ext := strings.ToLower(path.Ext(filePath))
	audioExtensions := map[string]bool{
		".flac": true, ".mp3": true, ".wav": true, ".aiff": true,
		".aif": true, ".ogg": true, ".m4a": true, ".aac": true,
		".wma": true, ".opus": true, ".alac": true,
	}
	return audioExtensions[ext]
}
