// Package icons maps catalog names to image assets
package icons

import (
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/meur/dtwiki/internal/errors"
)

// Kind is an asset family
type Kind string

const (
	KindCharacter Kind = "characters"
	KindClass     Kind = "classes"
	KindFaction   Kind = "factions"
	KindWyrmspell Kind = "wyrmspells"
)

func (k Kind) valid() bool {
	switch k {
	case KindCharacter, KindClass, KindFaction, KindWyrmspell:
		return true
	}
	return false
}

var imageExt = map[string]bool{".png": true, ".webp": true, ".jpg": true, ".jpeg": true, ".svg": true}

var slugRegex = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slugify turns a display name into an asset key
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = slugRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Reference points at one asset
type Reference struct {
	Kind Kind   `json:"kind"`
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// Resolver looks up the asset for a name
type Resolver interface {
	Lookup(kind Kind, name string) (Reference, bool)
}

// Manifest is a Resolver over a fixed list of asset paths. It is built once
// and only read afterwards.
type Manifest struct {
	baseURL string
	refs    map[Kind]map[string]Reference
}

var _ Resolver = (*Manifest)(nil)

// NewManifest indexes paths such as "characters/thane.png". Paths outside
// a known kind directory or without an image extension are skipped; the
// first path for a slug wins.
func NewManifest(baseURL string, paths []string) *Manifest {
	m := &Manifest{
		baseURL: strings.TrimRight(baseURL, "/"),
		refs:    make(map[Kind]map[string]Reference),
	}
	for _, p := range paths {
		p = strings.TrimPrefix(filepath.ToSlash(p), "/")
		dir, file := path.Split(p)
		kind := Kind(path.Base(strings.TrimSuffix(dir, "/")))
		ext := strings.ToLower(path.Ext(file))
		if !kind.valid() || !imageExt[ext] {
			continue
		}
		slug := Slugify(strings.TrimSuffix(file, path.Ext(file)))
		if slug == "" {
			continue
		}
		if m.refs[kind] == nil {
			m.refs[kind] = make(map[string]Reference)
		}
		if _, dup := m.refs[kind][slug]; dup {
			continue
		}
		m.refs[kind][slug] = Reference{Kind: kind, Slug: slug, URL: m.baseURL + "/" + p}
	}
	return m
}

// Lookup returns the asset for name, matched by slug
func (m *Manifest) Lookup(kind Kind, name string) (Reference, bool) {
	ref, ok := m.refs[kind][Slugify(name)]
	return ref, ok
}

// Len returns the number of indexed assets
func (m *Manifest) Len() int {
	n := 0
	for _, refs := range m.refs {
		n += len(refs)
	}
	return n
}

// LoadManifest builds a manifest from a JSON array of asset paths, or from
// the files under a directory.
func LoadManifest(src, baseURL string) (*Manifest, error) {
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFoundf("asset manifest %s not found", src)
		}
		return nil, errors.Wrapf(err, "failed to stat %s", src)
	}

	var paths []string
	if info.IsDir() {
		err = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return err
			}
			rel, err := filepath.Rel(src, p)
			if err != nil {
				return err
			}
			paths = append(paths, rel)
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to walk %s", src)
		}
		return NewManifest(baseURL, paths), nil
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", src)
	}
	if err := json.Unmarshal(data, &paths); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "asset manifest must be a JSON array of paths")
	}
	return NewManifest(baseURL, paths), nil
}
