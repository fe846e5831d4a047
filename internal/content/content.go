// Package content indexes the documentation corpus that sidebars refer to.
//
// Document ids follow the docs-site rule: the path relative to the docs
// directory without extension, where a frontmatter id replaces the file
// name but keeps the directory.
package content

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/inful/mdfp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sidebargen/internal/frontmatter"
	"git.home.luguber.info/inful/sidebargen/internal/logfields"
	"git.home.luguber.info/inful/sidebargen/internal/markdown"
)

// DefaultExtensions are the file extensions treated as documents.
var DefaultExtensions = []string{".md", ".mdx"}

// Document is one indexed content file.
type Document struct {
	ID          string
	Path        string // slash-separated, relative to the docs directory
	Dir         string // slash-separated directory of Path, "" at the root
	Label       string
	Position    *float64
	Fingerprint string
}

// Conflict records a document id claimed by more than one file.
type Conflict struct {
	ID    string
	Paths []string
}

// Index is an immutable view of the discovered documents.
type Index struct {
	root      string
	docs      map[string]*Document
	order     []string
	conflicts []Conflict
}

type options struct {
	extensions []string
	logger     *slog.Logger
}

// Option configures Discover.
type Option func(*options)

// WithExtensions overrides DefaultExtensions.
func WithExtensions(exts ...string) Option {
	return func(o *options) {
		if len(exts) > 0 {
			o.extensions = exts
		}
	}
}

// WithLogger sets the logger used for discovery warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Discover walks root and indexes every document. Hidden files and
// directories are skipped. When two files resolve to the same id the first
// in walk order wins and the clash is recorded as a Conflict.
func Discover(ctx context.Context, root string, opts ...Option) (*Index, error) {
	o := options{extensions: DefaultExtensions, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	ix := &Index{root: root, docs: make(map[string]*Document)}
	conflicts := make(map[string]int)

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		name := d.Name()
		if p != root && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !hasExtension(name, o.extensions) {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		doc, err := readDocument(p, filepath.ToSlash(rel))
		if err != nil {
			return err
		}

		if first, dup := ix.docs[doc.ID]; dup {
			i, ok := conflicts[doc.ID]
			if !ok {
				i = len(ix.conflicts)
				conflicts[doc.ID] = i
				ix.conflicts = append(ix.conflicts, Conflict{ID: doc.ID, Paths: []string{first.Path}})
			}
			ix.conflicts[i].Paths = append(ix.conflicts[i].Paths, doc.Path)
			o.logger.Warn("Duplicate content id", logfields.DocID(doc.ID), logfields.Path(doc.Path), slog.String("first", first.Path))
			return nil
		}
		ix.docs[doc.ID] = doc
		ix.order = append(ix.order, doc.ID)
		o.logger.Debug("Indexed document", logfields.DocID(doc.ID), logfields.Path(doc.Path))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", root, err)
	}
	return ix, nil
}

func readDocument(abs, rel string) (*Document, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}

	dir := path.Dir(rel)
	if dir == "." {
		dir = ""
	}
	base := strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	if meta.ID != "" {
		base = meta.ID
	}
	id := base
	if dir != "" {
		id = dir + "/" + base
	}

	fp, err := frontmatter.Fingerprint(meta, body)
	if err != nil {
		return nil, fmt.Errorf("%s: fingerprint: %w", rel, err)
	}

	return &Document{
		ID:          id,
		Path:        rel,
		Dir:         dir,
		Label:       label(meta, body, base),
		Position:    meta.SidebarPosition,
		Fingerprint: fp,
	}, nil
}

func label(meta frontmatter.Meta, body []byte, base string) string {
	switch {
	case meta.SidebarLabel != "":
		return meta.SidebarLabel
	case meta.Title != "":
		return meta.Title
	}
	if h := markdown.FirstHeading(body); h != "" {
		return h
	}
	return humanize(base)
}

func humanize(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '-' || r == '_' || r == ' ' || r == '.'
	})
	// Casers keep state and cannot be shared between goroutines.
	caser := cases.Title(language.English, cases.NoLower)
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

func hasExtension(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(exts, ext)
}

// Exists reports whether a document with id is indexed.
func (ix *Index) Exists(id string) bool {
	_, ok := ix.docs[id]
	return ok
}

// Get returns the document with id.
func (ix *Index) Get(id string) (Document, bool) {
	d, ok := ix.docs[id]
	if !ok {
		return Document{}, false
	}
	return *d, true
}

// Title returns the sidebar label of a document.
func (ix *Index) Title(id string) (string, bool) {
	d, ok := ix.docs[id]
	if !ok {
		return "", false
	}
	return d.Label, true
}

// Len is the number of indexed documents.
func (ix *Index) Len() int { return len(ix.order) }

// Root is the indexed directory.
func (ix *Index) Root() string { return ix.root }

// Documents returns every document in walk order.
func (ix *Index) Documents() []Document {
	out := make([]Document, 0, len(ix.order))
	for _, id := range ix.order {
		out = append(out, *ix.docs[id])
	}
	return out
}

// Conflicts lists ids claimed by several files.
func (ix *Index) Conflicts() []Conflict {
	return slices.Clone(ix.conflicts)
}

// Digest fingerprints the whole corpus. It changes whenever a document is
// added, removed, renamed or edited.
func (ix *Index) Digest() string {
	ids := slices.Clone(ix.order)
	slices.Sort(ids)
	var b strings.Builder
	for _, id := range ids {
		d := ix.docs[id]
		fmt.Fprintf(&b, "%s\t%s\t%s\n", d.ID, d.Path, d.Fingerprint)
	}
	return mdfp.CalculateFingerprintFromParts("", b.String())
}

func comparePosition(a, b *float64) int {
	switch {
	case a != nil && b != nil:
		return cmp.Compare(*a, *b)
	case a != nil:
		return -1
	case b != nil:
		return 1
	default:
		return 0
	}
}
