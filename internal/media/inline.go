// Package media embeds the images referenced from note fields so the
// worksheet can be viewed without the Anki media folder.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/conorfennell/kanjisheet/internal/domain"
)

// Policy decides what happens when a referenced file is missing.
type Policy string

const (
	// PolicyAbort fails the run with domain.ErrMissingMedia.
	PolicyAbort Policy = "abort"
	// PolicySkip keeps the original reference and carries on.
	PolicySkip Policy = "skip"
)

// Inliner rewrites <img> references in one field of each note into data URIs.
type Inliner struct {
	dirs   []string
	field  string
	policy Policy
	log    *slog.Logger
}

// NewInliner returns an Inliner for the stroke diagram field that looks up
// files in dirs, in order.
func NewInliner(dirs []string, policy Policy, log *slog.Logger) *Inliner {
	if log == nil {
		log = slog.Default()
	}
	if policy == "" {
		policy = PolicyAbort
	}
	return &Inliner{
		dirs:   dirs,
		field:  domain.StrokeDiagramField,
		policy: policy,
		log:    log,
	}
}

// InlineAll inlines every note in place.
func (in *Inliner) InlineAll(notes []domain.FieldMap) error {
	for i := range notes {
		if err := in.Inline(&notes[i]); err != nil {
			return err
		}
	}
	return nil
}

// Inline replaces the image references in the note's stroke diagram field.
// Images that are already data URIs are left alone, so inlining twice
// yields the same field.
func (in *Inliner) Inline(note *domain.FieldMap) error {
	value, ok := note.Lookup(in.field)
	if !ok {
		return fmt.Errorf("%w: note %d has no %q field", domain.ErrSchemaMismatch, note.NoteID, in.field)
	}
	if strings.TrimSpace(value) == "" {
		in.log.Debug("No stroke diagram", "note_id", note.NoteID)
		return nil
	}

	nodes, err := html.ParseFragment(strings.NewReader(value), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return fmt.Errorf("failed to parse %s of note %d: %w", in.field, note.NoteID, err)
	}

	var images []*html.Node
	for _, n := range nodes {
		images = appendImages(images, n)
	}
	if len(images) == 0 {
		in.log.Warn("Stroke diagram has no image", "note_id", note.NoteID)
		return nil
	}

	changed := false
	for _, img := range images {
		src := attr(img, "src")
		if src == nil || src.Val == "" || isDataURI(src.Val) {
			continue
		}

		data, err := in.read(src.Val)
		if err != nil {
			if errors.Is(err, domain.ErrMissingMedia) && in.policy == PolicySkip {
				in.log.Warn("Media file not found, keeping reference", "note_id", note.NoteID, "file", src.Val)
				continue
			}
			return fmt.Errorf("note %d: %w", note.NoteID, err)
		}

		in.log.Debug("Inlined image", "note_id", note.NoteID, "file", src.Val, "bytes", len(data))
		src.Val = DataURI(data)
		changed = true
	}
	if !changed {
		return nil
	}

	var b strings.Builder
	for _, n := range nodes {
		if err := html.Render(&b, n); err != nil {
			return fmt.Errorf("failed to render %s of note %d: %w", in.field, note.NoteID, err)
		}
	}
	note.Set(in.field, b.String())
	return nil
}

// read loads a media file by name from the first directory that has it.
// Names are confined to their directory; Anki may store them URL-escaped.
func (in *Inliner) read(src string) ([]byte, error) {
	names := []string{src}
	if unescaped, err := url.PathUnescape(src); err == nil && unescaped != src {
		names = append(names, unescaped)
	}

	for _, dir := range in.dirs {
		for _, name := range names {
			path, err := securejoin.SecureJoin(dir, name)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve %s in %s: %w", name, dir, err)
			}
			data, err := os.ReadFile(path)
			if err == nil {
				return data, nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrMissingMedia, src)
}

// DataURI encodes data as a base64 data URI typed by its content.
func DataURI(data []byte) string {
	mime, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return "data:" + strings.TrimSpace(mime) + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func isDataURI(src string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(src)), "data:")
}

func appendImages(images []*html.Node, n *html.Node) []*html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Img {
		images = append(images, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		images = appendImages(images, c)
	}
	return images
}

func attr(n *html.Node, key string) *html.Attribute {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			return &n.Attr[i]
		}
	}
	return nil
}
