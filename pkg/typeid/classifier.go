// Package typeid derives uniform type identifiers for items.
//
// The default classifier looks at the filename extension first and only
// falls back to sniffing cached bytes when the extension is unknown or
// missing. Classification never fails: an unclassifiable item simply has no
// type and the host shows a generic icon.
package typeid

import (
	"context"
	"errors"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/pkg/content"
	"github.com/marmos91/dittoprovider/pkg/metadata"
)

// Classifier maps an item to its type identifier.
//
// The boolean result is false when no type could be derived; callers then
// leave the type empty.
type Classifier interface {
	Classify(ctx context.Context, filename string, rec *metadata.Record) (string, bool)
}

// ClassifierFunc adapts a function to the Classifier interface.
type ClassifierFunc func(ctx context.Context, filename string, rec *metadata.Record) (string, bool)

func (f ClassifierFunc) Classify(ctx context.Context, filename string, rec *metadata.Record) (string, bool) {
	return f(ctx, filename, rec)
}

// Table is the default Classifier backed by the built-in extension and MIME
// tables.
type Table struct {
	opener content.Opener
}

// Option configures a Table.
type Option func(*Table)

// WithSniffing enables content sniffing through opener for files whose
// extension is not in the table. Only cached content is sniffed; nothing is
// downloaded to classify a file.
func WithSniffing(opener content.Opener) Option {
	return func(t *Table) {
		t.opener = opener
	}
}

// NewTable returns a table classifier.
func NewTable(opts ...Option) *Table {
	t := &Table{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Classify implements Classifier.
func (t *Table) Classify(ctx context.Context, filename string, rec *metadata.Record) (string, bool) {
	if rec != nil && rec.Directory {
		return Folder, true
	}

	if uti, ok := ForExtension(filename); ok {
		return uti, true
	}

	if t.opener == nil || rec == nil {
		return "", false
	}
	return t.sniff(ctx, rec.FileID, filename)
}

// ForExtension looks up the UTI for the extension of filename.
func ForExtension(filename string) (string, bool) {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		return "", false
	}
	uti, ok := extensions[strings.ToLower(ext)]
	return uti, ok
}

// ForMIME looks up the UTI for a MIME type, ignoring parameters.
func ForMIME(mime string) (string, bool) {
	mime, _, _ = strings.Cut(mime, ";")
	uti, ok := mimeTypes[strings.TrimSpace(strings.ToLower(mime))]
	return uti, ok
}

func (t *Table) sniff(ctx context.Context, fileID, filename string) (string, bool) {
	r, err := t.opener.Open(ctx, fileID, filename)
	if err != nil {
		if !errors.Is(err, content.ErrContentNotFound) {
			logger.Debug("typeid: cannot open %s/%s for sniffing: %v", fileID, filename, err)
		}
		return "", false
	}
	defer r.Close()

	detected, err := mimetype.DetectReader(r)
	if err != nil {
		logger.Debug("typeid: sniffing %s/%s failed: %v", fileID, filename, err)
		return "", false
	}

	for m := detected; m != nil; m = m.Parent() {
		if uti, ok := ForMIME(m.String()); ok {
			return uti, true
		}
	}
	return "", false
}
