// Package seed loads metadata records and cached content from a YAML seed
// file into the configured stores.
//
// A seed file describes one account:
//
//	account: alice@cloud.example.com
//	entries:
//	  - file_id: F-PHOTOS
//	    directory_id: D-HOME
//	    server_url: /remote.php/webdav
//	    name: Photos
//	    directory: true
//	    folder_id: D-PHOTOS
//	  - directory_id: D-PHOTOS
//	    server_url: /remote.php/webdav/Photos
//	    name: beach.jpg
//	    etag: 5f2a
//	    content: "..."
//
// Entries without file_id get a random UUID. Folders with folder_id also
// produce a folder table row pointing back to the folder's record.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marmos91/dittoprovider/internal/logger"
	"github.com/marmos91/dittoprovider/pkg/content"
	"github.com/marmos91/dittoprovider/pkg/metadata"
	"gopkg.in/yaml.v3"
)

// File is the top-level document of a seed file.
type File struct {
	Account string  `yaml:"account"`
	Entries []Entry `yaml:"entries"`
}

// Entry describes one remote file or folder.
type Entry struct {
	FileID      string    `yaml:"file_id"`
	DirectoryID string    `yaml:"directory_id"`
	ServerURL   string    `yaml:"server_url"`
	Name        string    `yaml:"name"`
	Etag        string    `yaml:"etag"`
	Date        time.Time `yaml:"date"`
	Size        int64     `yaml:"size"`
	Directory   bool      `yaml:"directory"`

	// FolderID is the folder's own directory identifier. Only meaningful
	// for directories.
	FolderID string `yaml:"folder_id"`

	// FolderURL is the remote path of the folder itself. Defaults to
	// ServerURL joined with Name.
	FolderURL string `yaml:"folder_url"`

	// Tag is stored verbatim as the item's tag data.
	Tag string `yaml:"tag"`

	// Content is written to the content cache. When Size is zero it also
	// sets the record size.
	Content *string `yaml:"content"`
}

// Result counts what Apply wrote.
type Result struct {
	Records      int
	Directories  int
	Tags         int
	ContentFiles int
	ContentBytes int64
}

// Load reads and parses a seed file.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes a seed document and fills generated defaults.
func Parse(r io.Reader) (*File, error) {
	var doc File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	if doc.Account == "" {
		return nil, fmt.Errorf("seed file: account is required")
	}

	for i := range doc.Entries {
		e := &doc.Entries[i]
		if e.Name == "" {
			return nil, fmt.Errorf("seed entry %d: name is required", i)
		}
		if e.FileID == "" {
			e.FileID = uuid.NewString()
		}
		if e.Date.IsZero() {
			e.Date = time.Now().UTC()
		}
		if e.Content != nil && e.Size == 0 {
			e.Size = int64(len(*e.Content))
		}
		if e.Directory && e.FolderID != "" && e.FolderURL == "" {
			e.FolderURL = path.Join(e.ServerURL, e.Name)
		}
		if !e.Directory && e.FolderID != "" {
			return nil, fmt.Errorf("seed entry %q: folder_id is only valid for directories", e.Name)
		}
	}

	return &doc, nil
}

// Record returns the metadata record for e.
func (e *Entry) Record(account string) *metadata.Record {
	return &metadata.Record{
		Account:      account,
		FileID:       e.FileID,
		DirectoryID:  e.DirectoryID,
		ServerURL:    e.ServerURL,
		FileNameView: e.Name,
		Etag:         e.Etag,
		Date:         e.Date,
		Size:         e.Size,
		Directory:    e.Directory,
	}
}

// Apply writes every entry of doc. cache may be nil, in which case inline
// content is skipped.
//
// Writes are not transactional: on error the entries before the failing one
// remain stored.
func Apply(ctx context.Context, doc *File, store metadata.WritableStore, cache content.WritableCache) (Result, error) {
	var res Result

	for i := range doc.Entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		e := &doc.Entries[i]

		if err := store.PutRecord(ctx, e.Record(doc.Account)); err != nil {
			return res, fmt.Errorf("store record %q: %w", e.Name, err)
		}
		res.Records++

		if e.FolderID != "" {
			dir := &metadata.DirectoryRecord{
				Account:     doc.Account,
				DirectoryID: e.FolderID,
				FileID:      e.FileID,
				ServerURL:   e.FolderURL,
			}
			if err := store.PutDirectory(ctx, dir); err != nil {
				return res, fmt.Errorf("store folder %q: %w", e.Name, err)
			}
			res.Directories++
		}

		if e.Tag != "" {
			tag := &metadata.TagRecord{Account: doc.Account, FileID: e.FileID, TagData: []byte(e.Tag)}
			if err := store.PutTag(ctx, tag); err != nil {
				return res, fmt.Errorf("store tag %q: %w", e.Name, err)
			}
			res.Tags++
		}

		if e.Content == nil || e.Directory {
			continue
		}
		if cache == nil {
			logger.Warn("No content cache configured, skipping content of %s", e.Name)
			continue
		}
		n, err := cache.Put(ctx, e.FileID, e.Name, strings.NewReader(*e.Content))
		if err != nil {
			return res, fmt.Errorf("cache content %q: %w", e.Name, err)
		}
		res.ContentFiles++
		res.ContentBytes += n
	}

	logger.Info("Seeded %d record(s), %d folder(s), %d tag(s) for %s",
		res.Records, res.Directories, res.Tags, doc.Account)
	return res, nil
}
