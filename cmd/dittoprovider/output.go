package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/marmos91/dittoprovider/pkg/item"
	"gopkg.in/yaml.v3"
)

// printDescriptor writes one descriptor in the requested format.
func printDescriptor(format string, d *item.Descriptor) error {
	return printValue(format, d, func() { printDescriptorTable(d) })
}

// printDescriptors writes a list of descriptors. Structured formats always
// produce a list, even with a single element.
func printDescriptors(format string, items []*item.Descriptor) error {
	return printValue(format, items, func() {
		for i, d := range items {
			if i > 0 {
				fmt.Println()
			}
			printDescriptorTable(d)
		}
	})
}

func printValue(format string, v any, table func()) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		table()
		return nil
	default:
		return fmt.Errorf("unknown output format %q (supported: table, json, yaml)", format)
	}
}

func printDescriptorTable(d *item.Descriptor) {
	kind := "file"
	if d.IsDirectory {
		kind = "folder"
	}

	fmt.Printf("%s (%s)\n", d.Filename, kind)
	fmt.Printf("  Identifier:   %s\n", orNone(d.ItemIdentifier.String()))
	fmt.Printf("  Parent:       %s\n", orNone(d.ParentItemIdentifier.String()))
	fmt.Printf("  Type:         %s\n", orNone(d.TypeIdentifier))
	fmt.Printf("  Size:         %s\n", humanize.Bytes(uint64(max(d.DocumentSize, 0))))
	fmt.Printf("  Modified:     %s\n", humanize.Time(d.ContentModificationDate))
	fmt.Printf("  Version:      %s\n", orNone(d.VersionString()))
	fmt.Printf("  Capabilities: %s\n", d.Capabilities)
	fmt.Printf("  Downloaded:   %t (most recent: %t)\n", d.IsDownloaded, d.IsMostRecentVersionDownloaded)
	fmt.Printf("  Uploaded:     %t\n", d.IsUploaded)
	if d.UploadingError != "" {
		fmt.Printf("  Upload error: %s\n", d.UploadingError)
	}
	if len(d.TagData) > 0 {
		fmt.Printf("  Tag:          %s\n", humanize.Bytes(uint64(len(d.TagData))))
	}
	if d.FavoriteRank != nil {
		fmt.Printf("  Favorite:     %d\n", *d.FavoriteRank)
	}
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
