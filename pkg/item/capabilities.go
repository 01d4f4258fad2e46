package item

import (
	"fmt"
	"strings"
)

// Capabilities is the set of operations the host may perform on an item.
type Capabilities uint32

const (
	AllowsReading Capabilities = 1 << iota
	AllowsWriting
	AllowsReparenting
	AllowsRenaming
	AllowsTrashing
	AllowsDeleting
	AllowsAddingSubItems
	AllowsContentEnumerating
)

const (
	directoryCapabilities = AllowsAddingSubItems | AllowsContentEnumerating | AllowsReading | AllowsDeleting | AllowsRenaming
	fileCapabilities      = AllowsWriting | AllowsReading | AllowsDeleting | AllowsRenaming | AllowsReparenting
)

var capabilityNames = []struct {
	flag Capabilities
	name string
}{
	{AllowsReading, "reading"},
	{AllowsWriting, "writing"},
	{AllowsReparenting, "reparenting"},
	{AllowsRenaming, "renaming"},
	{AllowsTrashing, "trashing"},
	{AllowsDeleting, "deleting"},
	{AllowsAddingSubItems, "adding-sub-items"},
	{AllowsContentEnumerating, "content-enumerating"},
}

// CapabilitiesFor returns the fixed capability set for an item kind.
//
// Folders can be enumerated and receive children but are never written or
// moved; files are the opposite. Trashing is not offered for either.
func CapabilitiesFor(isDirectory bool) Capabilities {
	if isDirectory {
		return directoryCapabilities
	}
	return fileCapabilities
}

// Has reports whether every flag in other is set.
func (c Capabilities) Has(other Capabilities) bool {
	return c&other == other
}

// Names lists the set flags in declaration order.
func (c Capabilities) Names() []string {
	names := make([]string, 0, len(capabilityNames))
	for _, cn := range capabilityNames {
		if c.Has(cn.flag) {
			names = append(names, cn.name)
		}
	}
	return names
}

func (c Capabilities) String() string {
	if c == 0 {
		return "none"
	}
	return strings.Join(c.Names(), "|")
}

// MarshalText renders the set as its String form.
func (c Capabilities) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses the String form back into a set.
func (c *Capabilities) UnmarshalText(text []byte) error {
	parsed, err := ParseCapabilities(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCapabilities parses a "|"-separated list of capability names.
// "none" and the empty string yield an empty set.
func ParseCapabilities(s string) (Capabilities, error) {
	if s == "" || s == "none" {
		return 0, nil
	}

	var c Capabilities
	for _, part := range strings.Split(s, "|") {
		found := false
		for _, cn := range capabilityNames {
			if cn.name == part {
				c |= cn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown capability %q", part)
		}
	}
	return c, nil
}
