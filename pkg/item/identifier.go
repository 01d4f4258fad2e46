package item

import "strings"

// Identifier is the host-facing persistent identifier of an item. For every
// item except the root it equals the record's FileID.
type Identifier string

// RootContainer is the well-known identifier of the top-level container.
// Items whose parent cannot be resolved are attached here.
const RootContainer Identifier = "NSFileProviderRootContainerItemIdentifier"

// IsRoot reports whether id is the root container.
func (id Identifier) IsRoot() bool {
	return id == RootContainer
}

func (id Identifier) String() string {
	return string(id)
}

// sameServerURL compares remote folder paths ignoring trailing slashes.
func sameServerURL(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}
