package badger

// Key Schema
// ==========
//
// BadgerDB is a key-value store, so prefixed keys organize the three tables
// of the metadata repository:
//
//	r:<account>\x00<fileID>       → JSON metadata.Record
//	d:<account>\x00<directoryID>  → JSON metadata.DirectoryRecord
//	t:<account>\x00<fileID>       → JSON metadata.TagRecord
//
// The NUL separator cannot appear in an account or identifier coming from the
// server, so composite keys never collide.

const (
	prefixRecord    = "r:"
	prefixDirectory = "d:"
	prefixTag       = "t:"

	keySeparator = "\x00"
)

func keyRecord(account, fileID string) []byte {
	return []byte(prefixRecord + account + keySeparator + fileID)
}

func keyDirectory(account, directoryID string) []byte {
	return []byte(prefixDirectory + account + keySeparator + directoryID)
}

func keyTag(account, fileID string) []byte {
	return []byte(prefixTag + account + keySeparator + fileID)
}
