package metadata

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	err := NewNotFoundError("record", Key("alice", "F1"))
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", err)))
	assert.False(t, IsNotFound(errors.New("record not found")))
	assert.False(t, IsNotFound(NewIOError("disk", "")))
	assert.Equal(t, "record not found: alice/F1", err.Error())
}

func TestValidateDirectory(t *testing.T) {
	assert.True(t, IsInvalidArgument(ValidateDirectory(nil)))
	assert.True(t, IsInvalidArgument(ValidateDirectory(&DirectoryRecord{Account: "a", DirectoryID: "d"})))
	assert.NoError(t, ValidateDirectory(&DirectoryRecord{Account: "a", DirectoryID: "d", FileID: "f"}))
}

func TestTagClone(t *testing.T) {
	tag := &TagRecord{Account: "a", FileID: "f", TagData: []byte("red")}
	c := tag.Clone()
	c.TagData[0] = 'b'
	assert.Equal(t, "red", string(tag.TagData))
}
