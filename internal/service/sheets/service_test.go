package sheets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderIndex(t *testing.T) {
	idx := headerIndex([]interface{}{"user_id", "name", "role"})

	assert.Equal(t, 0, idx["user_id"])
	assert.Equal(t, 2, idx["role"])
	_, ok := idx["missing"]
	assert.False(t, ok)
}

func TestCellToleratesShortRows(t *testing.T) {
	row := []interface{}{"a", 42}

	assert.Equal(t, "a", cell(row, 0))
	assert.Equal(t, "42", cell(row, 1))
	assert.Equal(t, "", cell(row, 5))
	assert.Equal(t, "", cell(row, -1))
}

func TestIsTrue(t *testing.T) {
	assert.True(t, isTrue("TRUE"))
	assert.True(t, isTrue("True"))
	assert.True(t, isTrue("true"))
	assert.False(t, isTrue("FALSE"))
	assert.False(t, isTrue(""))
	assert.False(t, isTrue("1"))
}
