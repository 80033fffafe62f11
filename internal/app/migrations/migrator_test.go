package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionOf(t *testing.T) {
	assert.Equal(t, "001", versionOf("001_init.sql"))
	assert.Equal(t, "002", versionOf("sub/002_add_indexes_v2.sql"))
	assert.Equal(t, "plain.sql", versionOf("plain.sql"))
}
