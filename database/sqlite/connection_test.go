package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vireo-db/vireo/types"
)

func TestFilePath(t *testing.T) {
	tests := []struct {
		url  string
		path string
	}{
		{"sqlite://./app.db", "./app.db"},
		{"sqlite:///var/lib/app.db", "/var/lib/app.db"},
		{"sqlite::memory:", ":memory:"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			path, err := filePath(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.path, path)
		})
	}
}

func TestFilePathEmpty(t *testing.T) {
	_, err := filePath("sqlite://")
	assert.ErrorIs(t, err, types.ErrURLParse)
}
