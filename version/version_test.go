package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pitabwire/lingua/version"
)

func TestString(t *testing.T) {
	version.Version = "v1.4.0"
	version.Commit = "abc123"
	version.Date = "2026-10-01"
	t.Cleanup(func() {
		version.Version, version.Commit, version.Date = "", "", ""
	})

	assert.Equal(t, "v1.4.0", version.Current())
	assert.Equal(t, "github.com/pitabwire/lingua v1.4.0 (abc123, 2026-10-01)", version.String())
}

func TestCurrentFallsBack(t *testing.T) {
	assert.NotEmpty(t, version.Current())
}
