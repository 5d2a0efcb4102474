package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	t.Run("Should prefer values injected at build time", func(t *testing.T) {
		orig := Version
		t.Cleanup(func() { Version = orig })
		Version = "v1.2.3"

		assert.Equal(t, "v1.2.3", Get().Version)
		assert.Equal(t, "foodtour/v1.2.3", UserAgent())
	})

	t.Run("Should render a one line summary", func(t *testing.T) {
		info := Info{Version: "v1.0.0", CommitHash: "abc123", BuildDate: "2024-01-01"}
		assert.Equal(t, "v1.0.0 (commit abc123, built 2024-01-01)", info.String())
	})

	t.Run("Should always name the product in the user agent", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(UserAgent(), "foodtour/"))
	})
}
