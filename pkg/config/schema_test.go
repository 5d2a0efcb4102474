package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestJSONSchema(t *testing.T) {
	t.Run("Should describe every section by its file key", func(t *testing.T) {
		out, err := JSONSchema()
		require.NoError(t, err)
		doc := string(out)

		assert.Equal(t, SchemaID, gjson.Get(doc, "$id").String())
		for _, key := range []string{"julep", "agent", "task", "poll", "tour", "artifact", "runtime", "cli"} {
			assert.True(t, gjson.Get(doc, "properties."+key).Exists(), key)
		}
		assert.Equal(t, "integer", gjson.Get(doc, "properties.poll.properties.max_attempts.type").String())
		assert.Equal(t, "array", gjson.Get(doc, "properties.tour.properties.cities.type").String())
	})

	t.Run("Should describe durations as strings", func(t *testing.T) {
		out, err := JSONSchema()
		require.NoError(t, err)

		interval := gjson.GetBytes(out, "properties.poll.properties.interval")
		assert.Equal(t, "string", interval.Get("type").String())
		assert.NotEmpty(t, interval.Get("pattern").String())
	})
}
