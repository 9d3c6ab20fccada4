package internal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestGenerateSchema(t *testing.T) {
	type Inner struct {
		Count int `json:"count"`
	}

	type Output struct {
		Reply string  `json:"reply" jsonschema_description:"Write your response here"`
		Inner Inner   `json:"inner"`
		Maybe *string `json:"maybe,omitempty"`
	}

	schema := GenerateSchema[Output]()

	out, err := json.Marshal(schema)

	assert.Nil(t, err)
	assert.Equal(t, "object", gjson.GetBytes(out, "type").String())
	assert.False(t, gjson.GetBytes(out, "additionalProperties").Bool())

	assert.Equal(t, "string", gjson.GetBytes(out, "properties.reply.type").String())
	assert.Equal(t, "Write your response here", gjson.GetBytes(out, "properties.reply.description").String())

	// Definitions are inlined, nested types appear in place.
	assert.Equal(t, "object", gjson.GetBytes(out, "properties.inner.type").String())
	assert.Equal(t, "integer", gjson.GetBytes(out, "properties.inner.properties.count.type").String())
	assert.False(t, gjson.GetBytes(out, "$defs").Exists())

	required := gjson.GetBytes(out, "required").Array()

	assert.Len(t, required, 2)
	assert.Equal(t, "reply", required[0].String())
	assert.Equal(t, "inner", required[1].String())
}
