package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveID(t *testing.T) {
	assert.Equal(t, "abc", Message{ID: "abc", User: "铭", Time: "2025/1/31 10:00:00"}.EffectiveID())
	assert.Equal(t, "铭-2025/1/31 10:00:00", Message{User: "铭", Time: "2025/1/31 10:00:00"}.EffectiveID())
}

func TestMessageAcceptsLegacyIDs(t *testing.T) {
	var list []Message
	raw := `[
		{"id":1738291200123,"user":"天天","content":"hi","time":"t1"},
		{"id":"system-welcome","user":"System","content":"welcome","time":"t0"},
		{"user":"铭","content":"no id","time":"t2"},
		{"id":null,"user":"铭","content":"null id","time":"t3"}
	]`
	require.NoError(t, json.Unmarshal([]byte(raw), &list))
	require.Len(t, list, 4)

	assert.Equal(t, "1738291200123", list[0].ID)
	assert.Equal(t, "system-welcome", list[1].ID)
	assert.Empty(t, list[2].ID)
	assert.Empty(t, list[3].ID)
}

func TestMessageWithoutIDOmitsField(t *testing.T) {
	b, err := json.Marshal(Message{User: "铭", Content: "x", Time: "t"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"id"`)
}

func TestParseRoster(t *testing.T) {
	roles := ParseRoster([]string{"pm:天天", " developer : IEWW ", "", "铭"})
	assert.Equal(t, []Role{
		{Value: "pm", Text: "天天"},
		{Value: "developer", Text: "IEWW"},
		{Value: "铭", Text: "铭"},
	}, roles)
}

func TestCollections(t *testing.T) {
	c, ok := ParseCollection("Scene")
	require.True(t, ok)
	assert.Equal(t, "scene_resources", c.StorageKey())
	assert.Equal(t, "scene-references", c.Section())
	assert.Equal(t, "character_resources", CollectionCharacter.StorageKey())

	_, ok = ParseCollection("props")
	assert.False(t, ok)
}

func TestResourceKind(t *testing.T) {
	img := Resource{Type: "image/png", Data: "data:image/png;base64,AAAA"}
	assert.True(t, img.IsImage())
	assert.False(t, img.IsVideo())
	assert.True(t, Resource{Type: "video/mp4"}.IsVideo())
	assert.Equal(t, len(img.Data), img.Summary().Size)
}

func TestResourceAcceptsLegacyIDs(t *testing.T) {
	var list []Resource
	raw := `[{"id":1738291200123.42,"name":"a.png","type":"image/png","data":"data:image/png;base64,AA==","uploadDate":"2025-01-31T02:00:00.000Z","uploadedBy":"铭"}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &list))
	require.Len(t, list, 1)

	assert.Equal(t, "1738291200123.42", list[0].ID)
	assert.Equal(t, "a.png", list[0].Name)
	assert.Equal(t, "铭", list[0].UploadedBy)
}
