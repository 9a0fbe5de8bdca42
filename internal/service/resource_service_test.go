package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"testing"

	"team-dashboard/backend/internal/models"
	"team-dashboard/backend/pkg/events"
	"team-dashboard/backend/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func upload(name, contentType string, body []byte) models.Upload {
	return models.Upload{
		Name: name,
		Type: contentType,
		Size: int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		},
	}
}

func names(resources []models.Resource) []string {
	out := make([]string, 0, len(resources))
	for _, r := range resources {
		out = append(out, r.Name)
	}
	return out
}

func TestUploadStoresMediaAndSkipsOthers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	changes := listen(f.storageBus, events.TopicStorage)

	stored, err := f.resources.Upload(ctx, scopeA, models.CollectionScene, "铭", []models.Upload{
		upload("a.png", "image/png", []byte("png-a")),
		upload("notes.txt", "text/plain", []byte("hello")),
		upload("clip.mp4", "video/mp4", []byte("mp4")),
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)

	got := names(stored)
	sort.Strings(got)
	assert.Equal(t, []string{"a.png", "clip.mp4"}, got)

	for _, r := range stored {
		assert.Equal(t, "铭", r.UploadedBy)
		assert.Equal(t, "2025-01-31T14:05:09Z", r.UploadDate)
		assert.NotEmpty(t, r.ID)
	}

	all, err := f.resources.LoadAll(ctx, "p1", models.CollectionScene)
	require.NoError(t, err)
	assert.ElementsMatch(t, stored, all)
	assert.Len(t, changes.all(), 2)

	chars, err := f.resources.LoadAll(ctx, "p1", models.CollectionCharacter)
	require.NoError(t, err)
	assert.Empty(t, chars)
}

func TestUploadEncodesDataURI(t *testing.T) {
	f := newFixture()
	stored, err := f.resources.Upload(context.Background(), scopeA, models.CollectionCharacter, "铭", []models.Upload{
		upload("hero.gif", "image/gif", []byte("GIF89a")),
	})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "data:image/gif;base64,R0lGODlh", stored[0].Data)
}

func TestUploadSniffsMissingType(t *testing.T) {
	f := newFixture()
	stored, err := f.resources.Upload(context.Background(), scopeA, models.CollectionScene, "铭", []models.Upload{
		upload("unknown", "", pngHeader),
		upload("plain", "", []byte("just some text")),
	})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "image/png", stored[0].Type)
	assert.Equal(t, "unknown", stored[0].Name)
}

func TestUploadSniffsGenericBinaryType(t *testing.T) {
	f := newFixture()
	stored, err := f.resources.Upload(context.Background(), scopeA, models.CollectionScene, "铭", []models.Upload{
		upload("photo", "application/octet-stream", pngHeader),
		upload("clip", "image/png; name=clip.png", pngHeader),
		upload("blob", "application/octet-stream", []byte("just some text")),
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	for _, r := range stored {
		assert.Equal(t, "image/png", r.Type, r.Name)
		assert.True(t, strings.HasPrefix(r.Data, "data:image/png;base64,"), r.Name)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	f := newFixture()
	f.resources.config.MaxFileSize = 4

	stored, err := f.resources.Upload(context.Background(), scopeA, models.CollectionScene, "铭", []models.Upload{
		upload("big.png", "image/png", []byte("0123456789")),
		upload("ok.png", "image/png", []byte("abc")),
	})
	assert.ErrorIs(t, err, ErrFileTooLarge)
	assert.Equal(t, []string{"ok.png"}, names(stored))
}

func TestUploadOpenFailure(t *testing.T) {
	f := newFixture()
	broken := models.Upload{Name: "x.png", Type: "image/png", Open: func() (io.ReadCloser, error) {
		return nil, errors.New("gone")
	}}
	_, err := f.resources.Upload(context.Background(), scopeA, models.CollectionScene, "铭", []models.Upload{broken})
	assert.Error(t, err)
}

func TestUploadNoFiles(t *testing.T) {
	f := newFixture()
	_, err := f.resources.Upload(context.Background(), scopeA, models.CollectionScene, "铭", nil)
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestUploadManyKeepsEveryFile(t *testing.T) {
	f := newFixture()
	files := make([]models.Upload, 0, 12)
	for i := 0; i < 12; i++ {
		files = append(files, upload("f.png", "image/png", []byte{byte(i)}))
	}

	stored, err := f.resources.Upload(context.Background(), scopeA, models.CollectionScene, "铭", files)
	require.NoError(t, err)
	assert.Len(t, stored, 12)

	all, err := f.resources.LoadAll(context.Background(), "p1", models.CollectionScene)
	require.NoError(t, err)
	assert.Len(t, all, 12)
}

func TestRemove(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	stored, err := f.resources.Upload(ctx, scopeA, models.CollectionScene, "铭", []models.Upload{
		upload("a.png", "image/png", []byte("a")),
		upload("b.png", "image/png", []byte("b")),
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)

	removed, err := f.resources.Remove(ctx, scopeA, models.CollectionScene, stored[0].ID)
	require.NoError(t, err)
	assert.True(t, removed)

	all, _ := f.resources.LoadAll(ctx, "p1", models.CollectionScene)
	require.Len(t, all, 1)
	assert.Equal(t, stored[1].ID, all[0].ID)

	removed, err = f.resources.Remove(ctx, scopeA, models.CollectionScene, "missing")
	require.NoError(t, err)
	assert.False(t, removed)
	all, _ = f.resources.LoadAll(ctx, "p1", models.CollectionScene)
	assert.Len(t, all, 1)
}

func TestRemoveOnlyTouchesItsCollection(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seed(t, storage.Key("p1", "scene_resources"), `[{"id":"same","name":"s.png","type":"image/png","data":"data:image/png;base64,AA=="}]`)
	f.seed(t, storage.Key("p1", "character_resources"), `[{"id":"same","name":"c.png","type":"image/png","data":"data:image/png;base64,AA=="}]`)

	_, err := f.resources.Remove(ctx, scopeA, models.CollectionCharacter, "same")
	require.NoError(t, err)

	scene, _ := f.resources.LoadAll(ctx, "p1", models.CollectionScene)
	chars, _ := f.resources.LoadAll(ctx, "p1", models.CollectionCharacter)
	assert.Len(t, scene, 1)
	assert.Empty(t, chars)
}

func TestGet(t *testing.T) {
	f := newFixture()
	f.seed(t, storage.Key("p1", "scene_resources"), `[{"id":1738291200123.5,"name":"s.png","type":"image/png","data":"data:image/png;base64,AA=="}]`)

	r, err := f.resources.Get(context.Background(), "p1", models.CollectionScene, "1738291200123.5")
	require.NoError(t, err)
	assert.Equal(t, "s.png", r.Name)

	_, err = f.resources.Get(context.Background(), "p1", models.CollectionScene, "nope")
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestPreviewCreatesFreshOverlay(t *testing.T) {
	f := newFixture()
	video := models.Resource{ID: "v", Type: "video/mp4"}

	first := f.resources.Preview(video)
	second := f.resources.Preview(video)
	assert.NotEqual(t, first.OverlayID, second.OverlayID)
	assert.True(t, first.Video)
	assert.True(t, first.Autoplay)
	assert.False(t, f.resources.Preview(models.Resource{Type: "image/png"}).Video)
}

func TestDownload(t *testing.T) {
	f := newFixture()
	d, err := f.resources.Download(models.Resource{
		Name: "hero.gif",
		Type: "image/gif",
		Data: EncodeDataURI("image/gif", []byte("GIF89a")),
	})
	require.NoError(t, err)
	assert.Equal(t, "hero.gif", d.Name)
	assert.Equal(t, "image/gif", d.ContentType)
	assert.Equal(t, []byte("GIF89a"), d.Body)

	_, err = f.resources.Download(models.Resource{Data: "not a data uri"})
	assert.ErrorIs(t, err, ErrInvalidDataURI)
}

func TestDecodeDataURI(t *testing.T) {
	ct, body, err := DecodeDataURI("data:text/plain;charset=utf-8,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", ct)
	assert.Equal(t, "hello world", string(body))

	ct, body, err = DecodeDataURI("data:;base64,AAE=")
	require.NoError(t, err)
	assert.Empty(t, ct)
	assert.Equal(t, []byte{0, 1}, body)

	_, _, err = DecodeDataURI("data:image/png;base64")
	assert.ErrorIs(t, err, ErrInvalidDataURI)
	_, _, err = DecodeDataURI("data:image/png;base64,***")
	assert.ErrorIs(t, err, ErrInvalidDataURI)
}
