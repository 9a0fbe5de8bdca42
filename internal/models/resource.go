package models

import (
	"encoding/json"
	"io"
	"strings"
)

// Collection names one of the two resource galleries
type Collection string

const (
	CollectionScene     Collection = "scene"
	CollectionCharacter Collection = "character"
)

// Collections lists the galleries in display order
var Collections = []Collection{CollectionScene, CollectionCharacter}

// ParseCollection validates a collection name from a URL
func ParseCollection(s string) (Collection, bool) {
	switch Collection(strings.ToLower(s)) {
	case CollectionScene:
		return CollectionScene, true
	case CollectionCharacter:
		return CollectionCharacter, true
	}
	return "", false
}

// StorageKey is the persisted key of the collection
func (c Collection) StorageKey() string {
	return string(c) + "_resources"
}

// Section is the page anchor of the collection
func (c Collection) Section() string {
	return string(c) + "-references"
}

// Resource is an uploaded media file. Data holds the whole file as a data URI.
type Resource struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Data       string `json:"data"`
	UploadDate string `json:"uploadDate"`
	UploadedBy string `json:"uploadedBy"`
}

// IsImage reports whether the resource renders as an image
func (r Resource) IsImage() bool {
	return strings.HasPrefix(r.Type, "image/")
}

// IsVideo reports whether the resource renders as a video
func (r Resource) IsVideo() bool {
	return strings.HasPrefix(r.Type, "video/")
}

// ResourceSummary is a resource without its payload, for JSON listings
type ResourceSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	UploadDate string `json:"uploadDate"`
	UploadedBy string `json:"uploadedBy"`
	Size       int    `json:"size"`
}

// Summary drops the payload
func (r Resource) Summary() ResourceSummary {
	return ResourceSummary{
		ID:         r.ID,
		Name:       r.Name,
		Type:       r.Type,
		UploadDate: r.UploadDate,
		UploadedBy: r.UploadedBy,
		Size:       len(r.Data),
	}
}

// Upload is one file handed to the resource store
type Upload struct {
	Name string
	// Type is the declared MIME type; empty means unknown
	Type string
	Size int64
	Open func() (io.ReadCloser, error)
}

// Preview is the overlay shown for one resource
type Preview struct {
	OverlayID string   `json:"overlayId"`
	Resource  Resource `json:"resource"`
	Video     bool     `json:"video"`
	Autoplay  bool     `json:"autoplay"`
}

// Download is a decoded resource ready to be saved
type Download struct {
	Name        string
	ContentType string
	Body        []byte
}

// UnmarshalJSON accepts numeric ids written by older clients
func (r *Resource) UnmarshalJSON(data []byte) error {
	type plain Resource
	var raw struct {
		plain
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, err := decodeID(raw.ID)
	if err != nil {
		return err
	}
	*r = Resource(raw.plain)
	r.ID = id
	return nil
}
