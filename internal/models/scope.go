package models

// Scope identifies who is acting: the browser profile that owns the state and
// the page instance that performed the write.
type Scope struct {
	ProfileID string
	PageID    string
}
