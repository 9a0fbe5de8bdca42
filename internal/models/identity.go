package models

import "strings"

const (
	// KeyCurrentRole is the persisted key of the identity
	KeyCurrentRole = "currentRole"
	// KeyMessages is the persisted key of the message board
	KeyMessages = "team_messages"

	// IdentityUnselected is returned when no identity was ever chosen
	IdentityUnselected = "未选择"
	// IdentityPlaceholder is the text of the selector's empty option
	IdentityPlaceholder = "请选择身份"
)

// Role is one option of the identity selector
type Role struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// ParseRoster reads "value:text" entries; entries without a colon use the
// text as value.
func ParseRoster(entries []string) []Role {
	roles := make([]Role, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		value, text, ok := strings.Cut(e, ":")
		if !ok {
			text = value
		}
		roles = append(roles, Role{Value: strings.TrimSpace(value), Text: strings.TrimSpace(text)})
	}
	return roles
}

// SetIdentityRequest is the body of PUT /api/v1/identity
type SetIdentityRequest struct {
	Name string `json:"name" binding:"required"`
}

// IdentityResponse reports the current identity
type IdentityResponse struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}
