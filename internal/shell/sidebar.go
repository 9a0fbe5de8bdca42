package shell

import "team-dashboard/backend/internal/models"

// RoleOption is one entry of the identity selector
type RoleOption struct {
	Value    string
	Text     string
	Selected bool
}

// Sidebar is the view model of the shared sidebar fragment
type Sidebar struct {
	Options         []RoleOption
	Links           []Link
	CurrentIdentity string
}

// BuildSidebar selects the option whose text matches the stored identity.
// The placeholder option stays selected when nothing matches.
func BuildSidebar(page Page, roles []models.Role, identity string) Sidebar {
	if identity == "" {
		identity = models.IdentityUnselected
	}

	options := make([]RoleOption, 0, len(roles)+1)
	options = append(options, RoleOption{Text: models.IdentityPlaceholder})
	matched := false
	for _, r := range roles {
		selected := !matched && r.Text == identity
		matched = matched || selected
		options = append(options, RoleOption{Value: r.Value, Text: r.Text, Selected: selected})
	}
	options[0].Selected = !matched

	return Sidebar{
		Options:         options,
		Links:           NavLinks(page),
		CurrentIdentity: identity,
	}
}
