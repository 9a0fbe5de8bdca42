package models

// Project is the status card on the index page
type Project struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	StartDate    string `json:"startDate"`
	CurrentPhase string `json:"currentPhase"`
	TeamMembers  int    `json:"teamMembers"`
	Progress     int    `json:"progress"`
	Details      string `json:"details"`
}
