package models

// Company is an employer. Only its name is used, for display.
type Company struct {
	ID   string
	Name string
}

// Position is a role at a company that users can be employed in.
type Position struct {
	ID        string
	CompanyID string
	Name      string
}
