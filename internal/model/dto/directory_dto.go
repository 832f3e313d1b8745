package dto

// SectionRow is one line of the sections sheet: Arabic name, English name.
type SectionRow struct {
	NameAr string
	NameEn string
}

// EmployeeRow is one line of the employees sheet.
type EmployeeRow struct {
	Username string
	Password string
	Role     string
}

// ImportSummary counts rows created and rows skipped as incomplete or already present.
type ImportSummary struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

type GrantSummary struct {
	Sections  int `json:"sections"`
	Employees int `json:"employees"`
	Created   int `json:"created"`
	Existing  int `json:"existing"`
}
