package domain

import "time"

type EducationEntry struct {
	Institution string `json:"institution" validate:"required"`
	Degree      string `json:"degree" validate:"required"`
	Field       string `json:"field"`
	StartYear   int    `json:"startYear" validate:"required,gte=1950,lte=2100"`
	EndYear     *int   `json:"endYear" validate:"omitempty,gte=1950,lte=2100"`
}

type WorkEntry struct {
	Company     string     `json:"company" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	StartDate   time.Time  `json:"startDate" validate:"required"`
	EndDate     *time.Time `json:"endDate"`
	Description string     `json:"description"`
}

type Candidate struct {
	ID              string           `json:"id"`
	Email           string           `json:"email"`
	FirstName       string           `json:"firstName"`
	LastName        string           `json:"lastName"`
	PasswordHash    string           `json:"-"`
	Age             *int32           `json:"age"`
	CurrentRole     string           `json:"currentRole"`
	TotalExperience string           `json:"totalExperience"`
	Location        string           `json:"location"`
	ExpectedCTC     string           `json:"expectedCTC"`
	Skills          []string         `json:"skills"`
	Education       []EducationEntry `json:"education"`
	Work            []WorkEntry      `json:"work"`
	PortfolioLink   string           `json:"portfolioLink"`
	GithubLink      string           `json:"githubLink"`
	LinkedinLink    string           `json:"linkedinLink"`
	TwitterLink     string           `json:"twitterLink"`
	Resume          string           `json:"resume"`
	ReadyToRelocate bool             `json:"readyToRelocate"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
	Version         int32            `json:"-"`
}

func (c *Candidate) FullName() string {
	return joinName(c.FirstName, c.LastName)
}
