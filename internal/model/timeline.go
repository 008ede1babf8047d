package model

import "time"

// Experience is a position on the work timeline. Skills are free-form labels,
// unrelated to the Skill pool.
type Experience struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Location    string     `json:"location"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Description string     `json:"description"`
	Skills      []string   `json:"skills"`
	Order       int        `json:"order"`
	LogoURL     string     `json:"logoUrl,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Education is an entry of the education timeline.
type Education struct {
	ID           string     `json:"id"`
	Institution  string     `json:"institution"`
	Degree       string     `json:"degree"`
	Field        string     `json:"field"`
	Location     string     `json:"location"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	Description  string     `json:"description"`
	Achievements []string   `json:"achievements"`
	Order        int        `json:"order"`
	LogoURL      string     `json:"logoUrl,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Quote is shown one at a time, picked at random on the home page.
type Quote struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
