package model

import "time"

// SingletonID is the fixed primary key of the single-row tables
// (profile, about, site_settings).
const SingletonID = "1"

// Profile is the site owner's hero/contact information. There is exactly one.
//
// Optional URLs use the empty string as "not set", following the rest of the
// model; the JSON omits them when empty.
type Profile struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Title          string    `json:"title"`
	Bio            string    `json:"bio"`
	AvatarURL      string    `json:"avatarUrl,omitempty"`
	Email          string    `json:"email"`
	Location       string    `json:"location"`
	GithubURL      string    `json:"githubUrl,omitempty"`
	LinkedinURL    string    `json:"linkedinUrl,omitempty"`
	TwitterURL     string    `json:"twitterUrl,omitempty"`
	ResumeURL      string    `json:"resumeUrl,omitempty"`
	SchedulingLink string    `json:"schedulingLink,omitempty"`
	ShowAvatar     bool      `json:"showAvatar"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// About holds the HTML body of the about page.
type About struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SiteSettings carries page metadata and theme defaults.
type SiteSettings struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Keywords        string    `json:"keywords"`
	DarkModeDefault bool      `json:"darkModeDefault"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
