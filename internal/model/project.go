package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"
)

// Project is a portfolio entry. ImageURL, Title and Description are required.
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	GithubURL   string    `json:"githubUrl,omitempty"`
	LiveURL     string    `json:"liveUrl,omitempty"`
	Featured    bool      `json:"featured"`
	Order       int       `json:"order"`
	Skills      []Skill   `json:"skills"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Skill belongs to the shared pool linked to projects. Name is unique.
type Skill struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IconURL   string    `json:"iconUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SkillRef is how a client names a skill when writing a project.
//
// On the wire it is either a JSON string, which is an existing skill id, or
// an object {"name": "...", "iconUrl": "..."} that is resolved by name and
// created when missing.
type SkillRef struct {
	ID      string
	Name    string
	IconURL string
}

// ByName reports whether the reference must be resolved by name.
func (r SkillRef) ByName() bool { return r.ID == "" }

// UnmarshalJSON accepts either an id string or {"name","iconUrl"}.
func (r *SkillRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = SkillRef{ID: id}
		return nil
	}

	var obj struct {
		Name    string `json:"name"`
		IconURL string `json:"iconUrl"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return errors.New("skill must be an id string or an object with a name")
	}
	*r = SkillRef{Name: obj.Name, IconURL: obj.IconURL}
	return nil
}

// MarshalJSON writes the form UnmarshalJSON read.
func (r SkillRef) MarshalJSON() ([]byte, error) {
	if r.ID != "" {
		return json.Marshal(r.ID)
	}
	return json.Marshal(struct {
		Name    string `json:"name"`
		IconURL string `json:"iconUrl,omitempty"`
	}{r.Name, r.IconURL})
}

// GeneralSkill is an entry of the public skills list. It has no relation to
// projects.
type GeneralSkill struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IconURL   string    `json:"iconUrl,omitempty"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
