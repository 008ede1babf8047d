// Package repository declares the storage contracts the service layer depends
// on. The sqlstore package implements them against SQLite or PostgreSQL; tests
// may substitute in-memory fakes.
//
// Every method returns apperror.NotFound for a missing id, apperror.Conflict
// for a unique violation and apperror.Unavailable when the store cannot be
// reached. Other errors are wrapped driver errors.
package repository

import (
	"context"

	"github.com/sakif/portfolio/internal/model"
)

// ProjectFilter narrows a project listing.
type ProjectFilter struct {
	FeaturedOnly bool
}

// ProjectRepository stores projects and their ordered skill links.
type ProjectRepository interface {
	List(ctx context.Context, filter ProjectFilter) ([]model.Project, error)
	GetByID(ctx context.Context, id string) (*model.Project, error)
	// Create inserts the project and links skillIDs in one transaction.
	Create(ctx context.Context, project *model.Project, skillIDs []string) error
	// Update rewrites the project row and replaces its skill links with
	// skillIDs in one transaction.
	Update(ctx context.Context, project *model.Project, skillIDs []string) error
	// Delete removes the project. Skills that were linked only to this
	// project lose their icon in the same transaction; the released icon URLs
	// are returned so the caller can clean them up remotely.
	Delete(ctx context.Context, id string) (releasedIcons []string, err error)
	Count(ctx context.Context) (int, error)
}

// SkillRepository stores the shared skill pool. Names are unique.
type SkillRepository interface {
	List(ctx context.Context) ([]model.Skill, error)
	GetByID(ctx context.Context, id string) (*model.Skill, error)
	GetByName(ctx context.Context, name string) (*model.Skill, error)
	// FindOrCreate returns the skill with the given name, creating it with
	// iconURL when it does not exist. Safe under concurrent callers.
	FindOrCreate(ctx context.Context, name, iconURL string) (*model.Skill, error)
	Create(ctx context.Context, skill *model.Skill) error
	Update(ctx context.Context, skill *model.Skill) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// GeneralSkillRepository stores the standalone skills list.
type GeneralSkillRepository interface {
	List(ctx context.Context) ([]model.GeneralSkill, error)
	GetByID(ctx context.Context, id string) (*model.GeneralSkill, error)
	Create(ctx context.Context, skill *model.GeneralSkill) error
	Update(ctx context.Context, skill *model.GeneralSkill) error
	Delete(ctx context.Context, id string) error
}

// ExperienceRepository stores work history entries.
type ExperienceRepository interface {
	// List returns experiences most recent first (startDate descending).
	List(ctx context.Context) ([]model.Experience, error)
	GetByID(ctx context.Context, id string) (*model.Experience, error)
	Create(ctx context.Context, exp *model.Experience) error
	Update(ctx context.Context, exp *model.Experience) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// EducationRepository stores education entries.
type EducationRepository interface {
	List(ctx context.Context) ([]model.Education, error)
	GetByID(ctx context.Context, id string) (*model.Education, error)
	Create(ctx context.Context, edu *model.Education) error
	Update(ctx context.Context, edu *model.Education) error
	Delete(ctx context.Context, id string) error
}

// QuoteRepository stores home page quotes.
type QuoteRepository interface {
	List(ctx context.Context) ([]model.Quote, error)
	GetByID(ctx context.Context, id string) (*model.Quote, error)
	Create(ctx context.Context, quote *model.Quote) error
	Update(ctx context.Context, quote *model.Quote) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// ProfileRepository stores the single profile row.
type ProfileRepository interface {
	// Get returns apperror.NotFound until the profile has been saved once.
	Get(ctx context.Context) (*model.Profile, error)
	Save(ctx context.Context, profile *model.Profile) error
}

// AboutRepository stores the single about row.
type AboutRepository interface {
	// Get returns an empty About when none has been saved.
	Get(ctx context.Context) (*model.About, error)
	Save(ctx context.Context, about *model.About) error
}

// SiteSettingsRepository stores the single settings row.
type SiteSettingsRepository interface {
	// Get returns zero-valued settings when none have been saved.
	Get(ctx context.Context) (*model.SiteSettings, error)
	Save(ctx context.Context, settings *model.SiteSettings) error
}

// UserRepository stores admin accounts. Emails are unique.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// Upsert creates the user or, when the email exists, updates its name,
	// role and password hash.
	Upsert(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}
