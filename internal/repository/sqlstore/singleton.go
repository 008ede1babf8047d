package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// The profile, about and site_settings tables hold at most one row, keyed by
// model.SingletonID. Saves are upserts on that key.

var (
	_ repository.ProfileRepository      = (*ProfileDB)(nil)
	_ repository.AboutRepository        = (*AboutDB)(nil)
	_ repository.SiteSettingsRepository = (*SiteSettingsDB)(nil)
)

// ===== PROFILE =====

// ProfileDB stores the single profile row.
type ProfileDB struct {
	*DB
}

// Profile returns the profile repository.
func (db *DB) Profile() *ProfileDB { return &ProfileDB{db} }

// Get returns apperror.NotFound until the first save.
func (db *ProfileDB) Get(ctx context.Context) (*model.Profile, error) {
	var p model.Profile
	err := db.conn.QueryRowContext(ctx, db.q(`
		SELECT id, name, title, bio, avatar_url, email, location, github_url, linkedin_url,
		       twitter_url, resume_url, scheduling_link, show_avatar, created_at, updated_at
		FROM profile WHERE id = ?`), model.SingletonID,
	).Scan(&p.ID, &p.Name, &p.Title, &p.Bio, &p.AvatarURL, &p.Email, &p.Location, &p.GithubURL,
		&p.LinkedinURL, &p.TwitterURL, &p.ResumeURL, &p.SchedulingLink, &p.ShowAvatar,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("profile", model.SingletonID)
		}
		return nil, classify("getting profile", err)
	}
	return &p, nil
}

// Save writes every column. CreatedAt is kept from the first save.
func (db *ProfileDB) Save(ctx context.Context, p *model.Profile) error {
	ts := now()
	p.ID = model.SingletonID
	p.UpdatedAt = ts
	if p.CreatedAt.IsZero() {
		p.CreatedAt = ts
	}

	_, err := db.conn.ExecContext(ctx, db.q(`
		INSERT INTO profile (id, name, title, bio, avatar_url, email, location, github_url,
		                     linkedin_url, twitter_url, resume_url, scheduling_link, show_avatar,
		                     created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			title = excluded.title,
			bio = excluded.bio,
			avatar_url = excluded.avatar_url,
			email = excluded.email,
			location = excluded.location,
			github_url = excluded.github_url,
			linkedin_url = excluded.linkedin_url,
			twitter_url = excluded.twitter_url,
			resume_url = excluded.resume_url,
			scheduling_link = excluded.scheduling_link,
			show_avatar = excluded.show_avatar,
			updated_at = excluded.updated_at`),
		p.ID, p.Name, p.Title, p.Bio, p.AvatarURL, p.Email, p.Location, p.GithubURL,
		p.LinkedinURL, p.TwitterURL, p.ResumeURL, p.SchedulingLink, p.ShowAvatar,
		p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return classify("saving profile", err)
	}
	return nil
}

// ===== ABOUT =====

// AboutDB stores the single about row.
type AboutDB struct {
	*DB
}

// About returns the about repository.
func (db *DB) About() *AboutDB { return &AboutDB{db} }

// Get returns an empty About until the first save.
func (db *AboutDB) Get(ctx context.Context) (*model.About, error) {
	var a model.About
	err := db.conn.QueryRowContext(ctx, db.q(`SELECT id, content, updated_at FROM about WHERE id = ?`),
		model.SingletonID).Scan(&a.ID, &a.Content, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.About{ID: model.SingletonID}, nil
	}
	if err != nil {
		return nil, classify("getting about", err)
	}
	return &a, nil
}

// Save upserts the row. CreatedAt is kept from the first save.
func (db *AboutDB) Save(ctx context.Context, a *model.About) error {
	a.ID = model.SingletonID
	a.UpdatedAt = now()

	_, err := db.conn.ExecContext(ctx, db.q(`
		INSERT INTO about (id, content, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`),
		a.ID, a.Content, a.UpdatedAt,
	)
	if err != nil {
		return classify("saving about", err)
	}
	return nil
}

// ===== SITE SETTINGS =====

// SiteSettingsDB stores the single site settings row.
type SiteSettingsDB struct {
	*DB
}

// SiteSettings returns the site settings repository.
func (db *DB) SiteSettings() *SiteSettingsDB { return &SiteSettingsDB{db} }

// Get returns zero-valued settings until the first save.
func (db *SiteSettingsDB) Get(ctx context.Context) (*model.SiteSettings, error) {
	var s model.SiteSettings
	err := db.conn.QueryRowContext(ctx, db.q(`
		SELECT id, title, description, keywords, dark_mode_default, updated_at
		FROM site_settings WHERE id = ?`), model.SingletonID,
	).Scan(&s.ID, &s.Title, &s.Description, &s.Keywords, &s.DarkModeDefault, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.SiteSettings{ID: model.SingletonID}, nil
	}
	if err != nil {
		return nil, classify("getting site settings", err)
	}
	return &s, nil
}

// Save upserts the row. CreatedAt is kept from the first save.
func (db *SiteSettingsDB) Save(ctx context.Context, s *model.SiteSettings) error {
	s.ID = model.SingletonID
	s.UpdatedAt = now()

	_, err := db.conn.ExecContext(ctx, db.q(`
		INSERT INTO site_settings (id, title, description, keywords, dark_mode_default, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			keywords = excluded.keywords,
			dark_mode_default = excluded.dark_mode_default,
			updated_at = excluded.updated_at`),
		s.ID, s.Title, s.Description, s.Keywords, s.DarkModeDefault, s.UpdatedAt,
	)
	if err != nil {
		return classify("saving site settings", err)
	}
	return nil
}
