package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/media"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// ===== PROFILE =====

// ProfileInput is the body of a profile save. Nil fields keep their stored
// value.
type ProfileInput struct {
	Name           *string `json:"name"`
	Title          *string `json:"title"`
	Bio            *string `json:"bio"`
	AvatarURL      *string `json:"avatarUrl"`
	Email          *string `json:"email"`
	Location       *string `json:"location"`
	GithubURL      *string `json:"githubUrl"`
	LinkedinURL    *string `json:"linkedinUrl"`
	TwitterURL     *string `json:"twitterUrl"`
	ResumeURL      *string `json:"resumeUrl"`
	SchedulingLink *string `json:"schedulingLink"`
	ShowAvatar     *bool   `json:"showAvatar"`
}

// ProfileService manages the single owner profile.
type ProfileService struct {
	profile repository.ProfileRepository
	cleaner imageCleaner
	logger  *slog.Logger
}

// NewProfileService creates a ProfileService.
func NewProfileService(profile repository.ProfileRepository, store media.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		profile: profile,
		cleaner: newImageCleaner(store, logger),
		logger:  logger,
	}
}

// Get returns apperror.NotFound until the profile has been saved.
func (s *ProfileService) Get(ctx context.Context) (*model.Profile, error) {
	return s.profile.Get(ctx)
}

// Save creates the profile or merges the supplied fields into it. A replaced
// avatar is deleted after the write.
func (s *ProfileService) Save(ctx context.Context, in ProfileInput) (*model.Profile, error) {
	p, err := s.profile.Get(ctx)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		p = &model.Profile{ID: model.SingletonID}
	case err != nil:
		return nil, err
	}
	oldAvatar := p.AvatarURL

	setTrimmed(&p.Name, in.Name)
	setTrimmed(&p.Title, in.Title)
	setTrimmed(&p.Bio, in.Bio)
	setTrimmed(&p.AvatarURL, in.AvatarURL)
	setTrimmed(&p.Email, in.Email)
	setTrimmed(&p.Location, in.Location)
	setTrimmed(&p.GithubURL, in.GithubURL)
	setTrimmed(&p.LinkedinURL, in.LinkedinURL)
	setTrimmed(&p.TwitterURL, in.TwitterURL)
	setTrimmed(&p.ResumeURL, in.ResumeURL)
	setTrimmed(&p.SchedulingLink, in.SchedulingLink)
	set(&p.ShowAvatar, in.ShowAvatar)

	if _, err := required("name", "name", p.Name); err != nil {
		return nil, err
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return nil, apperror.ValidationFailed("email", "email must be an address")
	}

	if err := s.profile.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}

	s.cleaner.replaced(ctx, oldAvatar, p.AvatarURL)

	s.logger.Info("profile saved")
	return p, nil
}

// ===== ABOUT =====

// AboutInput is the body of an about save.
type AboutInput struct {
	Content *string `json:"content"`
}

// AboutService manages the about page body.
type AboutService struct {
	about  repository.AboutRepository
	logger *slog.Logger
}

// NewAboutService creates an AboutService.
func NewAboutService(about repository.AboutRepository, logger *slog.Logger) *AboutService {
	return &AboutService{about: about, logger: logger}
}

// Get returns empty content when nothing has been saved.
func (s *AboutService) Get(ctx context.Context) (*model.About, error) {
	return s.about.Get(ctx)
}

// Save replaces the content. It is stored as given: the about body is HTML
// written by the admin.
func (s *AboutService) Save(ctx context.Context, in AboutInput) (*model.About, error) {
	if in.Content == nil {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	a := &model.About{ID: model.SingletonID, Content: *in.Content}
	if err := s.about.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("saving about: %w", err)
	}
	return a, nil
}

// ===== SITE SETTINGS =====

// SiteSettingsInput is the body of a site settings save.
type SiteSettingsInput struct {
	Title           *string `json:"title"`
	Description     *string `json:"description"`
	Keywords        *string `json:"keywords"`
	DarkModeDefault *bool   `json:"darkModeDefault"`
}

// SiteSettingsService manages the site title, description and theme default.
type SiteSettingsService struct {
	settings repository.SiteSettingsRepository
	logger   *slog.Logger
}

// NewSiteSettingsService creates a SiteSettingsService.
func NewSiteSettingsService(settings repository.SiteSettingsRepository, logger *slog.Logger) *SiteSettingsService {
	return &SiteSettingsService{settings: settings, logger: logger}
}

// Get returns the stored settings or the defaults.
func (s *SiteSettingsService) Get(ctx context.Context) (*model.SiteSettings, error) {
	return s.settings.Get(ctx)
}

// Save merges the supplied fields into the current settings.
func (s *SiteSettingsService) Save(ctx context.Context, in SiteSettingsInput) (*model.SiteSettings, error) {
	st, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	st.ID = model.SingletonID
	setTrimmed(&st.Title, in.Title)
	setTrimmed(&st.Description, in.Description)
	setTrimmed(&st.Keywords, in.Keywords)
	set(&st.DarkModeDefault, in.DarkModeDefault)

	if err := s.settings.Save(ctx, st); err != nil {
		return nil, fmt.Errorf("saving site settings: %w", err)
	}
	return st, nil
}
