package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/portfolio/internal/media"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// Dates arrive as strings and are parsed here. An EndDate sent as null or ""
// clears it, meaning "present"; an omitted EndDate is left alone.

// ===== EXPERIENCE =====

// ExperienceInput is the body of an experience create or update.
type ExperienceInput struct {
	Title       *string          `json:"title"`
	Company     *string          `json:"company"`
	Location    *string          `json:"location"`
	StartDate   *string          `json:"startDate"`
	EndDate     Nullable[string] `json:"endDate"`
	Description *string          `json:"description"`
	Skills      *[]string        `json:"skills"`
	Order       *int             `json:"order"`
	LogoURL     *string          `json:"logoUrl"`
}

// ExperienceService manages work history entries and their company logos.
type ExperienceService struct {
	exps    repository.ExperienceRepository
	cleaner imageCleaner
	logger  *slog.Logger
}

// NewExperienceService creates an ExperienceService.
func NewExperienceService(exps repository.ExperienceRepository, store media.Store, logger *slog.Logger) *ExperienceService {
	return &ExperienceService{
		exps:    exps,
		cleaner: newImageCleaner(store, logger),
		logger:  logger,
	}
}

// List returns experiences most recent first.
func (s *ExperienceService) List(ctx context.Context) ([]model.Experience, error) {
	return s.exps.List(ctx)
}

// Get returns one entry or apperror.NotFound.
func (s *ExperienceService) Get(ctx context.Context, id string) (*model.Experience, error) {
	return s.exps.GetByID(ctx, strings.TrimSpace(id))
}

// Create validates and stores an entry. Title, company and start date are
// required.
func (s *ExperienceService) Create(ctx context.Context, in ExperienceInput) (*model.Experience, error) {
	if in.StartDate == nil {
		in.StartDate = new(string)
	}
	var e model.Experience
	if err := applyExperienceInput(&e, in); err != nil {
		return nil, err
	}
	if err := validateExperience(&e); err != nil {
		return nil, err
	}

	if err := s.exps.Create(ctx, &e); err != nil {
		return nil, fmt.Errorf("creating experience: %w", err)
	}
	s.logger.Info("experience created", slog.String("id", e.ID), slog.String("company", e.Company))
	return &e, nil
}

// Update applies the supplied fields and removes the old logo if a new one
// replaced it.
func (s *ExperienceService) Update(ctx context.Context, id string, in ExperienceInput) (*model.Experience, error) {
	e, err := s.exps.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	oldLogo := e.LogoURL

	if err := applyExperienceInput(e, in); err != nil {
		return nil, err
	}
	if err := validateExperience(e); err != nil {
		return nil, err
	}
	if err := s.exps.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("updating experience: %w", err)
	}

	s.cleaner.replaced(ctx, oldLogo, e.LogoURL)
	return e, nil
}

// Delete removes the row first, then the logo.
func (s *ExperienceService) Delete(ctx context.Context, id string) error {
	e, err := s.exps.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if err := s.exps.Delete(ctx, e.ID); err != nil {
		return fmt.Errorf("deleting experience: %w", err)
	}

	s.cleaner.remove(ctx, e.LogoURL)

	s.logger.Info("experience deleted", slog.String("id", e.ID))
	return nil
}

func applyExperienceInput(e *model.Experience, in ExperienceInput) error {
	setTrimmed(&e.Title, in.Title)
	setTrimmed(&e.Company, in.Company)
	setTrimmed(&e.Location, in.Location)
	setTrimmed(&e.Description, in.Description)
	setTrimmed(&e.LogoURL, in.LogoURL)
	set(&e.Order, in.Order)
	if in.Skills != nil {
		e.Skills = cleanList(*in.Skills)
	}

	if in.StartDate != nil {
		start, err := parseDate("startDate", *in.StartDate)
		if err != nil {
			return err
		}
		e.StartDate = start
	}
	return applyEndDate(&e.EndDate, in.EndDate)
}

func validateExperience(e *model.Experience) error {
	if _, err := required("title", "title", e.Title); err != nil {
		return err
	}
	_, err := required("company", "company", e.Company)
	return err
}

// ===== EDUCATION =====

// EducationInput is the body of an education create or update.
type EducationInput struct {
	Institution  *string          `json:"institution"`
	Degree       *string          `json:"degree"`
	Field        *string          `json:"field"`
	Location     *string          `json:"location"`
	StartDate    *string          `json:"startDate"`
	EndDate      Nullable[string] `json:"endDate"`
	Description  *string          `json:"description"`
	Achievements *[]string        `json:"achievements"`
	Order        *int             `json:"order"`
	LogoURL      *string          `json:"logoUrl"`
}

// EducationService manages education entries and their institution logos.
type EducationService struct {
	edu     repository.EducationRepository
	cleaner imageCleaner
	logger  *slog.Logger
}

// NewEducationService creates an EducationService.
func NewEducationService(edu repository.EducationRepository, store media.Store, logger *slog.Logger) *EducationService {
	return &EducationService{
		edu:     edu,
		cleaner: newImageCleaner(store, logger),
		logger:  logger,
	}
}

// List returns education entries by order, then by creation time.
func (s *EducationService) List(ctx context.Context) ([]model.Education, error) {
	return s.edu.List(ctx)
}

// Get returns one entry or apperror.NotFound.
func (s *EducationService) Get(ctx context.Context, id string) (*model.Education, error) {
	return s.edu.GetByID(ctx, strings.TrimSpace(id))
}

// Create validates and stores an entry. Institution, degree and start date
// are required.
func (s *EducationService) Create(ctx context.Context, in EducationInput) (*model.Education, error) {
	if in.StartDate == nil {
		in.StartDate = new(string)
	}
	var e model.Education
	if err := applyEducationInput(&e, in); err != nil {
		return nil, err
	}
	if err := validateEducation(&e); err != nil {
		return nil, err
	}
	if err := s.edu.Create(ctx, &e); err != nil {
		return nil, fmt.Errorf("creating education: %w", err)
	}
	s.logger.Info("education created", slog.String("id", e.ID), slog.String("institution", e.Institution))
	return &e, nil
}

// Update applies the supplied fields and removes a replaced logo.
func (s *EducationService) Update(ctx context.Context, id string, in EducationInput) (*model.Education, error) {
	e, err := s.edu.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	oldLogo := e.LogoURL

	if err := applyEducationInput(e, in); err != nil {
		return nil, err
	}
	if err := validateEducation(e); err != nil {
		return nil, err
	}
	if err := s.edu.Update(ctx, e); err != nil {
		return nil, fmt.Errorf("updating education: %w", err)
	}

	s.cleaner.replaced(ctx, oldLogo, e.LogoURL)
	return e, nil
}

// Delete removes the row first, then the logo.
func (s *EducationService) Delete(ctx context.Context, id string) error {
	e, err := s.edu.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if err := s.edu.Delete(ctx, e.ID); err != nil {
		return fmt.Errorf("deleting education: %w", err)
	}

	s.cleaner.remove(ctx, e.LogoURL)
	return nil
}

func applyEducationInput(e *model.Education, in EducationInput) error {
	setTrimmed(&e.Institution, in.Institution)
	setTrimmed(&e.Degree, in.Degree)
	setTrimmed(&e.Field, in.Field)
	setTrimmed(&e.Location, in.Location)
	setTrimmed(&e.Description, in.Description)
	setTrimmed(&e.LogoURL, in.LogoURL)
	set(&e.Order, in.Order)
	if in.Achievements != nil {
		e.Achievements = cleanList(*in.Achievements)
	}

	if in.StartDate != nil {
		start, err := parseDate("startDate", *in.StartDate)
		if err != nil {
			return err
		}
		e.StartDate = start
	}
	return applyEndDate(&e.EndDate, in.EndDate)
}

func validateEducation(e *model.Education) error {
	if _, err := required("institution", "institution", e.Institution); err != nil {
		return err
	}
	_, err := required("degree", "degree", e.Degree)
	return err
}
