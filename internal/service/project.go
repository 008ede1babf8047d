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

// ProjectInput is the body of a project create or update.
//
// Skills: nil keeps the current links on update; an empty list removes them.
type ProjectInput struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	ImageURL    *string          `json:"imageUrl"`
	GithubURL   *string          `json:"githubUrl"`
	LiveURL     *string          `json:"liveUrl"`
	Featured    *bool            `json:"featured"`
	Order       *int             `json:"order"`
	Skills      []model.SkillRef `json:"skills"`
}

// ProjectService manages projects and their links into the skill pool.
// Replaced or deleted project images are removed from the media store.
type ProjectService struct {
	projects repository.ProjectRepository
	skills   repository.SkillRepository
	cleaner  imageCleaner
	logger   *slog.Logger
}

// NewProjectService creates a ProjectService. store is used only for image
// cleanup.
func NewProjectService(
	projects repository.ProjectRepository,
	skills repository.SkillRepository,
	store media.Store,
	logger *slog.Logger,
) *ProjectService {
	return &ProjectService{
		projects: projects,
		skills:   skills,
		cleaner:  newImageCleaner(store, logger),
		logger:   logger,
	}
}

// List returns projects by order, each with its linked skills. featuredOnly
// narrows the list to featured projects.
func (s *ProjectService) List(ctx context.Context, featuredOnly bool) ([]model.Project, error) {
	return s.projects.List(ctx, repository.ProjectFilter{FeaturedOnly: featuredOnly})
}

// Get returns one project with its skills, or apperror.NotFound.
func (s *ProjectService) Get(ctx context.Context, id string) (*model.Project, error) {
	return s.projects.GetByID(ctx, strings.TrimSpace(id))
}

// Create validates the project, resolves its skill references and stores it.
// Featured defaults to false and order to 0.
func (s *ProjectService) Create(ctx context.Context, in ProjectInput) (*model.Project, error) {
	var p model.Project
	applyProjectInput(&p, in)
	if err := validateProject(&p); err != nil {
		return nil, err
	}

	skillIDs, err := resolveSkills(ctx, s.skills, in.Skills)
	if err != nil {
		return nil, err
	}

	if err := s.projects.Create(ctx, &p, skillIDs); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}

	s.logger.Info("project created",
		slog.String("id", p.ID),
		slog.String("title", p.Title),
		slog.Int("skills", len(skillIDs)),
	)
	return &p, nil
}

// Update applies the supplied fields, replaces the skill links when Skills is
// non-nil and, once the write succeeded, deletes the previous image if it
// was replaced.
func (s *ProjectService) Update(ctx context.Context, id string, in ProjectInput) (*model.Project, error) {
	p, err := s.projects.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	oldImage := p.ImageURL

	applyProjectInput(p, in)
	if err := validateProject(p); err != nil {
		return nil, err
	}

	var skillIDs []string
	if in.Skills != nil {
		if skillIDs, err = resolveSkills(ctx, s.skills, in.Skills); err != nil {
			return nil, err
		}
	} else {
		for _, sk := range p.Skills {
			skillIDs = append(skillIDs, sk.ID)
		}
	}

	if err := s.projects.Update(ctx, p, skillIDs); err != nil {
		return nil, fmt.Errorf("updating project: %w", err)
	}

	s.cleaner.replaced(ctx, oldImage, p.ImageURL)

	s.logger.Info("project updated", slog.String("id", p.ID))
	return p, nil
}

// Delete removes the project, then its image and the icons of skills that no
// other project uses. Image failures do not undo the delete.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	p, err := s.projects.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}

	releasedIcons, err := s.projects.Delete(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}

	s.cleaner.remove(ctx, append([]string{p.ImageURL}, releasedIcons...)...)

	s.logger.Info("project deleted",
		slog.String("id", p.ID),
		slog.Int("releasedIcons", len(releasedIcons)),
	)
	return nil
}

func applyProjectInput(p *model.Project, in ProjectInput) {
	setTrimmed(&p.Title, in.Title)
	setTrimmed(&p.Description, in.Description)
	setTrimmed(&p.ImageURL, in.ImageURL)
	setTrimmed(&p.GithubURL, in.GithubURL)
	setTrimmed(&p.LiveURL, in.LiveURL)
	set(&p.Featured, in.Featured)
	set(&p.Order, in.Order)
}

func validateProject(p *model.Project) error {
	if p.Title == "" {
		return apperror.ValidationFailed("title", "title is required")
	}
	if p.Description == "" {
		return apperror.ValidationFailed("description", "description is required")
	}
	if p.ImageURL == "" {
		return apperror.ValidationFailed("imageUrl", "image URL is required")
	}
	return nil
}

// resolveSkills turns references into skill ids, in order and without
// duplicates. Id references must exist. Name references reuse the skill with
// that name or create it. Resolution is not part of the project write, so a
// skill created here survives a failed project write.
func resolveSkills(ctx context.Context, skills repository.SkillRepository, refs []model.SkillRef) ([]string, error) {
	ids := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))

	for _, ref := range refs {
		var id string
		if ref.ByName() {
			name := strings.TrimSpace(ref.Name)
			if name == "" {
				return nil, apperror.ValidationFailed("skills", "skill name is required")
			}
			skill, err := skills.FindOrCreate(ctx, name, strings.TrimSpace(ref.IconURL))
			if err != nil {
				return nil, fmt.Errorf("resolving skill %q: %w", name, err)
			}
			id = skill.ID
		} else {
			skill, err := skills.GetByID(ctx, ref.ID)
			if errors.Is(err, apperror.ErrNotFound) {
				return nil, apperror.ValidationFailed("skills", fmt.Sprintf("unknown skill id %s", ref.ID))
			}
			if err != nil {
				return nil, fmt.Errorf("resolving skill %s: %w", ref.ID, err)
			}
			id = skill.ID
		}

		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}
