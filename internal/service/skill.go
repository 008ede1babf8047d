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

// ===== PROJECT SKILLS =====

// SkillInput is the body of a skill create or update.
type SkillInput struct {
	Name    *string `json:"name"`
	IconURL *string `json:"iconUrl"`
}

// SkillService manages the skill pool that projects link to.
type SkillService struct {
	skills  repository.SkillRepository
	cleaner imageCleaner
	logger  *slog.Logger
}

// NewSkillService creates a SkillService. store is used to remove replaced
// and deleted icons.
func NewSkillService(skills repository.SkillRepository, store media.Store, logger *slog.Logger) *SkillService {
	return &SkillService{
		skills:  skills,
		cleaner: newImageCleaner(store, logger),
		logger:  logger,
	}
}

// List returns the pool sorted by name.
func (s *SkillService) List(ctx context.Context) ([]model.Skill, error) {
	return s.skills.List(ctx)
}

func (s *SkillService) Get(ctx context.Context, id string) (*model.Skill, error) {
	return s.skills.GetByID(ctx, strings.TrimSpace(id))
}

// Create fails with a conflict when the name is taken.
func (s *SkillService) Create(ctx context.Context, in SkillInput) (*model.Skill, error) {
	var sk model.Skill
	setTrimmed(&sk.Name, in.Name)
	setTrimmed(&sk.IconURL, in.IconURL)

	var err error
	if sk.Name, err = required("name", "name", sk.Name); err != nil {
		return nil, err
	}

	if err := s.skills.Create(ctx, &sk); err != nil {
		return nil, err
	}
	s.logger.Info("skill created", slog.String("id", sk.ID), slog.String("name", sk.Name))
	return &sk, nil
}

// Update renames the skill or swaps its icon. The old icon is removed once
// the row is written.
func (s *SkillService) Update(ctx context.Context, id string, in SkillInput) (*model.Skill, error) {
	sk, err := s.skills.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	oldIcon := sk.IconURL

	setTrimmed(&sk.Name, in.Name)
	setTrimmed(&sk.IconURL, in.IconURL)
	if sk.Name, err = required("name", "name", sk.Name); err != nil {
		return nil, err
	}

	if err := s.skills.Update(ctx, sk); err != nil {
		return nil, err
	}

	s.cleaner.replaced(ctx, oldIcon, sk.IconURL)
	return sk, nil
}

// Delete detaches the skill from every project and removes its icon.
func (s *SkillService) Delete(ctx context.Context, id string) error {
	sk, err := s.skills.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return err
	}
	if err := s.skills.Delete(ctx, sk.ID); err != nil {
		return fmt.Errorf("deleting skill: %w", err)
	}

	s.cleaner.remove(ctx, sk.IconURL)

	s.logger.Info("skill deleted", slog.String("id", sk.ID), slog.String("name", sk.Name))
	return nil
}

// ===== GENERAL SKILLS =====

// GeneralSkillInput is the body of a general skill create or update. Order
// accepts a number or a numeric string.
type GeneralSkillInput struct {
	Name    *string  `json:"name"`
	IconURL *string  `json:"iconUrl"`
	Order   *FlexInt `json:"order"`
}

// GeneralSkillService manages the standalone skills list. Its icons are
// left alone on update and delete.
type GeneralSkillService struct {
	skills repository.GeneralSkillRepository
	logger *slog.Logger
}

// NewGeneralSkillService creates a GeneralSkillService.
func NewGeneralSkillService(skills repository.GeneralSkillRepository, logger *slog.Logger) *GeneralSkillService {
	return &GeneralSkillService{skills: skills, logger: logger}
}

// List returns general skills by order, then by creation time.
func (s *GeneralSkillService) List(ctx context.Context) ([]model.GeneralSkill, error) {
	return s.skills.List(ctx)
}

func (s *GeneralSkillService) Get(ctx context.Context, id string) (*model.GeneralSkill, error) {
	return s.skills.GetByID(ctx, strings.TrimSpace(id))
}

// Create stores a general skill. A name is required.
func (s *GeneralSkillService) Create(ctx context.Context, in GeneralSkillInput) (*model.GeneralSkill, error) {
	var gs model.GeneralSkill
	applyGeneralSkillInput(&gs, in)

	var err error
	if gs.Name, err = required("name", "name", gs.Name); err != nil {
		return nil, err
	}
	if err := s.skills.Create(ctx, &gs); err != nil {
		return nil, fmt.Errorf("creating general skill: %w", err)
	}
	return &gs, nil
}

// Update applies the supplied fields.
func (s *GeneralSkillService) Update(ctx context.Context, id string, in GeneralSkillInput) (*model.GeneralSkill, error) {
	gs, err := s.skills.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	applyGeneralSkillInput(gs, in)
	if gs.Name, err = required("name", "name", gs.Name); err != nil {
		return nil, err
	}
	if err := s.skills.Update(ctx, gs); err != nil {
		return nil, fmt.Errorf("updating general skill: %w", err)
	}
	return gs, nil
}

// Delete removes the row only. The icon stays on the media host.
func (s *GeneralSkillService) Delete(ctx context.Context, id string) error {
	return s.skills.Delete(ctx, strings.TrimSpace(id))
}

func applyGeneralSkillInput(gs *model.GeneralSkill, in GeneralSkillInput) {
	setTrimmed(&gs.Name, in.Name)
	setTrimmed(&gs.IconURL, in.IconURL)
	if in.Order != nil {
		gs.Order = int(*in.Order)
	}
}
