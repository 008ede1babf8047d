package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

// DefaultSiteTitle is shown when no site title has been configured.
const DefaultSiteTitle = "Portfolio"

// PageMeta is the <head> data every public page carries.
type PageMeta struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Keywords        []string `json:"keywords"`
	DarkModeDefault bool     `json:"darkModeDefault"`
}

// HomeView is everything the home page renders. A section whose fetch
// failed is empty; Profile and Quote may be nil.
type HomeView struct {
	Meta       PageMeta             `json:"meta"`
	Profile    *model.Profile       `json:"profile"`
	Projects   []model.Project      `json:"projects"`
	Skills     []model.GeneralSkill `json:"skills"`
	Education  []model.Education    `json:"education"`
	Experience []model.Experience   `json:"experience"`
	Quote      *model.Quote         `json:"quote"`
}

// ProjectsView is what the projects page renders.
type ProjectsView struct {
	Meta     PageMeta        `json:"meta"`
	Profile  *model.Profile  `json:"profile"`
	Projects []model.Project `json:"projects"`
}

// AboutView is what the about page renders.
type AboutView struct {
	Meta    PageMeta       `json:"meta"`
	Profile *model.Profile `json:"profile"`
	Content string         `json:"content"`
}

// HomeRepos groups the read-only repositories the public pages use.
type HomeRepos struct {
	Profile       repository.ProfileRepository
	Projects      repository.ProjectRepository
	GeneralSkills repository.GeneralSkillRepository
	Education     repository.EducationRepository
	Experience    repository.ExperienceRepository
	Quotes        repository.QuoteRepository
	About         repository.AboutRepository
	Settings      repository.SiteSettingsRepository
}

// HomeService builds the public page view-models. Every section is fetched
// concurrently and a failing section never fails the page.
type HomeService struct {
	repos  HomeRepos
	logger *slog.Logger
	pick   func(n int) int
}

// NewHomeService creates a HomeService that picks the home page quote at
// random.
func NewHomeService(repos HomeRepos, logger *slog.Logger) *HomeService {
	return &HomeService{repos: repos, logger: logger, pick: rand.IntN}
}

// Home fetches every section in parallel and picks one quote at random.
func (s *HomeService) Home(ctx context.Context) *HomeView {
	v := &HomeView{
		Projects:   []model.Project{},
		Skills:     []model.GeneralSkill{},
		Education:  []model.Education{},
		Experience: []model.Experience{},
	}
	var quotes []model.Quote

	var g errgroup.Group
	s.fetchMeta(ctx, &g, &v.Meta)
	s.fetchProfile(ctx, &g, &v.Profile)
	g.Go(func() error {
		projects, err := s.repos.Projects.List(ctx, repository.ProjectFilter{FeaturedOnly: true})
		if s.tolerate("projects", err) {
			v.Projects = projects
		}
		return nil
	})
	g.Go(func() error {
		skills, err := s.repos.GeneralSkills.List(ctx)
		if s.tolerate("general skills", err) {
			v.Skills = skills
		}
		return nil
	})
	g.Go(func() error {
		edu, err := s.repos.Education.List(ctx)
		if s.tolerate("education", err) {
			v.Education = edu
		}
		return nil
	})
	g.Go(func() error {
		exps, err := s.repos.Experience.List(ctx)
		if s.tolerate("experience", err) {
			v.Experience = exps
		}
		return nil
	})
	g.Go(func() error {
		qs, err := s.repos.Quotes.List(ctx)
		if s.tolerate("quotes", err) {
			quotes = qs
		}
		return nil
	})
	_ = g.Wait()

	v.Quote = s.randomQuote(quotes)
	return v
}

// Projects is the full project list page.
func (s *HomeService) Projects(ctx context.Context) *ProjectsView {
	v := &ProjectsView{Projects: []model.Project{}}

	var g errgroup.Group
	s.fetchMeta(ctx, &g, &v.Meta)
	s.fetchProfile(ctx, &g, &v.Profile)
	g.Go(func() error {
		projects, err := s.repos.Projects.List(ctx, repository.ProjectFilter{})
		if s.tolerate("projects", err) {
			v.Projects = projects
		}
		return nil
	})
	_ = g.Wait()
	return v
}

// About builds the about page. A failed fetch leaves the content empty.
func (s *HomeService) About(ctx context.Context) *AboutView {
	v := &AboutView{}

	var g errgroup.Group
	s.fetchMeta(ctx, &g, &v.Meta)
	s.fetchProfile(ctx, &g, &v.Profile)
	g.Go(func() error {
		about, err := s.repos.About.Get(ctx)
		if s.tolerate("about", err) {
			v.Content = about.Content
		}
		return nil
	})
	_ = g.Wait()
	return v
}

func (s *HomeService) fetchMeta(ctx context.Context, g *errgroup.Group, meta *PageMeta) {
	*meta = PageMeta{Title: DefaultSiteTitle, Keywords: []string{}}
	g.Go(func() error {
		st, err := s.repos.Settings.Get(ctx)
		if s.tolerate("site settings", err) {
			*meta = MetaFrom(st)
		}
		return nil
	})
}

func (s *HomeService) fetchProfile(ctx context.Context, g *errgroup.Group, profile **model.Profile) {
	g.Go(func() error {
		p, err := s.repos.Profile.Get(ctx)
		if errors.Is(err, apperror.ErrNotFound) {
			return nil
		}
		if s.tolerate("profile", err) {
			*profile = p
		}
		return nil
	})
}

// tolerate logs a failed section fetch and reports whether err was nil.
func (s *HomeService) tolerate(section string, err error) bool {
	if err == nil {
		return true
	}
	s.logger.Warn("page section unavailable",
		slog.String("section", section),
		slog.String("error", err.Error()),
	)
	return false
}

func (s *HomeService) randomQuote(quotes []model.Quote) *model.Quote {
	if len(quotes) == 0 {
		return nil
	}
	q := quotes[s.pick(len(quotes))]
	return &q
}

// MetaFrom turns stored settings into page metadata: an empty title falls
// back to DefaultSiteTitle and keywords are split on commas.
func MetaFrom(st *model.SiteSettings) PageMeta {
	meta := PageMeta{Title: DefaultSiteTitle, Keywords: []string{}}
	if st == nil {
		return meta
	}
	if t := strings.TrimSpace(st.Title); t != "" {
		meta.Title = t
	}
	meta.Description = strings.TrimSpace(st.Description)
	meta.Keywords = cleanList(strings.Split(st.Keywords, ","))
	meta.DarkModeDefault = st.DarkModeDefault
	return meta
}
