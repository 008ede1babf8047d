package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Counter is any repository that can count its rows.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Stats are the admin dashboard counts.
type Stats struct {
	Projects   int `json:"projects"`
	Skills     int `json:"skills"`
	Experience int `json:"experience"`
	Quotes     int `json:"quotes"`
}

// DashboardService computes the admin dashboard counts.
type DashboardService struct {
	projects, skills, experience, quotes Counter
}

// NewDashboardService creates a DashboardService over the four counted
// collections.
func NewDashboardService(projects, skills, experience, quotes Counter) *DashboardService {
	return &DashboardService{projects: projects, skills: skills, experience: experience, quotes: quotes}
}

// Stats counts the four collections concurrently. Unlike the public pages a
// failed count fails the whole call.
func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	var st Stats
	g, ctx := errgroup.WithContext(ctx)

	count := func(name string, c Counter, dst *int) {
		g.Go(func() error {
			n, err := c.Count(ctx)
			if err != nil {
				return fmt.Errorf("counting %s: %w", name, err)
			}
			*dst = n
			return nil
		})
	}
	count("projects", s.projects, &st.Projects)
	count("skills", s.skills, &st.Skills)
	count("experience", s.experience, &st.Experience)
	count("quotes", s.quotes, &st.Quotes)

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &st, nil
}
