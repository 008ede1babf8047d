package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

func createTestSkill(t *testing.T, db *DB, name, icon string) *model.Skill {
	t.Helper()
	s, err := db.Skills().FindOrCreate(context.Background(), name, icon)
	if err != nil {
		t.Fatalf("failed to create test skill: %v", err)
	}
	return s
}

func createTestProject(t *testing.T, db *DB, title string, order int, featured bool, skillIDs ...string) *model.Project {
	t.Helper()
	p := &model.Project{
		Title:       title,
		Description: title + " description",
		ImageURL:    "https://res.cloudinary.com/demo/image/upload/v1/portfolio/" + title + ".png",
		Featured:    featured,
		Order:       order,
	}
	if err := db.Projects().Create(context.Background(), p, skillIDs); err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}
	return p
}

func skillNames(skills []model.Skill) []string {
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name
	}
	return names
}

// =========================================================================
// CREATE / GET TESTS
// =========================================================================

func TestProjectCreate_LinksSkillsInOrder(t *testing.T) {
	db := newTestDB(t)
	goSkill := createTestSkill(t, db, "Go", "")
	react := createTestSkill(t, db, "React", "")

	p := createTestProject(t, db, "site", 0, false, react.ID, goSkill.ID, react.ID)

	if p.ID == "" || p.CreatedAt.IsZero() {
		t.Fatal("Create() should assign ID and timestamps")
	}
	got := skillNames(p.Skills)
	if len(got) != 2 || got[0] != "React" || got[1] != "Go" {
		t.Errorf("Skills = %v, want [React Go] (duplicates collapsed)", got)
	}

	found, err := db.Projects().GetByID(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(found.Skills) != 2 {
		t.Errorf("GetByID() skills = %v, want 2", skillNames(found.Skills))
	}
}

func TestProjectCreate_UnknownSkillRollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := &model.Project{Title: "t", Description: "d", ImageURL: "i"}
	err := db.Projects().Create(ctx, p, []string{"missing"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Create() error = %v, want ErrNotFound", err)
	}

	n, err := db.Projects().Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 0 {
		t.Errorf("Count() = %d, want 0: the insert must roll back", n)
	}
}

func TestProjectGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Projects().GetByID(context.Background(), "nope")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// LIST TESTS
// =========================================================================

func TestProjectList_OrderAndFeaturedFilter(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	createTestProject(t, db, "third", 2, true)
	createTestProject(t, db, "hidden", 0, false)
	createTestProject(t, db, "first", 1, true)
	createTestProject(t, db, "second", 1, true)

	featured, err := db.Projects().List(ctx, repository.ProjectFilter{FeaturedOnly: true})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	var titles []string
	for _, p := range featured {
		titles = append(titles, p.Title)
	}
	want := []string{"first", "second", "third"}
	if len(titles) != len(want) {
		t.Fatalf("featured = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("featured[%d] = %q, want %q", i, titles[i], want[i])
		}
	}

	all, err := db.Projects().List(ctx, repository.ProjectFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 4 || all[0].Title != "hidden" {
		t.Errorf("List() first = %q of %d, want hidden of 4", all[0].Title, len(all))
	}
}

func TestProjectList_Empty(t *testing.T) {
	db := newTestDB(t)

	projects, err := db.Projects().List(context.Background(), repository.ProjectFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if projects == nil || len(projects) != 0 {
		t.Errorf("List() = %v, want empty non-nil slice", projects)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestProjectUpdate_ReplacesSkillLinks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	react := createTestSkill(t, db, "React", "")
	goSkill := createTestSkill(t, db, "Go", "")

	p := createTestProject(t, db, "site", 0, false, react.ID)

	p.Title = "site v2"
	if err := db.Projects().Update(ctx, p, []string{react.ID, goSkill.ID}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := db.Projects().GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Title != "site v2" {
		t.Errorf("Title = %q, want %q", found.Title, "site v2")
	}
	if got := skillNames(found.Skills); len(got) != 2 || got[0] != "React" || got[1] != "Go" {
		t.Errorf("Skills = %v, want [React Go]", got)
	}
	if found.Skills[0].ID != react.ID {
		t.Error("React should be the same skill row after relinking")
	}
}

func TestProjectUpdate_FailedRelinkKeepsOldLinks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	react := createTestSkill(t, db, "React", "")

	p := createTestProject(t, db, "site", 0, false, react.ID)
	p.Title = "renamed"

	err := db.Projects().Update(ctx, p, []string{"missing"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}

	found, err := db.Projects().GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Title != "site" {
		t.Errorf("Title = %q, the failed update must not be applied", found.Title)
	}
	if len(found.Skills) != 1 || found.Skills[0].ID != react.ID {
		t.Errorf("Skills = %v, want the original link kept", skillNames(found.Skills))
	}
}

func TestProjectUpdate_NotFound(t *testing.T) {
	db := newTestDB(t)

	p := &model.Project{ID: "nope", Title: "t", Description: "d", ImageURL: "i"}
	err := db.Projects().Update(context.Background(), p, nil)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestProjectDelete_ReleasesSoleSkillIcons(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	solo := createTestSkill(t, db, "Svelte", "https://res.cloudinary.com/demo/image/upload/v1/portfolio/svelte.png")
	shared := createTestSkill(t, db, "Go", "https://res.cloudinary.com/demo/image/upload/v1/portfolio/go.png")
	plain := createTestSkill(t, db, "SQL", "")

	doomed := createTestProject(t, db, "doomed", 0, false, solo.ID, shared.ID, plain.ID)
	createTestProject(t, db, "survivor", 1, false, shared.ID)

	released, err := db.Projects().Delete(ctx, doomed.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(released) != 1 || released[0] != solo.IconURL {
		t.Errorf("released = %v, want only %q", released, solo.IconURL)
	}

	if _, err := db.Projects().GetByID(ctx, doomed.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete: error = %v, want ErrNotFound", err)
	}

	soloAfter, err := db.Skills().GetByID(ctx, solo.ID)
	if err != nil {
		t.Fatalf("skill should survive project deletion: %v", err)
	}
	if soloAfter.IconURL != "" {
		t.Errorf("released skill icon = %q, want cleared", soloAfter.IconURL)
	}

	sharedAfter, err := db.Skills().GetByID(ctx, shared.ID)
	if err != nil {
		t.Fatalf("GetByID(shared) error = %v", err)
	}
	if sharedAfter.IconURL != shared.IconURL {
		t.Errorf("shared skill icon = %q, want untouched", sharedAfter.IconURL)
	}
}

func TestProjectDelete_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Projects().Delete(context.Background(), "nope")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}
