package sqlstore

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
)

// =========================================================================
// FIND OR CREATE TESTS
// =========================================================================

func TestSkillFindOrCreate_ReusesExisting(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, err := db.Skills().FindOrCreate(ctx, "React", "https://example.com/react.svg")
	if err != nil {
		t.Fatalf("FindOrCreate() error = %v", err)
	}
	second, err := db.Skills().FindOrCreate(ctx, "React", "https://example.com/other.svg")
	if err != nil {
		t.Fatalf("FindOrCreate() second call error = %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("ids differ: %s vs %s", first.ID, second.ID)
	}
	if second.IconURL != "https://example.com/react.svg" {
		t.Errorf("IconURL = %q, the existing row must not be overwritten", second.IconURL)
	}

	n, _ := db.Skills().Count(ctx)
	if n != 1 {
		t.Errorf("Count() = %d, want 1", n)
	}
}

func TestSkillFindOrCreate_Concurrent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	const workers = 8
	ids := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := db.Skills().FindOrCreate(ctx, "Go", "")
			errs[i] = err
			if s != nil {
				ids[i] = s.ID
			}
		}()
	}
	wg.Wait()

	for i := range workers {
		if errs[i] != nil {
			t.Fatalf("worker %d error = %v", i, errs[i])
		}
		if ids[i] != ids[0] {
			t.Errorf("worker %d got id %s, want %s", i, ids[i], ids[0])
		}
	}
}

// =========================================================================
// CRUD TESTS
// =========================================================================

func TestSkillCreate_DuplicateNameConflicts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Skills().Create(ctx, &model.Skill{Name: "Go"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	err := db.Skills().Create(ctx, &model.Skill{Name: "Go"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() duplicate error = %v, want ErrConflict", err)
	}
}

func TestSkillList_SortedByName(t *testing.T) {
	db := newTestDB(t)
	for _, name := range []string{"TypeScript", "Go", "React"} {
		createTestSkill(t, db, name, "")
	}

	skills, err := db.Skills().List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	got := skillNames(skills)
	want := []string{"Go", "React", "TypeScript"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSkillDelete_DetachesFromProjects(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	goSkill := createTestSkill(t, db, "Go", "")
	p := createTestProject(t, db, "api", 0, false, goSkill.ID)

	if err := db.Skills().Delete(ctx, goSkill.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	found, err := db.Projects().GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if len(found.Skills) != 0 {
		t.Errorf("project skills = %v, want none", skillNames(found.Skills))
	}
}

func TestSkillUpdateAndDelete_NotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Skills().Update(ctx, &model.Skill{ID: "nope", Name: "x"}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
	if err := db.Skills().Delete(ctx, "nope"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
	if _, err := db.Skills().GetByName(ctx, "nope"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByName() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// GENERAL SKILL TESTS
// =========================================================================

func TestGeneralSkillLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	gs := db.GeneralSkills()

	b := &model.GeneralSkill{Name: "Docker", Order: 2}
	a := &model.GeneralSkill{Name: "Linux", Order: 1}
	for _, s := range []*model.GeneralSkill{b, a} {
		if err := gs.Create(ctx, s); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	list, err := gs.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "Linux" {
		t.Fatalf("List() = %+v, want Linux first", list)
	}

	b.Order = 0
	if err := gs.Update(ctx, b); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	found, err := gs.GetByID(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Order != 0 {
		t.Errorf("Order = %d, want 0", found.Order)
	}

	if err := gs.Delete(ctx, b.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := gs.GetByID(ctx, b.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete: error = %v, want ErrNotFound", err)
	}
}
