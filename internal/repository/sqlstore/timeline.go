package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"slices"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

var (
	_ repository.ExperienceRepository = (*ExperienceDB)(nil)
	_ repository.EducationRepository  = (*EducationDB)(nil)
)

// ===== EXPERIENCE =====

// ExperienceDB stores work history entries.
type ExperienceDB struct {
	*DB
}

// Experiences returns the experience repository.
func (db *DB) Experiences() *ExperienceDB { return &ExperienceDB{db} }

const experienceColumns = `id, title, company, location, start_date, end_date, description, skills, sort_order, logo_url, created_at, updated_at`

func scanExperience(row rowScanner) (*model.Experience, error) {
	var (
		e       model.Experience
		endDate sql.NullTime
		skills  string
	)
	err := row.Scan(&e.ID, &e.Title, &e.Company, &e.Location, &e.StartDate, &endDate,
		&e.Description, &skills, &e.Order, &e.LogoURL, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.EndDate = timePtr(endDate)
	if e.Skills, err = decodeList(skills); err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns experiences most recent first. Rows are read in display order
// and then stably sorted by start date, so order only breaks ties between
// positions that started on the same day.
func (db *ExperienceDB) List(ctx context.Context) ([]model.Experience, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+experienceColumns+` FROM experiences ORDER BY sort_order ASC, created_at ASC, id ASC`)
	if err != nil {
		return nil, classify("listing experiences", err)
	}
	defer rows.Close()

	exps := []model.Experience{}
	for rows.Next() {
		e, err := scanExperience(rows)
		if err != nil {
			return nil, classify("scanning experience", err)
		}
		exps = append(exps, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterating experiences", err)
	}

	slices.SortStableFunc(exps, func(a, b model.Experience) int {
		return b.StartDate.Compare(a.StartDate)
	})
	return exps, nil
}

// GetByID returns apperror.NotFound when no experience has the id.
func (db *ExperienceDB) GetByID(ctx context.Context, id string) (*model.Experience, error) {
	e, err := scanExperience(db.conn.QueryRowContext(ctx,
		db.q(`SELECT `+experienceColumns+` FROM experiences WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("experience", id)
		}
		return nil, classify("getting experience "+id, err)
	}
	return e, nil
}

// Create assigns the id and timestamps, then inserts the row.
func (db *ExperienceDB) Create(ctx context.Context, e *model.Experience) error {
	ts := now()
	e.ID = xid.New().String()
	e.CreatedAt = ts
	e.UpdatedAt = ts
	if e.Skills == nil {
		e.Skills = []string{}
	}

	_, err := db.conn.ExecContext(ctx, db.q(`
		INSERT INTO experiences (`+experienceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.Title, e.Company, e.Location, e.StartDate.UTC(), nullTime(e.EndDate),
		e.Description, encodeList(e.Skills), e.Order, e.LogoURL, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return classify("creating experience", err)
	}
	return nil
}

// Update rewrites the row and bumps updated_at.
func (db *ExperienceDB) Update(ctx context.Context, e *model.Experience) error {
	e.UpdatedAt = now()
	if e.Skills == nil {
		e.Skills = []string{}
	}

	res, err := db.conn.ExecContext(ctx, db.q(`
		UPDATE experiences
		SET title = ?, company = ?, location = ?, start_date = ?, end_date = ?,
		    description = ?, skills = ?, sort_order = ?, logo_url = ?, updated_at = ?
		WHERE id = ?`),
		e.Title, e.Company, e.Location, e.StartDate.UTC(), nullTime(e.EndDate),
		e.Description, encodeList(e.Skills), e.Order, e.LogoURL, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return classify("updating experience "+e.ID, err)
	}
	return checkAffected(res, "experience", e.ID)
}

// Delete returns apperror.NotFound when nothing was removed.
func (db *ExperienceDB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, db.q(`DELETE FROM experiences WHERE id = ?`), id)
	if err != nil {
		return classify("deleting experience "+id, err)
	}
	return checkAffected(res, "experience", id)
}

// Count returns the number of work history entries.
func (db *ExperienceDB) Count(ctx context.Context) (int, error) {
	return db.count(ctx, "experiences")
}

// ===== EDUCATION =====

// EducationDB stores education entries.
type EducationDB struct {
	*DB
}

// Education returns the education repository.
func (db *DB) Education() *EducationDB { return &EducationDB{db} }

const educationColumns = `id, institution, degree, field, location, start_date, end_date, description, achievements, sort_order, logo_url, created_at, updated_at`

func scanEducation(row rowScanner) (*model.Education, error) {
	var (
		e            model.Education
		endDate      sql.NullTime
		achievements string
	)
	err := row.Scan(&e.ID, &e.Institution, &e.Degree, &e.Field, &e.Location, &e.StartDate, &endDate,
		&e.Description, &achievements, &e.Order, &e.LogoURL, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	e.EndDate = timePtr(endDate)
	if e.Achievements, err = decodeList(achievements); err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns education entries by order, oldest first on ties.
func (db *EducationDB) List(ctx context.Context) ([]model.Education, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+educationColumns+` FROM education ORDER BY sort_order ASC, created_at ASC, id ASC`)
	if err != nil {
		return nil, classify("listing education", err)
	}
	defer rows.Close()

	items := []model.Education{}
	for rows.Next() {
		e, err := scanEducation(rows)
		if err != nil {
			return nil, classify("scanning education", err)
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterating education", err)
	}
	return items, nil
}

// GetByID returns apperror.NotFound when no education has the id.
func (db *EducationDB) GetByID(ctx context.Context, id string) (*model.Education, error) {
	e, err := scanEducation(db.conn.QueryRowContext(ctx,
		db.q(`SELECT `+educationColumns+` FROM education WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("education", id)
		}
		return nil, classify("getting education "+id, err)
	}
	return e, nil
}

// Create assigns the id and timestamps, then inserts the row.
func (db *EducationDB) Create(ctx context.Context, e *model.Education) error {
	ts := now()
	e.ID = xid.New().String()
	e.CreatedAt = ts
	e.UpdatedAt = ts
	if e.Achievements == nil {
		e.Achievements = []string{}
	}

	_, err := db.conn.ExecContext(ctx, db.q(`
		INSERT INTO education (`+educationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.Institution, e.Degree, e.Field, e.Location, e.StartDate.UTC(), nullTime(e.EndDate),
		e.Description, encodeList(e.Achievements), e.Order, e.LogoURL, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return classify("creating education", err)
	}
	return nil
}

// Update rewrites the row and bumps updated_at.
func (db *EducationDB) Update(ctx context.Context, e *model.Education) error {
	e.UpdatedAt = now()
	if e.Achievements == nil {
		e.Achievements = []string{}
	}

	res, err := db.conn.ExecContext(ctx, db.q(`
		UPDATE education
		SET institution = ?, degree = ?, field = ?, location = ?, start_date = ?, end_date = ?,
		    description = ?, achievements = ?, sort_order = ?, logo_url = ?, updated_at = ?
		WHERE id = ?`),
		e.Institution, e.Degree, e.Field, e.Location, e.StartDate.UTC(), nullTime(e.EndDate),
		e.Description, encodeList(e.Achievements), e.Order, e.LogoURL, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return classify("updating education "+e.ID, err)
	}
	return checkAffected(res, "education", e.ID)
}

// Delete returns apperror.NotFound when nothing was removed.
func (db *EducationDB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, db.q(`DELETE FROM education WHERE id = ?`), id)
	if err != nil {
		return classify("deleting education "+id, err)
	}
	return checkAffected(res, "education", id)
}
