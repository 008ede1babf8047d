package sqlstore

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

var _ repository.SkillRepository = (*SkillDB)(nil)

// SkillDB stores the project skill pool. Names are unique.
type SkillDB struct {
	*DB
}

// Skills returns the skill repository.
func (db *DB) Skills() *SkillDB { return &SkillDB{db} }

const skillColumns = `id, name, icon_url, created_at, updated_at`

func scanSkill(row rowScanner) (*model.Skill, error) {
	var s model.Skill
	if err := row.Scan(&s.ID, &s.Name, &s.IconURL, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns skills sorted by name.
func (db *SkillDB) List(ctx context.Context) ([]model.Skill, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+skillColumns+` FROM skills ORDER BY name ASC`)
	if err != nil {
		return nil, classify("listing skills", err)
	}
	defer rows.Close()

	skills := []model.Skill{}
	for rows.Next() {
		s, err := scanSkill(rows)
		if err != nil {
			return nil, classify("scanning skill", err)
		}
		skills = append(skills, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterating skills", err)
	}
	return skills, nil
}

// GetByID returns apperror.NotFound when no skill has the id.
func (db *SkillDB) GetByID(ctx context.Context, id string) (*model.Skill, error) {
	s, err := scanSkill(db.conn.QueryRowContext(ctx, db.q(`SELECT `+skillColumns+` FROM skills WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("skill", id)
		}
		return nil, classify("getting skill "+id, err)
	}
	return s, nil
}

// GetByName returns NotFound with the name in place of an id when missing.
func (db *SkillDB) GetByName(ctx context.Context, name string) (*model.Skill, error) {
	s, err := scanSkill(db.conn.QueryRowContext(ctx, db.q(`SELECT `+skillColumns+` FROM skills WHERE name = ?`), name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("skill", name)
		}
		return nil, classify("getting skill "+name, err)
	}
	return s, nil
}

// FindOrCreate inserts the skill unless the name is taken, then reads back
// whichever row won. Two concurrent callers get the same skill.
func (db *SkillDB) FindOrCreate(ctx context.Context, name, iconURL string) (*model.Skill, error) {
	ts := now()
	_, err := db.conn.ExecContext(ctx, db.q(`
		INSERT INTO skills (id, name, icon_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (name) DO NOTHING`),
		xid.New().String(), name, iconURL, ts, ts,
	)
	if err != nil {
		return nil, classify("creating skill "+name, err)
	}
	return db.GetByName(ctx, name)
}

// Create assigns the id and timestamps, then inserts the row.
func (db *SkillDB) Create(ctx context.Context, s *model.Skill) error {
	ts := now()
	s.ID = xid.New().String()
	s.CreatedAt = ts
	s.UpdatedAt = ts

	_, err := db.conn.ExecContext(ctx, db.q(`
		INSERT INTO skills (`+skillColumns+`) VALUES (?, ?, ?, ?, ?)`),
		s.ID, s.Name, s.IconURL, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("skill", s.Name)
		}
		return classify("creating skill", err)
	}
	return nil
}

// Update rewrites the row and bumps updated_at.
func (db *SkillDB) Update(ctx context.Context, s *model.Skill) error {
	s.UpdatedAt = now()

	res, err := db.conn.ExecContext(ctx, db.q(`
		UPDATE skills SET name = ?, icon_url = ?, updated_at = ? WHERE id = ?`),
		s.Name, s.IconURL, s.UpdatedAt, s.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("skill", s.Name)
		}
		return classify("updating skill "+s.ID, err)
	}
	return checkAffected(res, "skill", s.ID)
}

// Delete removes the skill and detaches it from every project.
func (db *SkillDB) Delete(ctx context.Context, id string) error {
	return db.withTx(ctx, "deleting skill", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, db.q(`DELETE FROM project_skills WHERE skill_id = ?`), id); err != nil {
			return classify("unlinking skill "+id, err)
		}
		res, err := tx.ExecContext(ctx, db.q(`DELETE FROM skills WHERE id = ?`), id)
		if err != nil {
			return classify("deleting skill "+id, err)
		}
		return checkAffected(res, "skill", id)
	})
}

// Count returns the number of skills.
func (db *SkillDB) Count(ctx context.Context) (int, error) {
	return db.count(ctx, "skills")
}
