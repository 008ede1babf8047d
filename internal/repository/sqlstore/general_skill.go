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

var _ repository.GeneralSkillRepository = (*GeneralSkillDB)(nil)

// GeneralSkillDB stores general skills.
type GeneralSkillDB struct {
	*DB
}

// GeneralSkills returns the general skill repository.
func (db *DB) GeneralSkills() *GeneralSkillDB { return &GeneralSkillDB{db} }

const generalSkillColumns = `id, name, icon_url, sort_order, created_at, updated_at`

func scanGeneralSkill(row rowScanner) (*model.GeneralSkill, error) {
	var s model.GeneralSkill
	if err := row.Scan(&s.ID, &s.Name, &s.IconURL, &s.Order, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// List returns general skills by order, oldest first on ties.
func (db *GeneralSkillDB) List(ctx context.Context) ([]model.GeneralSkill, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+generalSkillColumns+` FROM general_skills ORDER BY sort_order ASC, created_at ASC, id ASC`)
	if err != nil {
		return nil, classify("listing general skills", err)
	}
	defer rows.Close()

	skills := []model.GeneralSkill{}
	for rows.Next() {
		s, err := scanGeneralSkill(rows)
		if err != nil {
			return nil, classify("scanning general skill", err)
		}
		skills = append(skills, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterating general skills", err)
	}
	return skills, nil
}

// GetByID returns apperror.NotFound when no general skill has the id.
func (db *GeneralSkillDB) GetByID(ctx context.Context, id string) (*model.GeneralSkill, error) {
	s, err := scanGeneralSkill(db.conn.QueryRowContext(ctx,
		db.q(`SELECT `+generalSkillColumns+` FROM general_skills WHERE id = ?`), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("general skill", id)
		}
		return nil, classify("getting general skill "+id, err)
	}
	return s, nil
}

// Create assigns the id and timestamps, then inserts the row.
func (db *GeneralSkillDB) Create(ctx context.Context, s *model.GeneralSkill) error {
	ts := now()
	s.ID = xid.New().String()
	s.CreatedAt = ts
	s.UpdatedAt = ts

	_, err := db.conn.ExecContext(ctx, db.q(`
		INSERT INTO general_skills (`+generalSkillColumns+`) VALUES (?, ?, ?, ?, ?, ?)`),
		s.ID, s.Name, s.IconURL, s.Order, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return classify("creating general skill", err)
	}
	return nil
}

// Update rewrites the row and bumps updated_at.
func (db *GeneralSkillDB) Update(ctx context.Context, s *model.GeneralSkill) error {
	s.UpdatedAt = now()

	res, err := db.conn.ExecContext(ctx, db.q(`
		UPDATE general_skills SET name = ?, icon_url = ?, sort_order = ?, updated_at = ? WHERE id = ?`),
		s.Name, s.IconURL, s.Order, s.UpdatedAt, s.ID,
	)
	if err != nil {
		return classify("updating general skill "+s.ID, err)
	}
	return checkAffected(res, "general skill", s.ID)
}

// Delete returns apperror.NotFound when nothing was removed.
func (db *GeneralSkillDB) Delete(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, db.q(`DELETE FROM general_skills WHERE id = ?`), id)
	if err != nil {
		return classify("deleting general skill "+id, err)
	}
	return checkAffected(res, "general skill", id)
}
