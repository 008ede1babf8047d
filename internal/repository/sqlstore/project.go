package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/xid"

	"github.com/sakif/portfolio/internal/apperror"
	"github.com/sakif/portfolio/internal/model"
	"github.com/sakif/portfolio/internal/repository"
)

var _ repository.ProjectRepository = (*ProjectDB)(nil)

// ProjectDB stores projects and their ordered skill links.
type ProjectDB struct {
	*DB
}

// Projects returns the project repository.
func (db *DB) Projects() *ProjectDB { return &ProjectDB{db} }

const projectColumns = `id, title, description, image_url, github_url, live_url, featured, sort_order, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*model.Project, error) {
	var p model.Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.ImageURL, &p.GithubURL, &p.LiveURL,
		&p.Featured, &p.Order, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Skills = []model.Skill{}
	return &p, nil
}

// List returns projects by order ascending, oldest first on ties, each with
// its skills attached.
func (db *ProjectDB) List(ctx context.Context, filter repository.ProjectFilter) ([]model.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var args []any
	if filter.FeaturedOnly {
		query += ` WHERE featured = ?`
		args = append(args, true)
	}
	query += ` ORDER BY sort_order ASC, created_at ASC, id ASC`

	rows, err := db.conn.QueryContext(ctx, db.q(query), args...)
	if err != nil {
		return nil, classify("listing projects", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, classify("scanning project", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterating projects", err)
	}
	rows.Close()

	if len(projects) == 0 {
		return projects, nil
	}

	ids := make([]string, len(projects))
	for i := range projects {
		ids[i] = projects[i].ID
	}
	links, err := db.skillsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if skills, ok := links[projects[i].ID]; ok {
			projects[i].Skills = skills
		} else {
			projects[i].Skills = []model.Skill{}
		}
	}
	return projects, nil
}

// GetByID returns apperror.NotFound when no project has the id.
func (db *ProjectDB) GetByID(ctx context.Context, id string) (*model.Project, error) {
	row := db.conn.QueryRowContext(ctx, db.q(`SELECT `+projectColumns+` FROM projects WHERE id = ?`), id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("project", id)
		}
		return nil, classify("getting project "+id, err)
	}

	links, err := db.skillsFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if skills, ok := links[id]; ok {
		p.Skills = skills
	}
	return p, nil
}

// skillsFor loads the linked skills of the given projects, keyed by project id
// and kept in link order.
func (db *ProjectDB) skillsFor(ctx context.Context, projectIDs []string) (map[string][]model.Skill, error) {
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(projectIDs)), ",")
	args := make([]any, len(projectIDs))
	for i, id := range projectIDs {
		args[i] = id
	}

	rows, err := db.conn.QueryContext(ctx, db.q(`
		SELECT ps.project_id, s.id, s.name, s.icon_url, s.created_at, s.updated_at
		FROM project_skills ps
		JOIN skills s ON s.id = ps.skill_id
		WHERE ps.project_id IN (`+placeholders+`)
		ORDER BY ps.project_id, ps.position`), args...)
	if err != nil {
		return nil, classify("loading project skills", err)
	}
	defer rows.Close()

	out := make(map[string][]model.Skill, len(projectIDs))
	for rows.Next() {
		var projectID string
		var s model.Skill
		if err := rows.Scan(&projectID, &s.ID, &s.Name, &s.IconURL, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, classify("scanning project skill", err)
		}
		out[projectID] = append(out[projectID], s)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterating project skills", err)
	}
	return out, nil
}

// Create assigns ID and timestamps, inserts the row and links skillIDs in
// one transaction. An unknown skill id aborts the whole insert.
func (db *ProjectDB) Create(ctx context.Context, p *model.Project, skillIDs []string) error {
	ts := now()
	p.ID = xid.New().String()
	p.CreatedAt = ts
	p.UpdatedAt = ts

	err := db.withTx(ctx, "creating project", func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, db.q(`
			INSERT INTO projects (`+projectColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			p.ID, p.Title, p.Description, p.ImageURL, p.GithubURL, p.LiveURL,
			p.Featured, p.Order, p.CreatedAt, p.UpdatedAt,
		)
		if err != nil {
			return classify("inserting project", err)
		}
		return db.linkSkills(ctx, tx, p.ID, skillIDs)
	})
	if err != nil {
		return err
	}

	return db.attachSkills(ctx, p)
}

// Update rewrites every column and replaces the skill links. Either both
// happen or neither does.
func (db *ProjectDB) Update(ctx context.Context, p *model.Project, skillIDs []string) error {
	p.UpdatedAt = now()

	err := db.withTx(ctx, "updating project", func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, db.q(`
			UPDATE projects
			SET title = ?, description = ?, image_url = ?, github_url = ?, live_url = ?,
			    featured = ?, sort_order = ?, updated_at = ?
			WHERE id = ?`),
			p.Title, p.Description, p.ImageURL, p.GithubURL, p.LiveURL,
			p.Featured, p.Order, p.UpdatedAt, p.ID,
		)
		if err != nil {
			return classify("updating project "+p.ID, err)
		}
		if err := checkAffected(res, "project", p.ID); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, db.q(`DELETE FROM project_skills WHERE project_id = ?`), p.ID); err != nil {
			return classify("unlinking project skills", err)
		}
		return db.linkSkills(ctx, tx, p.ID, skillIDs)
	})
	if err != nil {
		return err
	}

	return db.attachSkills(ctx, p)
}

// linkSkills inserts skill links in the given order, ignoring duplicates.
func (db *ProjectDB) linkSkills(ctx context.Context, tx *sql.Tx, projectID string, skillIDs []string) error {
	seen := make(map[string]bool, len(skillIDs))
	position := 0
	for _, skillID := range skillIDs {
		if seen[skillID] {
			continue
		}
		seen[skillID] = true

		var exists int
		err := tx.QueryRowContext(ctx, db.q(`SELECT 1 FROM skills WHERE id = ?`), skillID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("skill", skillID)
		}
		if err != nil {
			return classify("checking skill "+skillID, err)
		}

		if _, err := tx.ExecContext(ctx, db.q(`
			INSERT INTO project_skills (project_id, skill_id, position) VALUES (?, ?, ?)`),
			projectID, skillID, position,
		); err != nil {
			return classify("linking skill "+skillID, err)
		}
		position++
	}
	return nil
}

func (db *ProjectDB) attachSkills(ctx context.Context, p *model.Project) error {
	links, err := db.skillsFor(ctx, []string{p.ID})
	if err != nil {
		return err
	}
	p.Skills = links[p.ID]
	if p.Skills == nil {
		p.Skills = []model.Skill{}
	}
	return nil
}

// Delete removes the project and its links. Skills left without any project
// have their icon cleared in the same transaction, and the cleared icon URLs
// are returned.
func (db *ProjectDB) Delete(ctx context.Context, id string) ([]string, error) {
	var released []string

	err := db.withTx(ctx, "deleting project", func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, db.q(`
			SELECT s.id, s.icon_url
			FROM skills s
			JOIN project_skills ps ON ps.skill_id = s.id
			WHERE ps.project_id = ?
			  AND s.icon_url <> ''
			  AND NOT EXISTS (
			      SELECT 1 FROM project_skills other
			      WHERE other.skill_id = s.id AND other.project_id <> ?
			  )`), id, id)
		if err != nil {
			return classify("finding released skills", err)
		}
		var skillIDs []string
		for rows.Next() {
			var skillID, icon string
			if err := rows.Scan(&skillID, &icon); err != nil {
				rows.Close()
				return classify("scanning released skill", err)
			}
			skillIDs = append(skillIDs, skillID)
			released = append(released, icon)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return classify("iterating released skills", err)
		}
		rows.Close()

		if _, err := tx.ExecContext(ctx, db.q(`DELETE FROM project_skills WHERE project_id = ?`), id); err != nil {
			return classify("unlinking project skills", err)
		}

		res, err := tx.ExecContext(ctx, db.q(`DELETE FROM projects WHERE id = ?`), id)
		if err != nil {
			return classify("deleting project "+id, err)
		}
		if err := checkAffected(res, "project", id); err != nil {
			return err
		}

		ts := now()
		for _, skillID := range skillIDs {
			if _, err := tx.ExecContext(ctx, db.q(`UPDATE skills SET icon_url = '', updated_at = ? WHERE id = ?`), ts, skillID); err != nil {
				return classify("clearing skill icon", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

// Count returns the number of projects.
func (db *ProjectDB) Count(ctx context.Context) (int, error) {
	return db.count(ctx, "projects")
}
