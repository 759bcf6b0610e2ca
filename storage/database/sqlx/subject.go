package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/subject"
)

const subjectColumns = "id, name, class_level, created_at, updated_at"

type subjectRow struct {
	ID         int       `db:"id"`
	Name       string    `db:"name"`
	ClassLevel string    `db:"class_level"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r subjectRow) subject() subject.Subject {
	return subject.Subject{
		ID:         r.ID,
		Name:       r.Name,
		ClassLevel: r.ClassLevel,
		CreatedAt:  r.CreatedAt.UTC(),
		UpdatedAt:  r.UpdatedAt.UTC(),
	}
}

type subjectRepository struct {
	db *sqlx.DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *sqlx.DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) CheckNameUniqueness(ctx context.Context, name, classLevel string, excludedIDs ...int) error {
	conds, args, err := notIn([]string{"name = ?", "class_level = ?"}, []interface{}{name, classLevel}, excludedIDs)
	if err != nil {
		return err
	}
	q := repo.db.Rebind("SELECT EXISTS (SELECT 1 FROM subjects" + where(conds) + ")")

	var exists bool
	if err = repo.db.GetContext(ctx, &exists, q, args...); err != nil {
		return errors.Wrap(err, "checking subject uniqueness")
	}
	if exists {
		return subject.ErrSubjectExists
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	q := `INSERT INTO subjects (name, class_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + subjectColumns

	var row subjectRow
	if err := repo.db.GetContext(ctx, &row, q, sub.Name, sub.ClassLevel, sub.CreatedAt.UTC(), sub.UpdatedAt.UTC()); err != nil {
		if pqErrorIs(err, uniqueViolation) {
			return subject.Subject{}, subject.ErrSubjectExists
		}
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return row.subject(), nil
}

func (repo *subjectRepository) QuerySubjects(ctx context.Context, filter *subject.QueryFilter, ordering []core.DBOrdering) ([]subject.Subject, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter != nil && filter.ClassLevel != "" {
		conds = append(conds, "class_level = ?")
		args = append(args, filter.ClassLevel)
	}

	q := "SELECT " + subjectColumns + " FROM subjects" + where(conds)
	if order := core.OrderingClause(ordering, subject.OrderingFields...); order != "" {
		q += " ORDER BY " + order + ", id ASC"
	} else {
		q += " ORDER BY id ASC"
	}

	var rows []subjectRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]subject.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, r.subject())
	}
	return subjects, nil
}

func (repo *subjectRepository) GetSubjectByID(ctx context.Context, id int) (subject.Subject, error) {
	var row subjectRow
	q := "SELECT " + subjectColumns + " FROM subjects WHERE id = $1"
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return subject.Subject{}, trapNoRowsErr(err, subject.ErrNotFound, "finding subject")
	}
	return row.subject(), nil
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, sub subject.Subject) (subject.Subject, error) {
	q := `UPDATE subjects SET name = $1, class_level = $2, updated_at = $3
		WHERE id = $4
		RETURNING ` + subjectColumns

	var row subjectRow
	if err := repo.db.GetContext(ctx, &row, q, sub.Name, sub.ClassLevel, sub.UpdatedAt.UTC(), sub.ID); err != nil {
		if pqErrorIs(err, uniqueViolation) {
			return subject.Subject{}, subject.ErrSubjectExists
		}
		return subject.Subject{}, trapNoRowsErr(err, subject.ErrNotFound, "updating subject")
	}
	return row.subject(), nil
}

func (repo *subjectRepository) DeleteSubject(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM subjects WHERE id = $1", id)
	if err != nil {
		if pqErrorIs(err, foreignKeyViolation) {
			return subject.ErrHasGrades
		}
		return errors.Wrap(err, "deleting subject")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return subject.ErrNotFound
	}
	return nil
}

func (repo *subjectRepository) CountSubjects(ctx context.Context, classLevel string) (int, error) {
	var cnt int
	q := "SELECT COUNT(*) FROM subjects WHERE ($1::text = '' OR class_level = $1)"
	if err := repo.db.GetContext(ctx, &cnt, q, classLevel); err != nil {
		return 0, errors.Wrap(err, "counting subjects")
	}
	return cnt, nil
}

func (repo *subjectRepository) CountSubjectGrades(ctx context.Context, id int) (int, error) {
	var cnt int
	if err := repo.db.GetContext(ctx, &cnt, "SELECT COUNT(*) FROM grades WHERE subject_id = $1", id); err != nil {
		return 0, errors.Wrap(err, "counting subject grades")
	}
	return cnt, nil
}
