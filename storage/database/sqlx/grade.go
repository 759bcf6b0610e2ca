package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/grade"
)

const gradeSelect = `SELECT g.id, g.student_id, g.subject_id, sub.name AS subject_name,
		g.term, g.year, g.score, g.created_at, g.updated_at
	FROM grades g
	JOIN subjects sub ON sub.id = g.subject_id`

type gradeRow struct {
	ID          int       `db:"id"`
	StudentID   int       `db:"student_id"`
	SubjectID   int       `db:"subject_id"`
	SubjectName string    `db:"subject_name"`
	Term        string    `db:"term"`
	Year        int       `db:"year"`
	Score       float64   `db:"score"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func newGradeRow(g grade.Grade, now time.Time) gradeRow {
	return gradeRow{
		StudentID: g.StudentID,
		SubjectID: g.SubjectID,
		Term:      g.Term,
		Year:      g.Year,
		Score:     g.Score,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (r gradeRow) grade() grade.Grade {
	return grade.Grade{
		ID:          r.ID,
		StudentID:   r.StudentID,
		SubjectID:   r.SubjectID,
		SubjectName: r.SubjectName,
		Term:        r.Term,
		Year:        r.Year,
		Score:       r.Score,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func gradesOf(rows []gradeRow) []grade.Grade {
	grades := make([]grade.Grade, 0, len(rows))
	for _, r := range rows {
		grades = append(grades, r.grade())
	}
	return grades
}

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) grade.Repository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) selectGrades(ctx context.Context, msg, q string, args ...interface{}) ([]grade.Grade, error) {
	var rows []gradeRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, msg)
	}
	return gradesOf(rows), nil
}

func (repo *gradeRepository) FindByStudentTermYear(ctx context.Context, studentID int, term string, year int) ([]grade.Grade, error) {
	q := gradeSelect + `
	WHERE g.student_id = $1 AND g.term = $2 AND g.year = $3
	ORDER BY sub.name, g.id`
	return repo.selectGrades(ctx, "finding student grades", q, studentID, term, year)
}

func (repo *gradeRepository) FindByClassTermYear(ctx context.Context, classLevel, term string, year int) ([]grade.Grade, error) {
	q := gradeSelect + `
	JOIN students st ON st.id = g.student_id
	WHERE st.class_level = $1 AND g.term = $2 AND g.year = $3
	ORDER BY st.name, st.id, sub.name, g.id`
	return repo.selectGrades(ctx, "finding class grades", q, classLevel, term, year)
}

func (repo *gradeRepository) FindBySubjectClassTermYear(ctx context.Context, subjectID int, classLevel, term string, year int) ([]grade.Grade, error) {
	q := gradeSelect + `
	JOIN students st ON st.id = g.student_id
	WHERE g.subject_id = $1 AND st.class_level = $2 AND g.term = $3 AND g.year = $4
	ORDER BY g.id`
	return repo.selectGrades(ctx, "finding subject grades", q, subjectID, classLevel, term, year)
}

func (repo *gradeRepository) GetGrade(ctx context.Context, key grade.Key) (grade.Grade, error) {
	q := gradeSelect + `
	WHERE g.student_id = $1 AND g.subject_id = $2 AND g.term = $3 AND g.year = $4`

	var row gradeRow
	if err := repo.db.GetContext(ctx, &row, q, key.StudentID, key.SubjectID, key.Term, key.Year); err != nil {
		return grade.Grade{}, trapNoRowsErr(err, grade.ErrNotFound, "finding grade")
	}
	return row.grade(), nil
}

// UpsertGrade is a single statement: concurrent upserts of one key never fail, the last one wins.
func (repo *gradeRepository) UpsertGrade(ctx context.Context, key grade.Key, score float64) (grade.Grade, error) {
	q := `WITH g AS (
		INSERT INTO grades (student_id, subject_id, term, year, score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (student_id, subject_id, term, year)
		DO UPDATE SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
		RETURNING *
	)
	SELECT g.id, g.student_id, g.subject_id, sub.name AS subject_name,
		g.term, g.year, g.score, g.created_at, g.updated_at
	FROM g
	JOIN subjects sub ON sub.id = g.subject_id`

	var row gradeRow
	now := time.Now().UTC()
	if err := repo.db.GetContext(ctx, &row, q, key.StudentID, key.SubjectID, key.Term, key.Year, score, now); err != nil {
		return grade.Grade{}, errors.Wrap(err, "upserting grade")
	}
	return row.grade(), nil
}

func (repo *gradeRepository) BeginTx(ctx context.Context) (grade.Tx, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning transaction")
	}
	return &gradeTx{tx: tx}, nil
}

// insertChunkSize keeps a bulk insert under the 65535 bind parameters postgres accepts (7 per row).
const insertChunkSize = 1000

type gradeTx struct {
	tx *sqlx.Tx
}

func (t *gradeTx) DeleteByStudents(ctx context.Context, term string, year int, studentIDs []int) (int, error) {
	if len(studentIDs) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In("DELETE FROM grades WHERE term = ? AND year = ? AND student_id IN (?)", term, year, studentIDs)
	if err != nil {
		return 0, errors.Wrap(err, "expanding student IDs")
	}

	res, err := t.tx.ExecContext(ctx, t.tx.Rebind(q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting grades")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted grades")
	}
	return int(cnt), nil
}

func (t *gradeTx) BulkInsert(ctx context.Context, grades []grade.Grade) error {
	if len(grades) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([]gradeRow, 0, len(grades))
	for _, g := range grades {
		rows = append(rows, newGradeRow(g, now))
	}

	q := `INSERT INTO grades (student_id, subject_id, term, year, score, created_at, updated_at)
		VALUES (:student_id, :subject_id, :term, :year, :score, :created_at, :updated_at)`
	for start := 0; start < len(rows); start += insertChunkSize {
		end := min(start+insertChunkSize, len(rows))
		if _, err := t.tx.NamedExecContext(ctx, q, rows[start:end]); err != nil {
			return errors.Wrap(err, "inserting grades")
		}
	}
	return nil
}

func (t *gradeTx) Commit() error {
	return errors.Wrap(t.tx.Commit(), "committing")
}

func (t *gradeTx) Rollback() error {
	return errors.Wrap(t.tx.Rollback(), "rolling back")
}
