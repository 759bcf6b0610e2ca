package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/student"
)

const studentColumns = "id, admission_no, name, class_level, created_at, updated_at"

type studentRow struct {
	ID          int       `db:"id"`
	AdmissionNo string    `db:"admission_no"`
	Name        string    `db:"name"`
	ClassLevel  string    `db:"class_level"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r studentRow) student() student.Student {
	return student.Student{
		ID:          r.ID,
		AdmissionNo: r.AdmissionNo,
		Name:        r.Name,
		ClassLevel:  r.ClassLevel,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckAdmissionNoUniqueness(ctx context.Context, admissionNo string, excludedIDs ...int) error {
	conds, args, err := notIn([]string{"admission_no = ?"}, []interface{}{admissionNo}, excludedIDs)
	if err != nil {
		return err
	}
	q := repo.db.Rebind("SELECT EXISTS (SELECT 1 FROM students" + where(conds) + ")")

	var exists bool
	if err = repo.db.GetContext(ctx, &exists, q, args...); err != nil {
		return errors.Wrap(err, "checking admission number uniqueness")
	}
	if exists {
		return student.ErrAdmissionNoExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	q := `INSERT INTO students (admission_no, name, class_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + studentColumns

	var row studentRow
	err := repo.db.GetContext(ctx, &row, q, st.AdmissionNo, st.Name, st.ClassLevel, st.CreatedAt.UTC(), st.UpdatedAt.UTC())
	if err != nil {
		if pqErrorIs(err, uniqueViolation) {
			return student.Student{}, student.ErrAdmissionNoExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return row.student(), nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter != nil {
		if filter.ClassLevel != "" {
			conds = append(conds, "class_level = ?")
			args = append(args, filter.ClassLevel)
		}
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			conds = append(conds, "(name ILIKE ? OR admission_no ILIKE ?)")
			args = append(args, val, val)
		}
	}

	q := "SELECT " + studentColumns + " FROM students" + where(conds)
	if order := core.OrderingClause(ordering, student.OrderingFields...); order != "" {
		q += " ORDER BY " + order + ", id ASC"
	} else {
		q += " ORDER BY id ASC"
	}

	var rows []studentRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.student())
	}
	return students, nil
}

func (repo *studentRepository) get(ctx context.Context, cond string, arg interface{}) (student.Student, error) {
	var row studentRow
	q := "SELECT " + studentColumns + " FROM students WHERE " + cond
	if err := repo.db.GetContext(ctx, &row, q, arg); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "finding student")
	}
	return row.student(), nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	return repo.get(ctx, "id = $1", id)
}

func (repo *studentRepository) GetStudentByAdmissionNo(ctx context.Context, admissionNo string) (student.Student, error) {
	return repo.get(ctx, "admission_no = $1", admissionNo)
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, st student.Student) (student.Student, error) {
	q := `UPDATE students SET admission_no = $1, name = $2, class_level = $3, updated_at = $4
		WHERE id = $5
		RETURNING ` + studentColumns

	var row studentRow
	err := repo.db.GetContext(ctx, &row, q, st.AdmissionNo, st.Name, st.ClassLevel, st.UpdatedAt.UTC(), st.ID)
	if err != nil {
		if pqErrorIs(err, uniqueViolation) {
			return student.Student{}, student.ErrAdmissionNoExists
		}
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "updating student")
	}
	return row.student(), nil
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id)
	if err != nil {
		if pqErrorIs(err, foreignKeyViolation) {
			return student.ErrHasGrades
		}
		return errors.Wrap(err, "deleting student")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return student.ErrNotFound
	}
	return nil
}

func (repo *studentRepository) CountStudents(ctx context.Context, classLevel string) (int, error) {
	var cnt int
	q := "SELECT COUNT(*) FROM students WHERE ($1::text = '' OR class_level = $1)"
	if err := repo.db.GetContext(ctx, &cnt, q, classLevel); err != nil {
		return 0, errors.Wrap(err, "counting students")
	}
	return cnt, nil
}

func (repo *studentRepository) CountStudentGrades(ctx context.Context, id int) (int, error) {
	var cnt int
	if err := repo.db.GetContext(ctx, &cnt, "SELECT COUNT(*) FROM grades WHERE student_id = $1", id); err != nil {
		return 0, errors.Wrap(err, "counting student grades")
	}
	return cnt, nil
}
