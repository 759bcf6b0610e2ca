package grade_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/subject"
	inmemdb "github.com/trezcool/gradebook/storage/database/inmem"
	testutil "github.com/trezcool/gradebook/tests"
)

type fixture struct {
	db      *inmemdb.DB
	repo    grade.Repository
	stRepo  student.Repository
	subRepo subject.Repository
	logger  *testutil.Logger
	svc     *grade.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := inmemdb.Open()
	f := &fixture{
		db:      db,
		repo:    inmemdb.NewGradeRepository(db),
		stRepo:  inmemdb.NewStudentRepository(db),
		subRepo: inmemdb.NewSubjectRepository(db),
		logger:  &testutil.Logger{},
	}
	f.svc = grade.NewService(f.repo, f.stRepo, f.subRepo, core.NewValidator(core.NewTranslator()), f.logger)
	return f
}

func (f *fixture) classGrades(t *testing.T, classLevel, term string, year int) []grade.Grade {
	t.Helper()
	grades, err := f.repo.FindByClassTermYear(context.Background(), classLevel, term, year)
	require.NoError(t, err)
	return grades
}

func entry(studentID, subjectID int, score string) grade.Entry {
	return grade.Entry{StudentID: studentID, SubjectID: subjectID, Score: grade.NewRawScore(score)}
}

func batch(classLevel, term string, year int, entries ...grade.Entry) grade.BatchSave {
	return grade.BatchSave{
		Period: core.Period{ClassLevel: classLevel, Term: term, Year: year},
		Grades: entries,
	}
}

// failingRepo makes every batch insert fail after the delete went through.
type failingRepo struct {
	grade.Repository
}

func (r failingRepo) BeginTx(ctx context.Context) (grade.Tx, error) {
	tx, err := r.Repository.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return failingTx{Tx: tx}, nil
}

type failingTx struct {
	grade.Tx
}

func (failingTx) BulkInsert(context.Context, []grade.Grade) error {
	return errors.New("connection reset by peer")
}

// panickingRepo panics in the middle of every batch transaction.
type panickingRepo struct {
	grade.Repository
}

func (r panickingRepo) BeginTx(ctx context.Context) (grade.Tx, error) {
	tx, err := r.Repository.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return panickingTx{Tx: tx}, nil
}

type panickingTx struct {
	grade.Tx
}

func (panickingTx) BulkInsert(context.Context, []grade.Grade) error {
	panic("driver bug")
}

func TestService_SaveBatch_releasesTxOnPanic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	st := testutil.CreateStudent(t, f.stRepo, "JS8-001", "Amani", core.ClassLevel8)
	sub := testutil.CreateSubject(t, f.subRepo, "Mathematics", core.ClassLevel8)
	testutil.CreateGrade(t, f.repo, st.ID, sub.ID, core.Term1, 2024, 40)

	svc := grade.NewService(panickingRepo{Repository: f.repo}, f.stRepo, f.subRepo, core.NewValidator(core.NewTranslator()), f.logger)
	bs := batch(core.ClassLevel8, core.Term1, 2024, entry(st.ID, sub.ID, "90"))
	assert.Panics(t, func() { _, _ = svc.SaveBatch(ctx, bs) })

	// the store is neither locked nor changed
	grades := f.classGrades(t, core.ClassLevel8, core.Term1, 2024)
	if assert.Len(t, grades, 1) {
		assert.Equal(t, 40.0, grades[0].Score)
	}
	n, err := f.svc.SaveBatch(ctx, bs)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestService_SaveBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("saves valid entries", func(t *testing.T) {
		f := newFixture(t)
		alice := testutil.CreateStudent(t, f.stRepo, "JS8-001", "Alice", "8")
		math := testutil.CreateSubject(t, f.subRepo, "Mathematics", "8")
		eng := testutil.CreateSubject(t, f.subRepo, "English", "8")

		n, err := f.svc.SaveBatch(ctx, batch("8", "1", 2024,
			entry(alice.ID, math.ID, "85.5"),
			entry(alice.ID, eng.ID, "70.666"),
		))
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		grades := f.classGrades(t, "8", "1", 2024)
		if assert.Len(t, grades, 2) {
			assert.Equal(t, "English", grades[0].SubjectName)
			assert.Equal(t, 70.67, grades[0].Score)
			assert.Equal(t, "Mathematics", grades[1].SubjectName)
			assert.Equal(t, 85.5, grades[1].Score)
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		f := newFixture(t)
		alice := testutil.CreateStudent(t, f.stRepo, "JS8-001", "Alice", "8")
		bob := testutil.CreateStudent(t, f.stRepo, "JS8-002", "Bob", "8")
		math := testutil.CreateSubject(t, f.subRepo, "Mathematics", "8")

		bs := batch("8", "2", 2024, entry(alice.ID, math.ID, "90"), entry(bob.ID, math.ID, "45"))
		_, err := f.svc.SaveBatch(ctx, bs)
		require.NoError(t, err)
		first := f.classGrades(t, "8", "2", 2024)

		_, err = f.svc.SaveBatch(ctx, bs)
		require.NoError(t, err)
		second := f.classGrades(t, "8", "2", 2024)

		require.Len(t, second, len(first))
		for i := range first {
			assert.Equal(t, first[i].Key(), second[i].Key())
			assert.Equal(t, first[i].Score, second[i].Score)
		}
	})

	t.Run("replaces every grade of the named students only", func(t *testing.T) {
		f := newFixture(t)
		alice := testutil.CreateStudent(t, f.stRepo, "JS8-001", "Alice", "8")
		bob := testutil.CreateStudent(t, f.stRepo, "JS8-002", "Bob", "8")
		math := testutil.CreateSubject(t, f.subRepo, "Mathematics", "8")
		eng := testutil.CreateSubject(t, f.subRepo, "English", "8")

		testutil.CreateGrade(t, f.repo, alice.ID, math.ID, "1", 2024, 60)
		testutil.CreateGrade(t, f.repo, alice.ID, eng.ID, "1", 2024, 70)
		testutil.CreateGrade(t, f.repo, bob.ID, eng.ID, "1", 2024, 55)
		testutil.CreateGrade(t, f.repo, alice.ID, eng.ID, "2", 2024, 75)

		n, err := f.svc.SaveBatch(ctx, batch("8", "1", 2024, entry(alice.ID, math.ID, "90")))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		aliceGrades, err := f.repo.FindByStudentTermYear(ctx, alice.ID, "1", 2024)
		require.NoError(t, err)
		if assert.Len(t, aliceGrades, 1) {
			assert.Equal(t, math.ID, aliceGrades[0].SubjectID)
			assert.Equal(t, 90.0, aliceGrades[0].Score)
		}

		bobGrades, err := f.repo.FindByStudentTermYear(ctx, bob.ID, "1", 2024)
		require.NoError(t, err)
		assert.Len(t, bobGrades, 1)

		otherTerm, err := f.repo.FindByStudentTermYear(ctx, alice.ID, "2", 2024)
		require.NoError(t, err)
		assert.Len(t, otherTerm, 1)
	})

	t.Run("rolls back when an insert fails", func(t *testing.T) {
		f := newFixture(t)
		alice := testutil.CreateStudent(t, f.stRepo, "JS8-001", "Alice", "8")
		math := testutil.CreateSubject(t, f.subRepo, "Mathematics", "8")
		eng := testutil.CreateSubject(t, f.subRepo, "English", "8")
		testutil.CreateGrade(t, f.repo, alice.ID, math.ID, "1", 2024, 60)
		testutil.CreateGrade(t, f.repo, alice.ID, eng.ID, "1", 2024, 70)

		svc := grade.NewService(failingRepo{f.repo}, f.stRepo, f.subRepo, core.NewValidator(core.NewTranslator()), f.logger)
		n, err := svc.SaveBatch(ctx, batch("8", "1", 2024, entry(alice.ID, math.ID, "99")))
		assert.Equal(t, 0, n)
		assert.Equal(t, grade.ErrIngestion, err)
		assert.NotEmpty(t, f.logger.Errors)

		grades := f.classGrades(t, "8", "1", 2024)
		if assert.Len(t, grades, 2) {
			assert.Equal(t, 70.0, grades[0].Score)
			assert.Equal(t, 60.0, grades[1].Score)
		}

		// the store is usable again after the rollback
		_, err = f.svc.SaveBatch(ctx, batch("8", "1", 2024, entry(alice.ID, math.ID, "99")))
		assert.NoError(t, err)
	})

	t.Run("rolls back when a student does not exist", func(t *testing.T) {
		f := newFixture(t)
		alice := testutil.CreateStudent(t, f.stRepo, "JS8-001", "Alice", "8")
		math := testutil.CreateSubject(t, f.subRepo, "Mathematics", "8")
		testutil.CreateGrade(t, f.repo, alice.ID, math.ID, "1", 2024, 60)

		_, err := f.svc.SaveBatch(ctx, batch("8", "1", 2024, entry(alice.ID, math.ID, "99"), entry(999, math.ID, "50")))
		assert.Equal(t, grade.ErrIngestion, err)

		grades := f.classGrades(t, "8", "1", 2024)
		if assert.Len(t, grades, 1) {
			assert.Equal(t, 60.0, grades[0].Score)
		}
	})

	t.Run("drops invalid entries", func(t *testing.T) {
		f := newFixture(t)
		alice := testutil.CreateStudent(t, f.stRepo, "JS8-001", "Alice", "8")
		math := testutil.CreateSubject(t, f.subRepo, "Mathematics", "8")
		eng := testutil.CreateSubject(t, f.subRepo, "English", "8")

		n, err := f.svc.SaveBatch(ctx, batch("8", "1", 2024,
			entry(alice.ID, math.ID, "75"),
			entry(alice.ID, eng.ID, "abc"),
			entry(alice.ID, eng.ID, "101"),
			entry(alice.ID, eng.ID, "-1"),
			entry(0, eng.ID, "50"),
			grade.Entry{StudentID: alice.ID, SubjectID: eng.ID},
		))
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Len(t, f.classGrades(t, "8", "1", 2024), 1)
	})

	t.Run("keeps the last duplicate entry", func(t *testing.T) {
		f := newFixture(t)
		alice := testutil.CreateStudent(t, f.stRepo, "JS8-001", "Alice", "8")
		math := testutil.CreateSubject(t, f.subRepo, "Mathematics", "8")

		n, err := f.svc.SaveBatch(ctx, batch("8", "1", 2024, entry(alice.ID, math.ID, "40"), entry(alice.ID, math.ID, "80")))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		grades := f.classGrades(t, "8", "1", 2024)
		if assert.Len(t, grades, 1) {
			assert.Equal(t, 80.0, grades[0].Score)
		}
	})

	t.Run("warns when nothing is valid", func(t *testing.T) {
		f := newFixture(t)
		alice := testutil.CreateStudent(t, f.stRepo, "JS8-001", "Alice", "8")
		math := testutil.CreateSubject(t, f.subRepo, "Mathematics", "8")
		testutil.CreateGrade(t, f.repo, alice.ID, math.ID, "1", 2024, 60)

		n, err := f.svc.SaveBatch(ctx, batch("8", "1", 2024, entry(alice.ID, math.ID, "n/a")))
		assert.Equal(t, 0, n)
		assert.Equal(t, grade.ErrNoValidGrades, err)
		assert.True(t, core.IsWarning(err))
		assert.Len(t, f.classGrades(t, "8", "1", 2024), 1)
	})

	t.Run("validates the period", func(t *testing.T) {
		f := newFixture(t)
		tests := []struct {
			name string
			bs   grade.BatchSave
		}{
			{name: "class level", bs: batch("10", "1", 2024, entry(1, 1, "50"))},
			{name: "term", bs: batch("8", "4", 2024, entry(1, 1, "50"))},
			{name: "year", bs: batch("8", "1", 2019, entry(1, 1, "50"))},
			{name: "grades", bs: batch("8", "1", 2024)},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.svc.SaveBatch(ctx, tt.bs)
				var verrs validator.ValidationErrors
				assert.True(t, errors.As(err, &verrs), "want validation errors, got %v", err)
			})
		}
	})
}

func TestService_SaveSingle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := testutil.CreateStudent(t, f.stRepo, "JS7-001", "Alice", "7")
	math := testutil.CreateSubject(t, f.subRepo, "Mathematics", "7")

	created, err := f.svc.SaveSingle(ctx, grade.SingleSave{StudentID: alice.ID, SubjectID: math.ID, Score: grade.NewRawScore("55")})
	require.NoError(t, err)
	assert.Equal(t, core.Term1, created.Term)
	assert.Equal(t, core.CurrentYear(), created.Year)
	assert.Equal(t, 55.0, created.Score)

	updated, err := f.svc.SaveSingle(ctx, grade.SingleSave{
		StudentID: alice.ID,
		SubjectID: math.ID,
		Score:     grade.NewRawScore("66.666"),
		Term:      core.Term1,
		Year:      core.CurrentYear(),
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, 66.67, updated.Score)

	t.Run("unknown student", func(t *testing.T) {
		_, err := f.svc.SaveSingle(ctx, grade.SingleSave{StudentID: 999, SubjectID: math.ID, Score: grade.NewRawScore("50")})
		assert.Equal(t, student.ErrNotFound, err)
	})

	t.Run("unknown subject", func(t *testing.T) {
		_, err := f.svc.SaveSingle(ctx, grade.SingleSave{StudentID: alice.ID, SubjectID: 999, Score: grade.NewRawScore("50")})
		assert.Equal(t, subject.ErrNotFound, err)
	})

	t.Run("non numeric score", func(t *testing.T) {
		_, err := f.svc.SaveSingle(ctx, grade.SingleSave{StudentID: alice.ID, SubjectID: math.ID, Score: grade.NewRawScore("eighty")})
		var verr *core.ValidationError
		if assert.True(t, errors.As(err, &verr)) {
			assert.Equal(t, "score", verr.Fields[0].Field)
		}
	})
}

func TestService_EntrySheet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	period := core.Period{ClassLevel: "9", Term: "1", Year: 2024}

	_, err := f.svc.EntrySheet(ctx, period)
	assert.Equal(t, grade.ErrNoStudents, err)

	alice := testutil.CreateStudent(t, f.stRepo, "JS9-001", "Alice", "9")
	_, err = f.svc.EntrySheet(ctx, period)
	assert.Equal(t, grade.ErrNoSubjects, err)

	math := testutil.CreateSubject(t, f.subRepo, "Mathematics", "9")
	testutil.CreateSubject(t, f.subRepo, "Mathematics", "8")
	testutil.CreateGrade(t, f.repo, alice.ID, math.ID, "1", 2024, 77)

	sheet, err := f.svc.EntrySheet(ctx, period)
	require.NoError(t, err)
	assert.Len(t, sheet.Students, 1)
	assert.Len(t, sheet.Subjects, 1)
	assert.Equal(t, map[string]float64{grade.EntryKey(alice.ID, math.ID): 77}, sheet.Scores)
}

func TestService_ClassGrades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bob := testutil.CreateStudent(t, f.stRepo, "JS9-002", "Bob", "9")
	alice := testutil.CreateStudent(t, f.stRepo, "JS9-001", "Alice", "9")
	testutil.CreateStudent(t, f.stRepo, "JS9-003", "Carol", "9")
	math := testutil.CreateSubject(t, f.subRepo, "Mathematics", "9")
	testutil.CreateGrade(t, f.repo, bob.ID, math.ID, "1", 2024, 81)
	testutil.CreateGrade(t, f.repo, alice.ID, math.ID, "1", 2024, 45)

	classGrades, err := f.svc.ClassGrades(ctx, core.Period{ClassLevel: "9", Term: "1", Year: 2024})
	require.NoError(t, err)
	if assert.Len(t, classGrades, 2) {
		assert.Equal(t, "Alice", classGrades[0].Student.Name)
		assert.Equal(t, "F", classGrades[0].Grades[0].Letter)
		assert.Equal(t, "Bob", classGrades[1].Student.Name)
		assert.Equal(t, 4.0, classGrades[1].Grades[0].Points)
	}

	sg, err := f.svc.StudentGrades(ctx, bob.ID, "1", 2024)
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", sg.Grades[0].SubjectName)

	_, err = f.svc.StudentGrades(ctx, 999, "1", 2024)
	assert.Equal(t, student.ErrNotFound, err)
}
