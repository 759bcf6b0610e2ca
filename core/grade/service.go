package grade

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/student"
	"github.com/trezcool/gradebook/core/subject"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("grade not found")
	ErrNoValidGrades = core.NewWarningError("no valid grades to save")
	ErrNoStudents    = core.NewWarningError("no students found for this class")
	ErrNoSubjects    = core.NewWarningError("no subjects found for this class")
	ErrIngestion     = errors.New("error saving grades")

	errInvalidScore = core.NewValidationError(nil, core.FieldError{Field: "score", Error: "score must be a number between 0 and 100"})
)

type (
	Repository interface {
		// FindByStudentTermYear returns the grades of a student ordered by subject name.
		FindByStudentTermYear(ctx context.Context, studentID int, term string, year int) ([]Grade, error)
		// FindByClassTermYear returns the grades of the students of a class level,
		// ordered by student name, student id then subject name.
		FindByClassTermYear(ctx context.Context, classLevel, term string, year int) ([]Grade, error)
		// FindBySubjectClassTermYear returns the grades of a subject restricted to the students of a class level.
		FindBySubjectClassTermYear(ctx context.Context, subjectID int, classLevel, term string, year int) ([]Grade, error)
		GetGrade(ctx context.Context, key Key) (Grade, error)
		// UpsertGrade creates the Grade identified by key or updates only its score.
		UpsertGrade(ctx context.Context, key Key, score float64) (Grade, error)
		BeginTx(ctx context.Context) (Tx, error)
	}

	// Tx is a store transaction scoped to a batch save.
	// Nothing done through it is visible to others before Commit.
	Tx interface {
		// DeleteByStudents deletes every grade of term and year whose student is in studentIDs.
		DeleteByStudents(ctx context.Context, term string, year int, studentIDs []int) (int, error)
		BulkInsert(ctx context.Context, grades []Grade) error
		Commit() error
		Rollback() error
	}

	Service struct {
		repo     Repository
		stRepo   student.Repository
		subRepo  subject.Repository
		validate *validator.Validate
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	stRepo student.Repository,
	subRepo subject.Repository,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		stRepo:   stRepo,
		subRepo:  subRepo,
		validate: validate,
		logger:   logger,
	}
}

// SaveBatch atomically replaces grades for the students named in bs.
//
// Every existing grade of bs.Term and bs.Year belonging to a student that appears in the
// filtered batch is deleted, including subjects absent from the batch, then the batch is inserted.
// It returns the number of grades saved.
func (svc *Service) SaveBatch(ctx context.Context, bs BatchSave) (int, error) {
	bs.Clean()
	if err := svc.validate.Struct(bs); err != nil {
		return 0, err
	}

	grades := bs.ValidGrades()
	if len(grades) == 0 {
		return 0, ErrNoValidGrades
	}

	tx, err := svc.repo.BeginTx(ctx)
	if err != nil {
		svc.logger.Error("saving grades: starting transaction", errors.WithStack(err))
		batchFailures.Inc()
		return 0, ErrIngestion
	}
	defer func() { _ = tx.Rollback() }() // no-op once committed or rolled back

	if err = replaceGrades(ctx, tx, bs.Term, bs.Year, grades); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			svc.logger.Error("saving grades: rolling back", errors.WithStack(rbErr))
		}
		svc.logger.Error("saving grades", err, bs.Period)
		batchFailures.Inc()
		return 0, ErrIngestion
	}
	if err = tx.Commit(); err != nil {
		svc.logger.Error("saving grades: committing", errors.WithStack(err), bs.Period)
		batchFailures.Inc()
		return 0, ErrIngestion
	}

	gradesSaved.WithLabelValues(pathBatch).Add(float64(len(grades)))
	return len(grades), nil
}

func replaceGrades(ctx context.Context, tx Tx, term string, year int, grades []Grade) error {
	seen := make(map[int]bool, len(grades))
	studentIDs := make([]int, 0, len(grades))
	for _, g := range grades {
		if !seen[g.StudentID] {
			seen[g.StudentID] = true
			studentIDs = append(studentIDs, g.StudentID)
		}
	}

	if _, err := tx.DeleteByStudents(ctx, term, year, studentIDs); err != nil {
		return errors.Wrap(err, "deleting existing grades")
	}
	if err := tx.BulkInsert(ctx, grades); err != nil {
		return errors.Wrap(err, "inserting grades")
	}
	return nil
}

// SaveSingle creates or updates one grade. Concurrent saves of the same key: last write wins.
func (svc *Service) SaveSingle(ctx context.Context, ss SingleSave) (Grade, error) {
	ss.SetDefaults()
	if err := svc.validate.Struct(ss); err != nil {
		return Grade{}, err
	}
	score, ok := ss.Score.Valid()
	if !ok {
		return Grade{}, errInvalidScore
	}

	if _, err := svc.stRepo.GetStudentByID(ctx, ss.StudentID); err != nil {
		return Grade{}, err
	}
	if _, err := svc.subRepo.GetSubjectByID(ctx, ss.SubjectID); err != nil {
		return Grade{}, err
	}

	key := Key{StudentID: ss.StudentID, SubjectID: ss.SubjectID, Term: ss.Term, Year: ss.Year}
	g, err := svc.repo.UpsertGrade(ctx, key, score)
	if err != nil {
		return Grade{}, errors.Wrap(err, "upserting grade")
	}
	gradesSaved.WithLabelValues(pathSingle).Inc()
	return g, nil
}

// EntrySheet loads the students, subjects and existing scores of a class for a term of a year.
func (svc *Service) EntrySheet(ctx context.Context, period core.Period) (EntrySheet, error) {
	students, err := svc.stRepo.QueryStudents(ctx, &student.QueryFilter{ClassLevel: period.ClassLevel}, student.ClassOrdering)
	if err != nil {
		return EntrySheet{}, errors.Wrap(err, "querying students")
	}
	if len(students) == 0 {
		return EntrySheet{}, ErrNoStudents
	}

	subjects, err := svc.subRepo.QuerySubjects(ctx, &subject.QueryFilter{ClassLevel: period.ClassLevel}, subject.ClassOrdering)
	if err != nil {
		return EntrySheet{}, errors.Wrap(err, "querying subjects")
	}
	if len(subjects) == 0 {
		return EntrySheet{}, ErrNoSubjects
	}

	grades, err := svc.repo.FindByClassTermYear(ctx, period.ClassLevel, period.Term, period.Year)
	if err != nil {
		return EntrySheet{}, errors.Wrap(err, "finding class grades")
	}
	scores := make(map[string]float64, len(grades))
	for _, g := range grades {
		scores[EntryKey(g.StudentID, g.SubjectID)] = g.Score
	}

	return EntrySheet{
		Period:   period,
		Students: students,
		Subjects: subjects,
		Scores:   scores,
	}, nil
}

// StudentGrades returns a student's grades for a term of a year.
func (svc *Service) StudentGrades(ctx context.Context, studentID int, term string, year int) (StudentGrades, error) {
	st, err := svc.stRepo.GetStudentByID(ctx, studentID)
	if err != nil {
		return StudentGrades{}, err
	}
	grades, err := svc.repo.FindByStudentTermYear(ctx, studentID, term, year)
	if err != nil {
		return StudentGrades{}, errors.Wrap(err, "finding student grades")
	}
	return StudentGrades{Student: st, Term: term, Year: year, Grades: NewViews(grades)}, nil
}

// ClassGrades returns the grades of a class for a term of a year, grouped by student.
// Students without grades are not listed.
func (svc *Service) ClassGrades(ctx context.Context, period core.Period) ([]StudentGrades, error) {
	students, err := svc.stRepo.QueryStudents(ctx, &student.QueryFilter{ClassLevel: period.ClassLevel}, student.ClassOrdering)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	grades, err := svc.repo.FindByClassTermYear(ctx, period.ClassLevel, period.Term, period.Year)
	if err != nil {
		return nil, errors.Wrap(err, "finding class grades")
	}

	byStudent := GroupByStudent(grades)
	result := make([]StudentGrades, 0, len(byStudent))
	for _, st := range students {
		if sg, ok := byStudent[st.ID]; ok {
			result = append(result, StudentGrades{Student: st, Term: period.Term, Year: period.Year, Grades: NewViews(sg)})
		}
	}
	return result, nil
}

// GroupByStudent groups grades by student ID, keeping their relative order.
func GroupByStudent(grades []Grade) map[int][]Grade {
	byStudent := make(map[int][]Grade)
	for _, g := range grades {
		byStudent[g.StudentID] = append(byStudent[g.StudentID], g)
	}
	return byStudent
}
