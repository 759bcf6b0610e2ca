package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("student not found")
	ErrAdmissionNoExists = errors.New("admission number already exists")
	ErrHasGrades         = core.NewConflictError("student has recorded grades and cannot be deleted")

	DefaultOrdering = []core.DBOrdering{{Field: "class_level", Ascending: true}, {Field: "name", Ascending: true}}
	ClassOrdering   = []core.DBOrdering{{Field: "name", Ascending: true}}
	OrderingFields  = []string{"id", "admission_no", "name", "class_level", "created_at", "updated_at"}
)

type (
	Repository interface {
		CheckAdmissionNoUniqueness(ctx context.Context, admissionNo string, excludedIDs ...int) error
		CreateStudent(ctx context.Context, st Student) (Student, error)
		// QueryStudents applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Student.Name or Student.AdmissionNo.
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByAdmissionNo(ctx context.Context, admissionNo string) (Student, error)
		UpdateStudent(ctx context.Context, st Student) (Student, error)
		DeleteStudent(ctx context.Context, id int) error
		CountStudents(ctx context.Context, classLevel string) (int, error)
		CountStudentGrades(ctx context.Context, id int) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, admissionNo string, excludedIDs ...int) error {
	if err := svc.repo.CheckAdmissionNoUniqueness(ctx, admissionNo, excludedIDs...); err != nil {
		if errors.Cause(err) == ErrAdmissionNoExists {
			return core.NewValidationError(err, core.FieldError{Field: "admission_no", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	now := time.Now().UTC()
	st := Student{
		AdmissionNo: ns.AdmissionNo,
		Name:        ns.Name,
		ClassLevel:  ns.ClassLevel,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateStudent(ctx, st)
}

// Query lists students. Students of a single class are ordered by name unless ordering says otherwise.
func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	if len(ordering) == 0 {
		ordering = DefaultOrdering
		if filter != nil && filter.ClassLevel != "" {
			ordering = ClassOrdering
		}
	}
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

// QueryByClass lists the students of a class level ordered by name.
func (svc *Service) QueryByClass(ctx context.Context, classLevel string) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, &QueryFilter{ClassLevel: classLevel}, ClassOrdering)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByAdmissionNo(ctx context.Context, admissionNo string) (Student, error) {
	return svc.repo.GetStudentByAdmissionNo(ctx, core.CleanString(admissionNo))
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	st := Student{
		ID:          id,
		AdmissionNo: us.AdmissionNo,
		Name:        us.Name,
		ClassLevel:  us.ClassLevel,
		UpdatedAt:   time.Now().UTC(),
	}
	return svc.repo.UpdateStudent(ctx, st)
}

// Delete removes a student. Students with recorded grades are kept.
func (svc *Service) Delete(ctx context.Context, id int) error {
	cnt, err := svc.repo.CountStudentGrades(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting student grades")
	}
	if cnt > 0 {
		return ErrHasGrades
	}
	return svc.repo.DeleteStudent(ctx, id)
}

func (svc *Service) Count(ctx context.Context, classLevel string) (int, error) {
	return svc.repo.CountStudents(ctx, classLevel)
}
