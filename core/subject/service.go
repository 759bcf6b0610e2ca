package subject

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("subject not found")
	ErrSubjectExists = errors.New("subject already exists for this class level")
	ErrHasGrades     = core.NewConflictError("subject has recorded grades and cannot be deleted")

	DefaultOrdering = []core.DBOrdering{{Field: "class_level", Ascending: true}, {Field: "name", Ascending: true}}
	ClassOrdering   = []core.DBOrdering{{Field: "name", Ascending: true}}
	OrderingFields  = []string{"id", "name", "class_level", "created_at", "updated_at"}
)

type (
	Repository interface {
		CheckNameUniqueness(ctx context.Context, name, classLevel string, excludedIDs ...int) error
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)
		QuerySubjects(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id int) (Subject, error)
		UpdateSubject(ctx context.Context, sub Subject) (Subject, error)
		DeleteSubject(ctx context.Context, id int) error
		CountSubjects(ctx context.Context, classLevel string) (int, error)
		CountSubjectGrades(ctx context.Context, id int) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) checkUniqueness(ctx context.Context, name, classLevel string, excludedIDs ...int) error {
	if err := svc.repo.CheckNameUniqueness(ctx, name, classLevel, excludedIDs...); err != nil {
		if errors.Cause(err) == ErrSubjectExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	now := time.Now().UTC()
	sub := Subject{
		Name:       ns.Name,
		ClassLevel: ns.ClassLevel,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return svc.repo.CreateSubject(ctx, sub)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Subject, error) {
	if len(ordering) == 0 {
		ordering = DefaultOrdering
		if filter != nil && filter.ClassLevel != "" {
			ordering = ClassOrdering
		}
	}
	return svc.repo.QuerySubjects(ctx, filter, ordering)
}

// QueryByClass lists the subjects of a class level ordered by name.
func (svc *Service) QueryByClass(ctx context.Context, classLevel string) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, &QueryFilter{ClassLevel: classLevel}, ClassOrdering)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateSubject) (Subject, error) {
	sub := Subject{
		ID:         id,
		Name:       us.Name,
		ClassLevel: us.ClassLevel,
		UpdatedAt:  time.Now().UTC(),
	}
	return svc.repo.UpdateSubject(ctx, sub)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	cnt, err := svc.repo.CountSubjectGrades(ctx, id)
	if err != nil {
		return errors.Wrap(err, "counting subject grades")
	}
	if cnt > 0 {
		return ErrHasGrades
	}
	return svc.repo.DeleteSubject(ctx, id)
}

func (svc *Service) Count(ctx context.Context, classLevel string) (int, error) {
	return svc.repo.CountSubjects(ctx, classLevel)
}
