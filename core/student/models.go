package student

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

type Student struct {
	ID          int       `json:"id"`
	AdmissionNo string    `json:"admission_no"`
	Name        string    `json:"name"`
	ClassLevel  string    `json:"class_level"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

func (s Student) ClassName() string {
	return core.ClassName(s.ClassLevel)
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	AdmissionNo string `json:"admission_no" validate:"required,max=20"`
	Name        string `json:"name" validate:"required,max=100"`
	ClassLevel  string `json:"class_level" validate:"required,classlevel"`
}

func (ns *NewStudent) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	ns.AdmissionNo = core.CleanString(ns.AdmissionNo)
	ns.Name = core.CleanString(ns.Name)
	ns.ClassLevel = core.CleanString(ns.ClassLevel)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, ns.AdmissionNo)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
// Empty fields keep their original values.
type UpdateStudent struct {
	AdmissionNo string `json:"admission_no" validate:"omitempty,max=20"`
	Name        string `json:"name" validate:"omitempty,max=100"`
	ClassLevel  string `json:"class_level" validate:"omitempty,classlevel"`
}

func (us *UpdateStudent) Validate(ctx context.Context, orig Student, validate *validator.Validate, svc *Service) error {
	if admNo := core.CleanString(us.AdmissionNo); admNo != "" {
		us.AdmissionNo = admNo
	} else {
		us.AdmissionNo = orig.AdmissionNo
	}
	if name := core.CleanString(us.Name); name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}
	if lvl := core.CleanString(us.ClassLevel); lvl != "" {
		us.ClassLevel = lvl
	} else {
		us.ClassLevel = orig.ClassLevel
	}

	if err := validate.Struct(us); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, us.AdmissionNo, orig.ID)
}

type QueryFilter struct {
	ClassLevel string `query:"class_level"`
	Search     string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.ClassLevel = core.CleanString(qf.ClassLevel)
	qf.Search = core.CleanString(qf.Search)
}
