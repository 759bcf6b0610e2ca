package subject

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/gradebook/core"
)

type Subject struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	ClassLevel string    `json:"class_level"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

func (s Subject) ClassName() string {
	return core.ClassName(s.ClassLevel)
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name       string `json:"name" validate:"required,max=100"`
	ClassLevel string `json:"class_level" validate:"required,classlevel"`
}

// Validate checks the fields then that (name, class_level) is not taken.
// Names are matched exactly: "Math" and "math" are different subjects.
func (ns *NewSubject) Validate(ctx context.Context, validate *validator.Validate, svc *Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.ClassLevel = core.CleanString(ns.ClassLevel)

	if err := validate.Struct(ns); err != nil {
		return err
	}
	return svc.checkUniqueness(ctx, ns.Name, ns.ClassLevel)
}

// UpdateSubject defines what information may be provided to modify an existing Subject.
type UpdateSubject struct {
	Name       string `json:"name" validate:"omitempty,max=100"`
	ClassLevel string `json:"class_level" validate:"omitempty,classlevel"`
}

func (us *UpdateSubject) Validate(ctx context.Context, orig Subject, validate *validator.Validate, svc *Service) error {
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
	return svc.checkUniqueness(ctx, us.Name, us.ClassLevel, orig.ID)
}

type QueryFilter struct {
	ClassLevel string `query:"class_level"`
}

func (qf *QueryFilter) Clean() {
	qf.ClassLevel = core.CleanString(qf.ClassLevel)
}
