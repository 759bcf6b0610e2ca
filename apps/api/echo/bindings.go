package echoapi

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/trezcool/gradebook/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

// Bind reads a comma separated list of fields, "-" prefixed for descending order: ?ordering=class_level,-name
func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field != "" {
			ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
}

// bindPeriod reads and validates the required class_level, term and year query params.
func bindPeriod(ctx echo.Context, validate *validator.Validate) (core.Period, error) {
	var p core.Period
	err := echo.QueryParamsBinder(ctx).
		String("class_level", &p.ClassLevel).
		String("term", &p.Term).
		Int("year", &p.Year).
		BindError()
	if err != nil {
		return p, err
	}
	p.Clean()
	if err = validate.Struct(p); err != nil {
		return p, err
	}
	return p, nil
}

// bindTermYear reads the optional term and year query params, defaulting to term 1 of the current year.
func bindTermYear(ctx echo.Context) (term string, year int, err error) {
	err = echo.QueryParamsBinder(ctx).
		String("term", &term).
		Int("year", &year).
		BindError()
	if err != nil {
		return "", 0, err
	}

	term = core.CleanString(term)
	if term == "" {
		term = core.Term1
	}
	if year == 0 {
		year = core.CurrentYear()
	}

	var flds []core.FieldError
	if !core.IsTerm(term) {
		flds = append(flds, core.FieldError{Field: "term", Error: "term must be one of [" + strings.Join(core.Terms, " ") + "]"})
	}
	if !core.IsYear(year) {
		flds = append(flds, core.FieldError{
			Field: "year",
			Error: "year must be between " + strconv.Itoa(core.MinYear) + " and " + strconv.Itoa(core.MaxYear),
		})
	}
	if flds != nil {
		return "", 0, core.NewValidationError(nil, flds...)
	}
	return term, year, nil
}

// paramID reads the :id path param. Non numeric IDs match nothing.
func paramID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}
