package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/grade"
	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/report"
)

type gradeApi struct {
	svc       *grade.Service
	reportSvc *report.Service
	validate  *validator.Validate
}

func registerGradeAPI(g *echo.Group, svc *grade.Service, reportSvc *report.Service, validate *validator.Validate) {
	api := gradeApi{
		svc:       svc,
		reportSvc: reportSvc,
		validate:  validate,
	}

	gg := g.Group("/grades")
	gg.GET("/entry", api.entrySheet)
	gg.POST("/save", api.saveBatch)
	gg.POST("/save-single", api.saveSingle)
	gg.GET("/student/:id", api.studentGrades)
	gg.GET("/class", api.classGrades)
	gg.GET("/average/student/:id", api.studentAverage)
	gg.GET("/average/class", api.classAverage)
}

type (
	SaveResponse struct {
		Message string      `json:"message"`
		Saved   int         `json:"saved"`
		Grade   *grade.View `json:"grade,omitempty"`
	}

	AverageResponse struct {
		Average float64 `json:"average"`
		Letter  string  `json:"letter"`
		Points  float64 `json:"points"`
	}
)

func newAverageResponse(avg float64) AverageResponse {
	avg = grading.Round2(avg)
	return AverageResponse{
		Average: avg,
		Letter:  grading.Letter(avg),
		Points:  grading.Points(avg),
	}
}

// Handlers

func (api *gradeApi) entrySheet(ctx echo.Context) error {
	period, err := bindPeriod(ctx, api.validate)
	if err != nil {
		return err
	}
	sheet, err := api.svc.EntrySheet(ctx.Request().Context(), period)
	if err != nil {
		return errors.Wrap(err, "loading entry sheet")
	}
	return ctx.JSON(http.StatusOK, sheet)
}

func (api *gradeApi) saveBatch(ctx echo.Context) error {
	var data grade.BatchSave
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BatchSave")
	}

	n, err := api.svc.SaveBatch(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving grades")
	}
	return ctx.JSON(http.StatusOK, SaveResponse{
		Message: fmt.Sprintf("Successfully saved %d grades", n),
		Saved:   n,
	})
}

func (api *gradeApi) saveSingle(ctx echo.Context) error {
	var data grade.SingleSave
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SingleSave")
	}
	// term and year come from the query, like the entry sheet the cell belongs to
	err := echo.QueryParamsBinder(ctx).
		String("term", &data.Term).
		Int("year", &data.Year).
		BindError()
	if err != nil {
		return err
	}

	g, err := api.svc.SaveSingle(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "saving grade")
	}
	view := grade.NewView(g)
	return ctx.JSON(http.StatusOK, SaveResponse{
		Message: "Grade saved successfully",
		Saved:   1,
		Grade:   &view,
	})
}

func (api *gradeApi) studentGrades(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	term, year, err := bindTermYear(ctx)
	if err != nil {
		return err
	}

	sg, err := api.svc.StudentGrades(ctx.Request().Context(), id, term, year)
	if err != nil {
		return errors.Wrap(err, "finding student grades")
	}
	return ctx.JSON(http.StatusOK, sg)
}

func (api *gradeApi) classGrades(ctx echo.Context) error {
	period, err := bindPeriod(ctx, api.validate)
	if err != nil {
		return err
	}
	classGrades, err := api.svc.ClassGrades(ctx.Request().Context(), period)
	if err != nil {
		return errors.Wrap(err, "finding class grades")
	}
	return ctx.JSON(http.StatusOK, classGrades)
}

func (api *gradeApi) studentAverage(ctx echo.Context) error {
	id, err := paramID(ctx)
	if err != nil {
		return err
	}
	term, year, err := bindTermYear(ctx)
	if err != nil {
		return err
	}

	avg, err := api.reportSvc.StudentAverage(ctx.Request().Context(), id, term, year)
	if err != nil {
		return errors.Wrap(err, "computing student average")
	}
	return ctx.JSON(http.StatusOK, newAverageResponse(avg))
}

func (api *gradeApi) classAverage(ctx echo.Context) error {
	period, err := bindPeriod(ctx, api.validate)
	if err != nil {
		return err
	}
	avg, err := api.reportSvc.ClassAverage(ctx.Request().Context(), period.ClassLevel, period.Term, period.Year)
	if err != nil {
		return errors.Wrap(err, "computing class average")
	}
	return ctx.JSON(http.StatusOK, newAverageResponse(avg))
}
