package echoapi

import (
	"bytes"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core"
	"github.com/trezcool/gradebook/core/report"
	rendersvc "github.com/trezcool/gradebook/services/render"
)

type reportApi struct {
	svc        *report.Service
	validate   *validator.Validate
	logger     core.Logger
	schoolName string
}

func registerReportAPI(g *echo.Group, svc *report.Service, validate *validator.Validate, logger core.Logger, schoolName string) {
	api := reportApi{
		svc:        svc,
		validate:   validate,
		logger:     logger,
		schoolName: schoolName,
	}

	g.GET("/dashboard", api.dashboard)

	rg := g.Group("/reports")
	rg.GET("/ranking", api.ranking)
	rg.GET("/ranking/excel", api.rankingExcel)
	rg.GET("/ranking/pdf", api.rankingPDF)
	rg.GET("/ranking/html", api.rankingHTML)
	rg.GET("/subjects", api.subjects)
}

func (api *reportApi) rankingTable(ctx echo.Context) (report.RankingTable, error) {
	period, err := bindPeriod(ctx, api.validate)
	if err != nil {
		return report.RankingTable{}, err
	}
	rep, err := api.svc.Ranking(ctx.Request().Context(), period)
	if err != nil {
		return report.RankingTable{}, errors.Wrap(err, "ranking students")
	}
	return report.NewRankingTable(api.schoolName, rep, core.NowFunc()), nil
}

func attach(ctx echo.Context, contentType, fileName string, data []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return ctx.Blob(http.StatusOK, contentType, data)
}

// Handlers

func (api *reportApi) dashboard(ctx echo.Context) error {
	term, year, err := bindTermYear(ctx)
	if err != nil {
		return err
	}
	dash, err := api.svc.Dashboard(ctx.Request().Context(), term, year)
	if err != nil {
		return errors.Wrap(err, "building dashboard")
	}
	return ctx.JSON(http.StatusOK, dash)
}

func (api *reportApi) ranking(ctx echo.Context) error {
	period, err := bindPeriod(ctx, api.validate)
	if err != nil {
		return err
	}
	rep, err := api.svc.Ranking(ctx.Request().Context(), period)
	if err != nil {
		return errors.Wrap(err, "ranking students")
	}
	return ctx.JSON(http.StatusOK, rep)
}

func (api *reportApi) rankingExcel(ctx echo.Context) error {
	table, err := api.rankingTable(ctx)
	if err != nil {
		return err
	}
	data, err := rendersvc.Excel(table)
	if err != nil {
		api.logger.Error("generating Excel report", err, table.Period)
		return echo.NewHTTPError(http.StatusInternalServerError, "error generating Excel report")
	}
	return attach(ctx, rendersvc.ContentTypeExcel, table.FileName("xlsx"), data)
}

func (api *reportApi) rankingPDF(ctx echo.Context) error {
	table, err := api.rankingTable(ctx)
	if err != nil {
		return err
	}
	data, err := rendersvc.PDF(table)
	if err != nil {
		api.logger.Error("generating PDF report", err, table.Period)
		return echo.NewHTTPError(http.StatusInternalServerError, "error generating PDF report")
	}
	return attach(ctx, rendersvc.ContentTypePDF, table.FileName("pdf"), data)
}

func (api *reportApi) rankingHTML(ctx echo.Context) error {
	table, err := api.rankingTable(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = rendersvc.HTML(&buf, table); err != nil {
		return errors.Wrap(err, "rendering ranking page")
	}
	return ctx.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (api *reportApi) subjects(ctx echo.Context) error {
	period, err := bindPeriod(ctx, api.validate)
	if err != nil {
		return err
	}
	stats, err := api.svc.SubjectPerformance(ctx.Request().Context(), period)
	if err != nil {
		return errors.Wrap(err, "computing subject performance")
	}
	return ctx.JSON(http.StatusOK, stats)
}
