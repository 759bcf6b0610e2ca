package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/gradebook/core/subject"
)

var errSubjectNotFoundInCtx = errors.New("subject object not found in echo.Context")

type subjectApi struct {
	svc      *subject.Service
	validate *validator.Validate
}

func registerSubjectAPI(g *echo.Group, svc *subject.Service, validate *validator.Validate) {
	api := subjectApi{
		svc:      svc,
		validate: validate,
	}

	sg := g.Group("/subjects")
	sg.GET("", api.query)
	sg.POST("", api.create)

	// detail endpoints
	dg := sg.Group("/:id", subjectCtxMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *subjectApi) query(ctx echo.Context) error {
	filter := new(subject.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	subjects, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) create(ctx echo.Context) error {
	var data subject.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	sub, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *subjectApi) retrieve(ctx echo.Context) error {
	sub, ok := ctx.Get("object").(subject.Subject)
	if !ok {
		return errors.Wrap(errSubjectNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) update(ctx echo.Context) error {
	sub, ok := ctx.Get("object").(subject.Subject)
	if !ok {
		return errors.Wrap(errSubjectNotFoundInCtx, "retrieving object from context")
	}

	var data subject.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if err := data.Validate(ctx.Request().Context(), sub, api.validate, api.svc); err != nil {
		return err
	}

	sub, err := api.svc.Update(ctx.Request().Context(), sub.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) destroy(ctx echo.Context) error {
	sub, ok := ctx.Get("object").(subject.Subject)
	if !ok {
		return errors.Wrap(errSubjectNotFoundInCtx, "retrieving object from context")
	}
	if err := api.svc.Delete(ctx.Request().Context(), sub.ID); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func subjectCtxMiddleware(svc *subject.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			id, err := paramID(ctx)
			if err != nil {
				return err
			}
			sub, err := svc.GetByID(ctx.Request().Context(), id)
			if err != nil {
				return errors.Wrap(err, "finding subject by ID")
			}
			ctx.Set("object", sub)
			return next(ctx)
		}
	}
}
