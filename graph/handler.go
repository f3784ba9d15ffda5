package graph

import (
	"context"
	"errors"
	"runtime/debug"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/models"
	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/ravilushqa/otelgqlgen"
	"github.com/sirupsen/logrus"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

const internalErrorCode = "INTERNAL_ERROR"

// NewHandler serves the schema over POST and GET with otel field tracing.
func NewHandler(cfg Config, logger logrus.FieldLogger) *handler.Server {
	srv := handler.New(NewExecutableSchema(cfg))
	srv.AddTransport(transport.POST{})
	srv.AddTransport(transport.GET{})
	srv.Use(otelgqlgen.Middleware())
	srv.SetErrorPresenter(errorPresenter(logger))
	srv.SetRecoverFunc(func(ctx context.Context, err interface{}) error {
		logger.WithFields(logrus.Fields{
			"field": "graphql",
			"panic": err,
		}).Error(string(debug.Stack()))
		return &gqlerror.Error{
			Message:    "internal server error",
			Extensions: map[string]interface{}{"code": internalErrorCode},
		}
	})
	return srv
}

// errorPresenter gives AppErrors their code as an extension. Parse and
// validation errors pass through; anything else is logged and hidden.
func errorPresenter(logger logrus.FieldLogger) graphql.ErrorPresenterFunc {
	return func(ctx context.Context, err error) *gqlerror.Error {
		gqlErr := graphql.DefaultErrorPresenter(ctx, err)

		if appErr, ok := models.AsAppError(err); ok {
			gqlErr.Message = appErr.Message
			if appErr.StatusCode >= 500 {
				config.LogError(logger, "graphql", "errorPresenter", gqlErr.Path.String(), nil, err)
				gqlErr.Message = "internal server error"
			}
			setCode(gqlErr, appErr.Code)
			return gqlErr
		}

		var plain *gqlerror.Error
		if errors.As(err, &plain) && plain.Unwrap() == nil {
			return gqlErr
		}

		config.LogError(logger, "graphql", "errorPresenter", gqlErr.Path.String(), nil, err)
		gqlErr.Message = "internal server error"
		setCode(gqlErr, internalErrorCode)
		return gqlErr
	}
}

func setCode(gqlErr *gqlerror.Error, code string) {
	if gqlErr.Extensions == nil {
		gqlErr.Extensions = map[string]interface{}{}
	}
	gqlErr.Extensions["code"] = code
}
