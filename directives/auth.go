package directives

import (
	"context"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/99designs/gqlgen/graphql"
)

// Actor rebuilds the caller placed on the request context by AuthMiddleware.
func Actor(ctx context.Context) models.Actor {
	id, _ := utils.GetUserIdFromContext(ctx)
	role, _ := utils.GetRoleFromContext(ctx)
	return models.Actor{Id: id, Role: models.UserRole(role)}
}

// HasRole guards fields marked @hasRole(roles: [...]).
func HasRole(ctx context.Context, obj interface{}, next graphql.Resolver, roles []models.UserRole) (interface{}, error) {
	actor := Actor(ctx)
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	for _, role := range roles {
		if actor.Role == role {
			return next(ctx)
		}
	}
	return nil, models.ErrForbidden.Withf("%s is not allowed for role %q", graphql.GetPath(ctx), actor.Role)
}
