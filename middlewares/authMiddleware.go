package middlewares

import (
	"net/http"
	"strings"

	"bitbucket.org/mmdatafocus/pos_backend/models"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// AuthMiddleware verifies the bearer token and stores the caller as a
// models.Actor. Requests without a token pass through unauthenticated;
// RequireActor rejects them on protected routes.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.Request.Header.Get("Authorization")
		if auth == "" {
			c.Next()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		claims, err := utils.JwtValidate(secret, token)
		if err != nil {
			abortWith(c, models.ErrUnauthorized.Withf("invalid token"))
			return
		}

		actor := models.Actor{Id: claims.ID, Role: models.UserRole(claims.Role)}
		c.Set(actorKey, actor)

		ctx := utils.SetUserIdInContext(c.Request.Context(), actor.Id)
		ctx = utils.SetRoleInContext(ctx, string(actor.Role))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func ActorFromContext(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok || actor.Validate() != nil {
			abortWith(c, models.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, _ := ActorFromContext(c)
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		abortWith(c, models.ErrForbidden)
	}
}

func abortWith(c *gin.Context, appErr *models.AppError) {
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	utils.Error(c, status, appErr.Code, appErr.Message, nil)
	c.Abort()
}
