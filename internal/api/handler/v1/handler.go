package v1

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/campushub/events-api/internal/api/handler/v1/response"
	"github.com/campushub/events-api/internal/api/middleware"
	"github.com/campushub/events-api/internal/domain"
	"github.com/campushub/events-api/internal/pkg/jwthelper"
	"github.com/campushub/events-api/internal/service"
)

type UserService interface {
	GetUser(ctx context.Context, id uint) (domain.User, error)
	GetWalletBalance(ctx context.Context, id uint) (int64, error)
}

// getUserFromContext resolves the authenticated user from the JWT
// claims placed by the authenticator middleware.
func getUserFromContext(ctx *gin.Context, svc UserService) (domain.User, *response.Err) {
	value, exists := ctx.Get(middleware.ContextKeyUserClaims)
	if !exists {
		return domain.User{}, response.ErrUnauthorized("missing credentials")
	}

	claims, ok := value.(*jwthelper.UserClaims)
	if !ok {
		return domain.User{}, response.ErrUnauthorized("invalid credentials")
	}

	user, err := svc.GetUser(ctx.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return domain.User{}, response.ErrUnauthorized("unknown user")
		}

		return domain.User{}, response.ErrInternalServerError(fmt.Errorf("getUserFromContext -> svc.GetUser -> %w", err))
	}

	return user, nil
}
