package echoapi

import (
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/dagmawi/collegehub/core/user"
	"github.com/dagmawi/collegehub/storage/cache"
)

// roleMiddleware only lets callers whose role tag is in roles through.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if allowed[claims.Role] {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

func adminMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RoleAdmin)
}

// paidStudentMiddleware blocks students whose tuition payment has not been
// verified. Staff roles pass through; payment endpoints must not mount it so
// an unpaid student can still submit a payment and check its status.
func paidStudentMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.Role == user.RoleStudent && claims.PaymentStatus != user.PaymentVerified {
				return errPaymentRequired
			}
			return next(ctx)
		}
	}
}

// loginRateLimitMiddleware applies a fixed window per client IP on the login
// endpoint; it fails open when redis is down.
func loginRateLimitMiddleware(rdb *cache.Redis, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			key := fmt.Sprintf("ratelimit:login:%s", ctx.RealIP())
			if !rdb.Allow(ctx.Request().Context(), key, limit, window) {
				return errTooManyRequests
			}
			return next(ctx)
		}
	}
}
