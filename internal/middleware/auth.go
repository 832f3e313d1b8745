package middleware

import (
	"context"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/jwt"

	"StaffHub/internal/model"
	"StaffHub/internal/service"
	"StaffHub/pkg/errors"
	"StaffHub/pkg/response"
	"StaffHub/pkg/token"
)

const currentUserKey = "current_user"

var authMiddleware *jwt.HertzJWTMiddleware

// PrincipalLoader resolves the user behind a verified token.
type PrincipalLoader interface {
	LoadActive(ctx context.Context, userID int64) (*model.User, error)
}

func initAuthMiddleware() error {
	shared := token.GetGenerator()
	if shared == nil {
		return fmt.Errorf("token generator not initialized, call token.Init() first")
	}

	mw, err := jwt.New(&jwt.HertzJWTMiddleware{
		Realm:       "StaffHub API",
		Key:         shared.Key,
		Timeout:     shared.Timeout,
		MaxRefresh:  shared.MaxRefresh,
		IdentityKey: shared.IdentityKey,
		TimeFunc:    shared.TimeFunc,

		IdentityHandler: func(ctx context.Context, c *app.RequestContext) interface{} {
			claims := jwt.ExtractClaims(ctx, c)
			// refresh tokens carry a type claim and must not authenticate requests
			if _, isRefresh := claims["type"]; isRefresh {
				return nil
			}
			uid, ok := token.ParseUserID(claims[token.IdentityKey])
			if !ok {
				return nil
			}
			return uid
		},

		Authorizator: func(data interface{}, ctx context.Context, c *app.RequestContext) bool {
			_, ok := data.(int64)
			return ok
		},

		Unauthorized: func(ctx context.Context, c *app.RequestContext, code int, message string) {
			response.Error(ctx, c, errors.Unauthorized.WithMessage(message))
		},

		TokenLookup:   "header: Authorization",
		TokenHeadName: "Bearer",
	})
	if err != nil {
		return fmt.Errorf("failed to build auth middleware: %w", err)
	}
	authMiddleware = mw
	return nil
}

// Auth verifies the bearer token and loads the active user it names.
func Auth() []app.HandlerFunc {
	if authMiddleware == nil {
		panic("auth middleware not initialized, call Init() first")
	}
	return []app.HandlerFunc{authMiddleware.MiddlewareFunc(), LoadPrincipal(service.User())}
}

// LoadPrincipal stores the current user for handlers. Deleted or disabled accounts
// are rejected even while their token is still valid.
func LoadPrincipal(loader PrincipalLoader) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		uid, ok := userIDFromContext(c)
		if !ok {
			response.Error(ctx, c, errors.Unauthorized)
			c.Abort()
			return
		}

		user, err := loader.LoadActive(ctx, uid)
		if err != nil {
			response.Error(ctx, c, err)
			c.Abort()
			return
		}

		c.Set(currentUserKey, user)
		c.Next(ctx)
	}
}

func userIDFromContext(c *app.RequestContext) (int64, bool) {
	v, exists := c.Get(token.IdentityKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok && id > 0
}

// CurrentUser returns the authenticated user set by LoadPrincipal.
func CurrentUser(c *app.RequestContext) (*model.User, bool) {
	v, exists := c.Get(currentUserKey)
	if !exists {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok
}
