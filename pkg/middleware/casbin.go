package middleware

import (
	"ProjectTracker/internal/auth"
	"log"
	"net/http"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/labstack/echo/v4"
)

var (
	enforcer     *casbin.Enforcer
	enforcerOnce sync.Once
)

// InitCasbinEnforcer initializes the Casbin enforcer singleton.
func InitCasbinEnforcer() (*casbin.Enforcer, error) {
	var err error
	enforcerOnce.Do(func() {
		m, errM := model.NewModelFromFile("rbac_model.conf")
		if errM != nil {
			err = errM
			return
		}
		enforcer, err = casbin.NewEnforcer(m, "rbac_policy.csv")
	})
	return enforcer, err
}

// CasbinMiddleware enforces the role policy for each request. The subject is
// the JWT role claim, the object the route path and the action the method.
func CasbinMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		claims, ok := c.Get("user").(*auth.JWTClaims)
		if !ok || claims == nil {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Unauthorized: missing user claims"})
		}
		enf, err := InitCasbinEnforcer()
		if err != nil {
			log.Println("Casbin enforcer error:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "RBAC system error"})
		}
		allowed, err := enf.Enforce(claims.Role, c.Path(), c.Request().Method)
		if err != nil {
			log.Println("Casbin enforce error:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "RBAC system error"})
		}
		if !allowed {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden: insufficient permissions"})
		}
		return next(c)
	}
}
