package http

import (
	"github.com/gin-gonic/gin"
	"github.com/layer-3/taskboard/core"
)

const principalKey = "taskboard.principal"

func setPrincipal(c *gin.Context, p core.Principal) {
	c.Set(principalKey, p)
}

// PrincipalFrom returns the principal stored by AuthMiddleware.
func PrincipalFrom(c *gin.Context) (core.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return core.Principal{}, false
	}
	p, ok := v.(core.Principal)
	return p, ok
}

// mustPrincipal is for handlers mounted behind AuthMiddleware.
func mustPrincipal(c *gin.Context) core.Principal {
	p, ok := PrincipalFrom(c)
	if !ok {
		panic("transport/http: handler mounted without AuthMiddleware")
	}
	return p
}
