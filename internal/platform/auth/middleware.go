package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const ctxIdentityKey = "auth_identity"

type errorDTO struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func errorBody(code, msg string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

// RequireAuth: Authorization: Bearer <token> を検証して context に Identity を詰める
func RequireAuth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("UNAUTHENTICATED", "missing or invalid Authorization header"))
			return
		}
		id, err := v.Verify(tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("UNAUTHENTICATED", "invalid token"))
			return
		}
		c.Set(ctxIdentityKey, id)
		c.Next()
	}
}

// RequireCapability: RequireAuth の後ろに置く
func RequireCapability(cap Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("UNAUTHENTICATED", "missing identity"))
			return
		}
		if !id.Role.Can(cap) {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody("FORBIDDEN", "forbidden"))
			return
		}
		c.Next()
	}
}

func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(ctxIdentityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
