package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vmfab/rutero/internal/ctxlog"
	"github.com/vmfab/rutero/internal/identity"
)

const actorKey = "rutero.actor"

// Headers the session collaborator forwards after authenticating a request.
// The engine consumes only the opaque identifier and the admin flag.
const (
	headerActorID     = "X-Operador-Id"
	headerActorNombre = "X-Operador-Nombre"
	headerAdmin       = "X-Operador-Admin"
)

// withLogger decorates the request context with a request-scoped logger.
func (s *Server) withLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := s.logger.With("method", c.Request.Method, "path", c.FullPath())
		c.Request = c.Request.WithContext(ctxlog.WithLogger(c.Request.Context(), log))
		c.Next()
	}
}

// withActor resolves the current actor from the forwarded identity headers.
// Requests without an identity are rejected before reaching a handler.
func (s *Server) withActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := identity.Actor{
			ID:     c.GetHeader(headerActorID),
			Nombre: c.GetHeader(headerActorNombre),
			Admin:  c.GetHeader(headerAdmin) == "1",
		}
		if actor.Zero() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "autenticación requerida"})
			return
		}
		c.Set(actorKey, actor)
		c.Request = c.Request.WithContext(ctxlog.With(c.Request.Context(), "operador", actor.ID))
		c.Next()
	}
}

// currentActor returns the actor withActor resolved.
func currentActor(c *gin.Context) identity.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(identity.Actor); ok {
			return a
		}
	}
	return identity.Actor{}
}
