package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vmfab/rutero/internal/claim"
	"github.com/vmfab/rutero/internal/fault"
)

func itemKind(c *gin.Context) (claim.Kind, error) {
	return claim.ParseKind(c.Param("kind"))
}

func (s *Server) createTicket(c *gin.Context) {
	var in claim.TicketInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, fault.Invalid("cuerpo JSON inválido: %v", err))
		return
	}
	if in.Solicitante == "" {
		in.Solicitante = currentActor(c).ID
	}
	view, err := s.engine.CreateTicket(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (s *Server) listUnclaimed(c *gin.Context) {
	kind, err := itemKind(c)
	if err != nil {
		fail(c, err)
		return
	}
	var filter claim.PoolFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		fail(c, fault.Invalid("filtro inválido: %v", err))
		return
	}
	views, err := s.engine.ListUnclaimed(c.Request.Context(), kind, filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (s *Server) getItem(c *gin.Context) {
	kind, err := itemKind(c)
	if err != nil {
		fail(c, err)
		return
	}
	desc := c.Query("orden") == "desc"
	view, err := s.engine.Get(c.Request.Context(), kind, c.Param("id"), currentActor(c), desc)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) claimItem(c *gin.Context) {
	kind, err := itemKind(c)
	if err != nil {
		fail(c, err)
		return
	}
	view, err := s.engine.Claim(c.Request.Context(), kind, c.Param("id"), currentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) advanceItem(c *gin.Context) {
	kind, err := itemKind(c)
	if err != nil {
		fail(c, err)
		return
	}
	var body struct {
		Estado string `json:"estado"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, fault.Invalid("cuerpo JSON inválido: %v", err))
		return
	}
	view, err := s.engine.Advance(c.Request.Context(), kind, c.Param("id"), currentActor(c), body.Estado)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) releaseItem(c *gin.Context) {
	kind, err := itemKind(c)
	if err != nil {
		fail(c, err)
		return
	}
	view, err := s.engine.Release(c.Request.Context(), kind, c.Param("id"), currentActor(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) annotateItem(c *gin.Context) {
	kind, err := itemKind(c)
	if err != nil {
		fail(c, err)
		return
	}
	var body struct {
		Cuerpo    string `json:"cuerpo"`
		Evidencia string `json:"evidencia"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, fault.Invalid("cuerpo JSON inválido: %v", err))
		return
	}
	view, err := s.engine.Annotate(c.Request.Context(), kind, c.Param("id"), currentActor(c), body.Cuerpo, body.Evidencia)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (s *Server) deleteAnnotation(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, fault.Invalid("id de comentario inválido %q", c.Param("id")))
		return
	}
	if err := s.engine.DeleteAnnotation(c.Request.Context(), uint(id), currentActor(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "comentario eliminado"})
}
