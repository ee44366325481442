package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vmfab/rutero/internal/fault"
	"github.com/vmfab/rutero/internal/model"
)

func (s *Server) listTemplates(c *gin.Context) {
	rows, err := s.catalog.ListTemplates(c.Request.Context(), c.Query("maquina_tipo"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) createTemplate(c *gin.Context) {
	var row model.PlantillaEstacion
	if err := c.ShouldBindJSON(&row); err != nil {
		fail(c, fault.Invalid("cuerpo JSON inválido: %v", err))
		return
	}
	if err := s.catalog.CreateTemplate(c.Request.Context(), &row); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (s *Server) updateTemplate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, fault.Invalid("id de plantilla inválido %q", c.Param("id")))
		return
	}
	var row model.PlantillaEstacion
	if err := c.ShouldBindJSON(&row); err != nil {
		fail(c, fault.Invalid("cuerpo JSON inválido: %v", err))
		return
	}
	row.ID = uint(id)
	if err := s.catalog.UpdateTemplate(c.Request.Context(), &row); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (s *Server) deleteTemplate(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, fault.Invalid("id de plantilla inválido %q", c.Param("id")))
		return
	}
	if err := s.catalog.DeleteTemplate(c.Request.Context(), uint(id)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mensaje": "plantilla eliminada"})
}
