package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vmfab/rutero/internal/fault"
	"github.com/vmfab/rutero/internal/generator"
	"github.com/vmfab/rutero/internal/model"
	"github.com/vmfab/rutero/internal/sheet"
)

func sheetID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, fault.Invalid("id de hoja inválido %q", c.Param("id"))
	}
	return uint(id), nil
}

func (s *Server) createSheet(c *gin.Context) {
	var in sheet.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, fault.Invalid("cuerpo JSON inválido: %v", err))
		return
	}
	view, err := s.sheets.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (s *Server) listSheets(c *gin.Context) {
	var maquinaID uint
	if raw := c.Query("maquina_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			fail(c, fault.Invalid("maquina_id inválido %q", raw))
			return
		}
		maquinaID = uint(id)
	}
	hojas, err := s.sheets.List(c.Request.Context(), maquinaID, model.EstadoHoja(c.Query("estado")))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, hojas)
}

func (s *Server) getSheet(c *gin.Context) {
	id, err := sheetID(c)
	if err != nil {
		fail(c, err)
		return
	}
	view, err := s.sheets.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) setSheetEstado(c *gin.Context) {
	id, err := sheetID(c)
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
	view, err := s.sheets.SetEstado(c.Request.Context(), id, model.EstadoHoja(body.Estado))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) approveSheet(c *gin.Context) {
	s.gateSheet(c, true)
}

func (s *Server) rejectSheet(c *gin.Context) {
	s.gateSheet(c, false)
}

func (s *Server) gateSheet(c *gin.Context, approve bool) {
	id, err := sheetID(c)
	if err != nil {
		fail(c, err)
		return
	}
	actor := currentActor(c)
	if !s.perms.Can(c.Request.Context(), actor, "hojas_ruta", "aprobar") {
		fail(c, fault.Forbidden("sin permiso para aprobar hojas de ruta"))
		return
	}
	var view *model.HojaView
	if approve {
		view, err = s.sheets.Approve(c.Request.Context(), id, actor.Nombre)
	} else {
		view, err = s.sheets.Reject(c.Request.Context(), id, actor.Nombre)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// repairSheet clones the machine-type default template into a sheet that has
// no stations. The operation is idempotent; repeating it reports zero created.
func (s *Server) repairSheet(c *gin.Context) {
	id, err := sheetID(c)
	if err != nil {
		fail(c, err)
		return
	}
	created, err := generator.EnsureStations(c.Request.Context(), s.db, s.catalog, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hoja_ruta_id": id, "estaciones_creadas": created})
}

func (s *Server) createMaquina(c *gin.Context) {
	var m model.Maquina
	if err := c.ShouldBindJSON(&m); err != nil {
		fail(c, fault.Invalid("cuerpo JSON inválido: %v", err))
		return
	}
	if err := s.sheets.CreateMaquina(c.Request.Context(), &m); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (s *Server) listMaquinas(c *gin.Context) {
	ms, err := s.sheets.ListMaquinas(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ms)
}
