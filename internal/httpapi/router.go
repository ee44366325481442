// Package httpapi exposes the routing and claim engine over HTTP. Handlers
// translate between JSON payloads and engine calls; every engine fault code
// maps to one HTTP status and the engine itself never formats user-facing
// text.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vmfab/rutero/internal/catalog"
	"github.com/vmfab/rutero/internal/claim"
	"github.com/vmfab/rutero/internal/evidence"
	"github.com/vmfab/rutero/internal/fault"
	"github.com/vmfab/rutero/internal/identity"
	"github.com/vmfab/rutero/internal/sheet"
)

// Server bundles the collaborators the handlers need.
type Server struct {
	db       *gorm.DB
	sheets   *sheet.Service
	engine   *claim.Engine
	catalog  *catalog.Catalog
	evidence *evidence.Store
	perms    identity.Permissions
	logger   *slog.Logger
}

// New assembles a server.
func New(db *gorm.DB, sheets *sheet.Service, engine *claim.Engine, cat *catalog.Catalog, ev *evidence.Store, perms identity.Permissions, logger *slog.Logger) *Server {
	if perms == nil {
		perms = identity.AllowAll{}
	}
	return &Server{
		db:       db,
		sheets:   sheets,
		engine:   engine,
		catalog:  cat,
		evidence: ev,
		perms:    perms,
		logger:   logger,
	}
}

// Router builds the gin engine with every route mounted.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.withLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", s.withActor())
	{
		api.GET("/maquinas", s.listMaquinas)
		api.POST("/maquinas", s.createMaquina)

		api.GET("/plantillas", s.listTemplates)
		api.POST("/plantillas", s.createTemplate)
		api.PUT("/plantillas/:id", s.updateTemplate)
		api.DELETE("/plantillas/:id", s.deleteTemplate)

		api.POST("/hojas-ruta", s.createSheet)
		api.GET("/hojas-ruta", s.listSheets)
		api.GET("/hojas-ruta/:id", s.getSheet)
		api.PUT("/hojas-ruta/:id/estado", s.setSheetEstado)
		api.POST("/hojas-ruta/:id/aprobar", s.approveSheet)
		api.POST("/hojas-ruta/:id/rechazar", s.rejectSheet)
		api.POST("/hojas-ruta/:id/reparar", s.repairSheet)

		api.POST("/tickets", s.createTicket)

		api.GET("/items/:kind/disponibles", s.listUnclaimed)
		api.GET("/items/:kind/:id", s.getItem)
		api.POST("/items/:kind/:id/reclamar", s.claimItem)
		api.POST("/items/:kind/:id/avanzar", s.advanceItem)
		api.POST("/items/:kind/:id/liberar", s.releaseItem)
		api.POST("/items/:kind/:id/comentarios", s.annotateItem)

		api.DELETE("/comentarios/:id", s.deleteAnnotation)

		api.POST("/evidencias", s.uploadEvidence)
		api.GET("/evidencias/:ref", s.downloadEvidence)
	}

	return r
}

// httpStatus maps an engine fault code to its HTTP status.
func httpStatus(err error) int {
	switch fault.CodeOf(err) {
	case fault.CodeNotFound:
		return http.StatusNotFound
	case fault.CodeConflict:
		return http.StatusConflict
	case fault.CodeForbidden:
		return http.StatusForbidden
	case fault.CodeInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error payload the frontend maps to field messages.
func fail(c *gin.Context, err error) {
	c.AbortWithStatusJSON(httpStatus(err), gin.H{
		"error":  err.Error(),
		"codigo": fault.CodeOf(err),
	})
}
