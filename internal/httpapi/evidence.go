package httpapi

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vmfab/rutero/internal/fault"
)

// uploadEvidence stores a blob and returns the reference the caller attaches
// to an annotation. The engine never looks inside the blob.
func (s *Server) uploadEvidence(c *gin.Context) {
	file, header, err := c.Request.FormFile("evidencia")
	if err != nil {
		fail(c, fault.Invalid("archivo 'evidencia' requerido"))
		return
	}
	defer file.Close()

	ref, err := s.evidence.Save(header.Filename, file)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"referencia": ref})
}

func (s *Server) downloadEvidence(c *gin.Context) {
	rc, err := s.evidence.Open(c.Param("ref"))
	if err != nil {
		fail(c, err)
		return
	}
	defer rc.Close()

	c.Status(http.StatusOK)
	c.Header("Content-Disposition", "attachment; filename="+c.Param("ref"))
	io.Copy(c.Writer, rc)
}
