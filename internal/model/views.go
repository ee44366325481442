package model

import (
	"strconv"
	"time"
)

// WorkItemView is the flat snapshot of a claimable item handed to callers.
// One shape covers both kinds; sequence fields stay empty for tickets and
// ticket fields stay empty for stations.
type WorkItemView struct {
	Kind     string `json:"tipo"`
	ID       string `json:"id"`
	Etiqueta string `json:"etiqueta"`
	Estado   string `json:"estado"`
	Operador string `json:"operador_id,omitempty"`

	// Station fields.
	HojaRutaID    uint   `json:"hoja_ruta_id,omitempty"`
	Orden         int    `json:"orden,omitempty"`
	ProC          string `json:"pro_c,omitempty"`
	CentroTrabajo string `json:"centro_trabajo,omitempty"`
	TE            string `json:"t_e,omitempty"`
	TTCT          string `json:"t_tct,omitempty"`
	TTCO          string `json:"t_tco,omitempty"`
	TTO           string `json:"t_to,omitempty"`
	TotalPiezas   int    `json:"total_piezas,omitempty"`

	// Ticket fields.
	Descripcion string `json:"descripcion,omitempty"`
	Solicitante string `json:"solicitante,omitempty"`

	FechaReclamo      *time.Time `json:"fecha_reclamo,omitempty"`
	FechaInicio       *time.Time `json:"fecha_inicio,omitempty"`
	FechaFinalizacion *time.Time `json:"fecha_finalizacion,omitempty"`
	FechaCreacion     time.Time  `json:"fecha_creacion"`

	Comentarios []ComentarioView `json:"comentarios,omitempty"`
}

// ComentarioView is the serializable snapshot of an annotation.
type ComentarioView struct {
	ID            uint      `json:"id"`
	Autor         string    `json:"autor"`
	Cuerpo        string    `json:"cuerpo"`
	Evidencia     string    `json:"evidencia,omitempty"`
	FechaCreacion time.Time `json:"fecha_creacion"`
}

// HojaView is the serializable snapshot of a routing sheet with its stations
// and the computed active station.
type HojaView struct {
	Hoja            HojaRuta       `json:"hoja"`
	Estaciones      []WorkItemView `json:"estaciones"`
	EstacionActiva  *WorkItemView  `json:"estacion_activa,omitempty"`
	TotalEstaciones int            `json:"total_estaciones"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// View flattens a station.
func (e Estacion) View() WorkItemView {
	return WorkItemView{
		Kind:              "estacion",
		ID:                itoa(e.ID),
		Etiqueta:          e.Operacion,
		Estado:            string(e.Estado),
		Operador:          deref(e.OperadorID),
		HojaRutaID:        e.HojaRutaID,
		Orden:             e.Orden,
		ProC:              e.ProC,
		CentroTrabajo:     e.CentroTrabajo,
		TE:                e.TE,
		TTCT:              e.TTCT,
		TTCO:              e.TTCO,
		TTO:               e.TTO,
		TotalPiezas:       e.TotalPiezas,
		FechaReclamo:      e.FechaReclamo,
		FechaInicio:       e.FechaInicio,
		FechaFinalizacion: e.FechaFinalizacion,
		FechaCreacion:     e.FechaCreacion,
	}
}

// View flattens a ticket.
func (t Ticket) View() WorkItemView {
	return WorkItemView{
		Kind:              "ticket",
		ID:                t.ID.String(),
		Etiqueta:          t.Titulo,
		Estado:            string(t.Estado),
		Operador:          deref(t.OperadorID),
		Descripcion:       t.Descripcion,
		Solicitante:       t.Solicitante,
		FechaReclamo:      t.FechaReclamo,
		FechaFinalizacion: t.FechaResolucion,
		FechaCreacion:     t.FechaCreacion,
	}
}

// View flattens an annotation.
func (c Comentario) View() ComentarioView {
	return ComentarioView{
		ID:            c.ID,
		Autor:         c.Autor,
		Cuerpo:        c.Cuerpo,
		Evidencia:     c.Evidencia,
		FechaCreacion: c.FechaCreacion,
	}
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
