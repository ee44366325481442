package claim

import (
	"context"
	"strings"

	"github.com/vmfab/rutero/internal/ctxlog"
	"github.com/vmfab/rutero/internal/fault"
	"github.com/vmfab/rutero/internal/model"
)

// TicketInput is the payload for opening a support ticket.
type TicketInput struct {
	Titulo      string `json:"titulo"`
	Descripcion string `json:"descripcion"`
	Solicitante string `json:"solicitante"`
}

// CreateTicket opens a ticket in the unclaimed pool. Tickets bypass the step
// generator entirely: they are single work items with no sequence position.
func (e *Engine) CreateTicket(ctx context.Context, in TicketInput) (model.WorkItemView, error) {
	if strings.TrimSpace(in.Titulo) == "" {
		return model.WorkItemView{}, fault.Invalid("título del ticket requerido")
	}
	if strings.TrimSpace(in.Solicitante) == "" {
		return model.WorkItemView{}, fault.Invalid("solicitante del ticket requerido")
	}

	t := model.Ticket{
		Titulo:      in.Titulo,
		Descripcion: in.Descripcion,
		Solicitante: in.Solicitante,
		Estado:      model.TicketNuevo,
	}
	if err := e.db.WithContext(ctx).Create(&t).Error; err != nil {
		return model.WorkItemView{}, fault.Storage(err, "creando ticket")
	}

	ctxlog.FromContext(ctx).Info("ticket creado",
		"ticket_id", t.ID.String(), "solicitante", in.Solicitante)
	return t.View(), nil
}
