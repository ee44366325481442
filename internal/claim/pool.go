package claim

import (
	"context"

	"github.com/vmfab/rutero/internal/fault"
	"github.com/vmfab/rutero/internal/identity"
	"github.com/vmfab/rutero/internal/model"
)

// PoolFilter narrows the unclaimed pool. Zero values match everything.
type PoolFilter struct {
	HojaRutaID    uint   `form:"hoja_ruta_id" json:"hoja_ruta_id"`
	CentroTrabajo string `form:"centro_trabajo" json:"centro_trabajo"`
	Solicitante   string `form:"solicitante" json:"solicitante"`
}

// ListUnclaimed returns the items currently available for claiming. Stations
// come back grouped by sheet and ascending orden; tickets oldest first.
func (e *Engine) ListUnclaimed(ctx context.Context, kind Kind, filter PoolFilter) ([]model.WorkItemView, error) {
	switch kind {
	case KindTicket:
		var tickets []model.Ticket
		q := e.db.WithContext(ctx).
			Where("estado = ? AND operador_id IS NULL", model.TicketNuevo).
			Order("fecha_creacion ASC, id ASC")
		if filter.Solicitante != "" {
			q = q.Where("solicitante = ?", filter.Solicitante)
		}
		if err := q.Find(&tickets).Error; err != nil {
			return nil, fault.Storage(err, "listando tickets disponibles")
		}
		views := make([]model.WorkItemView, 0, len(tickets))
		for _, t := range tickets {
			views = append(views, t.View())
		}
		return views, nil
	case KindEstacion:
		var estaciones []model.Estacion
		q := e.db.WithContext(ctx).
			Where("estado = ? AND operador_id IS NULL", model.EstacionPendiente).
			Order("hoja_ruta_id ASC, orden ASC")
		if filter.HojaRutaID != 0 {
			q = q.Where("hoja_ruta_id = ?", filter.HojaRutaID)
		}
		if filter.CentroTrabajo != "" {
			q = q.Where("centro_trabajo = ?", filter.CentroTrabajo)
		}
		if err := q.Find(&estaciones).Error; err != nil {
			return nil, fault.Storage(err, "listando estaciones disponibles")
		}
		views := make([]model.WorkItemView, 0, len(estaciones))
		for _, est := range estaciones {
			views = append(views, est.View())
		}
		return views, nil
	default:
		return nil, fault.Invalid("tipo de item desconocido %q", kind)
	}
}

// Get returns an item with its annotation timeline. Read access: the owner,
// an administrator, the requester of a ticket, or anyone while the item sits
// unclaimed in the pool. Annotations come back ascending by default; desc
// flips to most-recent-first.
func (e *Engine) Get(ctx context.Context, kind Kind, id string, actor identity.Actor, desc bool) (model.WorkItemView, error) {
	it, err := e.load(ctx, e.db, kind, id)
	if err != nil {
		return model.WorkItemView{}, err
	}

	readable := actor.Admin || it.owned(actor) || it.operador == nil
	if !readable && it.ticket != nil && it.ticket.Solicitante == actor.ID {
		readable = true
	}
	if !readable {
		return model.WorkItemView{}, fault.Forbidden("%s %s no es visible para %s", kind, id, actor.ID)
	}

	view := it.view()
	comentarios, err := e.Annotations(ctx, kind, id, desc)
	if err != nil {
		return model.WorkItemView{}, err
	}
	view.Comentarios = comentarios
	return view, nil
}
