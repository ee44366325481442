// Package claim implements the state machine governing exclusive ownership
// and progression of work items: support tickets and routing-sheet stations.
//
// Both kinds share one pipeline shape: an unclaimed initial state, a single
// active state entered by claiming, and a terminal state. Release is the only
// backward transition; it returns the item to the pool. Every guard failure
// surfaces as a typed fault: CONFLICT when the item is not in the required
// state (including a lost claim race) and FORBIDDEN when the actor is not the
// owner.
package claim

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vmfab/rutero/internal/ctxlog"
	"github.com/vmfab/rutero/internal/fault"
	"github.com/vmfab/rutero/internal/identity"
	"github.com/vmfab/rutero/internal/model"
)

// Kind discriminates the two work-item kinds.
type Kind string

const (
	KindTicket   Kind = "ticket"
	KindEstacion Kind = "estacion"
)

// ParseKind validates a kind from the wire.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindTicket, KindEstacion:
		return Kind(s), nil
	default:
		return "", fault.Invalid("tipo de item desconocido %q", s)
	}
}

// Engine mutates work items. All transitions are synchronous: each call
// commits or fully rolls back before returning.
type Engine struct {
	db *gorm.DB
}

// New wires the engine to the store.
func New(db *gorm.DB) *Engine {
	return &Engine{db: db}
}

// item is the kind-independent snapshot the guards run against.
type item struct {
	kind     Kind
	id       string
	pk       any
	estado   string
	operador *string
	terminal bool
	ticket   *model.Ticket
	estacion *model.Estacion
}

func (it *item) view() model.WorkItemView {
	if it.ticket != nil {
		return it.ticket.View()
	}
	return it.estacion.View()
}

func (it *item) owned(actor identity.Actor) bool {
	return it.operador != nil && *it.operador == actor.ID
}

// load fetches the current row for an item. Ticket IDs are UUIDs, station IDs
// are integers; a malformed ID reports INVALID_INPUT rather than NOT_FOUND.
func (e *Engine) load(ctx context.Context, db *gorm.DB, kind Kind, id string) (*item, error) {
	switch kind {
	case KindTicket:
		tid, err := uuid.Parse(id)
		if err != nil {
			return nil, fault.Invalid("id de ticket inválido %q", id)
		}
		var t model.Ticket
		if err := db.WithContext(ctx).First(&t, "id = ?", tid).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fault.NotFound("ticket %s no encontrado", id)
			}
			return nil, fault.Storage(err, "leyendo ticket %s", id)
		}
		return &item{
			kind:     kind,
			id:       t.ID.String(),
			pk:       tid,
			estado:   string(t.Estado),
			operador: t.OperadorID,
			terminal: t.Estado == model.TicketResuelto,
			ticket:   &t,
		}, nil
	case KindEstacion:
		eid, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return nil, fault.Invalid("id de estación inválido %q", id)
		}
		var est model.Estacion
		if err := db.WithContext(ctx).First(&est, "id = ?", eid).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fault.NotFound("estación %s no encontrada", id)
			}
			return nil, fault.Storage(err, "leyendo estación %s", id)
		}
		return &item{
			kind:     kind,
			id:       id,
			pk:       eid,
			estado:   string(est.Estado),
			operador: est.OperadorID,
			terminal: est.Estado == model.EstacionCompletada,
			estacion: &est,
		}, nil
	default:
		return nil, fault.Invalid("tipo de item desconocido %q", kind)
	}
}

// Claim takes exclusive ownership of an unclaimed item. The status check and
// the owner assignment are one conditional UPDATE; among any number of
// concurrent callers exactly one row is affected and everyone else loses the
// race with CONFLICT. A lost race is routine and is logged at Info only.
func (e *Engine) Claim(ctx context.Context, kind Kind, id string, actor identity.Actor) (model.WorkItemView, error) {
	if actor.Zero() {
		return model.WorkItemView{}, fault.Invalid("operador requerido")
	}
	now := time.Now().UTC()

	var res *gorm.DB
	switch kind {
	case KindTicket:
		tid, err := uuid.Parse(id)
		if err != nil {
			return model.WorkItemView{}, fault.Invalid("id de ticket inválido %q", id)
		}
		res = e.db.WithContext(ctx).Model(&model.Ticket{}).
			Where("id = ? AND estado = ? AND operador_id IS NULL", tid, model.TicketNuevo).
			Updates(map[string]any{
				"estado":        model.TicketEnProceso,
				"operador_id":   actor.ID,
				"fecha_reclamo": now,
			})
	case KindEstacion:
		eid, err := strconv.ParseUint(id, 10, 64)
		if err != nil {
			return model.WorkItemView{}, fault.Invalid("id de estación inválido %q", id)
		}
		res = e.db.WithContext(ctx).Model(&model.Estacion{}).
			Where("id = ? AND estado = ? AND operador_id IS NULL", eid, model.EstacionPendiente).
			Updates(map[string]any{
				"estado":        model.EstacionEnProceso,
				"operador_id":   actor.ID,
				"fecha_reclamo": now,
				"fecha_inicio":  gorm.Expr("COALESCE(fecha_inicio, ?)", now),
			})
	default:
		return model.WorkItemView{}, fault.Invalid("tipo de item desconocido %q", kind)
	}

	if res.Error != nil {
		return model.WorkItemView{}, fault.Storage(res.Error, "reclamando %s %s", kind, id)
	}
	if res.RowsAffected == 0 {
		// Either the item does not exist or someone else holds it. Re-read to
		// tell the two apart; the race loser gets CONFLICT without side effects.
		it, err := e.load(ctx, e.db, kind, id)
		if err != nil {
			return model.WorkItemView{}, err
		}
		ctxlog.FromContext(ctx).Info("reclamo no disponible",
			"tipo", kind, "item_id", id, "estado", it.estado, "operador", actor.ID)
		return model.WorkItemView{}, fault.Conflict("%s %s no disponible", kind, id)
	}

	it, err := e.load(ctx, e.db, kind, id)
	if err != nil {
		return model.WorkItemView{}, err
	}
	ctxlog.FromContext(ctx).Info("item reclamado", "tipo", kind, "item_id", id, "operador", actor.ID)
	return it.view(), nil
}

// targets returns the legal advance targets for a kind.
func targets(kind Kind) map[string]bool {
	if kind == KindTicket {
		return map[string]bool{
			string(model.TicketEnProceso): true,
			string(model.TicketResuelto):  true,
		}
	}
	return map[string]bool{
		string(model.EstacionPendiente):  true,
		string(model.EstacionEnProceso):  true,
		string(model.EstacionCompletada): true,
	}
}

// Advance moves an owned, non-terminal item to a target state. Transition
// timestamps are stamped at most once: re-entering a state never overwrites
// an already-set timestamp.
func (e *Engine) Advance(ctx context.Context, kind Kind, id string, actor identity.Actor, target string) (model.WorkItemView, error) {
	it, err := e.load(ctx, e.db, kind, id)
	if err != nil {
		return model.WorkItemView{}, err
	}
	if it.terminal {
		return model.WorkItemView{}, fault.Conflict("%s %s ya está en estado terminal", kind, id)
	}
	if !it.owned(actor) {
		return model.WorkItemView{}, fault.Forbidden("%s %s no pertenece al operador %s", kind, id, actor.ID)
	}
	if !targets(kind)[target] {
		return model.WorkItemView{}, fault.Invalid("estado destino inválido %q para %s", target, kind)
	}

	now := time.Now().UTC()
	updates := map[string]any{"estado": target}
	switch {
	case kind == KindTicket && target == string(model.TicketResuelto):
		updates["fecha_resolucion"] = gorm.Expr("COALESCE(fecha_resolucion, ?)", now)
	case kind == KindEstacion && target == string(model.EstacionEnProceso):
		updates["fecha_inicio"] = gorm.Expr("COALESCE(fecha_inicio, ?)", now)
	case kind == KindEstacion && target == string(model.EstacionCompletada):
		updates["fecha_finalizacion"] = gorm.Expr("COALESCE(fecha_finalizacion, ?)", now)
	}

	res := e.update(ctx, kind).
		Where("id = ? AND operador_id = ?", it.pk, actor.ID).
		Updates(updates)
	if res.Error != nil {
		return model.WorkItemView{}, fault.Storage(res.Error, "avanzando %s %s", kind, id)
	}
	if res.RowsAffected == 0 {
		// Ownership changed between the read and the write.
		return model.WorkItemView{}, fault.Conflict("%s %s cambió de estado durante la operación", kind, id)
	}

	it, err = e.load(ctx, e.db, kind, id)
	if err != nil {
		return model.WorkItemView{}, err
	}
	ctxlog.FromContext(ctx).Info("item avanzado",
		"tipo", kind, "item_id", id, "estado", target, "operador", actor.ID)
	return it.view(), nil
}

// Release returns a non-terminal item to the unclaimed pool: owner and claim
// timestamp are cleared and the status resets to the initial state. Only the
// owner — or an administrator overriding — may release.
func (e *Engine) Release(ctx context.Context, kind Kind, id string, actor identity.Actor) (model.WorkItemView, error) {
	it, err := e.load(ctx, e.db, kind, id)
	if err != nil {
		return model.WorkItemView{}, err
	}
	if it.terminal {
		return model.WorkItemView{}, fault.Conflict("%s %s ya está en estado terminal", kind, id)
	}
	if it.operador == nil {
		return model.WorkItemView{}, fault.Conflict("%s %s no está reclamado", kind, id)
	}
	if !it.owned(actor) && !actor.Admin {
		return model.WorkItemView{}, fault.Forbidden("%s %s no pertenece al operador %s", kind, id, actor.ID)
	}

	initial := string(model.TicketNuevo)
	if kind == KindEstacion {
		initial = string(model.EstacionPendiente)
	}
	res := e.update(ctx, kind).
		Where("id = ? AND operador_id = ?", it.pk, *it.operador).
		Updates(map[string]any{
			"estado":        initial,
			"operador_id":   nil,
			"fecha_reclamo": nil,
		})
	if res.Error != nil {
		return model.WorkItemView{}, fault.Storage(res.Error, "liberando %s %s", kind, id)
	}
	if res.RowsAffected == 0 {
		return model.WorkItemView{}, fault.Conflict("%s %s cambió de estado durante la operación", kind, id)
	}

	it, err = e.load(ctx, e.db, kind, id)
	if err != nil {
		return model.WorkItemView{}, err
	}
	ctxlog.FromContext(ctx).Info("item devuelto al pool", "tipo", kind, "item_id", id, "operador", actor.ID)
	return it.view(), nil
}

// update starts a model-scoped update query for a kind.
func (e *Engine) update(ctx context.Context, kind Kind) *gorm.DB {
	if kind == KindTicket {
		return e.db.WithContext(ctx).Model(&model.Ticket{})
	}
	return e.db.WithContext(ctx).Model(&model.Estacion{})
}
