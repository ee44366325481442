package claim

import (
	"context"
	"strings"

	"github.com/vmfab/rutero/internal/ctxlog"
	"github.com/vmfab/rutero/internal/fault"
	"github.com/vmfab/rutero/internal/identity"
	"github.com/vmfab/rutero/internal/model"
)

// Annotate appends a timestamped note to an owned item, optionally carrying
// an evidence reference from the file collaborator. Annotation never fails
// due to state — terminal items keep accepting notes — but only the current
// owner may write.
func (e *Engine) Annotate(ctx context.Context, kind Kind, id string, actor identity.Actor, cuerpo, evidencia string) (model.ComentarioView, error) {
	if strings.TrimSpace(cuerpo) == "" {
		return model.ComentarioView{}, fault.Invalid("cuerpo del comentario requerido")
	}

	it, err := e.load(ctx, e.db, kind, id)
	if err != nil {
		return model.ComentarioView{}, err
	}
	if !it.owned(actor) {
		return model.ComentarioView{}, fault.Forbidden("%s %s no pertenece al operador %s", kind, id, actor.ID)
	}

	c := model.Comentario{
		ItemType:  string(kind),
		ItemID:    it.id,
		Autor:     actor.ID,
		Cuerpo:    cuerpo,
		Evidencia: evidencia,
	}
	if err := e.db.WithContext(ctx).Create(&c).Error; err != nil {
		return model.ComentarioView{}, fault.Storage(err, "creando comentario en %s %s", kind, id)
	}

	ctxlog.FromContext(ctx).Info("comentario agregado",
		"tipo", kind, "item_id", id, "comentario_id", c.ID, "autor", actor.ID)
	return c.View(), nil
}

// Annotations returns the timeline of an item, ascending by creation time
// unless desc asks for most-recent-first. Insert order is the tiebreak, so
// two notes in the same instant never swap.
func (e *Engine) Annotations(ctx context.Context, kind Kind, id string, desc bool) ([]model.ComentarioView, error) {
	order := "fecha_creacion ASC, id ASC"
	if desc {
		order = "fecha_creacion DESC, id DESC"
	}
	var rows []model.Comentario
	err := e.db.WithContext(ctx).
		Where("item_tipo = ? AND item_id = ?", string(kind), id).
		Order(order).
		Find(&rows).Error
	if err != nil {
		return nil, fault.Storage(err, "leyendo comentarios de %s %s", kind, id)
	}
	views := make([]model.ComentarioView, 0, len(rows))
	for _, r := range rows {
		views = append(views, r.View())
	}
	return views, nil
}

// DeleteAnnotation removes a single note. This is the only mutation the
// append-only log permits and it is administrative.
func (e *Engine) DeleteAnnotation(ctx context.Context, id uint, actor identity.Actor) error {
	if !actor.Admin {
		return fault.Forbidden("solo un administrador puede eliminar comentarios")
	}
	res := e.db.WithContext(ctx).Delete(&model.Comentario{}, id)
	if res.Error != nil {
		return fault.Storage(res.Error, "eliminando comentario %d", id)
	}
	if res.RowsAffected == 0 {
		return fault.NotFound("comentario %d no encontrado", id)
	}
	ctxlog.FromContext(ctx).Info("comentario eliminado", "comentario_id", id, "admin", actor.ID)
	return nil
}
