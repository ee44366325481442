// Package catalog resolves ordered step sequences from the two reusable
// sources a routing sheet can be generated from: station templates keyed by
// machine type, and process definitions keyed by product clave.
//
// A lookup miss is not an error. Both resolvers return an empty slice for an
// unknown key; a routing sheet with zero stations is a valid, if unusual,
// state the callers must tolerate.
package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/vmfab/rutero/internal/fault"
	"github.com/vmfab/rutero/internal/model"
)

// Catalog reads and prospectively edits the reusable step sources.
type Catalog struct {
	db *gorm.DB
}

// New wires the catalog to the store.
func New(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// StepsForMachineType returns the template steps for a machine type in
// ascending orden. Gaps in orden are tolerated; only the relative order is
// contractual.
func (c *Catalog) StepsForMachineType(ctx context.Context, tipo string) ([]model.StepSpec, error) {
	if tipo == "" {
		return nil, nil
	}
	var rows []model.PlantillaEstacion
	err := c.db.WithContext(ctx).
		Where("maquina_tipo = ?", tipo).
		Order("orden ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fault.Storage(err, "leyendo plantillas para tipo %q", tipo)
	}
	specs := make([]model.StepSpec, 0, len(rows))
	for _, r := range rows {
		specs = append(specs, r.Spec())
	}
	return specs, nil
}

// StepsForProduct returns the process-definition steps for a product clave in
// ascending orden.
func (c *Catalog) StepsForProduct(ctx context.Context, clave string) ([]model.StepSpec, error) {
	if clave == "" {
		return nil, nil
	}
	var rows []model.PasoProceso
	err := c.db.WithContext(ctx).
		Where("clave = ?", clave).
		Order("orden ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fault.Storage(err, "leyendo proceso para clave %q", clave)
	}
	specs := make([]model.StepSpec, 0, len(rows))
	for _, r := range rows {
		specs = append(specs, r.Spec())
	}
	return specs, nil
}

// ListTemplates returns every template row for a machine type, ordered.
func (c *Catalog) ListTemplates(ctx context.Context, tipo string) ([]model.PlantillaEstacion, error) {
	var rows []model.PlantillaEstacion
	q := c.db.WithContext(ctx).Order("maquina_tipo ASC, orden ASC, id ASC")
	if tipo != "" {
		q = q.Where("maquina_tipo = ?", tipo)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fault.Storage(err, "listando plantillas")
	}
	return rows, nil
}

// CreateTemplate inserts a template row. Edits are prospective only: sheets
// already generated keep their snapshots.
func (c *Catalog) CreateTemplate(ctx context.Context, row *model.PlantillaEstacion) error {
	if row.MaquinaTipo == "" || row.Operacion == "" {
		return fault.Invalid("maquina_tipo y operacion son obligatorios")
	}
	if err := c.db.WithContext(ctx).Create(row).Error; err != nil {
		return fault.Storage(err, "creando plantilla")
	}
	return nil
}

// UpdateTemplate rewrites an existing template row.
func (c *Catalog) UpdateTemplate(ctx context.Context, row *model.PlantillaEstacion) error {
	if row.ID == 0 {
		return fault.Invalid("id de plantilla requerido")
	}
	res := c.db.WithContext(ctx).Model(&model.PlantillaEstacion{}).
		Where("id = ?", row.ID).
		Updates(map[string]any{
			"plantilla_nombre": row.PlantillaNombre,
			"maquina_tipo":     row.MaquinaTipo,
			"pro_c":            row.ProC,
			"centro_trabajo":   row.CentroTrabajo,
			"operacion":        row.Operacion,
			"orden":            row.Orden,
			"t_e":              row.TE,
			"t_tct":            row.TTCT,
			"t_tco":            row.TTCO,
			"t_to":             row.TTO,
		})
	if res.Error != nil {
		return fault.Storage(res.Error, "actualizando plantilla %d", row.ID)
	}
	if res.RowsAffected == 0 {
		return fault.NotFound("plantilla %d no encontrada", row.ID)
	}
	return nil
}

// DeleteTemplate removes a template row.
func (c *Catalog) DeleteTemplate(ctx context.Context, id uint) error {
	res := c.db.WithContext(ctx).Delete(&model.PlantillaEstacion{}, id)
	if res.Error != nil {
		return fault.Storage(res.Error, "eliminando plantilla %d", id)
	}
	if res.RowsAffected == 0 {
		return fault.NotFound("plantilla %d no encontrada", id)
	}
	return nil
}
