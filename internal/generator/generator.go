// Package generator materializes station work items from an ordered step
// sequence. Generation copies the step values verbatim, derives orden from
// the input position and is all-or-nothing: the caller supplies the
// transaction and a failed insert rolls back every station of the invocation.
package generator

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vmfab/rutero/internal/catalog"
	"github.com/vmfab/rutero/internal/ctxlog"
	"github.com/vmfab/rutero/internal/fault"
	"github.com/vmfab/rutero/internal/model"
	"github.com/vmfab/rutero/internal/store"
)

// Generate creates one station per step, bound to the sheet, inside the
// caller's transaction. Orden is the 1-based input position; the input order
// is never re-sorted. TotalPiezas on every station is the sheet's declared
// quantity, not recomputed per station.
func Generate(tx *gorm.DB, hoja *model.HojaRuta, steps []model.StepSpec) ([]model.Estacion, error) {
	if hoja.ID == 0 {
		return nil, fault.Invalid("hoja de ruta sin persistir")
	}
	if len(steps) == 0 {
		return nil, nil
	}

	estaciones := make([]model.Estacion, 0, len(steps))
	for i, s := range steps {
		estaciones = append(estaciones, model.Estacion{
			HojaRutaID:    hoja.ID,
			ProC:          s.ProC,
			CentroTrabajo: s.CentroTrabajo,
			Operacion:     s.Operacion,
			Orden:         i + 1,
			TE:            s.TE,
			TTCT:          s.TTCT,
			TTCO:          s.TTCO,
			TTO:           s.TTO,
			TotalPiezas:   hoja.CantidadPiezas,
			Estado:        model.EstacionPendiente,
		})
	}

	if err := tx.Create(&estaciones).Error; err != nil {
		return nil, fault.Storage(err, "creando estaciones para hoja %d", hoja.ID)
	}
	return estaciones, nil
}

// EnsureStations is the idempotent repair operation for sheets created before
// generation was gated on creation: if the sheet has zero stations, the
// default template for its machine type is cloned in. Sheets that already
// have stations are left untouched. Returns the number of stations created.
func EnsureStations(ctx context.Context, db *gorm.DB, cat *catalog.Catalog, hojaID uint) (int, error) {
	log := ctxlog.FromContext(ctx)
	created := 0

	err := store.WithTx(ctx, db, func(tx *gorm.DB) error {
		var hoja model.HojaRuta
		if err := tx.First(&hoja, hojaID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.NotFound("hoja de ruta %d no encontrada", hojaID)
			}
			return fault.Storage(err, "leyendo hoja %d", hojaID)
		}

		var count int64
		if err := tx.Model(&model.Estacion{}).Where("hoja_ruta_id = ?", hojaID).Count(&count).Error; err != nil {
			return fault.Storage(err, "contando estaciones de hoja %d", hojaID)
		}
		if count > 0 {
			log.Info("hoja ya tiene estaciones, reparación omitida",
				"hoja_ruta_id", hojaID, "estaciones", count)
			return nil
		}

		var maquina model.Maquina
		if err := tx.First(&maquina, hoja.MaquinaID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.NotFound("máquina %d de la hoja %d no encontrada", hoja.MaquinaID, hojaID)
			}
			return fault.Storage(err, "leyendo máquina %d", hoja.MaquinaID)
		}

		steps, err := cat.StepsForMachineType(ctx, maquina.Tipo)
		if err != nil {
			return err
		}
		if len(steps) == 0 {
			log.Info("sin plantilla para el tipo de máquina, hoja queda sin estaciones",
				"hoja_ruta_id", hojaID, "maquina_tipo", maquina.Tipo)
			return nil
		}

		estaciones, err := Generate(tx, &hoja, steps)
		if err != nil {
			return err
		}
		created = len(estaciones)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if created > 0 {
		log.Info("estaciones clonadas de plantilla", "hoja_ruta_id", hojaID, "creadas", created)
	}
	return created, nil
}
