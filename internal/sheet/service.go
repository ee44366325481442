// Package sheet implements the routing-sheet aggregate: creation resolves an
// ordered step sequence and generates the stations in the same transaction as
// the sheet's own insert, so a sheet can never exist half-populated.
package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vmfab/rutero/internal/catalog"
	"github.com/vmfab/rutero/internal/ctxlog"
	"github.com/vmfab/rutero/internal/fault"
	"github.com/vmfab/rutero/internal/generator"
	"github.com/vmfab/rutero/internal/model"
	"github.com/vmfab/rutero/internal/store"
)

// Service owns routing sheets and their machines.
type Service struct {
	db  *gorm.DB
	cat *catalog.Catalog
}

// New wires the service to the store and the step catalog.
func New(db *gorm.DB, cat *catalog.Catalog) *Service {
	return &Service{db: db, cat: cat}
}

// CreateInput is the payload for ingesting a quantity of product against a
// machine. Clave selects the product-keyed process definition; when empty the
// machine type's template applies; when neither resolves any steps the sheet
// is created with zero stations (the free-form ingest path).
type CreateInput struct {
	MaquinaID      uint           `json:"maquina_id"`
	Nombre         string         `json:"nombre"`
	Descripcion    string         `json:"descripcion"`
	Producto       string         `json:"producto"`
	Clave          string         `json:"clave"`
	Calidad        string         `json:"calidad"`
	PN             string         `json:"pn"`
	CantidadPiezas int            `json:"cantidad_piezas"`
	FechaSalida    *time.Time     `json:"fecha_salida"`
	OrdenTrabajoHR string         `json:"orden_trabajo_hr"`
	OrdenTrabajoPT string         `json:"orden_trabajo_pt"`
	Almacen        string         `json:"almacen"`
	NoSinOrden     string         `json:"no_sin_orden"`
	MateriaPrima   string         `json:"materia_prima"`
	DiasALaborar   float64        `json:"dias_a_laborar"`
	Supervisor     string         `json:"supervisor"`
	Operador       string         `json:"operador"`
	Campos         map[string]any `json:"campos"`
}

// Create ingests a routing sheet and its stations atomically.
func (s *Service) Create(ctx context.Context, in CreateInput) (*model.HojaView, error) {
	if in.MaquinaID == 0 {
		return nil, fault.Invalid("maquina_id requerido")
	}
	if in.Nombre == "" {
		return nil, fault.Invalid("nombre de la hoja requerido")
	}
	if in.CantidadPiezas <= 0 {
		return nil, fault.Invalid("cantidad_piezas debe ser mayor que cero")
	}

	var campos datatypes.JSON
	if len(in.Campos) > 0 {
		raw, err := json.Marshal(in.Campos)
		if err != nil {
			return nil, fault.Invalid("campos adicionales no serializables")
		}
		campos = datatypes.JSON(raw)
	}

	var created model.HojaRuta
	err := store.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		var maquina model.Maquina
		if err := tx.First(&maquina, in.MaquinaID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fault.NotFound("máquina %d no encontrada", in.MaquinaID)
			}
			return fault.Storage(err, "leyendo máquina %d", in.MaquinaID)
		}

		hoja := model.HojaRuta{
			MaquinaID:      in.MaquinaID,
			Nombre:         in.Nombre,
			Descripcion:    in.Descripcion,
			Estado:         model.HojaActiva,
			Producto:       in.Producto,
			Clave:          in.Clave,
			Calidad:        in.Calidad,
			PN:             in.PN,
			CantidadPiezas: in.CantidadPiezas,
			FechaSalida:    in.FechaSalida,
			OrdenTrabajoHR: in.OrdenTrabajoHR,
			OrdenTrabajoPT: in.OrdenTrabajoPT,
			Almacen:        in.Almacen,
			NoSinOrden:     in.NoSinOrden,
			MateriaPrima:   in.MateriaPrima,
			DiasALaborar:   in.DiasALaborar,
			Supervisor:     in.Supervisor,
			Operador:       in.Operador,
			Campos:         campos,
		}
		if err := tx.Create(&hoja).Error; err != nil {
			return fault.Storage(err, "creando hoja de ruta")
		}

		// Product-keyed process wins over the machine template; both missing
		// yields a valid zero-station sheet.
		steps, err := s.cat.StepsForProduct(ctx, in.Clave)
		if err != nil {
			return err
		}
		if len(steps) == 0 {
			steps, err = s.cat.StepsForMachineType(ctx, maquina.Tipo)
			if err != nil {
				return err
			}
		}

		estaciones, err := generator.Generate(tx, &hoja, steps)
		if err != nil {
			return err
		}
		hoja.Estaciones = estaciones
		created = hoja
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctxlog.FromContext(ctx).Info("hoja de ruta creada",
		"hoja_ruta_id", created.ID, "maquina_id", created.MaquinaID,
		"estaciones", len(created.Estaciones), "cantidad_piezas", created.CantidadPiezas)
	return buildView(created), nil
}

// Get returns a sheet with its stations in orden and the computed active
// station.
func (s *Service) Get(ctx context.Context, id uint) (*model.HojaView, error) {
	var hoja model.HojaRuta
	err := s.db.WithContext(ctx).
		Preload("Estaciones", func(db *gorm.DB) *gorm.DB {
			return db.Order("orden ASC, id ASC")
		}).
		First(&hoja, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("hoja de ruta %d no encontrada", id)
		}
		return nil, fault.Storage(err, "leyendo hoja %d", id)
	}
	return buildView(hoja), nil
}

// List returns sheets newest first, optionally filtered by machine and
// aggregate status.
func (s *Service) List(ctx context.Context, maquinaID uint, estado model.EstadoHoja) ([]model.HojaRuta, error) {
	q := s.db.WithContext(ctx).Order("id DESC")
	if maquinaID != 0 {
		q = q.Where("maquina_id = ?", maquinaID)
	}
	if estado != "" {
		q = q.Where("estado = ?", estado)
	}
	var hojas []model.HojaRuta
	if err := q.Find(&hojas).Error; err != nil {
		return nil, fault.Storage(err, "listando hojas de ruta")
	}
	return hojas, nil
}

// SetEstado sets the operator-controlled aggregate status. It is deliberately
// not derived from the stations.
func (s *Service) SetEstado(ctx context.Context, id uint, estado model.EstadoHoja) (*model.HojaView, error) {
	switch estado {
	case model.HojaActiva, model.HojaPausada, model.HojaCompletada:
	default:
		return nil, fault.Invalid("estado de hoja inválido %q", estado)
	}
	res := s.db.WithContext(ctx).Model(&model.HojaRuta{}).
		Where("id = ?", id).
		Update("estado", estado)
	if res.Error != nil {
		return nil, fault.Storage(res.Error, "actualizando estado de hoja %d", id)
	}
	if res.RowsAffected == 0 {
		return nil, fault.NotFound("hoja de ruta %d no encontrada", id)
	}
	return s.Get(ctx, id)
}

// Approve stamps the approval gate and clears the rejection gate.
func (s *Service) Approve(ctx context.Context, id uint, supervisor string) (*model.HojaView, error) {
	return s.gate(ctx, id, map[string]any{"aprobada": true, "rechazada": false, "supervisor": supervisor})
}

// Reject stamps the rejection gate and clears the approval gate.
func (s *Service) Reject(ctx context.Context, id uint, supervisor string) (*model.HojaView, error) {
	return s.gate(ctx, id, map[string]any{"aprobada": false, "rechazada": true, "supervisor": supervisor})
}

func (s *Service) gate(ctx context.Context, id uint, updates map[string]any) (*model.HojaView, error) {
	res := s.db.WithContext(ctx).Model(&model.HojaRuta{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return nil, fault.Storage(res.Error, "actualizando hoja %d", id)
	}
	if res.RowsAffected == 0 {
		return nil, fault.NotFound("hoja de ruta %d no encontrada", id)
	}
	return s.Get(ctx, id)
}

// buildView flattens a sheet. The active station is display-only: the first
// station in en_proceso by ascending orden, or nil when none is in progress.
func buildView(hoja model.HojaRuta) *model.HojaView {
	views := make([]model.WorkItemView, 0, len(hoja.Estaciones))
	var activa *model.WorkItemView
	for _, est := range hoja.Estaciones {
		v := est.View()
		views = append(views, v)
		if activa == nil && est.Estado == model.EstacionEnProceso {
			copia := v
			activa = &copia
		}
	}
	estaciones := hoja.Estaciones
	hoja.Estaciones = nil
	view := &model.HojaView{
		Hoja:            hoja,
		Estaciones:      views,
		EstacionActiva:  activa,
		TotalEstaciones: len(estaciones),
	}
	return view
}
