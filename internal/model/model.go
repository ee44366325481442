// Package model declares the persistent records of the routing and claim
// engine. Column and JSON names follow the plant-floor vocabulary the rest of
// the factory systems already use (hojas de ruta, estaciones, plantillas).
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EstadoHoja is the operator-set aggregate status of a routing sheet. It is
// independent of the individual station statuses.
type EstadoHoja string

const (
	HojaActiva     EstadoHoja = "activa"
	HojaPausada    EstadoHoja = "pausada"
	HojaCompletada EstadoHoja = "completada"
)

// EstadoEstacion is the life-cycle state of a production station.
type EstadoEstacion string

const (
	EstacionPendiente  EstadoEstacion = "pendiente"
	EstacionEnProceso  EstadoEstacion = "en_proceso"
	EstacionCompletada EstadoEstacion = "completada"
)

// EstadoTicket is the life-cycle state of a support ticket.
type EstadoTicket string

const (
	TicketNuevo     EstadoTicket = "nuevo"
	TicketEnProceso EstadoTicket = "en_proceso"
	TicketResuelto  EstadoTicket = "resuelto"
)

// Maquina is a machine/resource a routing sheet is produced on. Tipo keys the
// station template catalog.
type Maquina struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Nombre        string    `gorm:"column:nombre;not null;uniqueIndex" json:"nombre"`
	Tipo          string    `gorm:"column:tipo;index" json:"tipo"`
	Plantilla     string    `gorm:"column:plantilla_default" json:"plantilla_default"`
	FechaCreacion time.Time `gorm:"column:fecha_creacion;autoCreateTime" json:"fecha_creacion"`
}

func (Maquina) TableName() string { return "maquinas" }

// PlantillaEstacion is one ordered step of a reusable station template, keyed
// by machine type. Rows are edited only prospectively: sheets generated from a
// template snapshot its values and never track back.
type PlantillaEstacion struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PlantillaNombre string    `gorm:"column:plantilla_nombre" json:"plantilla_nombre"`
	MaquinaTipo     string    `gorm:"column:maquina_tipo;index" json:"maquina_tipo"`
	ProC            string    `gorm:"column:pro_c" json:"pro_c"`
	CentroTrabajo   string    `gorm:"column:centro_trabajo" json:"centro_trabajo"`
	Operacion       string    `gorm:"column:operacion;not null" json:"operacion"`
	Orden           int       `gorm:"column:orden;default:0" json:"orden"`
	TE              string    `gorm:"column:t_e" json:"t_e"`
	TTCT            string    `gorm:"column:t_tct" json:"t_tct"`
	TTCO            string    `gorm:"column:t_tco" json:"t_tco"`
	TTO             string    `gorm:"column:t_to" json:"t_to"`
	FechaCreacion   time.Time `gorm:"column:fecha_creacion;autoCreateTime" json:"fecha_creacion"`
}

func (PlantillaEstacion) TableName() string { return "plantillas_estaciones" }

// PasoProceso is one ordered step of a product-keyed process definition, the
// product analogue of PlantillaEstacion.
type PasoProceso struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Clave         string    `gorm:"column:clave;index;not null" json:"clave"`
	NombreClave   string    `gorm:"column:nombre_clave" json:"nombre_clave"`
	Orden         int       `gorm:"column:orden;default:0" json:"orden"`
	ProC          string    `gorm:"column:pro_c" json:"pro_c"`
	CentroTrabajo string    `gorm:"column:centro_trabajo" json:"centro_trabajo"`
	Operacion     string    `gorm:"column:operacion;not null" json:"operacion"`
	TE            string    `gorm:"column:t_e" json:"t_e"`
	TTCT          string    `gorm:"column:t_tct" json:"t_tct"`
	TTCO          string    `gorm:"column:t_tco" json:"t_tco"`
	TTO           string    `gorm:"column:t_to" json:"t_to"`
	Notas         string    `gorm:"column:notas;type:text" json:"notas"`
	FechaCreacion time.Time `gorm:"column:fecha_creacion;autoCreateTime" json:"fecha_creacion"`
}

func (PasoProceso) TableName() string { return "pasos_proceso" }

// StepSpec is the template-agnostic shape a station is generated from. Both
// the template catalog and the process definitions resolve to ordered slices
// of these.
type StepSpec struct {
	ProC          string `json:"pro_c"`
	CentroTrabajo string `json:"centro_trabajo"`
	Operacion     string `json:"operacion"`
	TE            string `json:"t_e"`
	TTCT          string `json:"t_tct"`
	TTCO          string `json:"t_tco"`
	TTO           string `json:"t_to"`
}

// Spec converts a template row to its generation shape.
func (p PlantillaEstacion) Spec() StepSpec {
	return StepSpec{
		ProC:          p.ProC,
		CentroTrabajo: p.CentroTrabajo,
		Operacion:     p.Operacion,
		TE:            p.TE,
		TTCT:          p.TTCT,
		TTCO:          p.TTCO,
		TTO:           p.TTO,
	}
}

// Spec converts a process step to its generation shape.
func (p PasoProceso) Spec() StepSpec {
	return StepSpec{
		ProC:          p.ProC,
		CentroTrabajo: p.CentroTrabajo,
		Operacion:     p.Operacion,
		TE:            p.TE,
		TTCT:          p.TTCT,
		TTCO:          p.TTCO,
		TTO:           p.TTO,
	}
}

// HojaRuta is a work order: an ordered set of stations for a quantity of
// product on one machine. Sheets are kept as historical record and are never
// hard-deleted in normal operation.
type HojaRuta struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	MaquinaID          uint           `gorm:"column:maquina_id;index;not null" json:"maquina_id"`
	Maquina            *Maquina       `gorm:"foreignKey:MaquinaID" json:"-"`
	Nombre             string         `gorm:"column:nombre;not null" json:"nombre"`
	Descripcion        string         `gorm:"column:descripcion;type:text" json:"descripcion"`
	Estado             EstadoHoja     `gorm:"column:estado;default:activa" json:"estado"`
	Producto           string         `gorm:"column:producto" json:"producto"`
	Calidad            string         `gorm:"column:calidad" json:"calidad"`
	PN                 string         `gorm:"column:pn" json:"pn"`
	Clave              string         `gorm:"column:clave" json:"clave"`
	FechaSalida        *time.Time     `gorm:"column:fecha_salida" json:"fecha_salida"`
	CantidadPiezas     int            `gorm:"column:cantidad_piezas" json:"cantidad_piezas"`
	OrdenTrabajoHR     string         `gorm:"column:orden_trabajo_hr" json:"orden_trabajo_hr"`
	OrdenTrabajoPT     string         `gorm:"column:orden_trabajo_pt" json:"orden_trabajo_pt"`
	Almacen            string         `gorm:"column:almacen" json:"almacen"`
	NoSinOrden         string         `gorm:"column:no_sin_orden" json:"no_sin_orden"`
	MateriaPrima       string         `gorm:"column:materia_prima" json:"materia_prima"`
	TotalTiempo        string         `gorm:"column:total_tiempo" json:"total_tiempo"`
	DiasALaborar       float64        `gorm:"column:dias_a_laborar" json:"dias_a_laborar"`
	FechaTermino       *time.Time     `gorm:"column:fecha_termino" json:"fecha_termino"`
	Aprobada           bool           `gorm:"column:aprobada;default:false" json:"aprobada"`
	Rechazada          bool           `gorm:"column:rechazada;default:false" json:"rechazada"`
	Scrap              bool           `gorm:"column:scrap;default:false" json:"scrap"`
	Retrabajo          bool           `gorm:"column:retrabajo;default:false" json:"retrabajo"`
	Supervisor         string         `gorm:"column:supervisor" json:"supervisor"`
	Operador           string         `gorm:"column:operador" json:"operador"`
	Eficiencia         float64        `gorm:"column:eficiencia" json:"eficiencia"`
	Campos             datatypes.JSON `gorm:"column:campos" json:"campos,omitempty"`
	FechaCreacion      time.Time      `gorm:"column:fecha_creacion;autoCreateTime" json:"fecha_creacion"`
	FechaActualizacion time.Time      `gorm:"column:fecha_actualizacion;autoUpdateTime" json:"fecha_actualizacion"`

	Estaciones []Estacion `gorm:"foreignKey:HojaRutaID;constraint:OnDelete:CASCADE" json:"estaciones,omitempty"`
}

func (HojaRuta) TableName() string { return "hojas_ruta" }

// Estacion is a station work item: one claimable step of a routing sheet.
// OperadorID is the exclusive owner; it is null exactly while the station sits
// in the unclaimed pool.
type Estacion struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	HojaRutaID        uint           `gorm:"column:hoja_ruta_id;index;not null" json:"hoja_ruta_id"`
	ProC              string         `gorm:"column:pro_c" json:"pro_c"`
	CentroTrabajo     string         `gorm:"column:centro_trabajo" json:"centro_trabajo"`
	Operacion         string         `gorm:"column:operacion;not null" json:"operacion"`
	Orden             int            `gorm:"column:orden;default:0" json:"orden"`
	TE                string         `gorm:"column:t_e" json:"t_e"`
	TTCT              string         `gorm:"column:t_tct" json:"t_tct"`
	TTCO              string         `gorm:"column:t_tco" json:"t_tco"`
	TTO               string         `gorm:"column:t_to" json:"t_to"`
	TotalPiezas       int            `gorm:"column:total_piezas" json:"total_piezas"`
	OperadorID        *string        `gorm:"column:operador_id;index" json:"operador_id"`
	Eficiencia        float64        `gorm:"column:eficiencia" json:"eficiencia"`
	FirmaSupervisor   string         `gorm:"column:firma_supervisor" json:"firma_supervisor"`
	Estado            EstadoEstacion `gorm:"column:estado;default:pendiente" json:"estado"`
	FechaReclamo      *time.Time     `gorm:"column:fecha_reclamo" json:"fecha_reclamo"`
	FechaInicio       *time.Time     `gorm:"column:fecha_inicio" json:"fecha_inicio"`
	FechaFinalizacion *time.Time     `gorm:"column:fecha_finalizacion" json:"fecha_finalizacion"`
	Notas             string         `gorm:"column:notas;type:text" json:"notas"`
	FechaCreacion     time.Time      `gorm:"column:fecha_creacion;autoCreateTime" json:"fecha_creacion"`

	Comentarios []Comentario `gorm:"polymorphic:Item;polymorphicValue:estacion" json:"comentarios,omitempty"`
}

func (Estacion) TableName() string { return "estaciones_trabajo" }

// Ticket is a support ticket work item. Tickets have no position in a
// sequence; they enter the claim pool directly on creation.
type Ticket struct {
	ID                 uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Titulo             string       `gorm:"column:titulo;not null" json:"titulo"`
	Descripcion        string       `gorm:"column:descripcion;type:text" json:"descripcion"`
	Solicitante        string       `gorm:"column:solicitante;index" json:"solicitante"`
	OperadorID         *string      `gorm:"column:operador_id;index" json:"operador_id"`
	Estado             EstadoTicket `gorm:"column:estado;default:nuevo" json:"estado"`
	FechaReclamo       *time.Time   `gorm:"column:fecha_reclamo" json:"fecha_reclamo"`
	FechaResolucion    *time.Time   `gorm:"column:fecha_resolucion" json:"fecha_resolucion"`
	FechaCreacion      time.Time    `gorm:"column:fecha_creacion;autoCreateTime" json:"fecha_creacion"`
	FechaActualizacion time.Time    `gorm:"column:fecha_actualizacion;autoUpdateTime" json:"fecha_actualizacion"`

	Comentarios []Comentario `gorm:"polymorphic:Item;polymorphicValue:ticket" json:"comentarios,omitempty"`
}

func (Ticket) TableName() string { return "tickets" }

// BeforeCreate populates the primary key and the initial status.
func (t *Ticket) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Estado == "" {
		t.Estado = TicketNuevo
	}
	return nil
}

// Comentario is an append-only annotation on a work item. Rows are never
// edited or reordered; administrative deletion is the only permitted mutation.
type Comentario struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ItemType      string    `gorm:"column:item_tipo;index:idx_comentarios_item" json:"item_tipo"`
	ItemID        string    `gorm:"column:item_id;index:idx_comentarios_item" json:"item_id"`
	Autor         string    `gorm:"column:autor;not null" json:"autor"`
	Cuerpo        string    `gorm:"column:cuerpo;type:text;not null" json:"cuerpo"`
	Evidencia     string    `gorm:"column:evidencia" json:"evidencia,omitempty"`
	FechaCreacion time.Time `gorm:"column:fecha_creacion;autoCreateTime" json:"fecha_creacion"`
}

func (Comentario) TableName() string { return "comentarios" }

// All lists every model for migration, leaf tables first.
func All() []any {
	return []any{
		&Maquina{},
		&PlantillaEstacion{},
		&PasoProceso{},
		&HojaRuta{},
		&Estacion{},
		&Ticket{},
		&Comentario{},
	}
}
