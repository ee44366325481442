package sheet

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/vmfab/rutero/internal/fault"
	"github.com/vmfab/rutero/internal/model"
)

// CreateMaquina registers a machine. Tipo keys the station template catalog
// used when sheets for this machine are generated without a product clave.
func (s *Service) CreateMaquina(ctx context.Context, m *model.Maquina) error {
	if m.Nombre == "" {
		return fault.Invalid("nombre de máquina requerido")
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fault.Storage(err, "creando máquina")
	}
	return nil
}

// GetMaquina returns one machine.
func (s *Service) GetMaquina(ctx context.Context, id uint) (*model.Maquina, error) {
	var m model.Maquina
	if err := s.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fault.NotFound("máquina %d no encontrada", id)
		}
		return nil, fault.Storage(err, "leyendo máquina %d", id)
	}
	return &m, nil
}

// ListMaquinas returns every machine by name.
func (s *Service) ListMaquinas(ctx context.Context) ([]model.Maquina, error) {
	var ms []model.Maquina
	if err := s.db.WithContext(ctx).Order("nombre ASC").Find(&ms).Error; err != nil {
		return nil, fault.Storage(err, "listando máquinas")
	}
	return ms, nil
}
