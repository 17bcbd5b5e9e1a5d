package services

import (
	"context"

	"motoloans/models"
	"motoloans/repositories"
)

// MotorcycleDTO представляет данные мотоцикла
type MotorcycleDTO struct {
	Brand       string  `json:"brand"`
	Model       string  `json:"model"`
	Plate       string  `json:"plate"`
	Color       *string `json:"color,omitempty"`
	EngineCC    *int    `json:"engineCc,omitempty"`
	GPSDeviceID *string `json:"gpsDeviceId,omitempty"`
}

func (dto MotorcycleDTO) apply(m *models.Motorcycle) {
	m.Brand = dto.Brand
	m.Model = dto.Model
	m.Plate = dto.Plate
	m.Color = dto.Color
	m.EngineCC = dto.EngineCC
	m.GPSDeviceID = dto.GPSDeviceID
}

// MotorcycleService предоставляет методы для работы с мотоциклами
type MotorcycleService struct {
	store repositories.Store
}

// NewMotorcycleService создает новый экземпляр MotorcycleService
func NewMotorcycleService(store repositories.Store) *MotorcycleService {
	return &MotorcycleService{store: store}
}

// Create регистрирует мотоцикл
func (s *MotorcycleService) Create(ctx context.Context, dto MotorcycleDTO) (*models.Motorcycle, error) {
	motorcycle := &models.Motorcycle{}
	dto.apply(motorcycle)
	if err := motorcycle.Validate(); err != nil {
		return nil, err
	}

	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if err := ensureUnique(ctx, tx.Motorcycles(), "plate", motorcycle.Plate, ""); err != nil {
			return err
		}
		return tx.Motorcycles().Create(ctx, motorcycle)
	})
	if err != nil {
		return nil, err
	}
	return motorcycle, nil
}

// Get возвращает мотоцикл по ID
func (s *MotorcycleService) Get(ctx context.Context, id string) (*models.Motorcycle, error) {
	return s.store.Motorcycles().Get(ctx, id)
}

// List возвращает мотоциклы, упорядоченные по номеру
func (s *MotorcycleService) List(ctx context.Context, limit, offset int) ([]models.Motorcycle, error) {
	return s.store.Motorcycles().FindMany(ctx, repositories.Query{
		OrderBy: "plate ASC",
		Limit:   limit,
		Offset:  offset,
	})
}

// IsAvailable сообщает, свободен ли мотоцикл для нового кредита
func (s *MotorcycleService) IsAvailable(ctx context.Context, id string) (bool, error) {
	if _, err := s.store.Motorcycles().Get(ctx, id); err != nil {
		return false, err
	}
	open, err := s.store.Loans().Count(ctx, repositories.Filter{
		"motorcycle_id": id,
		"status":        models.OpenLoanStatuses,
	})
	if err != nil {
		return false, err
	}
	return open == 0, nil
}

// Update изменяет данные мотоцикла
func (s *MotorcycleService) Update(ctx context.Context, id string, dto MotorcycleDTO) (*models.Motorcycle, error) {
	var motorcycle *models.Motorcycle
	err := s.store.WithinTx(ctx, func(tx repositories.Store) error {
		current, err := tx.Motorcycles().Get(ctx, id)
		if err != nil {
			return err
		}
		dto.apply(current)
		if err := current.Validate(); err != nil {
			return err
		}
		if err := ensureUnique(ctx, tx.Motorcycles(), "plate", current.Plate, id); err != nil {
			return err
		}
		if err := tx.Motorcycles().Update(ctx, current); err != nil {
			return err
		}
		motorcycle = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return motorcycle, nil
}

// Delete удаляет мотоцикл, если он не участвует в кредитах
func (s *MotorcycleService) Delete(ctx context.Context, id string) error {
	return s.store.WithinTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Motorcycles().Get(ctx, id); err != nil {
			return err
		}
		if err := ensureNoLoans(ctx, tx.Loans(), "motorcycle_id", id, "motorcycle"); err != nil {
			return err
		}
		return tx.Motorcycles().Delete(ctx, id)
	})
}
