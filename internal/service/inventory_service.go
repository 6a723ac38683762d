package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/brickline/lead-api/internal/domain"
	"github.com/brickline/lead-api/internal/erp"
)

// InventoryService exposes the read-only unit inventory from the ERP
// so agents can check availability and list prices while qualifying a
// lead.
type InventoryService struct {
	client *erp.Client
	logger *zap.Logger
}

func NewInventoryService(client *erp.Client, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		client: client,
		logger: logger,
	}
}

// Enabled reports whether the inventory feed is available.
func (s *InventoryService) Enabled() bool {
	return s.client.IsEnabled()
}

// ListUnits returns inventory units, optionally scoped to one project
// and filtered to available units only.
func (s *InventoryService) ListUnits(ctx context.Context, projectName string, availableOnly bool) ([]domain.UnitDTO, error) {
	if !s.client.IsEnabled() {
		return nil, ErrERPUnavailable
	}

	units, err := s.client.ListUnits(ctx, projectName, availableOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list units: %w", err)
	}

	dtos := make([]domain.UnitDTO, 0, len(units))
	for _, u := range units {
		dtos = append(dtos, toUnitDTO(u))
	}
	return dtos, nil
}

// GetUnit returns a single unit by code.
func (s *InventoryService) GetUnit(ctx context.Context, unitCode string) (*domain.UnitDTO, error) {
	if !s.client.IsEnabled() {
		return nil, ErrERPUnavailable
	}

	unit, err := s.client.GetUnit(ctx, unitCode)
	if err != nil {
		return nil, fmt.Errorf("failed to get unit: %w", err)
	}
	if unit == nil {
		return nil, ErrNotFound
	}

	dto := toUnitDTO(*unit)
	return &dto, nil
}

func toUnitDTO(u erp.Unit) domain.UnitDTO {
	return domain.UnitDTO{
		UnitCode:    u.UnitCode,
		ProjectName: u.ProjectName,
		UnitType:    u.UnitType,
		AreaSqft:    u.AreaSqft,
		ListPrice:   u.ListPrice,
		Available:   u.Available,
	}
}
