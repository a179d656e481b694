package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/guilhermesenci/stock-control/internal/application/dto"
	"github.com/guilhermesenci/stock-control/internal/application/listing"
	"github.com/guilhermesenci/stock-control/internal/domain"
	"github.com/guilhermesenci/stock-control/internal/domain/entity"
	"github.com/guilhermesenci/stock-control/internal/domain/repository"
)

var supplierSort = listing.NewRegistry(
	listing.Field[*entity.Supplier]{Name: "id", Column: "id"},
	listing.Field[*entity.Supplier]{Name: "name", Column: "lower(name)"},
	listing.Field[*entity.Supplier]{Name: "active", Column: "active"},
)

// SupplierUseCase casos de uso CRUD de proveedores.
type SupplierUseCase struct {
	repo repository.SupplierRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo}
}

func (uc *SupplierUseCase) Create(ctx context.Context, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: nombre vacío", domain.ErrInvalidInput)
	}
	s := &entity.Supplier{Name: name, Active: in.Active == nil || *in.Active}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

func (uc *SupplierUseCase) Get(ctx context.Context, id int64) (*dto.SupplierResponse, error) {
	s, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

func (uc *SupplierUseCase) Update(ctx context.Context, id int64, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	s, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		s.Name = strings.TrimSpace(*in.Name)
	}
	if in.Active != nil {
		s.Active = *in.Active
	}
	if err := uc.repo.Update(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// Delete borra el proveedor; domain.ErrConflict si alguna entrada lo referencia.
func (uc *SupplierUseCase) Delete(ctx context.Context, id int64) error {
	if _, err := uc.find(ctx, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *SupplierUseCase) List(ctx context.Context, in dto.SupplierListRequest) (*dto.SupplierListResponse, error) {
	sort, err := supplierSort.Parse(in.Ordering)
	if err != nil {
		return nil, err
	}
	page := in.PageOf()
	list, total, err := uc.repo.List(ctx, repository.SupplierFilter{Name: in.Name, Active: in.Active},
		repository.ListOptions{Sort: sort, Limit: page.Size, Offset: page.Offset()})
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplierResponse(s))
	}
	return &dto.SupplierListResponse{Items: items, Page: dto.NewPageResponse(page, total)}, nil
}

func (uc *SupplierUseCase) find(ctx context.Context, id int64) (*entity.Supplier, error) {
	s, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("proveedor %d: %w", id, domain.ErrNotFound)
	}
	return s, nil
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{ID: s.ID, Name: s.Name, Active: s.Active}
}
