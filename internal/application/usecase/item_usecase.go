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

var itemSort = listing.NewRegistry(
	listing.Field[*entity.Item]{Name: "sku", Column: "sku"},
	listing.Field[*entity.Item]{Name: "description", Column: "lower(description)"},
	listing.Field[*entity.Item]{Name: "unit_measure", Column: "unit_measure"},
	listing.Field[*entity.Item]{Name: "active", Column: "active"},
)

// ItemUseCase casos de uso CRUD del catálogo. El stock y el costo salen del libro, no del item.
type ItemUseCase struct {
	repo repository.ItemRepository
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(repo repository.ItemRepository) *ItemUseCase {
	return &ItemUseCase{repo: repo}
}

// Create crea un item. Active es true si no se indica.
func (uc *ItemUseCase) Create(ctx context.Context, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" {
		return nil, fmt.Errorf("%w: sku vacío", domain.ErrInvalidInput)
	}
	existing, err := uc.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	item := &entity.Item{
		SKU:         sku,
		Description: strings.TrimSpace(in.Description),
		UnitMeasure: strings.TrimSpace(in.UnitMeasure),
		Active:      in.Active == nil || *in.Active,
	}
	if err := uc.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// Get obtiene un item por SKU.
func (uc *ItemUseCase) Get(ctx context.Context, sku string) (*dto.ItemResponse, error) {
	item, err := uc.find(ctx, sku)
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// Update actualiza descripción, unidad y estado. El SKU no cambia.
func (uc *ItemUseCase) Update(ctx context.Context, sku string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	item, err := uc.find(ctx, sku)
	if err != nil {
		return nil, err
	}
	if in.Description != nil {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.UnitMeasure != nil {
		item.UnitMeasure = strings.TrimSpace(*in.UnitMeasure)
	}
	if in.Active != nil {
		item.Active = *in.Active
	}
	if err := uc.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// Delete borra el item. Con transacciones registradas devuelve domain.ErrConflict;
// en ese caso el camino es desactivarlo.
func (uc *ItemUseCase) Delete(ctx context.Context, sku string) error {
	if _, err := uc.find(ctx, sku); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, sku)
}

// List lista items con filtros, orden y paginación.
func (uc *ItemUseCase) List(ctx context.Context, in dto.ItemListRequest) (*dto.ItemListResponse, error) {
	sort, err := itemSort.Parse(in.Ordering)
	if err != nil {
		return nil, err
	}
	page := in.PageOf()
	list, total, err := uc.repo.List(ctx, repository.ItemFilter{
		SKU:         in.SKU,
		Description: in.Description,
		ActiveOnly:  in.ActiveOnly,
	}, repository.ListOptions{Sort: sort, Limit: page.Size, Offset: page.Offset()})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *toItemResponse(it))
	}
	return &dto.ItemListResponse{Items: items, Page: dto.NewPageResponse(page, total)}, nil
}

func (uc *ItemUseCase) find(ctx context.Context, sku string) (*entity.Item, error) {
	item, err := uc.repo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", sku, domain.ErrNotFound)
	}
	return item, nil
}

func toItemResponse(it *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		SKU:         it.SKU,
		Description: it.Description,
		UnitMeasure: it.UnitMeasure,
		Active:      it.Active,
	}
}
