package catalog

import (
	"context"

	"github.com/agriconnect/backend/internal/domain/catalog"
	"github.com/agriconnect/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService manages the produce category tree
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
	logger       *zap.Logger
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo catalog.CategoryRepository, productRepo catalog.ProductRepository, logger *zap.Logger) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger,
	}
}

// Create creates a category, as a root or under a parent
func (s *CategoryService) Create(ctx context.Context, req CreateCategoryRequest) (*CategoryResponse, error) {
	exists, err := s.categoryRepo.ExistsBySlug(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_SLUG", "A category with this slug already exists")
	}

	var category *catalog.Category
	if req.ParentID != nil {
		parent, err := s.categoryRepo.FindByID(ctx, *req.ParentID)
		if err != nil {
			return nil, shared.NewDomainError("PARENT_NOT_FOUND", "Parent category not found")
		}
		category, err = catalog.NewChildCategory(req.Slug, req.Name, parent)
		if err != nil {
			return nil, err
		}
	} else {
		category, err = catalog.NewCategory(req.Slug, req.Name)
		if err != nil {
			return nil, err
		}
	}

	if req.Description != "" {
		if err := category.Update(req.Name, req.Description); err != nil {
			return nil, err
		}
	}
	if req.SortOrder != 0 {
		category.SetSortOrder(req.SortOrder)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		s.logger.Error("Failed to save category", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create category")
	}

	s.logger.Info("Category created",
		zap.String("category_id", category.ID.String()),
		zap.String("slug", category.Slug))

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Update updates a category's name, description and sort order
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := category.Update(req.Name, req.Description); err != nil {
		return nil, err
	}
	if req.SortOrder != nil {
		category.SetSortOrder(*req.SortOrder)
	}

	if err := s.categoryRepo.Save(ctx, category); err != nil {
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update category")
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Get retrieves a category with its direct children
func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)

	children, err := s.categoryRepo.FindChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	for i := range children {
		resp.Children = append(resp.Children, ToCategoryResponse(&children[i]))
	}

	return &resp, nil
}

// Tree returns the full category tree from the roots down
func (s *CategoryService) Tree(ctx context.Context) ([]CategoryResponse, error) {
	roots, err := s.categoryRepo.FindRoots(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]CategoryResponse, 0, len(roots))
	for i := range roots {
		node, err := s.buildSubtree(ctx, &roots[i])
		if err != nil {
			return nil, err
		}
		responses = append(responses, node)
	}
	return responses, nil
}

// SetActive toggles a category's visibility
func (s *CategoryService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if active {
		category.Activate()
	} else {
		category.Deactivate()
	}

	return s.categoryRepo.Save(ctx, category)
}

// Delete removes an empty leaf category
func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	children, err := s.categoryRepo.FindChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return shared.NewDomainError("CATEGORY_HAS_CHILDREN", "Delete or move the child categories first")
	}

	products, err := s.productRepo.FindByCategory(ctx, id, shared.Filter{Page: 1, PageSize: 1})
	if err != nil {
		return err
	}
	if len(products) > 0 {
		return shared.NewDomainError("CATEGORY_IN_USE", "Category still has product listings")
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Category deleted", zap.String("category_id", id.String()))
	return nil
}

func (s *CategoryService) buildSubtree(ctx context.Context, category *catalog.Category) (CategoryResponse, error) {
	node := ToCategoryResponse(category)

	children, err := s.categoryRepo.FindChildren(ctx, category.ID)
	if err != nil {
		return node, err
	}
	for i := range children {
		child, err := s.buildSubtree(ctx, &children[i])
		if err != nil {
			return node, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}
