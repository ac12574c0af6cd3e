package category

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/greenunimind/api/internal/domain"
	"github.com/greenunimind/api/internal/pkg/id"
)

// Default catalogue seeded on first use, mirroring the production content set.
var defaultCategories = []domain.Category{
	{Name: "Climate & Environment", Slug: "climate-environment", Description: "Learn about climate change, conservation, and environmental science.", Icon: "🌍"},
	{Name: "Sustainable Living", Slug: "sustainable-living", Description: "Daily habits, zero waste, and eco-friendly choices.", Icon: "🌱"},
	{Name: "Renewable Energy", Slug: "renewable-energy", Description: "Solar, wind, and clean energy systems.", Icon: "⚡"},
	{Name: "Green Business", Slug: "green-business", Description: "Sustainability in business and ESG.", Icon: "💼"},
}

var defaultSubCategories = map[string][]string{
	"climate-environment": {"Climate Science", "Conservation", "Biodiversity", "Policy & Action"},
	"sustainable-living":  {"Zero Waste", "Eco Home", "Sustainable Fashion", "Green Food"},
	"renewable-energy":    {"Solar Power", "Wind Energy", "Energy Storage", "Smart Grid"},
	"green-business":      {"ESG", "Circular Economy", "Carbon Accounting", "Green Marketing"},
}

type Service interface {
	// ListWithSubcategories returns active categories sorted by name with
	// their active subcategories nested, seeding the defaults when the
	// catalogue is empty.
	ListWithSubcategories(ctx context.Context) ([]domain.CategoryWithSubs, error)
}

type categoryStore interface {
	PutCategory(ctx context.Context, c *domain.Category) error
	PutSubCategory(ctx context.Context, s *domain.SubCategory) error
	CountCategories(ctx context.Context) (int, error)
	ListActiveCategories(ctx context.Context) ([]domain.Category, error)
	ListActiveSubCategories(ctx context.Context) ([]domain.SubCategory, error)
}

type service struct {
	repo categoryStore

	mu     sync.Mutex
	seeded bool
}

func NewService(repo categoryStore) Service {
	return &service{repo: repo}
}

// ensureSeeded runs the seed at most once per process, but only latches on
// success. A transient store failure leaves seeded false so the next request
// retries instead of serving the stale error forever.
func (s *service) ensureSeeded(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seeded {
		return nil
	}
	if err := s.seedIfEmpty(ctx); err != nil {
		return err
	}
	s.seeded = true
	return nil
}

func (s *service) ListWithSubcategories(ctx context.Context) ([]domain.CategoryWithSubs, error) {
	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}

	cats, err := s.repo.ListActiveCategories(ctx)
	if err != nil {
		return nil, err
	}
	subs, err := s.repo.ListActiveSubCategories(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]domain.SubCategory)
	for _, sub := range subs {
		byCategory[sub.CategoryID] = append(byCategory[sub.CategoryID], sub)
	}

	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	out := make([]domain.CategoryWithSubs, 0, len(cats))
	for _, c := range cats {
		nested := byCategory[c.CategoryID]
		if nested == nil {
			nested = []domain.SubCategory{}
		}
		out = append(out, domain.CategoryWithSubs{Category: c, Subcategories: nested})
	}
	return out, nil
}

func (s *service) seedIfEmpty(ctx context.Context) error {
	count, err := s.repo.CountCategories(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := time.Now().UTC()
	for _, c := range defaultCategories {
		cat := c
		cat.CategoryID = id.New()
		cat.IsActive = true
		cat.CreatedAt = now
		cat.UpdatedAt = now
		if err := s.repo.PutCategory(ctx, &cat); err != nil {
			return err
		}
		for i, name := range defaultSubCategories[cat.Slug] {
			sub := domain.SubCategory{
				SubCategoryID: id.New(),
				CategoryID:    cat.CategoryID,
				Name:          name,
				Slug:          fmt.Sprintf("%s-%s-%d", cat.Slug, slugify(name), i),
				IsActive:      true,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := s.repo.PutSubCategory(ctx, &sub); err != nil {
				return err
			}
		}
	}
	return nil
}

func slugify(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
