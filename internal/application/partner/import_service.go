package partner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/pricelist"
	"github.com/shopfront/backend/internal/infrastructure/scheduler"
	"github.com/shopfront/backend/internal/infrastructure/storage"
	"go.uber.org/zap"
)

// ImportService loads partner price lists into the catalog.
// It is the executor behind the update job scheduler.
type ImportService struct {
	fetcher pricelist.Fetcher
	archive storage.ObjectStorage
	txScope TransactionScope
	logger  *zap.Logger
}

// NewImportService creates a new import service
func NewImportService(fetcher pricelist.Fetcher, txScope TransactionScope, logger *zap.Logger) *ImportService {
	return &ImportService{
		fetcher: fetcher,
		txScope: txScope,
		logger:  logger,
	}
}

// SetArchive enables archiving of fetched documents
func (s *ImportService) SetArchive(archive storage.ObjectStorage) {
	s.archive = archive
}

// Execute runs one attempt of an update job
func (s *ImportService) Execute(ctx context.Context, job scheduler.Job) (catalog.ImportResult, error) {
	doc, err := s.fetcher.Fetch(ctx, job.URL)
	if err != nil {
		if !pricelist.IsRetryable(err) {
			return catalog.ImportResult{}, scheduler.Permanent(err)
		}
		return catalog.ImportResult{}, err
	}

	s.archiveDocument(ctx, job, doc)

	pl, err := pricelist.Decode(doc.Body)
	if err != nil {
		return catalog.ImportResult{}, scheduler.Permanent(err)
	}

	result, err := s.Load(ctx, job.UserID, pl, job.URL)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && !errors.Is(err, shared.ErrAlreadyExists) {
			return result, scheduler.Permanent(err)
		}
		return result, err
	}

	s.logger.Info("Price list imported",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", job.UserID.String()),
		zap.String("shop", pl.Shop),
		zap.Int("categories", result.Categories),
		zap.Int("products", result.Products),
		zap.Int("offers", result.Offers),
		zap.Int("parameters", result.Parameters))

	return result, nil
}

// Load writes a decoded price list for the partner in one transaction.
// The shop's previous offers are replaced.
func (s *ImportService) Load(ctx context.Context, userID uuid.UUID, pl *catalog.PriceList, sourceURL string) (catalog.ImportResult, error) {
	if err := pl.Validate(); err != nil {
		return catalog.ImportResult{}, err
	}
	shopURL := pl.URL
	if shopURL == "" {
		shopURL = sourceURL
	}

	var result catalog.ImportResult
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		result = catalog.ImportResult{}

		shop, err := upsertShop(ctx, repos.ShopRepo(), userID, pl.Shop, shopURL)
		if err != nil {
			return err
		}

		removed, err := repos.ProductInfoRepo().DeleteByShop(ctx, shop.ID)
		if err != nil {
			return fmt.Errorf("delete offers of shop %s: %w", shop.ID, err)
		}
		if removed > 0 {
			s.logger.Debug("Removed previous offers", zap.String("shop_id", shop.ID.String()), zap.Int64("count", removed))
		}

		params := make(map[string]*catalog.Parameter)
		for _, c := range pl.Categories {
			category, err := getOrCreateCategory(ctx, repos.CategoryRepo(), c)
			if err != nil {
				return err
			}
			if err := repos.CategoryRepo().LinkShop(ctx, category.ID, shop.ID); err != nil {
				return fmt.Errorf("link category %d: %w", c.ID, err)
			}
			result.Categories++

			for _, good := range pl.GoodsOf(c.ID) {
				product, err := getOrCreateProduct(ctx, repos.ProductRepo(), good.Name, category.ID)
				if err != nil {
					return err
				}
				result.Products++

				info, err := catalog.NewProductInfo(product.ID, shop.ID, good.ID, good.Model, good.Quantity, good.Price, good.PriceRRC)
				if err != nil {
					return err
				}
				for _, name := range good.ParameterNames() {
					param, err := getOrCreateParameter(ctx, repos.ParameterRepo(), params, name)
					if err != nil {
						return err
					}
					info.AddParameter(param, good.Parameters[name])
					result.Parameters++
				}
				if err := repos.ProductInfoRepo().Create(ctx, info); err != nil {
					return fmt.Errorf("create offer %d: %w", good.ID, err)
				}
				result.Offers++
			}
		}
		return nil
	})
	if err != nil {
		return catalog.ImportResult{}, err
	}
	return result, nil
}

func (s *ImportService) archiveDocument(ctx context.Context, job scheduler.Job, doc *pricelist.Document) {
	if s.archive == nil {
		return
	}
	key := fmt.Sprintf("pricelists/%s/%s.yaml", job.UserID, job.ID)
	if err := s.archive.PutObject(ctx, key, "application/x-yaml", doc.Body); err != nil {
		s.logger.Warn("Failed to archive price list",
			zap.String("job_id", job.ID.String()),
			zap.String("key", key),
			zap.Error(err))
	}
}

func upsertShop(ctx context.Context, repo partner.ShopRepository, userID uuid.UUID, name, url string) (*partner.Shop, error) {
	shop, err := repo.FindByUserID(ctx, userID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if shop == nil {
		shop, err = partner.NewShop(userID, name, url)
		if err != nil {
			return nil, err
		}
		if err := repo.Create(ctx, shop); err != nil {
			return nil, err
		}
		return shop, nil
	}
	if err := shop.Rename(name, url); err != nil {
		return nil, err
	}
	if err := repo.Update(ctx, shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func getOrCreateCategory(ctx context.Context, repo catalog.CategoryRepository, c catalog.PriceListCategory) (*catalog.Category, error) {
	category, err := repo.FindByExternalID(ctx, c.ID)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	category, err = catalog.NewCategory(c.ID, c.Name)
	if err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func getOrCreateProduct(ctx context.Context, repo catalog.ProductRepository, name string, categoryID uuid.UUID) (*catalog.Product, error) {
	product, err := repo.FindByNameAndCategory(ctx, name, categoryID)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	product, err = catalog.NewProduct(name, categoryID)
	if err != nil {
		return nil, err
	}
	if err := repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func getOrCreateParameter(ctx context.Context, repo catalog.ParameterRepository, seen map[string]*catalog.Parameter, name string) (*catalog.Parameter, error) {
	if p, ok := seen[name]; ok {
		return p, nil
	}
	param, err := repo.FindByName(ctx, name)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		param, err = catalog.NewParameter(name)
		if err != nil {
			return nil, err
		}
		if err := repo.Create(ctx, param); err != nil {
			return nil, err
		}
	}
	seen[name] = param
	return param, nil
}

var _ scheduler.JobExecutor = (*ImportService)(nil)
