package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/partner"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/infrastructure/pricelist"
	"github.com/shopfront/backend/internal/infrastructure/scheduler"
	"github.com/shopfront/backend/internal/infrastructure/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPriceList = `shop: Связной
url: https://www.svyaznoy.ru
categories:
  - id: 224
    name: Смартфоны
  - id: 15
    name: Аксессуары
goods:
  - id: 4216292
    category: 224
    model: apple/iphone/xs-max
    name: Смартфон Apple iPhone XS Max 512GB (золотистый)
    price: 110000
    price_rrc: 116990
    quantity: 14
    parameters:
      "Цвет": золотистый
      "Встроенная память (Гб)": 512
  - id: 4216313
    category: 224
    model: apple/iphone/xr
    name: Смартфон Apple iPhone XR 256GB (красный)
    price: 65000
    price_rrc: 69990
    quantity: 9
    parameters:
      "Цвет": красный
  - id: 4672670
    category: 15
    model: apple/airpods
    name: Наушники Apple AirPods
    price: 12990
    price_rrc: 13990
    quantity: 3
`

type stubFetcher struct {
	doc *pricelist.Document
	err error
}

func (f *stubFetcher) Fetch(_ context.Context, rawURL string) (*pricelist.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc := *f.doc
	doc.URL = rawURL
	return &doc, nil
}

type importFixture struct {
	service    *ImportService
	fetcher    *stubFetcher
	archive    *storage.MemoryObjectStorage
	shops      *MockShopRepository
	categories *MockCategoryRepository
	products   *MockProductRepository
	infos      *MockProductInfoRepository
	params     *MockParameterRepository
}

func newImportFixture(body string) *importFixture {
	f := &importFixture{
		fetcher:    &stubFetcher{doc: &pricelist.Document{ContentType: "application/x-yaml", Charset: "utf-8", Body: []byte(body)}},
		archive:    storage.NewMemoryObjectStorage(10),
		shops:      new(MockShopRepository),
		categories: new(MockCategoryRepository),
		products:   new(MockProductRepository),
		infos:      new(MockProductInfoRepository),
		params:     new(MockParameterRepository),
	}
	scope := NewNoOpTransactionScope(f.shops, f.categories, f.products, f.infos, f.params)
	f.service = NewImportService(f.fetcher, scope, zap.NewNop())
	f.service.SetArchive(f.archive)
	return f
}

func (f *importFixture) expectFreshCatalog() {
	f.categories.On("FindByExternalID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	f.categories.On("Create", mock.Anything, mock.AnythingOfType("*catalog.Category")).Return(nil)
	f.categories.On("LinkShop", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.products.On("FindByNameAndCategory", mock.Anything, mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	f.products.On("Create", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)
	f.params.On("FindByName", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	f.params.On("Create", mock.Anything, mock.AnythingOfType("*catalog.Parameter")).Return(nil)
	f.infos.On("DeleteByShop", mock.Anything, mock.Anything).Return(int64(0), nil)
}

func TestImportService_Execute_NewShop(t *testing.T) {
	f := newImportFixture(testPriceList)
	f.expectFreshCatalog()
	userID := uuid.New()

	var created *partner.Shop
	f.shops.On("FindByUserID", mock.Anything, userID).Return(nil, shared.ErrNotFound)
	f.shops.On("Create", mock.Anything, mock.AnythingOfType("*partner.Shop")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*partner.Shop) }).
		Return(nil)

	var offers []*catalog.ProductInfo
	f.infos.On("Create", mock.Anything, mock.AnythingOfType("*catalog.ProductInfo")).
		Run(func(args mock.Arguments) { offers = append(offers, args.Get(1).(*catalog.ProductInfo)) }).
		Return(nil)

	job := scheduler.NewJob(userID, "https://partner.example.com/shop1.yaml", 2)
	result, err := f.service.Execute(context.Background(), *job)
	require.NoError(t, err)

	assert.Equal(t, catalog.ImportResult{Categories: 2, Products: 3, Offers: 3, Parameters: 3}, result)
	require.NotNil(t, created)
	assert.Equal(t, "Связной", created.Name)
	assert.Equal(t, "https://www.svyaznoy.ru", created.URL)

	require.Len(t, offers, 3)
	assert.Equal(t, int64(4216292), offers[0].ExternalID)
	assert.Equal(t, 14, offers[0].Quantity)
	assert.Equal(t, created.ID, offers[0].ShopID)
	require.Len(t, offers[0].Parameters, 2)
	assert.Equal(t, "Встроенная память (Гб)", offers[0].Parameters[0].Name)
	assert.Equal(t, "512", offers[0].Parameters[0].Value)

	// "Цвет" is created once and reused
	f.params.AssertNumberOfCalls(t, "Create", 2)

	obj, ok := f.archive.Get("pricelists/" + userID.String() + "/" + job.ID.String() + ".yaml")
	require.True(t, ok)
	assert.Equal(t, testPriceList, string(obj.Body))
}

func TestImportService_Execute_ReplacesOffersOfExistingShop(t *testing.T) {
	f := newImportFixture(testPriceList)
	userID := uuid.New()
	shop := newTestShop(t, userID, "Старое имя")

	phones, err := catalog.NewCategory(224, "Смартфоны")
	require.NoError(t, err)
	f.categories.On("FindByExternalID", mock.Anything, int64(224)).Return(phones, nil)
	f.categories.On("FindByExternalID", mock.Anything, int64(15)).Return(nil, shared.ErrNotFound)
	f.categories.On("Create", mock.Anything, mock.AnythingOfType("*catalog.Category")).Return(nil).Once()
	f.categories.On("LinkShop", mock.Anything, mock.Anything, shop.ID).Return(nil)
	f.products.On("FindByNameAndCategory", mock.Anything, mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	f.products.On("Create", mock.Anything, mock.Anything).Return(nil)
	color := &catalog.Parameter{ID: uuid.New(), Name: "Цвет"}
	f.params.On("FindByName", mock.Anything, "Цвет").Return(color, nil)
	f.params.On("FindByName", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)
	f.params.On("Create", mock.Anything, mock.Anything).Return(nil)

	f.shops.On("FindByUserID", mock.Anything, userID).Return(shop, nil)
	f.shops.On("Update", mock.Anything, shop).Return(nil)
	f.infos.On("DeleteByShop", mock.Anything, shop.ID).Return(int64(7), nil)
	f.infos.On("Create", mock.Anything, mock.Anything).Return(nil)

	job := scheduler.NewJob(userID, "https://partner.example.com/shop1.yaml", 2)
	result, err := f.service.Execute(context.Background(), *job)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Offers)
	assert.Equal(t, "Связной", shop.Name)
	f.infos.AssertCalled(t, "DeleteByShop", mock.Anything, shop.ID)
	f.categories.AssertNumberOfCalls(t, "Create", 1)
	f.params.AssertNumberOfCalls(t, "Create", 1)
	f.shops.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestImportService_Execute_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("client error is permanent", func(t *testing.T) {
		f := newImportFixture(testPriceList)
		f.fetcher.err = &pricelist.FetchError{URL: "u", StatusCode: 404}

		_, err := f.service.Execute(ctx, *scheduler.NewJob(uuid.New(), "u", 2))
		require.Error(t, err)
		assert.True(t, scheduler.IsPermanent(err))
	})

	t.Run("server error is retried", func(t *testing.T) {
		f := newImportFixture(testPriceList)
		f.fetcher.err = &pricelist.FetchError{URL: "u", StatusCode: 503}

		_, err := f.service.Execute(ctx, *scheduler.NewJob(uuid.New(), "u", 2))
		require.Error(t, err)
		assert.False(t, scheduler.IsPermanent(err))
	})

	t.Run("malformed document is permanent", func(t *testing.T) {
		f := newImportFixture("shop: [unclosed")

		_, err := f.service.Execute(ctx, *scheduler.NewJob(uuid.New(), "u", 2))
		require.Error(t, err)
		assert.True(t, scheduler.IsPermanent(err))
	})

	t.Run("good listed twice is permanent", func(t *testing.T) {
		f := newImportFixture(testPriceList + `  - id: 4216313
    category: 224
    name: Смартфон Apple iPhone XR 256GB (красный)
    price: 64000
    price_rrc: 69990
    quantity: 1
`)

		_, err := f.service.Execute(ctx, *scheduler.NewJob(uuid.New(), "u", 2))
		require.Error(t, err)
		assert.True(t, scheduler.IsPermanent(err))
		assert.ErrorIs(t, err, pricelist.ErrInvalidDocument)
		assert.Contains(t, err.Error(), "Good 4216313 is listed twice")
		f.shops.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
		f.infos.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("database failure is retried and nothing is counted", func(t *testing.T) {
		f := newImportFixture(testPriceList)
		userID := uuid.New()
		f.shops.On("FindByUserID", mock.Anything, userID).Return(nil, errors.New("connection refused"))

		result, err := f.service.Execute(ctx, *scheduler.NewJob(userID, "u", 2))
		require.Error(t, err)
		assert.False(t, scheduler.IsPermanent(err))
		assert.Equal(t, catalog.ImportResult{}, result)
	})
}

func TestImportService_Load_RejectsUnknownCategory(t *testing.T) {
	f := newImportFixture(testPriceList)
	pl := &catalog.PriceList{
		Shop:       "Связной",
		Categories: []catalog.PriceListCategory{{ID: 1, Name: "Телефоны"}},
		Goods:      []catalog.PriceListGood{{ID: 10, Category: 2, Name: "Nokia 3310"}},
	}

	_, err := f.service.Load(context.Background(), uuid.New(), pl, "https://example.com/p.yaml")
	require.Error(t, err)
	assert.Equal(t, "INVALID_PRICE_LIST", domainCode(t, err))
	f.shops.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
}
