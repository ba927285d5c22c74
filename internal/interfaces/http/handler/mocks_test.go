package handler

import (
	"context"

	"github.com/google/uuid"
	appcatalog "github.com/shopfront/backend/internal/application/catalog"
	appcontact "github.com/shopfront/backend/internal/application/contact"
	appidentity "github.com/shopfront/backend/internal/application/identity"
	apppartner "github.com/shopfront/backend/internal/application/partner"
	apptrade "github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/domain/catalog"
	"github.com/shopfront/backend/internal/domain/shared"
	"github.com/shopfront/backend/internal/domain/trade"
	"github.com/stretchr/testify/mock"
)

// MockAuthService is a mock implementation of AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input appidentity.RegisterInput) (*appidentity.UserDTO, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.UserDTO), args.Error(1)
}

func (m *MockAuthService) ConfirmEmail(ctx context.Context, input appidentity.ConfirmEmailInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockAuthService) ResendConfirmation(ctx context.Context, input appidentity.ResendConfirmationInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockAuthService) Login(ctx context.Context, input appidentity.LoginInput) (*appidentity.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.LoginResult), args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, input appidentity.RefreshTokenInput) (*appidentity.RefreshTokenResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.RefreshTokenResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, input appidentity.LogoutInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, input appidentity.PasswordResetInput) error {
	return m.Called(ctx, input).Error(0)
}

func (m *MockAuthService) ConfirmPasswordReset(ctx context.Context, input appidentity.ConfirmPasswordResetInput) error {
	return m.Called(ctx, input).Error(0)
}

// MockUserService is a mock implementation of UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetDetails(ctx context.Context, userID uuid.UUID) (*appidentity.UserDTO, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.UserDTO), args.Error(1)
}

func (m *MockUserService) UpdateDetails(ctx context.Context, input appidentity.UpdateDetailsInput) (*appidentity.UserDTO, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.UserDTO), args.Error(1)
}

// MockShopService is a mock implementation of ShopService
type MockShopService struct {
	mock.Mock
}

func (m *MockShopService) ListShops(ctx context.Context, filter shared.Filter) (shared.Paginated[apppartner.ShopResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[apppartner.ShopResponse]), args.Error(1)
}

func (m *MockShopService) GetState(ctx context.Context, userID uuid.UUID) (*apppartner.ShopResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppartner.ShopResponse), args.Error(1)
}

func (m *MockShopService) SetState(ctx context.Context, userID uuid.UUID, state string) (*apppartner.ShopResponse, error) {
	args := m.Called(ctx, userID, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppartner.ShopResponse), args.Error(1)
}

func (m *MockShopService) ListPartnerOrders(ctx context.Context, userID uuid.UUID, filter trade.OrderFilter) (shared.Paginated[apptrade.OrderResponse], error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(shared.Paginated[apptrade.OrderResponse]), args.Error(1)
}

// MockUpdateService is a mock implementation of UpdateService
type MockUpdateService struct {
	mock.Mock
}

func (m *MockUpdateService) RequestUpdate(ctx context.Context, userID uuid.UUID, url string) (*apppartner.UpdateJobResponse, error) {
	args := m.Called(ctx, userID, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppartner.UpdateJobResponse), args.Error(1)
}

func (m *MockUpdateService) GetUpdateStatus(ctx context.Context, userID, jobID uuid.UUID) (*apppartner.UpdateJobResponse, error) {
	args := m.Called(ctx, userID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apppartner.UpdateJobResponse), args.Error(1)
}

// MockCatalogService is a mock implementation of CatalogService
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListCategories(ctx context.Context, filter catalog.CategoryFilter) (shared.Paginated[appcatalog.CategoryResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[appcatalog.CategoryResponse]), args.Error(1)
}

func (m *MockCatalogService) ListProducts(ctx context.Context, filter catalog.ProductFilter) (shared.Paginated[appcatalog.ProductResponse], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[appcatalog.ProductResponse]), args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*appcatalog.ProductResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcatalog.ProductResponse), args.Error(1)
}

// MockBasketService is a mock implementation of BasketService
type MockBasketService struct {
	mock.Mock
}

func (m *MockBasketService) GetBasket(ctx context.Context, userID uuid.UUID) (*apptrade.OrderResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.OrderResponse), args.Error(1)
}

func (m *MockBasketService) AddToBasket(ctx context.Context, userID uuid.UUID, items []apptrade.BasketItemInput) (*apptrade.BasketChangeResult, error) {
	args := m.Called(ctx, userID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.BasketChangeResult), args.Error(1)
}

func (m *MockBasketService) UpdateBasket(ctx context.Context, userID uuid.UUID, items []apptrade.BasketItemInput) (*apptrade.BasketChangeResult, error) {
	args := m.Called(ctx, userID, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.BasketChangeResult), args.Error(1)
}

func (m *MockBasketService) RemoveFromBasket(ctx context.Context, userID uuid.UUID, productInfoIDs []uuid.UUID) (*apptrade.BasketRemoveResult, error) {
	args := m.Called(ctx, userID, productInfoIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.BasketRemoveResult), args.Error(1)
}

// MockOrderService is a mock implementation of OrderService
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, input apptrade.PlaceOrderInput) (*apptrade.OrderResponse, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.OrderResponse), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, userID uuid.UUID, filter shared.Filter) (shared.Paginated[apptrade.OrderResponse], error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).(shared.Paginated[apptrade.OrderResponse]), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*apptrade.OrderResponse, error) {
	args := m.Called(ctx, userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.OrderResponse), args.Error(1)
}

func (m *MockOrderService) ChangeOrderStatus(ctx context.Context, userID, orderID uuid.UUID, input apptrade.ChangeStatusInput) (*apptrade.OrderResponse, error) {
	args := m.Called(ctx, userID, orderID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apptrade.OrderResponse), args.Error(1)
}

// MockContactService is a mock implementation of ContactService
type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) ListContacts(ctx context.Context, userID uuid.UUID) ([]appcontact.ContactResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appcontact.ContactResponse), args.Error(1)
}

func (m *MockContactService) CreateContact(ctx context.Context, userID uuid.UUID, req appcontact.ContactRequest) (*appcontact.ContactResponse, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcontact.ContactResponse), args.Error(1)
}

func (m *MockContactService) UpdateContact(ctx context.Context, userID, contactID uuid.UUID, req appcontact.ContactRequest) (*appcontact.ContactResponse, error) {
	args := m.Called(ctx, userID, contactID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcontact.ContactResponse), args.Error(1)
}

func (m *MockContactService) DeleteContacts(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (*appcontact.DeleteContactsResult, error) {
	args := m.Called(ctx, userID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appcontact.DeleteContactsResult), args.Error(1)
}
