package integration

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	appcatalog "github.com/shopfront/backend/internal/application/catalog"
	appcontact "github.com/shopfront/backend/internal/application/contact"
	apppartner "github.com/shopfront/backend/internal/application/partner"
	apptrade "github.com/shopfront/backend/internal/application/trade"
	"github.com/shopfront/backend/internal/interfaces/http/dto"
	"github.com/shopfront/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const priceList = `shop: Gadget Hub
url: https://gadgethub.example
categories:
  - id: 224
    name: Smartphones
  - id: 15
    name: Accessories
goods:
  - id: 4216292
    category: 224
    model: apple/iphone/xs-max
    name: Apple iPhone XS Max 512GB
    price: 110000
    price_rrc: 116990
    quantity: 14
    parameters:
      "Screen (inch)": 6.5
      "Color": gold
  - id: 4672670
    category: 15
    model: apple/airpods
    name: Apple AirPods
    price: 12990.50
    price_rrc: 13990
    quantity: 3
`

// repricedList is the same shop a week later: AirPods got cheaper and the
// iPhone sold out
const repricedList = `shop: Gadget Hub
url: https://gadgethub.example
categories:
  - id: 15
    name: Accessories
goods:
  - id: 4672670
    category: 15
    model: apple/airpods
    name: Apple AirPods
    price: 9990
    price_rrc: 13990
    quantity: 10
`

const password = "c0rrect-horse-battery"

func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

func servePriceList(t *testing.T, body string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/pricelist.yaml"
}

// importPriceList publishes the sample price list as partner and waits for
// the import to succeed
func importPriceList(t *testing.T, ts *TestServer, partnerToken string) apppartner.UpdateJobResponse {
	t.Helper()
	status := runImport(t, ts, partnerToken, priceList)
	require.Equal(t, "success", status.Status, status.Error)
	return status
}

// runImport publishes body as partner and waits until the job succeeds or
// fails for good
func runImport(t *testing.T, ts *TestServer, partnerToken, body string) apppartner.UpdateJobResponse {
	t.Helper()

	w := ts.Do(t, http.MethodPost, "/partner/update", map[string]string{"url": servePriceList(t, body)}, partnerToken)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	job := testutil.DecodeData[apppartner.UpdateJobResponse](t, w)
	require.NotEqual(t, uuid.Nil, job.JobID)

	var status apppartner.UpdateJobResponse
	testutil.RequireEventually(t, func() bool {
		w := ts.Do(t, http.MethodGet, "/partner/update/"+job.JobID.String(), nil, partnerToken)
		if w.Code != http.StatusOK {
			return false
		}
		status = testutil.DecodeData[apppartner.UpdateJobResponse](t, w)
		return status.Status == "success" || status.Status == "failed"
	}, 20*time.Second, 50*time.Millisecond, "import job did not finish")
	return status
}

func TestShopFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)

	partnerToken := ts.SignUp(t, "partner@gadgethub.example", password, "shop")
	buyerToken := ts.SignUp(t, "buyer@example.com", password, "buyer")

	status := importPriceList(t, ts, partnerToken)
	assert.Equal(t, 2, status.Result.Categories)
	assert.Equal(t, 2, status.Result.Offers)
	assert.Equal(t, 1, ts.Archive.Len())

	w := ts.Do(t, http.MethodGet, "/partner/state", nil, partnerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	shop := testutil.DecodeData[apppartner.ShopResponse](t, w)
	assert.Equal(t, "Gadget Hub", shop.Name)
	assert.Equal(t, "on", shop.State)

	t.Run("catalog lists the imported offers", func(t *testing.T) {
		w := ts.Do(t, http.MethodGet, "/categories", nil, buyerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Len(t, testutil.DecodeData[[]appcatalog.CategoryResponse](t, w), 2)

		w = ts.Do(t, http.MethodGet, "/shops", nil, buyerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		shops := testutil.DecodeData[[]apppartner.ShopResponse](t, w)
		require.Len(t, shops, 1)
		assert.Equal(t, shop.ID, shops[0].ID)
	})

	w = ts.Do(t, http.MethodGet, "/products?shop_id="+shop.ID.String()+"&search=AirPods", nil, buyerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	products := testutil.DecodeData[[]appcatalog.ProductResponse](t, w)
	require.Len(t, products, 1)
	require.Len(t, products[0].Offers, 1)
	offer := products[0].Offers[0]
	assert.True(t, decimal.RequireFromString("12990.50").Equal(offer.Price))
	assert.Equal(t, 3, offer.Quantity)

	w = ts.Do(t, http.MethodPost, "/user/contact", map[string]string{
		"phone":  "+79991234567",
		"city":   "Moscow",
		"street": "Tverskaya",
		"house":  "7",
	}, buyerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	contact := testutil.DecodeData[appcontact.ContactResponse](t, w)

	t.Run("basket rejects quantities above stock", func(t *testing.T) {
		w := ts.Do(t, http.MethodPost, "/basket", map[string]any{
			"items": []map[string]any{{"shop": shop.ID, "product_info": offer.ID, "quantity": 4}},
		}, buyerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})

	w = ts.Do(t, http.MethodPost, "/basket", map[string]any{
		"items": []map[string]any{{"shop": shop.ID, "product_info": offer.ID, "quantity": 2}},
	}, buyerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	added := testutil.DecodeData[apptrade.BasketChangeResult](t, w)
	assert.Equal(t, 1, added.Created)
	assert.Equal(t, 2, added.Basket.TotalQuantity)
	assert.True(t, decimal.RequireFromString("25981").Equal(added.Basket.TotalSum))

	w = ts.Do(t, http.MethodPost, "/orders", map[string]any{"contact": contact.ID}, buyerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := testutil.DecodeData[apptrade.OrderResponse](t, w)
	assert.Equal(t, "new", order.Status)
	require.Len(t, order.Items, 1)

	t.Run("placing the order empties the basket", func(t *testing.T) {
		w := ts.Do(t, http.MethodGet, "/basket", nil, buyerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Empty(t, testutil.DecodeData[apptrade.OrderResponse](t, w).Items)
	})

	t.Run("buyer cannot change the status", func(t *testing.T) {
		w := ts.Do(t, http.MethodPatch, "/orders/"+order.ID.String()+"/status",
			map[string]string{"status": "confirmed"}, buyerToken)
		require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
		testutil.AssertErrorCode(t, w, dto.ErrCodeForbidden)
	})

	w = ts.Do(t, http.MethodPatch, "/orders/"+order.ID.String()+"/status",
		map[string]string{"status": "confirmed"}, partnerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "confirmed", testutil.DecodeData[apptrade.OrderResponse](t, w).Status)

	t.Run("buyer is mailed about the status change", func(t *testing.T) {
		var subjects []string
		for _, m := range ts.Mailer.Sent() {
			if m.To == "buyer@example.com" {
				subjects = append(subjects, m.Subject)
			}
		}
		assert.Contains(t, subjects, "Your order status has been changed")
	})

	w = ts.Do(t, http.MethodGet, "/partner/orders", nil, partnerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env := testutil.DecodeEnvelope[[]apptrade.OrderResponse](t, w)
	require.Len(t, env.Data, 1)
	assert.Equal(t, order.ID, env.Data[0].ID)
	require.NotNil(t, env.Meta)
	assert.EqualValues(t, 1, env.Meta.Total)

	w = ts.Do(t, http.MethodGet, "/orders/"+order.ID.String(), nil, buyerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, contact.ID, *testutil.DecodeData[apptrade.OrderResponse](t, w).ContactID)
}

func TestReimportKeepsPlacedOrders(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)
	partnerToken := ts.SignUp(t, "partner@gadgethub.example", password, "shop")
	buyerToken := ts.SignUp(t, "buyer@example.com", password, "buyer")
	importPriceList(t, ts, partnerToken)

	w := ts.Do(t, http.MethodGet, "/products?search=Apple", nil, buyerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	offers := make(map[string]appcatalog.OfferResponse)
	for _, p := range testutil.DecodeData[[]appcatalog.ProductResponse](t, w) {
		require.Len(t, p.Offers, 1)
		offers[p.Name] = p.Offers[0]
	}
	airpods, iphone := offers["Apple AirPods"], offers["Apple iPhone XS Max 512GB"]
	require.NotEqual(t, uuid.Nil, airpods.ID)
	require.NotEqual(t, uuid.Nil, iphone.ID)

	w = ts.Do(t, http.MethodPost, "/user/contact", map[string]string{
		"phone": "+79991234567", "city": "Moscow", "street": "Tverskaya", "house": "7",
	}, buyerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	contact := testutil.DecodeData[appcontact.ContactResponse](t, w)

	w = ts.Do(t, http.MethodPost, "/basket", map[string]any{
		"items": []map[string]any{{"shop": airpods.Shop.ID, "product_info": airpods.ID, "quantity": 2}},
	}, buyerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = ts.Do(t, http.MethodPost, "/orders", map[string]any{"contact": contact.ID}, buyerToken)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	order := testutil.DecodeData[apptrade.OrderResponse](t, w)

	// a line for an offer the next price list drops
	w = ts.Do(t, http.MethodPost, "/basket", map[string]any{
		"items": []map[string]any{{"shop": iphone.Shop.ID, "product_info": iphone.ID, "quantity": 1}},
	}, buyerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	status := runImport(t, ts, partnerToken, repricedList)
	require.Equal(t, "success", status.Status, status.Error)
	assert.Equal(t, 1, status.Result.Offers)

	t.Run("order keeps its lines and total", func(t *testing.T) {
		w := ts.Do(t, http.MethodGet, "/orders/"+order.ID.String(), nil, buyerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		got := testutil.DecodeData[apptrade.OrderResponse](t, w)
		require.Len(t, got.Items, 1)
		item := got.Items[0]
		assert.Equal(t, "Apple AirPods", item.ProductName)
		assert.Equal(t, "Gadget Hub", item.ShopName)
		assert.Equal(t, 2, item.Quantity)
		assert.True(t, decimal.RequireFromString("12990.50").Equal(item.Price))
		assert.True(t, decimal.RequireFromString("25981").Equal(got.TotalSum))
	})

	t.Run("partner still sees the order", func(t *testing.T) {
		w := ts.Do(t, http.MethodGet, "/partner/orders", nil, partnerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		env := testutil.DecodeEnvelope[[]apptrade.OrderResponse](t, w)
		require.Len(t, env.Data, 1)
		assert.Equal(t, order.ID, env.Data[0].ID)
		assert.Len(t, env.Data[0].Items, 1)
	})

	t.Run("basket drops lines of removed offers", func(t *testing.T) {
		w := ts.Do(t, http.MethodGet, "/basket", nil, buyerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Empty(t, testutil.DecodeData[apptrade.OrderResponse](t, w).Items)
	})

	t.Run("canceling does not restock the new offer", func(t *testing.T) {
		w := ts.Do(t, http.MethodPatch, "/orders/"+order.ID.String()+"/status",
			map[string]string{"status": "canceled"}, partnerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "canceled", testutil.DecodeData[apptrade.OrderResponse](t, w).Status)

		w = ts.Do(t, http.MethodGet, "/products?search=AirPods", nil, buyerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		products := testutil.DecodeData[[]appcatalog.ProductResponse](t, w)
		require.Len(t, products, 1)
		require.Len(t, products[0].Offers, 1)
		assert.Equal(t, 10, products[0].Offers[0].Quantity)
		assert.True(t, decimal.NewFromInt(9990).Equal(products[0].Offers[0].Price))
	})
}

func TestImportRejectsGoodListedTwice(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)
	partnerToken := ts.SignUp(t, "partner@gadgethub.example", password, "shop")

	status := runImport(t, ts, partnerToken, priceList+`  - id: 4672670
    category: 15
    name: Apple AirPods (case)
    price: 1990
    quantity: 1
`)
	assert.Equal(t, "failed", status.Status)
	assert.Equal(t, 1, status.Attempts)
	assert.Contains(t, status.Error, "Good 4672670 is listed twice")
	assert.Equal(t, 1, ts.Archive.Len())

	w := ts.Do(t, http.MethodGet, "/shops", nil, partnerToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, testutil.DecodeData[[]apppartner.ShopResponse](t, w))
}

func TestResendConfirmation(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)
	const email = "late@example.com"

	w := ts.Do(t, http.MethodPost, "/user/register", map[string]string{
		"email": email, "password": password, "type": "buyer",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := ts.LastToken(t, email)

	w = ts.Do(t, http.MethodPost, "/user/register", map[string]string{
		"email": email, "password": password, "type": "buyer",
	}, "")
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = ts.Do(t, http.MethodPost, "/user/register/confirm/resend", map[string]string{"email": email}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := ts.LastToken(t, email)
	require.NotEqual(t, first, second)

	// the new token replaces the old one
	w = ts.Do(t, http.MethodPost, "/user/register/confirm", map[string]string{"email": email, "token": first}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = ts.Do(t, http.MethodPost, "/user/register/confirm", map[string]string{"email": email, "token": second}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.Do(t, http.MethodPost, "/user/login", map[string]string{"email": email, "password": password}, "")
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestPartnerEndpointsRequireShopAccount(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)
	buyerToken := ts.SignUp(t, "buyer@example.com", password, "buyer")

	w := ts.Do(t, http.MethodPost, "/partner/update", map[string]string{"url": "https://example.com/list.yaml"}, buyerToken)
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	w = ts.Do(t, http.MethodGet, "/partner/state", nil, buyerToken)
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
}

func TestPasswordResetFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)
	const email = "reset@example.com"
	oldToken := ts.SignUp(t, email, password, "buyer")

	w := ts.Do(t, http.MethodPost, "/password_reset", map[string]string{"email": email}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.Do(t, http.MethodPost, "/password_reset/confirm", map[string]string{
		"token":    ts.LastToken(t, email),
		"password": "an0ther-long-passphrase",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = ts.Do(t, http.MethodPost, "/user/login", map[string]string{"email": email, "password": password}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())

	w = ts.Do(t, http.MethodPost, "/user/login", map[string]string{"email": email, "password": "an0ther-long-passphrase"}, "")
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// tokens issued before the reset are revoked
	w = ts.Do(t, http.MethodGet, "/user/details", nil, oldToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
}

func TestHealth(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ts := NewTestServer(t)
	w := testutil.Do(t, ts.Handler, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
