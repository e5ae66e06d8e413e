package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/yummigo-orders/internal/auth"
	"github.com/MikeMC777/yummigo-orders/internal/catalog"
	"github.com/MikeMC777/yummigo-orders/internal/order"
)

//
// ---------- FIXTURE ----------
//

const secret = "test-secret"

var (
	buyerID  = auth.Identity{ID: "buyer-1", Role: auth.RoleBuyer, Name: "Bea", Email: "bea@example.com"}
	otherID  = auth.Identity{ID: "buyer-2", Role: auth.RoleBuyer}
	vendorID = auth.Identity{ID: "vendor-1", Role: auth.RoleVendor}
	rivalID  = auth.Identity{ID: "vendor-2", Role: auth.RoleVendor}
	loneID   = auth.Identity{ID: "vendor-3", Role: auth.RoleVendor}
	adminID  = auth.Identity{ID: "admin-1", Role: auth.RoleAdmin}
)

type testApp struct {
	r   *gin.Engine
	cat *catalog.MemRepo
	v   *auth.Verifier
}

// newTestApp seeds vendor-1 with restaurant r1 serving "pizza" at 399 and
// vendor-2 with r2.
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	cat := catalog.NewMemRepo()
	mustNil(t, cat.CreateRestaurant(ctx, &catalog.Restaurant{ID: "r1", VendorID: vendorID.ID, Name: "Mamma Mia", Location: "Baker St", Rating: 4}))
	mustNil(t, cat.CreateRestaurant(ctx, &catalog.Restaurant{ID: "r2", VendorID: rivalID.ID, Name: "Koi", Location: "Main St", Rating: 4}))
	mustNil(t, cat.CreateRecipe(ctx, &catalog.Recipe{
		ID: "pizza", VendorID: vendorID.ID, RestaurantID: "r1", Name: "Pizza",
		Price: decimal.NewFromInt(399), Category: catalog.CategoryMainCourse, Available: true,
	}))

	svc := order.NewService(order.NewMemRepo(), cat, &order.MemSequence{}, order.Ext{}, nil)
	v := auth.NewVerifier(secret)

	r := newRouter(deps{orders: svc, catalog: cat, verifier: v, timeout: 5 * time.Second})
	return &testApp{r: r, cat: cat, v: v}
}

func mustNil(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func (a *testApp) do(t *testing.T, who *auth.Identity, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Buffer
	if body != "" {
		rd = bytes.NewBufferString(body)
	} else {
		rd = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if who != nil {
		tok, err := a.v.Issue(*who, time.Minute)
		mustNil(t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	a.r.ServeHTTP(w, req)
	return w
}

func (a *testApp) place(t *testing.T, who auth.Identity) map[string]any {
	t.Helper()
	w := a.do(t, &who, http.MethodPost, "/api/orders",
		`{"restaurantId":"r1","items":[{"recipeId":"pizza","quantity":2}],"deliveryAddress":"221B Baker Street"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("place: status=%d body=%s", w.Code, w.Body.String())
	}
	return decode(t, w)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json inválido: %v body=%s", err, w.Body.String())
	}
	return out
}

func setStatus(t *testing.T, a *testApp, who auth.Identity, id, body string) *httptest.ResponseRecorder {
	t.Helper()
	return a.do(t, &who, http.MethodPut, "/api/orders/"+id+"/status", body)
}

//
// ---------- TESTS ----------
//

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func TestPlaceOrder_HappyPath(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)

	w := a.do(t, &buyerID, http.MethodPost, "/api/orders",
		`{"restaurantId":"r1","items":[{"recipeId":"pizza","quantity":2}],"deliveryAddress":"221B Baker Street","totalPrice":"10"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	o := decode(t, w)
	if o["orderNumber"] != "ORD-0001" {
		t.Fatalf("orderNumber=%v", o["orderNumber"])
	}
	if o["totalPrice"] != "798" {
		t.Fatalf("totalPrice=%v, esperaba 798", o["totalPrice"])
	}
	if o["status"] != "pending" || o["paymentMethod"] != "cash_on_delivery" {
		t.Fatalf("status/payment inesperados: %v %v", o["status"], o["paymentMethod"])
	}
	if o["priceAdjusted"] != true {
		t.Fatalf("priceAdjusted=%v, esperaba true", o["priceAdjusted"])
	}
	cust, _ := o["customer"].(map[string]any)
	if cust["name"] != "Bea" {
		t.Fatalf("customer=%v", o["customer"])
	}
}

func TestPlaceOrder_Rejections(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)

	cases := []struct {
		name string
		who  *auth.Identity
		body string
		code int
		kind string
	}{
		{"no token", nil, `{}`, http.StatusUnauthorized, "unauthorized"},
		{"vendor cannot buy", &vendorID, `{"restaurantId":"r1","items":[{"recipeId":"pizza","quantity":1}],"deliveryAddress":"x"}`, http.StatusForbidden, "forbidden"},
		{"bad json", &buyerID, `{`, http.StatusBadRequest, "validation_failed"},
		{"empty", &buyerID, `{"restaurantId":"r1","items":[],"deliveryAddress":"x"}`, http.StatusBadRequest, "validation_failed"},
		{"zero quantity", &buyerID, `{"restaurantId":"r1","items":[{"recipeId":"pizza","quantity":0}],"deliveryAddress":"x"}`, http.StatusBadRequest, "validation_failed"},
		{"unknown recipe", &buyerID, `{"restaurantId":"r1","items":[{"recipeId":"nope","quantity":1}],"deliveryAddress":"x"}`, http.StatusBadRequest, "validation_failed"},
		{"no address", &buyerID, `{"restaurantId":"r1","items":[{"recipeId":"pizza","quantity":1}]}`, http.StatusBadRequest, "validation_failed"},
	}
	for _, tc := range cases {
		w := a.do(t, tc.who, http.MethodPost, "/api/orders", tc.body)
		if w.Code != tc.code {
			t.Fatalf("%s: status=%d body=%s (esperaba %d)", tc.name, w.Code, w.Body.String(), tc.code)
		}
		if got := decode(t, w)["kind"]; got != tc.kind {
			t.Fatalf("%s: kind=%v (esperaba %s)", tc.name, got, tc.kind)
		}
	}

	w := a.do(t, &buyerID, http.MethodGet, "/api/orders/mine", "")
	var mine []map[string]any
	mustNil(t, json.Unmarshal(w.Body.Bytes(), &mine))
	if len(mine) != 0 {
		t.Fatalf("no se debía persistir ninguna orden, hay %d", len(mine))
	}
}

func TestListMine_BuyersOnly(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)
	a.place(t, buyerID)

	for _, who := range []auth.Identity{vendorID, adminID} {
		if w := a.do(t, &who, http.MethodGet, "/api/orders/mine", ""); w.Code != http.StatusForbidden {
			t.Fatalf("%s: status=%d body=%s", who.Role, w.Code, w.Body.String())
		}
	}
	w := a.do(t, &buyerID, http.MethodGet, "/api/orders/mine", "")
	var mine []map[string]any
	mustNil(t, json.Unmarshal(w.Body.Bytes(), &mine))
	if w.Code != http.StatusOK || len(mine) != 1 {
		t.Fatalf("buyer: status=%d len=%d", w.Code, len(mine))
	}
}

func TestLifecycle_DeliveredAndStats(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)
	id := a.place(t, buyerID)["id"].(string)

	for _, s := range []string{"confirmed", "preparing", "Out for Delivery", "delivered"} {
		if w := setStatus(t, a, vendorID, id, `{"status":"`+s+`"}`); w.Code != http.StatusOK {
			t.Fatalf("%s: status=%d body=%s", s, w.Code, w.Body.String())
		}
	}

	// repeating the final status is a no-op
	w := setStatus(t, a, vendorID, id, `{"status":"delivered"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("delivered twice: status=%d body=%s", w.Code, w.Body.String())
	}
	o := decode(t, w)
	if hist, _ := o["statusHistory"].([]any); len(hist) != 5 {
		t.Fatalf("history len=%d, esperaba 5", len(hist))
	}

	// moving back is a conflict
	w = a.do(t, &vendorID, http.MethodPatch, "/api/orders/"+id+"/status", `{"status":"preparing"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("backwards: status=%d body=%s (esperaba 409)", w.Code, w.Body.String())
	}

	w = a.do(t, &vendorID, http.MethodGet, "/api/orders/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("stats: status=%d body=%s", w.Code, w.Body.String())
	}
	st := decode(t, w)
	if st["totalOrders"] != float64(1) || st["completedOrders"] != float64(1) || st["rejectedOrders"] != float64(0) || st["earnings"] != "798" {
		t.Fatalf("stats inesperadas: %v", st)
	}
}

func TestUpdateStatus_Validation(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)
	id := a.place(t, buyerID)["id"].(string)

	w := setStatus(t, a, vendorID, id, `{"status":"teleported"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown status: status=%d", w.Code)
	}
	w = setStatus(t, a, vendorID, id, `{"status":"rejected"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("rejected without reason: status=%d", w.Code)
	}
	w = setStatus(t, a, vendorID, "missing", `{"status":"confirmed"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing order: status=%d", w.Code)
	}

	w = setStatus(t, a, vendorID, id, `{"status":"rejected","reason":"kitchen closed"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("reject: status=%d body=%s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["rejectionReason"]; got != "kitchen closed" {
		t.Fatalf("rejectionReason=%v", got)
	}
	w = setStatus(t, a, vendorID, id, `{"status":"confirmed"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("leave terminal: status=%d (esperaba 409)", w.Code)
	}
}

func TestAccess(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)
	id := a.place(t, buyerID)["id"].(string)

	views := []struct {
		who  auth.Identity
		code int
	}{
		{buyerID, http.StatusOK},
		{vendorID, http.StatusOK},
		{adminID, http.StatusOK},
		{otherID, http.StatusForbidden},
		{rivalID, http.StatusForbidden},
	}
	for _, v := range views {
		w := a.do(t, &v.who, http.MethodGet, "/api/orders/"+id, "")
		if w.Code != v.code {
			t.Fatalf("view as %s: status=%d (esperaba %d)", v.who.ID, w.Code, v.code)
		}
		if w.Code == http.StatusForbidden {
			if _, leaked := decode(t, w)["orderNumber"]; leaked {
				t.Fatalf("403 body leaks order data: %s", w.Body.String())
			}
		}
	}
	if w := a.do(t, &otherID, http.MethodGet, "/api/orders/does-not-exist", ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing order: status=%d (esperaba 404)", w.Code)
	}

	if w := setStatus(t, a, rivalID, id, `{"status":"confirmed"}`); w.Code != http.StatusForbidden {
		t.Fatalf("rival vendor: status=%d", w.Code)
	}
	if w := setStatus(t, a, buyerID, id, `{"status":"confirmed"}`); w.Code != http.StatusForbidden {
		t.Fatalf("buyer confirm: status=%d", w.Code)
	}
	if w := setStatus(t, a, otherID, id, `{"status":"cancelled","reason":"x"}`); w.Code != http.StatusForbidden {
		t.Fatalf("other buyer cancel: status=%d", w.Code)
	}
	if w := setStatus(t, a, buyerID, id, `{"status":"cancelled","reason":"changed my mind"}`); w.Code != http.StatusOK {
		t.Fatalf("buyer cancel: status=%d body=%s", w.Code, w.Body.String())
	}

	id2 := a.place(t, buyerID)["id"].(string)
	if w := setStatus(t, a, adminID, id2, `{"status":"confirmed"}`); w.Code != http.StatusOK {
		t.Fatalf("admin confirm: status=%d", w.Code)
	}
	if w := setStatus(t, a, buyerID, id2, `{"status":"cancelled","reason":"late"}`); w.Code != http.StatusForbidden {
		t.Fatalf("buyer cancel after confirm: status=%d (esperaba 403)", w.Code)
	}
}

func TestListings(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)
	a.place(t, buyerID)
	a.place(t, buyerID)
	a.place(t, otherID)

	w := a.do(t, &buyerID, http.MethodGet, "/api/orders/mine?limit=1", "")
	var page []map[string]any
	mustNil(t, json.Unmarshal(w.Body.Bytes(), &page))
	if w.Code != http.StatusOK || len(page) != 1 {
		t.Fatalf("mine: status=%d len=%d", w.Code, len(page))
	}

	w = a.do(t, &vendorID, http.MethodGet, "/api/orders/vendor", "")
	var all []map[string]any
	mustNil(t, json.Unmarshal(w.Body.Bytes(), &all))
	if w.Code != http.StatusOK || len(all) != 3 {
		t.Fatalf("vendor: status=%d len=%d", w.Code, len(all))
	}

	if w := a.do(t, &loneID, http.MethodGet, "/api/orders/vendor", ""); w.Code != http.StatusNotFound {
		t.Fatalf("vendor without restaurant: status=%d (esperaba 404)", w.Code)
	}
	if w := a.do(t, &buyerID, http.MethodGet, "/api/orders/vendor", ""); w.Code != http.StatusForbidden {
		t.Fatalf("buyer on vendor list: status=%d", w.Code)
	}
	if w := a.do(t, &rivalID, http.MethodGet, "/api/orders/stats?vendorId=vendor-1", ""); w.Code != http.StatusForbidden {
		t.Fatalf("stats for another vendor: status=%d", w.Code)
	}
	if w := a.do(t, &adminID, http.MethodGet, "/api/orders/stats?vendorId=vendor-1", ""); w.Code != http.StatusOK {
		t.Fatalf("admin stats: status=%d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)
	if w := a.do(t, nil, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if w := a.do(t, nil, http.MethodGet, "/metrics", ""); w.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", w.Code)
	}
}
