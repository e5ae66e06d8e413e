package main

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/MikeMC777/yummigo-orders/internal/catalog"
)

func TestCreateRecipe_Defaults(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)

	w := a.do(t, &vendorID, http.MethodPost, "/api/recipes",
		`{"restaurantId":"r1","name":"Lasagna","price":"250.00","category":"Main Course"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	rc := decode(t, w)
	if rc["isAvailable"] != true || rc["preparationTime"] != "30 min" || rc["image"] != catalog.DefaultRecipeImage {
		t.Fatalf("defaults no aplicados: %v", rc)
	}
	if rc["vendorId"] != vendorID.ID {
		t.Fatalf("vendorId=%v", rc["vendorId"])
	}
}

func TestCreateRecipe_Rejections(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)

	cases := []struct {
		name string
		body string
		code int
	}{
		{"bad category", `{"name":"X","price":"1","category":"Snacks"}`, http.StatusBadRequest},
		{"negative price", `{"name":"X","price":"-1","category":"Desserts"}`, http.StatusBadRequest},
		{"no name", `{"price":"1","category":"Desserts"}`, http.StatusBadRequest},
		{"unknown restaurant", `{"restaurantId":"nope","name":"X","price":"1","category":"Desserts"}`, http.StatusNotFound},
		{"foreign restaurant", `{"restaurantId":"r2","name":"X","price":"1","category":"Desserts"}`, http.StatusForbidden},
	}
	for _, tc := range cases {
		if w := a.do(t, &vendorID, http.MethodPost, "/api/recipes", tc.body); w.Code != tc.code {
			t.Fatalf("%s: status=%d body=%s (esperaba %d)", tc.name, w.Code, w.Body.String(), tc.code)
		}
	}
	if w := a.do(t, &buyerID, http.MethodPost, "/api/recipes", `{"name":"X","price":"1","category":"Desserts"}`); w.Code != http.StatusForbidden {
		t.Fatalf("buyer: status=%d", w.Code)
	}
}

func TestRecipeOwnership(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)

	if w := a.do(t, &rivalID, http.MethodPut, "/api/recipes/pizza", `{"price":"1"}`); w.Code != http.StatusForbidden {
		t.Fatalf("rival update: status=%d", w.Code)
	}
	if w := a.do(t, &rivalID, http.MethodDelete, "/api/recipes/pizza", ""); w.Code != http.StatusForbidden {
		t.Fatalf("rival delete: status=%d", w.Code)
	}
	if w := a.do(t, &vendorID, http.MethodPut, "/api/recipes/nope", `{"price":"1"}`); w.Code != http.StatusNotFound {
		t.Fatalf("missing recipe: status=%d", w.Code)
	}

	w := a.do(t, &vendorID, http.MethodPut, "/api/recipes/pizza", `{"price":"420.50"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status=%d body=%s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["price"]; got != "420.5" {
		t.Fatalf("price=%v", got)
	}
}

func TestToggleAvailability_BlocksOrders(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)

	w := a.do(t, &vendorID, http.MethodPatch, "/api/recipes/pizza/availability", "")
	if w.Code != http.StatusOK || decode(t, w)["isAvailable"] != false {
		t.Fatalf("toggle: status=%d body=%s", w.Code, w.Body.String())
	}
	w = a.do(t, &buyerID, http.MethodPost, "/api/orders",
		`{"restaurantId":"r1","items":[{"recipeId":"pizza","quantity":1}],"deliveryAddress":"x"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("order on unavailable recipe: status=%d (esperaba 400)", w.Code)
	}
}

func TestDeleteRecipe_OrdersKeepSnapshot(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)
	id := a.place(t, buyerID)["id"].(string)

	if w := a.do(t, &vendorID, http.MethodDelete, "/api/recipes/pizza", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete: status=%d body=%s", w.Code, w.Body.String())
	}
	if _, err := a.cat.GetRecipe(context.Background(), "pizza"); err == nil {
		t.Fatalf("recipe still present")
	}

	w := a.do(t, &buyerID, http.MethodGet, "/api/orders/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get: status=%d", w.Code)
	}
	items, _ := decode(t, w)["items"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["name"] != "Pizza" {
		t.Fatalf("snapshot perdido: %v", items)
	}
}

func TestRestaurants(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)

	w := a.do(t, &vendorID, http.MethodPost, "/api/restaurants", `{"name":"Trattoria","location":"Elm St","cuisine":"Italian"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: status=%d body=%s", w.Code, w.Body.String())
	}
	rs := decode(t, w)
	if rs["rating"] != float64(4) || rs["vendorId"] != vendorID.ID {
		t.Fatalf("restaurant=%v", rs)
	}
	if w := a.do(t, &vendorID, http.MethodPost, "/api/restaurants", `{"location":"Elm St"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("no name: status=%d", w.Code)
	}

	w = a.do(t, &buyerID, http.MethodGet, "/api/restaurants?limit=10", "")
	var list catalog.ListResponse
	mustNil(t, json.Unmarshal(w.Body.Bytes(), &list))
	if w.Code != http.StatusOK || len(list.Items) != 3 {
		t.Fatalf("list: status=%d len=%d", w.Code, len(list.Items))
	}

	w = a.do(t, &buyerID, http.MethodGet, "/api/restaurants/r1/recipes", "")
	var recipes []map[string]any
	mustNil(t, json.Unmarshal(w.Body.Bytes(), &recipes))
	if w.Code != http.StatusOK || len(recipes) != 1 {
		t.Fatalf("recipes: status=%d len=%d", w.Code, len(recipes))
	}
	if w := a.do(t, &buyerID, http.MethodGet, "/api/restaurants/nope/recipes", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown restaurant: status=%d", w.Code)
	}
}

func TestUpdateRestaurant(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)

	if w := a.do(t, &rivalID, http.MethodPut, "/api/restaurants/r1", `{"name":"Mine now"}`); w.Code != http.StatusForbidden {
		t.Fatalf("rival: status=%d", w.Code)
	}
	if w := a.do(t, &buyerID, http.MethodPut, "/api/restaurants/r1", `{"name":"Mine now"}`); w.Code != http.StatusForbidden {
		t.Fatalf("buyer: status=%d", w.Code)
	}
	if w := a.do(t, &vendorID, http.MethodPut, "/api/restaurants/nope", `{"name":"X"}`); w.Code != http.StatusNotFound {
		t.Fatalf("missing: status=%d", w.Code)
	}
	if w := a.do(t, &vendorID, http.MethodPut, "/api/restaurants/r1", `{"rating":7}`); w.Code != http.StatusBadRequest {
		t.Fatalf("rating: status=%d", w.Code)
	}

	w := a.do(t, &vendorID, http.MethodPut, "/api/restaurants/r1", `{"name":"Mamma Mia 2","timings":"12:00-23:00"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update: status=%d body=%s", w.Code, w.Body.String())
	}
	rs := decode(t, w)
	if rs["name"] != "Mamma Mia 2" || rs["timings"] != "12:00-23:00" || rs["location"] != "Baker St" {
		t.Fatalf("restaurant=%v", rs)
	}

	w = a.do(t, &adminID, http.MethodPut, "/api/restaurants/r2", `{"cuisine":"Japanese"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("admin: status=%d body=%s", w.Code, w.Body.String())
	}
	if got := a.do(t, &buyerID, http.MethodGet, "/api/restaurants/r2", ""); decode(t, got)["cuisine"] != "Japanese" {
		t.Fatalf("cambio no persistido: %s", got.Body.String())
	}
}

func TestDeleteRestaurant_OrdersKeepSnapshot(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)
	id := a.place(t, buyerID)["id"].(string)

	if w := a.do(t, &rivalID, http.MethodDelete, "/api/restaurants/r1", ""); w.Code != http.StatusForbidden {
		t.Fatalf("rival: status=%d", w.Code)
	}
	if w := a.do(t, &vendorID, http.MethodDelete, "/api/restaurants/r1", ""); w.Code != http.StatusNoContent {
		t.Fatalf("delete: status=%d body=%s", w.Code, w.Body.String())
	}
	if w := a.do(t, &vendorID, http.MethodDelete, "/api/restaurants/r1", ""); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: status=%d", w.Code)
	}
	if _, err := a.cat.GetRecipe(context.Background(), "pizza"); err != catalog.ErrNotFound {
		t.Fatalf("la receta del restaurante debía borrarse: %v", err)
	}

	w := a.do(t, &buyerID, http.MethodGet, "/api/orders/"+id, "")
	if w.Code != http.StatusOK {
		t.Fatalf("order: status=%d body=%s", w.Code, w.Body.String())
	}
	items, _ := decode(t, w)["items"].([]any)
	if len(items) != 1 || items[0].(map[string]any)["name"] != "Pizza" {
		t.Fatalf("snapshot perdido: %v", items)
	}
}

func TestListRecipes(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)
	ctx := context.Background()
	mustNil(t, a.cat.CreateRecipe(ctx, &catalog.Recipe{
		ID: "sushi", VendorID: rivalID.ID, RestaurantID: "r2", Name: "Sushi",
		Category: catalog.CategorySeafood, Available: true,
	}))
	mustNil(t, a.cat.CreateRecipe(ctx, &catalog.Recipe{
		ID: "soup", VendorID: vendorID.ID, Name: "Minestrone", Category: catalog.CategorySoups,
	}))

	w := a.do(t, &buyerID, http.MethodGet, "/api/recipes", "")
	var page catalog.RecipePage
	mustNil(t, json.Unmarshal(w.Body.Bytes(), &page))
	if w.Code != http.StatusOK || len(page.Items) != 2 {
		t.Fatalf("all: status=%d len=%d", w.Code, len(page.Items))
	}

	w = a.do(t, &buyerID, http.MethodGet, "/api/recipes?q=sush", "")
	mustNil(t, json.Unmarshal(w.Body.Bytes(), &page))
	if len(page.Items) != 1 || page.Items[0].ID != "sushi" || page.Q != "sush" {
		t.Fatalf("search: %+v", page)
	}

	w = a.do(t, &vendorID, http.MethodGet, "/api/recipes/my-recipes", "")
	var mine []catalog.Recipe
	mustNil(t, json.Unmarshal(w.Body.Bytes(), &mine))
	if w.Code != http.StatusOK || len(mine) != 2 {
		t.Fatalf("mine: status=%d len=%d", w.Code, len(mine))
	}
	for _, rc := range mine {
		if rc.VendorID != vendorID.ID {
			t.Fatalf("receta ajena en my-recipes: %+v", rc)
		}
	}

	w = a.do(t, &loneID, http.MethodGet, "/api/recipes/my-recipes", "")
	if w.Code != http.StatusOK || w.Body.String() != "[]" {
		t.Fatalf("sin recetas: status=%d body=%s", w.Code, w.Body.String())
	}
	if w := a.do(t, &buyerID, http.MethodGet, "/api/recipes/my-recipes", ""); w.Code != http.StatusForbidden {
		t.Fatalf("buyer: status=%d", w.Code)
	}
}

func TestCreateRecipe_PriceBounds(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)

	for _, price := range []string{"1.005", "10000000000"} {
		w := a.do(t, &vendorID, http.MethodPost, "/api/recipes", `{"name":"X","price":"`+price+`","category":"Desserts"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d body=%s", price, w.Code, w.Body.String())
		}
	}
	w := a.do(t, &vendorID, http.MethodPost, "/api/recipes", `{"name":"X","price":"1.50","category":"Desserts"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("1.50: status=%d body=%s", w.Code, w.Body.String())
	}
}
