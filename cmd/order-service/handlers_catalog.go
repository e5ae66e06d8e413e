package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MikeMC777/yummigo-orders/internal/access"
	"github.com/MikeMC777/yummigo-orders/internal/catalog"
	"github.com/MikeMC777/yummigo-orders/internal/httpx"
)

// listRestaurantsHandler godoc
// @Summary      List restaurants
// @Description  Supports search by name/cuisine and pagination.
// @Tags         restaurants
// @Produce      json
// @Security     BearerAuth
// @Param        q       query     string  false  "search text"
// @Param        limit   query     int     false  "max 100"  default(20)
// @Param        offset  query     int     false  "offset"   default(0)
// @Success      200     {object}  catalog.ListResponse
// @Router       /restaurants [get]
func listRestaurantsHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, limit, offset := pageQuery(c)

		items, err := repo.ListRestaurants(c.Request.Context(), q)
		if err != nil {
			writeError(c, err)
			return
		}
		if items == nil {
			items = []catalog.Restaurant{}
		}
		c.JSON(http.StatusOK, catalog.ListResponse{Q: q.Q, Limit: limit, Offset: offset, Items: items})
	}
}

func pageQuery(c *gin.Context) (catalog.Query, int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return catalog.Query{Q: c.Query("q"), Limit: limit, Offset: offset}, limit, offset
}

// getRestaurantHandler godoc
// @Summary   Get a restaurant
// @Tags      restaurants
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "restaurant id"
// @Success   200  {object}  catalog.Restaurant
// @Failure   404  {object}  catalog.HTTPError
// @Router    /restaurants/{id} [get]
func getRestaurantHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		rs, err := repo.GetRestaurant(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rs)
	}
}

// createRestaurantHandler godoc
// @Summary   Create a restaurant owned by the caller
// @Tags      restaurants
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body  body      catalog.CreateRestaurantRequest  true  "restaurant"
// @Success   201   {object}  catalog.Restaurant
// @Failure   400   {object}  catalog.HTTPError
// @Router    /restaurants [post]
func createRestaurantHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateRestaurantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid json")
			return
		}
		if err := req.Validate(); err != nil {
			writeError(c, err)
			return
		}
		rs := &catalog.Restaurant{
			ID:       uuid.NewString(),
			VendorID: caller(c).ID,
			Name:     req.Name,
			Location: req.Location,
			Timings:  req.Timings,
			Cuisine:  req.Cuisine,
			Image:    req.Image,
			Rating:   catalog.DefaultRating,
		}
		if req.Rating != nil {
			rs.Rating = *req.Rating
		}
		if err := repo.CreateRestaurant(c.Request.Context(), rs); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, rs)
	}
}

// ownedRestaurant loads the restaurant and checks the caller may manage it.
// It writes the error response and returns nil otherwise.
func ownedRestaurant(c *gin.Context, repo catalog.Repository) *catalog.Restaurant {
	rs, err := repo.GetRestaurant(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil
	}
	if !access.CanManage(caller(c), rs.VendorID) {
		httpx.JSONError(c, http.StatusForbidden, "forbidden", "restaurant belongs to another vendor")
		return nil
	}
	return rs
}

// updateRestaurantHandler godoc
// @Summary   Update a restaurant
// @Tags      restaurants
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      string                           true  "restaurant id"
// @Param     body  body      catalog.UpdateRestaurantRequest  true  "fields to change"
// @Success   200   {object}  catalog.Restaurant
// @Failure   400   {object}  catalog.HTTPError
// @Failure   403   {object}  catalog.HTTPError
// @Failure   404   {object}  catalog.HTTPError
// @Router    /restaurants/{id} [put]
func updateRestaurantHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.UpdateRestaurantRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid json")
			return
		}
		rs := ownedRestaurant(c, repo)
		if rs == nil {
			return
		}
		if err := req.Apply(rs); err != nil {
			writeError(c, err)
			return
		}
		if err := repo.UpdateRestaurant(c.Request.Context(), rs); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rs)
	}
}

// deleteRestaurantHandler godoc
// @Summary      Delete a restaurant
// @Description  Recipes attached to the restaurant are deleted with it. Placed orders keep their captured copy.
// @Tags         restaurants
// @Security     BearerAuth
// @Param        id  path  string  true  "restaurant id"
// @Success      204
// @Failure      403  {object}  catalog.HTTPError
// @Failure      404  {object}  catalog.HTTPError
// @Router       /restaurants/{id} [delete]
func deleteRestaurantHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		rs := ownedRestaurant(c, repo)
		if rs == nil {
			return
		}
		ok, err := repo.DeleteRestaurant(c.Request.Context(), rs.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		if !ok {
			writeError(c, catalog.ErrNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// listRecipesHandler godoc
// @Summary   Recipes served by a restaurant
// @Tags      restaurants
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "restaurant id"
// @Success   200  {array}   catalog.Recipe
// @Failure   404  {object}  catalog.HTTPError
// @Router    /restaurants/{id}/recipes [get]
func listRecipesHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, err := repo.GetRestaurant(ctx, c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		out, err := repo.ListRecipesByRestaurant(ctx, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		if out == nil {
			out = []catalog.Recipe{}
		}
		c.JSON(http.StatusOK, out)
	}
}

// allRecipesHandler godoc
// @Summary      List available recipes
// @Description  Supports search by name/category and pagination.
// @Tags         recipes
// @Produce      json
// @Security     BearerAuth
// @Param        q       query     string  false  "search text"
// @Param        limit   query     int     false  "max 100"  default(20)
// @Param        offset  query     int     false  "offset"   default(0)
// @Success      200     {object}  catalog.RecipePage
// @Router       /recipes [get]
func allRecipesHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, limit, offset := pageQuery(c)
		items, err := repo.ListRecipes(c.Request.Context(), q)
		if err != nil {
			writeError(c, err)
			return
		}
		if items == nil {
			items = []catalog.Recipe{}
		}
		c.JSON(http.StatusOK, catalog.RecipePage{Q: q.Q, Limit: limit, Offset: offset, Items: items})
	}
}

// myRecipesHandler godoc
// @Summary      Recipes owned by the caller
// @Description  Includes unavailable recipes.
// @Tags         recipes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   catalog.Recipe
// @Failure      403  {object}  catalog.HTTPError
// @Router       /recipes/my-recipes [get]
func myRecipesHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := repo.ListRecipesByVendor(c.Request.Context(), caller(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		if out == nil {
			out = []catalog.Recipe{}
		}
		c.JSON(http.StatusOK, out)
	}
}

// createRecipeHandler godoc
// @Summary      Create a recipe
// @Description  restaurantId is optional; without it the recipe is shared by every restaurant of the vendor.
// @Tags         recipes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      catalog.CreateRecipeRequest  true  "recipe"
// @Success      201   {object}  catalog.Recipe
// @Failure      400   {object}  catalog.HTTPError
// @Failure      403   {object}  catalog.HTTPError
// @Router       /recipes [post]
func createRecipeHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.CreateRecipeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid json")
			return
		}
		id := caller(c)
		rc, err := req.Recipe(id.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		if rc.RestaurantID != "" {
			rs, err := repo.GetRestaurant(c.Request.Context(), rc.RestaurantID)
			if err != nil {
				writeError(c, err)
				return
			}
			if !access.CanManage(id, rs.VendorID) {
				httpx.JSONError(c, http.StatusForbidden, "forbidden", "restaurant belongs to another vendor")
				return
			}
			rc.VendorID = rs.VendorID
		}
		rc.ID = uuid.NewString()
		if err := repo.CreateRecipe(c.Request.Context(), rc); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, rc)
	}
}

// ownedRecipe loads the recipe and checks the caller may manage it. It writes
// the error response and returns nil otherwise.
func ownedRecipe(c *gin.Context, repo catalog.Repository) *catalog.Recipe {
	rc, err := repo.GetRecipe(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil
	}
	if !access.CanManage(caller(c), rc.VendorID) {
		httpx.JSONError(c, http.StatusForbidden, "forbidden", "recipe belongs to another vendor")
		return nil
	}
	return rc
}

// updateRecipeHandler godoc
// @Summary   Update a recipe
// @Tags      recipes
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id    path      string                       true  "recipe id"
// @Param     body  body      catalog.UpdateRecipeRequest  true  "fields to change"
// @Success   200   {object}  catalog.Recipe
// @Failure   400   {object}  catalog.HTTPError
// @Failure   403   {object}  catalog.HTTPError
// @Failure   404   {object}  catalog.HTTPError
// @Router    /recipes/{id} [put]
func updateRecipeHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.UpdateRecipeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid json")
			return
		}
		rc := ownedRecipe(c, repo)
		if rc == nil {
			return
		}
		if err := req.Apply(rc); err != nil {
			writeError(c, err)
			return
		}
		if err := repo.UpdateRecipe(c.Request.Context(), rc); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rc)
	}
}

// toggleAvailabilityHandler godoc
// @Summary   Flip a recipe's availability
// @Tags      recipes
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "recipe id"
// @Success   200  {object}  catalog.Recipe
// @Failure   403  {object}  catalog.HTTPError
// @Failure   404  {object}  catalog.HTTPError
// @Router    /recipes/{id}/availability [patch]
func toggleAvailabilityHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := ownedRecipe(c, repo)
		if rc == nil {
			return
		}
		rc.Available = !rc.Available
		if err := repo.UpdateRecipe(c.Request.Context(), rc); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, rc)
	}
}

// deleteRecipeHandler godoc
// @Summary      Delete a recipe
// @Description  Placed orders keep their captured copy of the recipe.
// @Tags         recipes
// @Security     BearerAuth
// @Param        id  path  string  true  "recipe id"
// @Success      204
// @Failure      403  {object}  catalog.HTTPError
// @Failure      404  {object}  catalog.HTTPError
// @Router       /recipes/{id} [delete]
func deleteRecipeHandler(repo catalog.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc := ownedRecipe(c, repo)
		if rc == nil {
			return
		}
		ok, err := repo.DeleteRecipe(c.Request.Context(), rc.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		if !ok {
			writeError(c, catalog.ErrNotFound)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
