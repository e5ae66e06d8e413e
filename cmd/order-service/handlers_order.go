package main

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/yummigo-orders/internal/order"
)

// placeOrderHandler godoc
// @Summary      Place an order
// @Description  Prices every line from the catalog and stores the order as pending.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      order.PlaceOrderRequest  true  "order"
// @Success      201   {object}  order.PlaceOrderResponse
// @Failure      400   {object}  catalog.HTTPError
// @Failure      401   {object}  catalog.HTTPError
// @Failure      403   {object}  catalog.HTTPError
// @Router       /orders [post]
func placeOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.PlaceOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid json")
			return
		}
		res, err := svc.PlaceOrder(c.Request.Context(), caller(c), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// listMyOrdersHandler godoc
// @Summary   Caller's orders, newest first
// @Tags      orders
// @Produce   json
// @Security  BearerAuth
// @Param     limit   query  int  false  "max 200"  default(50)
// @Param     offset  query  int  false  "offset"   default(0)
// @Success   200  {array}   order.Order
// @Failure   403  {object}  catalog.HTTPError
// @Router    /orders/mine [get]
func listMyOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ListMine(c.Request.Context(), caller(c), page(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, nonNil(out))
	}
}

// listVendorOrdersHandler godoc
// @Summary   Orders of every restaurant the vendor owns
// @Tags      orders
// @Produce   json
// @Security  BearerAuth
// @Param     limit   query  int  false  "max 200"  default(50)
// @Param     offset  query  int  false  "offset"   default(0)
// @Success   200  {array}   order.Order
// @Failure   404  {object}  catalog.HTTPError  "vendor has no restaurant"
// @Router    /orders/vendor [get]
func listVendorOrdersHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := svc.ListVendor(c.Request.Context(), caller(c), page(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, nonNil(out))
	}
}

// getOrderHandler godoc
// @Summary   Get an order
// @Tags      orders
// @Produce   json
// @Security  BearerAuth
// @Param     id   path      string  true  "order id"
// @Success   200  {object}  order.Order
// @Failure   403  {object}  catalog.HTTPError
// @Failure   404  {object}  catalog.HTTPError
// @Router    /orders/{id} [get]
func getOrderHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), caller(c), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// updateStatusHandler godoc
// @Summary      Change an order's status
// @Description  Repeating the current status is a no-op; moving backwards or out of a final state is a conflict.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                     true  "order id"
// @Param        body  body      order.UpdateStatusRequest  true  "new status"
// @Success      200   {object}  order.Order
// @Failure      400   {object}  catalog.HTTPError
// @Failure      403   {object}  catalog.HTTPError
// @Failure      404   {object}  catalog.HTTPError
// @Failure      409   {object}  catalog.HTTPError
// @Router       /orders/{id}/status [put]
// @Router       /orders/{id}/status [patch]
func updateStatusHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid json")
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), caller(c), c.Param("id"), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

// statsHandler godoc
// @Summary   Vendor dashboard figures
// @Tags      orders
// @Produce   json
// @Security  BearerAuth
// @Param     vendorId  query     string  false  "admins only; defaults to the caller"
// @Success   200       {object}  order.Stats
// @Router    /orders/stats [get]
func statsHandler(svc *order.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st, err := svc.Stats(c.Request.Context(), caller(c), c.Query("vendorId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

func page(c *gin.Context) order.Page {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return order.NewPage(limit, offset)
}

func nonNil(out []order.Order) []order.Order {
	if out == nil {
		return []order.Order{}
	}
	return out
}
