package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/yummigo-orders/internal/catalog"
	"github.com/MikeMC777/yummigo-orders/internal/httpx"
	"github.com/MikeMC777/yummigo-orders/internal/order"
)

var kindStatus = map[order.Kind]int{
	order.KindValidation: http.StatusBadRequest,
	order.KindNotFound:   http.StatusNotFound,
	order.KindForbidden:  http.StatusForbidden,
	order.KindConflict:   http.StatusConflict,
	order.KindStorage:    http.StatusInternalServerError,
}

// writeError maps domain errors to status codes. Storage errors never leak
// their cause to the client.
func writeError(c *gin.Context, err error) {
	var ve *catalog.ValidationError
	switch {
	case errors.As(err, &ve):
		httpx.JSONError(c, http.StatusBadRequest, string(order.KindValidation), ve.Error())
		return
	case errors.Is(err, catalog.ErrNotFound):
		httpx.JSONError(c, http.StatusNotFound, string(order.KindNotFound), err.Error())
		return
	}

	kind := order.KindOf(err)
	msg := err.Error()
	if kind == order.KindStorage {
		_ = c.Error(err)
		msg = order.ErrStorage.Message
	}
	httpx.JSONError(c, kindStatus[kind], string(kind), msg)
}

func badRequest(c *gin.Context, msg string) {
	httpx.JSONError(c, http.StatusBadRequest, string(order.KindValidation), msg)
}
