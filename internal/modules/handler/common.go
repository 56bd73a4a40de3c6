package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nystar1/midnight/internal/modules/serializer"
	"github.com/nystar1/midnight/internal/modules/service"
)

// respondServiceErr maps the service error taxonomy onto HTTP statuses.
func respondServiceErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, serializer.NotFoundErr("", err))
	case errors.Is(err, service.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, serializer.ConflictErr("", err))
	default:
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
	}
}

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("invalid "+name, err))
		return 0, false
	}
	return id, true
}
