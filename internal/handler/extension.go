package handler

import (
	"net/http"

	"github.com/labgiga/lending-service/internal/model"
	"github.com/labstack/echo/v4"
)

func (h *Handler) RequestExtension(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return err
	}
	borrowingID := c.Param("borrowingId")
	if borrowingID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty borrowingId")
	}
	var req model.ExtendRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ext, err := h.borrowingSvc.RequestExtension(c.Request().Context(), id, borrowingID, req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, ext)
}

func (h *Handler) GetExtensions(c echo.Context) error {
	status := model.Status(c.QueryParam("status"))
	exts, err := h.borrowingSvc.ListExtensions(c.Request().Context(), status)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, exts)
}

func (h *Handler) UpdateExtensionStatus(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return err
	}
	extensionID := c.Param("extensionId")
	if extensionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty extensionId")
	}
	var req model.ResolveExtensionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ext, err := h.borrowingSvc.ResolveExtension(c.Request().Context(), id, extensionID, req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, ext)
}
