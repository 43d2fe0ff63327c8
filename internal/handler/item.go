package handler

import (
	"net/http"
	"strconv"

	"github.com/labgiga/lending-service/internal/model"
	"github.com/labstack/echo/v4"
)

func (h *Handler) GetItems(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	list, err := h.itemSvc.List(c.Request().Context(),
		c.QueryParam("search"), c.QueryParam("category"), page, size)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) GetCategories(c echo.Context) error {
	categories, err := h.itemSvc.Categories(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *Handler) GetItem(c echo.Context) error {
	itemID := c.Param("itemId")
	if itemID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty itemId")
	}
	item, err := h.itemSvc.Get(c.Request().Context(), itemID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) CreateItem(c echo.Context) error {
	var req model.CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.itemSvc.Create(c.Request().Context(), req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateItem(c echo.Context) error {
	itemID := c.Param("itemId")
	if itemID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty itemId")
	}
	var req model.UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	item, err := h.itemSvc.Update(c.Request().Context(), itemID, req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteItem(c echo.Context) error {
	itemID := c.Param("itemId")
	if itemID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty itemId")
	}
	if err := h.itemSvc.Delete(c.Request().Context(), itemID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
