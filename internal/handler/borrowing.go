package handler

import (
	"net/http"

	"github.com/labgiga/lending-service/internal/model"
	"github.com/labstack/echo/v4"
)

func (h *Handler) CreateBorrowing(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return err
	}
	var req model.CreateBorrowingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.borrowingSvc.Create(c.Request().Context(), id, req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) MyBorrowings(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return err
	}
	borrowings, err := h.borrowingSvc.My(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, borrowings)
}

func (h *Handler) GetBorrowings(c echo.Context) error {
	status := model.Status(c.QueryParam("status"))
	if status != "" && !status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}
	borrowings, err := h.borrowingSvc.List(c.Request().Context(), status)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, borrowings)
}

func (h *Handler) GetBorrowing(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return err
	}
	borrowingID := c.Param("borrowingId")
	if borrowingID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty borrowingId")
	}
	b, err := h.borrowingSvc.Get(c.Request().Context(), id, borrowingID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) UpdateBorrowingStatus(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return err
	}
	borrowingID := c.Param("borrowingId")
	if borrowingID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty borrowingId")
	}
	var req model.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	b, err := h.borrowingSvc.Transition(c.Request().Context(), id, borrowingID, req)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) GetStats(c echo.Context) error {
	stats, err := h.borrowingSvc.Stats(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) MyNotifications(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return err
	}
	notifications, err := h.borrowingSvc.Notifications(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, notifications)
}
