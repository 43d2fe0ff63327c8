package handler

import (
	"net/http"

	"github.com/labgiga/lending-service/internal/model"
	"github.com/labstack/echo/v4"
)

func (h *Handler) GetComments(c echo.Context) error {
	itemID := c.Param("itemId")
	if itemID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty itemId")
	}
	comments, err := h.commentSvc.ListByItem(c.Request().Context(), itemID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, comments)
}

func (h *Handler) CreateComment(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return err
	}
	itemID := c.Param("itemId")
	if itemID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty itemId")
	}
	var req model.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	comment, err := h.commentSvc.Create(c.Request().Context(), id, itemID, req.Content)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, comment)
}

func (h *Handler) UpdateComment(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return err
	}
	commentID := c.Param("commentId")
	if commentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty commentId")
	}
	var req model.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	comment, err := h.commentSvc.Update(c.Request().Context(), id, commentID, req.Content)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, comment)
}

func (h *Handler) DeleteComment(c echo.Context) error {
	id, err := h.identity(c)
	if err != nil {
		return err
	}
	commentID := c.Param("commentId")
	if commentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "empty commentId")
	}
	if err := h.commentSvc.Delete(c.Request().Context(), id, commentID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
