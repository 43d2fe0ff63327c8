package handler

import (
	"net/http"

	md "github.com/labgiga/lending-service/pkg/middleware"

	"github.com/labgiga/lending-service/internal/errs"
	"github.com/labgiga/lending-service/pkg/auth"
	"github.com/labgiga/lending-service/pkg/validate"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type Handler struct {
	authSvc      AuthService
	itemSvc      ItemService
	borrowingSvc BorrowingService
	commentSvc   CommentService
	log          *zap.Logger
}

func New(authSvc AuthService, itemSvc ItemService, borrowingSvc BorrowingService, commentSvc CommentService, log *zap.Logger) *Handler {
	return &Handler{
		authSvc:      authSvc,
		itemSvc:      itemSvc,
		borrowingSvc: borrowingSvc,
		commentSvc:   commentSvc,
		log:          log,
	}
}

func (h *Handler) NewRouter(signingKey []byte) *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig()),
		middleware.RequestID(),
		md.NewRateLimiter(apiRPS),
	)

	api.POST("/auth/register", h.Register)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/refresh", h.Refresh)
	api.POST("/auth/logout", h.Logout)

	authed := api.Group("", md.JwtAuthentication(signingKey))
	admin := authed.Group("", md.AdminOnly)

	authed.GET("/auth/profile", h.Profile)
	authed.PATCH("/users/profile", h.UpdateProfile)

	api.GET("/items", h.GetItems)
	api.GET("/items/categories", h.GetCategories)
	api.GET("/items/:itemId", h.GetItem)
	admin.POST("/items", h.CreateItem)
	admin.PATCH("/items/:itemId", h.UpdateItem)
	admin.DELETE("/items/:itemId", h.DeleteItem)

	authed.POST("/borrowings", h.CreateBorrowing)
	authed.GET("/borrowings/my", h.MyBorrowings)
	admin.GET("/borrowings", h.GetBorrowings)
	admin.GET("/borrowings/stats", h.GetStats)
	authed.GET("/borrowings/:borrowingId", h.GetBorrowing)
	admin.PATCH("/borrowings/:borrowingId/status", h.UpdateBorrowingStatus)

	authed.POST("/borrowings/:borrowingId/extend", h.RequestExtension)
	admin.GET("/extensions", h.GetExtensions)
	admin.PATCH("/extensions/:extensionId/status", h.UpdateExtensionStatus)

	api.GET("/items/:itemId/comments", h.GetComments)
	authed.POST("/items/:itemId/comments", h.CreateComment)
	authed.PATCH("/comments/:commentId", h.UpdateComment)
	authed.DELETE("/comments/:commentId", h.DeleteComment)

	authed.GET("/notifications/my", h.MyNotifications)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) identity(c echo.Context) (auth.Identity, error) {
	id, err := auth.FromContext(c.Request().Context())
	if err != nil {
		return auth.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	return id, nil
}

// toHTTPError maps domain sentinels onto status codes; everything in the
// taxonomy surfaces as a distinct user-displayable message.
func toHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, errs.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrInvalidState),
		errors.Is(err, errs.ErrInvalidRange):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrInsufficientStock),
		errors.Is(err, errs.ErrDuplicatePending),
		errors.Is(err, errs.ErrConflict),
		errors.Is(err, errs.ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
