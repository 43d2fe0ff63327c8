package handler_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labgiga/lending-service/internal/errs"
	"github.com/labgiga/lending-service/internal/handler"
	"github.com/labgiga/lending-service/internal/model"
	"github.com/labgiga/lending-service/pkg/auth"
	"github.com/labgiga/lending-service/pkg/validate"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	service_mocks "github.com/labgiga/lending-service/internal/handler/mocks"
)

func withIdentity(id auth.Identity) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := auth.SetAuthContext(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func newTestHandler(t *testing.T) (*handler.Handler, *service_mocks.MockBorrowingService, *service_mocks.MockItemService) {
	t.Helper()
	c := gomock.NewController(t)
	t.Cleanup(c.Finish)
	authSvc := service_mocks.NewMockAuthService(c)
	itemSvc := service_mocks.NewMockItemService(c)
	borrowingSvc := service_mocks.NewMockBorrowingService(c)
	commentSvc := service_mocks.NewMockCommentService(c)
	log := zap.NewExample().Named("test")
	return handler.New(authSvc, itemSvc, borrowingSvc, commentSvc, log), borrowingSvc, itemSvc
}

func TestHandler_UpdateBorrowingStatus(t *testing.T) {
	t.Parallel()
	type input struct {
		borrowingID string
		actor       auth.Identity
		body        string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBorrowingService, inp input)

	admin := auth.Identity{UserID: "a1", Role: "ADMIN"}
	user := auth.Identity{UserID: "u1", Role: "USER"}

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockBorrowingService, inp input) {
				r.EXPECT().
					Transition(gomock.Any(), inp.actor, inp.borrowingID, model.UpdateStatusRequest{Status: model.StatusBorrowed}).
					Return(model.Borrowing{
						ID:         "b1",
						UserID:     "u1",
						Status:     model.StatusBorrowed,
						BorrowDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
						ReturnDate: time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC),
						Reason:     "praktikum",
						CreatedAt:  time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
						UpdatedAt:  time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
						Items: []model.BorrowingLine{
							{ID: "l1", ItemID: "i1", Quantity: 2},
						},
					}, nil)
			},
			input: input{
				borrowingID: "b1",
				actor:       admin,
				body:        `{"status":"BORROWED"}`,
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":"b1","userId":"u1","status":"BORROWED","borrowDate":"2026-05-01T00:00:00Z","returnDate":"2026-05-08T00:00:00Z","reason":"praktikum","createdAt":"2026-04-30T00:00:00Z","updatedAt":"2026-05-01T00:00:00Z","items":[{"id":"l1","itemId":"i1","quantity":2}]}`,
			},
		},
		{
			name: "err. invalid transition",
			mockBehavior: func(r *service_mocks.MockBorrowingService, inp input) {
				r.EXPECT().
					Transition(gomock.Any(), inp.actor, inp.borrowingID, model.UpdateStatusRequest{Status: model.StatusReturned}).
					Return(model.Borrowing{}, errs.ErrInvalidTransition)
			},
			input: input{
				borrowingID: "b1",
				actor:       admin,
				body:        `{"status":"RETURNED"}`,
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"invalid status transition"}`,
			},
		},
		{
			name: "err. concurrent update",
			mockBehavior: func(r *service_mocks.MockBorrowingService, inp input) {
				r.EXPECT().
					Transition(gomock.Any(), inp.actor, inp.borrowingID, model.UpdateStatusRequest{Status: model.StatusApproved}).
					Return(model.Borrowing{}, errs.ErrConflict)
			},
			input: input{
				borrowingID: "b1",
				actor:       admin,
				body:        `{"status":"APPROVED"}`,
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"concurrent modification"}`,
			},
		},
		{
			name: "err. forbidden",
			mockBehavior: func(r *service_mocks.MockBorrowingService, inp input) {
				r.EXPECT().
					Transition(gomock.Any(), inp.actor, inp.borrowingID, model.UpdateStatusRequest{Status: model.StatusApproved}).
					Return(model.Borrowing{}, errs.ErrForbidden)
			},
			input: input{
				borrowingID: "b1",
				actor:       user,
				body:        `{"status":"APPROVED"}`,
			},
			response: response{
				expectedCode: http.StatusForbidden,
				expectedBody: `{"message":"forbidden"}`,
			},
		},
		{
			name:         "err. empty borrowingId",
			mockBehavior: func(r *service_mocks.MockBorrowingService, inp input) {},
			input: input{
				borrowingID: "",
				actor:       admin,
				body:        `{"status":"APPROVED"}`,
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"empty borrowingId"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, borrowingSvc, _ := newTestHandler(t)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.PATCH("/borrowings/:borrowingId/status", h.UpdateBorrowingStatus, withIdentity(tt.input.actor))

			r := httptest.NewRequest(http.MethodPatch,
				"/borrowings/"+tt.input.borrowingID+"/status", strings.NewReader(tt.input.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(borrowingSvc, tt.input)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_RequestExtension(t *testing.T) {
	t.Parallel()
	type input struct {
		borrowingID string
		actor       auth.Identity
		body        string
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockBorrowingService, inp input)

	user := auth.Identity{UserID: "u1", Role: "USER"}
	extendReq := model.ExtendRequest{
		NewReturnDate: model.Date{Time: time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC)},
		Reason:        "need more time",
	}

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockBorrowingService, inp input) {
				r.EXPECT().
					RequestExtension(gomock.Any(), inp.actor, inp.borrowingID, extendReq).
					Return(model.Extension{
						ID:            "e1",
						BorrowingID:   "b1",
						NewReturnDate: time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC),
						Reason:        "need more time",
						Status:        model.StatusPending,
						CreatedAt:     time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
					}, nil)
			},
			input: input{
				borrowingID: "b1",
				actor:       user,
				body:        `{"newReturnDate":"2026-05-12","reason":"need more time"}`,
			},
			response: response{
				expectedCode: http.StatusCreated,
				expectedBody: `{"id":"e1","borrowingId":"b1","newReturnDate":"2026-05-12T00:00:00Z","reason":"need more time","status":"PENDING","createdAt":"2026-05-02T00:00:00Z"}`,
			},
		},
		{
			name: "err. out of range",
			mockBehavior: func(r *service_mocks.MockBorrowingService, inp input) {
				r.EXPECT().
					RequestExtension(gomock.Any(), inp.actor, inp.borrowingID, extendReq).
					Return(model.Extension{}, errs.ErrInvalidRange)
			},
			input: input{
				borrowingID: "b1",
				actor:       user,
				body:        `{"newReturnDate":"2026-05-12","reason":"need more time"}`,
			},
			response: response{
				expectedCode: http.StatusBadRequest,
				expectedBody: `{"message":"invalid date range"}`,
			},
		},
		{
			name: "err. pending already exists",
			mockBehavior: func(r *service_mocks.MockBorrowingService, inp input) {
				r.EXPECT().
					RequestExtension(gomock.Any(), inp.actor, inp.borrowingID, extendReq).
					Return(model.Extension{}, errs.ErrDuplicatePending)
			},
			input: input{
				borrowingID: "b1",
				actor:       user,
				body:        `{"newReturnDate":"2026-05-12","reason":"need more time"}`,
			},
			response: response{
				expectedCode: http.StatusConflict,
				expectedBody: `{"message":"a pending extension already exists"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, borrowingSvc, _ := newTestHandler(t)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/borrowings/:borrowingId/extend", h.RequestExtension, withIdentity(tt.input.actor))

			r := httptest.NewRequest(http.MethodPost,
				"/borrowings/"+tt.input.borrowingID+"/extend", strings.NewReader(tt.input.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(borrowingSvc, tt.input)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetItems(t *testing.T) {
	t.Parallel()
	type input struct {
		search, category string
		page, size       int
	}
	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockItemService, inp input)

	var tests = []struct {
		name         string
		mockBehavior mockBehavior
		input        input
		response     response
	}{
		{
			name: "ok",
			mockBehavior: func(r *service_mocks.MockItemService, inp input) {
				r.EXPECT().
					List(gomock.Any(), inp.search, inp.category, inp.page, inp.size).
					Return(model.ListItems{
						Paging: model.Paging{
							Page:          inp.page,
							PageSize:      inp.size,
							TotalElements: 1,
						},
						Items: []model.Item{
							{
								ID:          "i1",
								Name:        "Oscilloscope",
								Description: "2-channel 100 MHz",
								Stock:       3,
								TotalStock:  4,
								IsAvailable: true,
								CreatedAt:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
								UpdatedAt:   time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
							},
						},
					}, nil)
			},
			input: input{
				search: "osc",
				page:   1,
				size:   10,
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"page":1,"pageSize":10,"totalElements":1,"items":[{"id":"i1","name":"Oscilloscope","description":"2-channel 100 MHz","stock":3,"totalStock":4,"isAvailable":true,"createdAt":"2026-04-01T00:00:00Z","updatedAt":"2026-04-01T00:00:00Z"}]}`,
			},
		},
		{
			name: "err. internal",
			mockBehavior: func(r *service_mocks.MockItemService, inp input) {
				r.EXPECT().
					List(gomock.Any(), inp.search, inp.category, inp.page, inp.size).
					Return(model.ListItems{}, errors.New("db internal"))
			},
			input: input{},
			response: response{
				expectedCode: http.StatusInternalServerError,
				expectedBody: `{"message":"db internal"}`,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h, _, itemSvc := newTestHandler(t)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.GET("/items", h.GetItems)

			r := httptest.NewRequest(http.MethodGet,
				fmt.Sprintf("/items?search=%s&category=%s&page=%d&size=%d",
					tt.input.search, tt.input.category, tt.input.page, tt.input.size), http.NoBody)
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			tt.mockBehavior(itemSvc, tt.input)
			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
		})
	}
}

func TestHandler_GetStats(t *testing.T) {
	t.Parallel()
	h, borrowingSvc, _ := newTestHandler(t)

	e := echo.New()
	e.Validator = validate.NewCustomValidator()
	e.GET("/borrowings/stats", h.GetStats)

	borrowingSvc.EXPECT().
		Stats(gomock.Any()).
		Return(model.Stats{Pending: 2, Borrowed: 5, Returned: 7, Total: 14}, nil)

	r := httptest.NewRequest(http.MethodGet, "/borrowings/stats", http.NoBody)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t,
		`{"pending":2,"approved":0,"borrowed":5,"returned":7,"rejected":0,"overdue":0,"total":14}`,
		strings.Trim(w.Body.String(), "\n"))
}
