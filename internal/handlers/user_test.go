package handlers_test

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/3Eeeecho/memoryshare/internal/handlers"
	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
)

var _ = Describe("UserHandler", func() {
	var (
		router *gin.Engine
		svc    *mockUserService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		svc = &mockUserService{}
		h := handlers.NewUserHandler(svc)
		router = gin.New()
		router.GET("/user/:uid/exists", h.UserExists)
		router.POST("/user", asUser("u-1"), h.SaveUser)
	})

	It("reports whether a user exists", func() {
		svc.existsFn = func(_ context.Context, uid string) (bool, error) {
			return uid == "u-1", nil
		}
		w := doJSON(router, http.MethodGet, "/user/u-1/exists", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(dataOf(w)).To(HaveKeyWithValue("exists", true))
	})

	It("returns 500 when the lookup fails", func() {
		svc.existsFn = func(context.Context, string) (bool, error) {
			return false, errors.New("boom")
		}
		w := doJSON(router, http.MethodGet, "/user/u-1/exists", nil)
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})

	It("saves the user", func() {
		svc.saveFn = func(_ context.Context, authUID string, req *models.UpsertUserRequest) (*models.User, error) {
			Expect(authUID).To(Equal("u-1"))
			email := req.Email
			return &models.User{UID: req.UID, Email: &email, DisplayName: req.DisplayName}, nil
		}
		w := doJSON(router, http.MethodPost, "/user", map[string]any{
			"uid": "u-1", "email": "ama@example.com", "displayName": "Ama",
		})
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(dataOf(w)).To(HaveKeyWithValue("email", "ama@example.com"))
	})

	It("rejects an invalid email", func() {
		w := doJSON(router, http.MethodPost, "/user", map[string]any{"uid": "u-1", "email": "nope"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns 409 when the email belongs to someone else", func() {
		svc.saveFn = func(context.Context, string, *models.UpsertUserRequest) (*models.User, error) {
			return nil, xerr.ErrEmailAlreadyExists
		}
		w := doJSON(router, http.MethodPost, "/user", map[string]any{"uid": "u-1", "email": "ama@example.com"})
		Expect(w.Code).To(Equal(http.StatusConflict))
		Expect(decode(w).Code).To(Equal(xerr.EmailAlreadyExistsCode))
	})

	It("returns 403 when the uid does not match the token", func() {
		svc.saveFn = func(context.Context, string, *models.UpsertUserRequest) (*models.User, error) {
			return nil, xerr.ErrPermissionDenied
		}
		w := doJSON(router, http.MethodPost, "/user", map[string]any{"uid": "u-2", "email": "ama@example.com"})
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})
})
