package handlers_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/3Eeeecho/memoryshare/internal/handlers"
	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
	"github.com/3Eeeecho/memoryshare/internal/services/gallery"
)

var _ = Describe("Space handlers", func() {
	var (
		router *gin.Engine
		svc    *mockSpaceService
		uid    string
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		svc = &mockSpaceService{}
		uid = "owner"
		router = gin.New()
		router.Use(func(c *gin.Context) { asUser(uid)(c) })
		router.POST("/spaces", handlers.CreateSpace(svc))
		router.GET("/spaces/user/:userId/spaceId", handlers.GetSpaceIDByUser(svc))
		router.GET("/spaces/slug/:urlSlug", handlers.GetSpaceBySlug(svc))
		router.GET("/spaces/id/:spaceId", handlers.GetSpaceByID(svc))
		router.GET("/spaces/check-slug/:urlSlug", handlers.CheckSlug(svc))
		router.PATCH("/spaces/:spaceId/mode", handlers.UpdateSpaceMode(svc))
		router.GET("/spaces/:spaceId/usage", handlers.GetSpaceUsage(svc))
	})

	validBody := func() map[string]any {
		return map[string]any{
			"urlSlug":   "ama-kofi",
			"userId":    "someone-else",
			"firstName": "Ama",
			"lastName":  "Mensah",
			"eventDate": time.Date(2025, 6, 14, 0, 0, 0, 0, time.UTC),
		}
	}

	Describe("CreateSpace", func() {
		It("creates the space for the token subject", func() {
			var got *models.CreateSpaceRequest
			svc.createFn = func(_ context.Context, req *models.CreateSpaceRequest) (*models.Space, error) {
				got = req
				return &models.Space{ID: "s1", URLSlug: req.URLSlug, UserID: req.UserID, IsPublic: true, Plan: "basic"}, nil
			}

			w := doJSON(router, http.MethodPost, "/spaces", validBody())

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(got.UserID).To(Equal("owner"))
			Expect(dataOf(w)["urlSlug"]).To(Equal("ama-kofi"))
		})

		It("returns 401 without a user", func() {
			uid = ""
			w := doJSON(router, http.MethodPost, "/spaces", validBody())
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("returns 400 on a malformed body", func() {
			w := doJSON(router, http.MethodPost, "/spaces", `{"firstName":`)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 409 with a suggested slug when the slug is taken", func() {
			svc.createFn = func(context.Context, *models.CreateSpaceRequest) (*models.Space, error) {
				return nil, fmt.Errorf("space service: %w", &gallery.SlugTakenError{Slug: "ama-kofi", SuggestedSlug: "ama-kofi1"})
			}

			w := doJSON(router, http.MethodPost, "/spaces", validBody())

			Expect(w.Code).To(Equal(http.StatusConflict))
			resp := decode(w)
			Expect(resp.Code).To(Equal(xerr.SlugTakenCode))
			Expect(resp.Data).To(HaveKeyWithValue("suggestedSlug", "ama-kofi1"))
		})

		It("hides database errors behind a generic message", func() {
			svc.createFn = func(context.Context, *models.CreateSpaceRequest) (*models.Space, error) {
				return nil, fmt.Errorf("space service: %w: %w", xerr.ErrDatabaseError, errors.New("connection refused"))
			}

			w := doJSON(router, http.MethodPost, "/spaces", validBody())

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(decode(w).Message).To(Equal("Failed to create space"))
		})
	})

	Describe("lookups", func() {
		It("returns the space id of a user", func() {
			svc.byUserFn = func(_ context.Context, userID string) (*models.Space, error) {
				Expect(userID).To(Equal("u-1"))
				return &models.Space{ID: "s9"}, nil
			}
			w := doJSON(router, http.MethodGet, "/spaces/user/u-1/spaceId", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(dataOf(w)).To(HaveKeyWithValue("spaceId", "s9"))
		})

		It("maps a missing space to 404", func() {
			svc.bySlugFn = func(context.Context, string) (*models.Space, error) {
				return nil, xerr.ErrSpaceNotFound
			}
			w := doJSON(router, http.MethodGet, "/spaces/slug/nope", nil)
			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(decode(w).Code).To(Equal(xerr.SpaceNotFoundCode))
		})

		It("finds a space by id", func() {
			svc.byIDFn = func(_ context.Context, id string) (*models.Space, error) {
				return &models.Space{ID: id, URLSlug: "party"}, nil
			}
			w := doJSON(router, http.MethodGet, "/spaces/id/s2", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(dataOf(w)).To(HaveKeyWithValue("urlSlug", "party"))
		})
	})

	Describe("CheckSlug", func() {
		It("reports availability", func() {
			svc.checkSlugFn = func(_ context.Context, s string) (*models.SlugCheckResult, error) {
				return &models.SlugCheckResult{Available: false, Message: "URL is already taken", SuggestedSlug: s + "1"}, nil
			}
			w := doJSON(router, http.MethodGet, "/spaces/check-slug/party", nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			data := dataOf(w)
			Expect(data).To(HaveKeyWithValue("available", false))
			Expect(data).To(HaveKeyWithValue("suggestedSlug", "party1"))
		})

		It("rejects an invalid slug", func() {
			svc.checkSlugFn = func(context.Context, string) (*models.SlugCheckResult, error) {
				return nil, xerr.ErrInvalidSlug
			}
			w := doJSON(router, http.MethodGet, "/spaces/check-slug/bad_slug", nil)
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("UpdateSpaceMode", func() {
		It("requires isPublic", func() {
			w := doJSON(router, http.MethodPatch, "/spaces/s1/mode", map[string]any{})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("passes the flag and owner through", func() {
			svc.visibilityFn = func(_ context.Context, userID, spaceID string, isPublic bool) (*models.Space, error) {
				Expect(userID).To(Equal("owner"))
				return &models.Space{ID: spaceID, IsPublic: isPublic}, nil
			}
			w := doJSON(router, http.MethodPatch, "/spaces/s1/mode", map[string]any{"isPublic": false})
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(dataOf(w)).To(HaveKeyWithValue("isPublic", false))
		})

		It("returns 403 for a non-owner", func() {
			svc.visibilityFn = func(context.Context, string, string, bool) (*models.Space, error) {
				return nil, xerr.ErrPermissionDenied
			}
			w := doJSON(router, http.MethodPatch, "/spaces/s1/mode", map[string]any{"isPublic": true})
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})

	It("returns usage", func() {
		svc.usageFn = func(context.Context, string) (*models.SpaceUsage, error) {
			return &models.SpaceUsage{Plan: "basic", Count: 3, Bytes: 1024, MaxCount: 10, MaxBytes: 50 << 20}, nil
		}
		w := doJSON(router, http.MethodGet, "/spaces/s1/usage", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(dataOf(w)).To(HaveKeyWithValue("maxCount", BeNumerically("==", 10)))
	})
})
