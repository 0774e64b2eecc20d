package handlers_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/3Eeeecho/memoryshare/internal/handlers"
	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
	"github.com/3Eeeecho/memoryshare/internal/services/gallery"
)

func multipartUpload(path string, withFile bool, uploadedBy string) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if uploadedBy != "" {
		Expect(mw.WriteField("uploadedBy", uploadedBy)).To(Succeed())
	}
	if withFile {
		part, err := mw.CreateFormFile("file", "cake.jpg")
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write([]byte("jpeg-bytes"))
		Expect(err).NotTo(HaveOccurred())
	}
	Expect(mw.Close()).To(Succeed())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var _ = Describe("Media handlers", func() {
	var (
		router    *gin.Engine
		admission *mockAdmissionService
		svc       *mockMediaService
		uid       string
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		admission = &mockAdmissionService{}
		svc = &mockMediaService{}
		uid = "owner"
		router = gin.New()
		router.Use(func(c *gin.Context) { asUser(uid)(c) })
		router.POST("/spaces/:spaceId/media", handlers.UploadMedia(admission))
		router.GET("/spaces/:spaceId/media", handlers.ListMedia(svc))
		router.DELETE("/spaces/:spaceId/media/:mediaId", handlers.DeleteMedia(svc))
		router.DELETE("/spaces/:spaceId/media", handlers.DeleteMediaBatch(svc))
		router.GET("/spaces/:spaceId/media/archive", handlers.DownloadArchive(svc))
	})

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	Describe("UploadMedia", func() {
		It("admits the file and returns 201", func() {
			admission.admitFn = func(_ context.Context, req *models.UploadRequest) (*models.Media, error) {
				Expect(req.SpaceID).To(Equal("s1"))
				Expect(req.FileName).To(Equal("cake.jpg"))
				Expect(req.UploadedBy).To(Equal("Auntie"))
				body, err := io.ReadAll(req.Reader)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).To(Equal("jpeg-bytes"))
				return &models.Media{ID: "m1", SpaceID: req.SpaceID, FileName: req.FileName, FileType: models.MediaKindImage}, nil
			}

			w := serve(multipartUpload("/spaces/s1/media", true, "Auntie"))

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(dataOf(w)).To(HaveKeyWithValue("id", "m1"))
		})

		It("passes a nil reader when no file is attached", func() {
			admission.admitFn = func(_ context.Context, req *models.UploadRequest) (*models.Media, error) {
				Expect(req.Reader).To(BeNil())
				return nil, &gallery.AdmissionError{Reason: gallery.ReasonNoFile, Err: xerr.ErrNoFile}
			}

			w := serve(multipartUpload("/spaces/s1/media", false, ""))

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w).Error).To(Equal("no-file"))
		})

		DescribeTable("maps rejection reasons",
			func(reason gallery.Reason, sentinel error, status int) {
				admission.admitFn = func(context.Context, *models.UploadRequest) (*models.Media, error) {
					return nil, &gallery.AdmissionError{Reason: reason, Err: sentinel}
				}
				w := serve(multipartUpload("/spaces/s1/media", true, ""))
				Expect(w.Code).To(Equal(status))
				Expect(decode(w).Error).To(Equal(string(reason)))
			},
			Entry("unknown space", gallery.ReasonSpaceNotFound, xerr.ErrSpaceNotFound, http.StatusNotFound),
			Entry("count limit", gallery.ReasonCountExceeded, xerr.ErrCountExceeded, http.StatusForbidden),
			Entry("byte limit", gallery.ReasonStorageExceeded, xerr.ErrStorageExceeded, http.StatusForbidden),
			Entry("lock timeout", gallery.ReasonBusy, fmt.Errorf("%w: %w", xerr.ErrTooManyRequests, context.DeadlineExceeded), http.StatusTooManyRequests),
			Entry("database", gallery.ReasonPersistFailed, fmt.Errorf("%w: %w", xerr.ErrDatabaseError, io.ErrUnexpectedEOF), http.StatusInternalServerError),
		)

		It("surfaces the upstream error text when the store fails", func() {
			admission.admitFn = func(context.Context, *models.UploadRequest) (*models.Media, error) {
				return nil, &gallery.AdmissionError{
					Reason: gallery.ReasonStoreFailed,
					Err:    fmt.Errorf("%w: %w", xerr.ErrStorageError, fmt.Errorf("bucket quota exhausted")),
				}
			}

			w := serve(multipartUpload("/spaces/s1/media", true, ""))

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			resp := decode(w)
			Expect(resp.Error).To(Equal("store-failed"))
			Expect(resp.Message).To(ContainSubstring("bucket quota exhausted"))
		})

		It("returns 413 when the body exceeds the limit", func() {
			limited := gin.New()
			limited.Use(func(c *gin.Context) {
				c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 16)
				c.Next()
			})
			limited.POST("/spaces/:spaceId/media", handlers.UploadMedia(admission))

			w := httptest.NewRecorder()
			limited.ServeHTTP(w, multipartUpload("/spaces/s1/media", true, strings.Repeat("x", 64)))

			Expect(w.Code).To(Equal(http.StatusRequestEntityTooLarge))
			Expect(decode(w).Code).To(Equal(xerr.FileTooLargeCode))
		})
	})

	Describe("ListMedia", func() {
		It("lists anonymously", func() {
			uid = ""
			svc.listFn = func(_ context.Context, viewerID, spaceID string) ([]models.Media, error) {
				Expect(viewerID).To(BeEmpty())
				return []models.Media{{ID: "m2"}, {ID: "m1"}}, nil
			}
			w := serve(httptest.NewRequest(http.MethodGet, "/spaces/s1/media", nil))
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w).Data).To(HaveLen(2))
		})

		It("returns 403 for a private space", func() {
			svc.listFn = func(context.Context, string, string) ([]models.Media, error) {
				return nil, xerr.ErrSpacePrivate
			}
			w := serve(httptest.NewRequest(http.MethodGet, "/spaces/s1/media", nil))
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})

	Describe("DeleteMedia", func() {
		It("deletes as owner", func() {
			svc.deleteFn = func(_ context.Context, userID, spaceID, mediaID string) error {
				Expect([]string{userID, spaceID, mediaID}).To(Equal([]string{"owner", "s1", "m1"}))
				return nil
			}
			w := serve(httptest.NewRequest(http.MethodDelete, "/spaces/s1/media/m1", nil))
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("requires authentication", func() {
			uid = ""
			w := serve(httptest.NewRequest(http.MethodDelete, "/spaces/s1/media/m1", nil))
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})

		It("maps a missing media to 404", func() {
			svc.deleteFn = func(context.Context, string, string, string) error { return xerr.ErrMediaNotFound }
			w := serve(httptest.NewRequest(http.MethodDelete, "/spaces/s1/media/m1", nil))
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("DeleteMediaBatch", func() {
		It("returns deleted and missing ids", func() {
			svc.deleteBatchFn = func(_ context.Context, _, _ string, ids []string) (*models.DeleteMediaBatchResult, error) {
				return &models.DeleteMediaBatchResult{Deleted: ids[:1], NotFound: ids[1:]}, nil
			}
			w := doJSON(router, http.MethodDelete, "/spaces/s1/media", map[string]any{"mediaIds": []string{"a", "b"}})
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(dataOf(w)["notFound"]).To(ConsistOf("b"))
		})

		It("rejects an empty list", func() {
			w := doJSON(router, http.MethodDelete, "/spaces/s1/media", map[string]any{"mediaIds": []string{}})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("DownloadArchive", func() {
		It("streams the zip as an attachment", func() {
			svc.archiveFn = func(context.Context, string, string) (string, io.ReadCloser, error) {
				return "party.zip", io.NopCloser(strings.NewReader("PK-data")), nil
			}
			w := serve(httptest.NewRequest(http.MethodGet, "/spaces/s1/media/archive", nil))
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("application/zip"))
			Expect(w.Header().Get("Content-Disposition")).To(ContainSubstring(`filename="party.zip"`))
			Expect(w.Body.String()).To(Equal("PK-data"))
		})

		It("returns 403 for a non-owner", func() {
			svc.archiveFn = func(context.Context, string, string) (string, io.ReadCloser, error) {
				return "", nil, xerr.ErrPermissionDenied
			}
			w := serve(httptest.NewRequest(http.MethodGet, "/spaces/s1/media/archive", nil))
			Expect(w.Code).To(Equal(http.StatusForbidden))
		})
	})
})
