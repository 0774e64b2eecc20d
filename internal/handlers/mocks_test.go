package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/payment"
	"github.com/3Eeeecho/memoryshare/internal/pkg/utils"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
)

type mockSpaceService struct {
	createFn     func(ctx context.Context, req *models.CreateSpaceRequest) (*models.Space, error)
	checkSlugFn  func(ctx context.Context, urlSlug string) (*models.SlugCheckResult, error)
	byIDFn       func(ctx context.Context, spaceID string) (*models.Space, error)
	bySlugFn     func(ctx context.Context, urlSlug string) (*models.Space, error)
	byUserFn     func(ctx context.Context, userID string) (*models.Space, error)
	visibilityFn func(ctx context.Context, userID, spaceID string, isPublic bool) (*models.Space, error)
	usageFn      func(ctx context.Context, spaceID string) (*models.SpaceUsage, error)
}

func (m *mockSpaceService) CreateSpace(ctx context.Context, req *models.CreateSpaceRequest) (*models.Space, error) {
	return m.createFn(ctx, req)
}

func (m *mockSpaceService) CheckSlug(ctx context.Context, urlSlug string) (*models.SlugCheckResult, error) {
	return m.checkSlugFn(ctx, urlSlug)
}

func (m *mockSpaceService) GetSpaceByID(ctx context.Context, spaceID string) (*models.Space, error) {
	return m.byIDFn(ctx, spaceID)
}

func (m *mockSpaceService) GetSpaceBySlug(ctx context.Context, urlSlug string) (*models.Space, error) {
	return m.bySlugFn(ctx, urlSlug)
}

func (m *mockSpaceService) GetSpaceByUserID(ctx context.Context, userID string) (*models.Space, error) {
	return m.byUserFn(ctx, userID)
}

func (m *mockSpaceService) UpdateVisibility(ctx context.Context, userID, spaceID string, isPublic bool) (*models.Space, error) {
	return m.visibilityFn(ctx, userID, spaceID, isPublic)
}

func (m *mockSpaceService) GetUsage(ctx context.Context, spaceID string) (*models.SpaceUsage, error) {
	return m.usageFn(ctx, spaceID)
}

type mockAdmissionService struct {
	admitFn func(ctx context.Context, req *models.UploadRequest) (*models.Media, error)
}

func (m *mockAdmissionService) Admit(ctx context.Context, req *models.UploadRequest) (*models.Media, error) {
	return m.admitFn(ctx, req)
}

type mockMediaService struct {
	listFn        func(ctx context.Context, viewerID, spaceID string) ([]models.Media, error)
	deleteFn      func(ctx context.Context, userID, spaceID, mediaID string) error
	deleteBatchFn func(ctx context.Context, userID, spaceID string, mediaIDs []string) (*models.DeleteMediaBatchResult, error)
	archiveFn     func(ctx context.Context, userID, spaceID string) (string, io.ReadCloser, error)
}

func (m *mockMediaService) ListMedia(ctx context.Context, viewerID, spaceID string) ([]models.Media, error) {
	return m.listFn(ctx, viewerID, spaceID)
}

func (m *mockMediaService) DeleteMedia(ctx context.Context, userID, spaceID, mediaID string) error {
	return m.deleteFn(ctx, userID, spaceID, mediaID)
}

func (m *mockMediaService) DeleteMediaBatch(ctx context.Context, userID, spaceID string, mediaIDs []string) (*models.DeleteMediaBatchResult, error) {
	return m.deleteBatchFn(ctx, userID, spaceID, mediaIDs)
}

func (m *mockMediaService) ArchiveSpace(ctx context.Context, userID, spaceID string) (string, io.ReadCloser, error) {
	return m.archiveFn(ctx, userID, spaceID)
}

type mockUserService struct {
	existsFn func(ctx context.Context, uid string) (bool, error)
	saveFn   func(ctx context.Context, authUID string, req *models.UpsertUserRequest) (*models.User, error)
}

func (m *mockUserService) Exists(ctx context.Context, uid string) (bool, error) {
	return m.existsFn(ctx, uid)
}

func (m *mockUserService) SaveUser(ctx context.Context, authUID string, req *models.UpsertUserRequest) (*models.User, error) {
	return m.saveFn(ctx, authUID, req)
}

type mockPaymentService struct {
	initializeFn func(ctx context.Context, req *models.InitializePaymentRequest) (*payment.Authorization, error)
	webhookFn    func(ctx context.Context, body []byte, signature string) error
	verifyFn     func(ctx context.Context, req *models.VerifyPaymentRequest) (*models.User, error)
}

func (m *mockPaymentService) Initialize(ctx context.Context, req *models.InitializePaymentRequest) (*payment.Authorization, error) {
	return m.initializeFn(ctx, req)
}

func (m *mockPaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	return m.webhookFn(ctx, body, signature)
}

func (m *mockPaymentService) VerifyPayment(ctx context.Context, req *models.VerifyPaymentRequest) (*models.User, error) {
	return m.verifyFn(ctx, req)
}

func (m *mockPaymentService) MarkPaid(ctx context.Context, ev models.PaidEvent) error {
	return nil
}

// asUser 模拟鉴权中间件写入 uid
func asUser(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid != "" {
			c.Set(utils.ContextUserIDKey, uid)
		}
		c.Next()
	}
}

func doJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			Expect(json.NewEncoder(&buf).Encode(b)).To(Succeed())
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) xerr.Response {
	var resp xerr.Response
	Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
	return resp
}

func dataOf(w *httptest.ResponseRecorder) map[string]any {
	resp := decode(w)
	data, ok := resp.Data.(map[string]any)
	Expect(ok).To(BeTrue(), "data should be an object, got %v", resp.Data)
	return data
}
