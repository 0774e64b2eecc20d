package handlers_test

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/3Eeeecho/memoryshare/internal/handlers"
	"github.com/3Eeeecho/memoryshare/internal/models"
	"github.com/3Eeeecho/memoryshare/internal/pkg/payment"
	"github.com/3Eeeecho/memoryshare/internal/pkg/xerr"
)

var _ = Describe("Payment handlers", func() {
	var (
		router *gin.Engine
		svc    *mockPaymentService
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		svc = &mockPaymentService{}
		router = gin.New()
		router.POST("/spaces/paystack/initialize", handlers.InitializePayment(svc))
		router.POST("/spaces/paystack/webhook", handlers.PaystackWebhook(svc))
		router.POST("/spaces/verify-payment", handlers.VerifyPayment(svc))
	})

	Describe("InitializePayment", func() {
		It("returns the authorization", func() {
			svc.initializeFn = func(_ context.Context, req *models.InitializePaymentRequest) (*payment.Authorization, error) {
				Expect(req.Amount).To(BeNumerically("==", 150.5))
				return &payment.Authorization{AuthorizationURL: "https://checkout/abc", AccessCode: "abc", Reference: "ref-1"}, nil
			}
			w := doJSON(router, http.MethodPost, "/spaces/paystack/initialize", map[string]any{
				"email": "ama@example.com", "amount": 150.5, "plan": "premium",
			})
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(dataOf(w)).To(HaveKeyWithValue("reference", "ref-1"))
		})

		It("rejects a missing amount", func() {
			w := doJSON(router, http.MethodPost, "/spaces/paystack/initialize", map[string]any{"email": "ama@example.com"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("passes through a rejection from the processor", func() {
			svc.initializeFn = func(context.Context, *models.InitializePaymentRequest) (*payment.Authorization, error) {
				return nil, fmt.Errorf("payment service: %w: %w", xerr.ErrPaymentGateway,
					&payment.UpstreamError{StatusCode: http.StatusBadRequest, Message: "Invalid currency"})
			}
			w := doJSON(router, http.MethodPost, "/spaces/paystack/initialize", map[string]any{
				"email": "ama@example.com", "amount": 10,
			})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w).Message).To(Equal("Invalid currency"))
		})

		It("returns 502 when the processor is down", func() {
			svc.initializeFn = func(context.Context, *models.InitializePaymentRequest) (*payment.Authorization, error) {
				return nil, fmt.Errorf("payment service: %w: %w", xerr.ErrPaymentGateway,
					&payment.UpstreamError{StatusCode: http.StatusServiceUnavailable, Message: "unavailable"})
			}
			w := doJSON(router, http.MethodPost, "/spaces/paystack/initialize", map[string]any{
				"email": "ama@example.com", "amount": 10,
			})
			Expect(w.Code).To(Equal(http.StatusBadGateway))
			Expect(decode(w).Error).To(ContainSubstring("unavailable"))
		})
	})

	Describe("PaystackWebhook", func() {
		It("hands the raw body and signature to the service", func() {
			raw := []byte(`{"event":"charge.success","data":{"reference":"ref-1"}}`)
			svc.webhookFn = func(_ context.Context, body []byte, signature string) error {
				Expect(body).To(Equal(raw))
				Expect(signature).To(Equal("sig"))
				return nil
			}
			req := httptest.NewRequest(http.MethodPost, "/spaces/paystack/webhook", bytes.NewReader(raw))
			req.Header.Set(payment.SignatureHeader, "sig")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("returns 401 on a bad signature", func() {
			svc.webhookFn = func(context.Context, []byte, string) error {
				return fmt.Errorf("payment service: %w", xerr.ErrSignatureInvalid)
			}
			w := doJSON(router, http.MethodPost, "/spaces/paystack/webhook", `{}`)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(decode(w).Code).To(Equal(xerr.SignatureInvalidCode))
		})

		It("rejects an oversized body before calling the service", func() {
			called := false
			svc.webhookFn = func(context.Context, []byte, string) error {
				called = true
				return nil
			}
			raw := bytes.Repeat([]byte("a"), 1<<20)
			req := httptest.NewRequest(http.MethodPost, "/spaces/paystack/webhook", bytes.NewReader(raw))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusRequestEntityTooLarge))
			Expect(called).To(BeFalse())
		})
	})

	Describe("VerifyPayment", func() {
		It("returns the verified user", func() {
			svc.verifyFn = func(_ context.Context, req *models.VerifyPaymentRequest) (*models.User, error) {
				return &models.User{UID: "u-1", PaymentVerified: true}, nil
			}
			w := doJSON(router, http.MethodPost, "/spaces/verify-payment", map[string]any{
				"email": "ama@example.com", "transactionId": "ref-1",
			})
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(dataOf(w)).To(HaveKeyWithValue("paymentVerified", true))
		})

		DescribeTable("maps failures",
			func(err error, status int) {
				svc.verifyFn = func(context.Context, *models.VerifyPaymentRequest) (*models.User, error) {
					return nil, err
				}
				w := doJSON(router, http.MethodPost, "/spaces/verify-payment", map[string]any{"email": "a@b.c"})
				Expect(w.Code).To(Equal(status))
			},
			Entry("missing fields", fmt.Errorf("payment service: %w", xerr.ErrInvalidParams), http.StatusBadRequest),
			Entry("unknown user", xerr.ErrUserNotFound, http.StatusNotFound),
			Entry("not successful", fmt.Errorf("payment service: %w", xerr.ErrPaymentUnsuccessful), http.StatusBadRequest),
			Entry("email mismatch", fmt.Errorf("payment service: %w", xerr.ErrPermissionDenied), http.StatusForbidden),
		)
	})
})
