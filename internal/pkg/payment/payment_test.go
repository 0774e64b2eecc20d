package payment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3Eeeecho/memoryshare/internal/config"
)

func newClient(t *testing.T, h http.HandlerFunc) *PaystackClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewPaystackClient(&config.PaystackConfig{
		SecretKey: "sk_test",
		BaseURL:   srv.URL,
		Timeout:   time.Second,
		Breaker:   config.BreakerConfig{MaxFailures: 2, Interval: time.Minute, Timeout: time.Minute},
	})
}

func TestSignature(t *testing.T) {
	body := []byte(`{"event":"charge.success"}`)
	sig := Sign("secret", body)

	assert.Len(t, sig, 128)
	assert.True(t, VerifySignature("secret", body, sig))
	assert.False(t, VerifySignature("secret", append(body, ' '), sig))
	assert.False(t, VerifySignature("other", body, sig))
	assert.False(t, VerifySignature("", body, Sign("", body)))
	assert.False(t, VerifySignature("secret", body, ""))
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(15000), ToMinorUnits(150))
	assert.Equal(t, int64(15050), ToMinorUnits(150.5))
	assert.Equal(t, int64(1999), ToMinorUnits(19.99))
}

func TestParseMetadata(t *testing.T) {
	assert.Equal(t, "premium", ParseMetadata(json.RawMessage(`{"plan":"premium"}`)).Plan)
	assert.Empty(t, ParseMetadata(json.RawMessage(`""`)).Plan)
	assert.Empty(t, ParseMetadata(nil).Plan)
}

func TestInitializeMobileMoney(t *testing.T) {
	var got map[string]any
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &got))
		_, _ = w.Write([]byte(`{"status":true,"message":"ok","data":{"authorization_url":"https://checkout.paystack.com/x","access_code":"ac","reference":"ref-1"}}`))
	})

	auth, err := client.Initialize(context.Background(), InitializeParams{
		Email: "a@b.co", Amount: 15000, Currency: "GHS", Plan: "premium",
		PaymentMethod: MethodMobile, Phone: "0240000000", Provider: "mtn",
	})
	require.NoError(t, err)
	assert.Equal(t, "ref-1", auth.Reference)
	assert.Equal(t, float64(15000), got["amount"])
	assert.Equal(t, map[string]any{"phone": "0240000000", "provider": "mtn"}, got["mobile_money"])
	assert.Equal(t, "premium", got["metadata"].(map[string]any)["plan"])
}

func TestInitializeCardOmitsMobileMoney(t *testing.T) {
	var got map[string]any
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &got))
		_, _ = w.Write([]byte(`{"status":true,"data":{"reference":"ref-2"}}`))
	})

	_, err := client.Initialize(context.Background(), InitializeParams{Email: "a@b.co", Amount: 100, PaymentMethod: "card"})
	require.NoError(t, err)
	_, has := got["mobile_money"]
	assert.False(t, has)
}

func TestVerify(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/ref-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":true,"data":{"status":"success","reference":"ref-1","amount":15000,"currency":"GHS","channel":"mobile_money","customer":{"email":"a@b.co"},"metadata":{"plan":"premium"}}}`))
	})

	tx, err := client.Verify(context.Background(), "ref-1")
	require.NoError(t, err)
	assert.True(t, tx.Succeeded())
	assert.Equal(t, "a@b.co", tx.Email)
	assert.Equal(t, "premium", tx.Plan)
	assert.Equal(t, int64(15000), tx.Amount)
}

func TestRejectedRequestsDoNotTripBreaker(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":false,"message":"Invalid Email Address Passed"}`))
	})

	for i := 0; i < 5; i++ {
		_, err := client.Verify(context.Background(), "ref")
		var upstream *UpstreamError
		require.True(t, errors.As(err, &upstream))
		assert.Equal(t, "Invalid Email Address Passed", upstream.Message)
		assert.ErrorIs(t, err, ErrRejected)
	}
	assert.Equal(t, gobreaker.StateClosed, client.cb.State())
}

func TestServerErrorsTripBreaker(t *testing.T) {
	var calls atomic.Int32
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for i := 0; i < 2; i++ {
		_, err := client.Verify(context.Background(), "ref")
		require.Error(t, err)
	}
	_, err := client.Verify(context.Background(), "ref")
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load())
}
