package paytech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/softskills/softskills_go_server/config"
)

func newTestClient(baseURL string) *Client {
	return NewClient(&config.PayTechConfig{
		APIKey:    "pk_test",
		APISecret: "sk_test",
		BaseURL:   baseURL,
		Env:       "test",
	})
}

func TestSignature(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		params := map[string]string{"b": "2", "a": "1", "c": "3"}
		sig1 := Signature(params, "secret")
		sig2 := Signature(map[string]string{"c": "3", "a": "1", "b": "2"}, "secret")
		assert.Equal(t, sig1, sig2)
		assert.Len(t, sig1, 64) // sha256 hex
	})

	t.Run("secret changes digest", func(t *testing.T) {
		params := map[string]string{"token": "abc"}
		assert.NotEqual(t, Signature(params, "s1"), Signature(params, "s2"))
	})

	t.Run("params change digest", func(t *testing.T) {
		assert.NotEqual(t,
			Signature(map[string]string{"amount": "100"}, "s"),
			Signature(map[string]string{"amount": "101"}, "s"))
	})
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "49", FormatAmount(49.00))
	assert.Equal(t, "50", FormatAmount(49.6))
	assert.Equal(t, "0", FormatAmount(0))
	assert.Equal(t, "25000", FormatAmount(25000))
}

func TestClient_InitPayment_Success(t *testing.T) {
	var received map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/payment/request-payment", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success": 1, "token": "abc123", "redirect_url": "https://gw/pay/abc123"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.InitPayment(context.Background(), &InitRequest{
		ItemName:   "Formation: Prise de parole",
		RefCommand: "COURSE-1-1",
		Amount:     49.00,
		Currency:   "XOF",
		Email:      "client@example.com",
		FirstName:  "Awa",
		LastName:   "Diop",
		IPNURL:     "https://platform/api/v1/payments/paytech/ipn",
		SuccessURL: "https://platform/payments/success",
		CancelURL:  "https://platform/payments/cancel",
	})

	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "abc123", resp.Token)
	assert.Equal(t, "https://gw/pay/abc123", resp.RedirectURL)
	assert.NotEmpty(t, resp.Raw)

	// 网关侧收到的关键字段
	assert.Equal(t, "49", received["item_price"])
	assert.Equal(t, "XOF", received["currency"])
	assert.Equal(t, "test", received["env"])
	assert.Equal(t, "pk_test", received["api_key"])

	// 签名必须能用同一参数集复算出来
	sig := received["signature"]
	delete(received, "signature")
	assert.Equal(t, Signature(received, "sk_test"), sig)
}

func TestClient_InitPayment_GatewayRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"success": 0, "message": "invalid api key"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.InitPayment(context.Background(), &InitRequest{
		ItemName: "Formation", Amount: 49, Currency: "XOF",
	})

	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.False(t, resp.IsSuccess())
	assert.Equal(t, "invalid api key", resp.Message)
	assert.NotEmpty(t, resp.Raw) // 原始报文保留用于排查
}

func TestClient_InitPayment_TransportError(t *testing.T) {
	// 指向一个已关闭的服务器
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := newTestClient(server.URL)
	resp, err := client.InitPayment(context.Background(), &InitRequest{
		ItemName: "Formation", Amount: 49, Currency: "XOF",
	})

	assert.Error(t, err)
	require.NotNil(t, resp)
	assert.False(t, resp.IsSuccess())
	assert.NotEmpty(t, resp.Raw) // 合成的失败报文同样可落库
}

func TestClient_VerifyPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/payment/check", r.URL.Path)

		var received map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		assert.Equal(t, "abc123", received["token"])
		assert.NotEmpty(t, received["signature"])

		w.Write([]byte(`{"success": 1, "token": "abc123"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	resp, err := client.VerifyPayment(context.Background(), "abc123")

	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
}
