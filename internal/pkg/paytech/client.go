package paytech

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/softskills/softskills_go_server/config"
)

const (
	initPaymentPath   = "/api/payment/request-payment"
	verifyPaymentPath = "/api/payment/check"
)

type Client struct {
	apiKey     string
	apiSecret  string
	baseURL    string
	env        string
	httpClient *http.Client
}

func NewClient(cfg *config.PayTechConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		apiKey:     cfg.APIKey,
		apiSecret:  cfg.APISecret,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		env:        cfg.Env,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Signature 计算请求签名：参数按 key 排序后拼接为 k=v&k=v，
// 末尾追加密钥，再取 sha256 十六进制摘要
func Signature(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha256.Sum256([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

// FormatAmount 金额转为网关要求的整数字符串（XOF 无辅币单位）
func FormatAmount(amount float64) string {
	return strconv.FormatInt(int64(math.Round(amount)), 10)
}

// InitRequest 创建支付会话的参数
type InitRequest struct {
	ItemName   string
	RefCommand string
	Amount     float64
	Currency   string
	Email      string
	FirstName  string
	LastName   string
	IPNURL     string
	SuccessURL string
	CancelURL  string
}

// InitResponse 网关响应；Raw 保留原始报文用于审计
type InitResponse struct {
	Success     int    `json:"success"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	Message     string `json:"message"`

	Raw json.RawMessage `json:"-"`
}

// IsSuccess 网关是否接受了本次请求
func (r *InitResponse) IsSuccess() bool {
	return r != nil && r.Success == 1
}

// InitPayment 调用网关创建支付会话。
// 网络错误和非 2xx 响应都转换为失败结果返回，Raw 始终可用于落库，
// 同时返回 error 供调用方记录日志
func (c *Client) InitPayment(ctx context.Context, req *InitRequest) (*InitResponse, error) {
	params := map[string]string{
		"item_name":    req.ItemName,
		"item_price":   FormatAmount(req.Amount),
		"currency":     req.Currency,
		"ref_command":  req.RefCommand,
		"command_name": req.ItemName,
		"env":          c.env,
		"ipn_url":      req.IPNURL,
		"success_url":  req.SuccessURL,
		"cancel_url":   req.CancelURL,
		"email":        req.Email,
		"first_name":   req.FirstName,
		"last_name":    req.LastName,
		"api_key":      c.apiKey,
		"lang":         "fr",
	}
	params["signature"] = Signature(params, c.apiSecret)

	return c.post(ctx, c.baseURL+initPaymentPath, params)
}

// VerifyPayment 主动查询一笔支付的状态
func (c *Client) VerifyPayment(ctx context.Context, token string) (*InitResponse, error) {
	params := map[string]string{
		"token":   token,
		"api_key": c.apiKey,
	}
	params["signature"] = Signature(params, c.apiSecret)

	return c.post(ctx, c.baseURL+verifyPaymentPath, params)
}

func (c *Client) post(ctx context.Context, url string, params map[string]string) (*InitResponse, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return failure(err), err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return failure(err), err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return failure(err), fmt.Errorf("paytech request: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return failure(err), fmt.Errorf("paytech read response: %w", err)
	}

	resp := &InitResponse{Raw: raw}
	if err := json.Unmarshal(raw, resp); err != nil {
		return resp, fmt.Errorf("paytech decode response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		resp.Success = 0
		return resp, fmt.Errorf("paytech status %d: %s", httpResp.StatusCode, resp.Message)
	}

	return resp, nil
}

// failure 传输层失败时合成的响应，保证 Raw 总有内容可落库
func failure(err error) *InitResponse {
	resp := &InitResponse{Success: 0, Message: err.Error()}
	raw, _ := json.Marshal(map[string]interface{}{
		"success": 0,
		"message": err.Error(),
	})
	resp.Raw = raw
	return resp
}
