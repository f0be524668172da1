// Package baidu implements the Baidu Fanyi REST API: GET with an MD5-signed
// query (appid + q + salt + secret). The API takes one q per request, so
// batches run sequentially.
package baidu

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/hubo1989/ScreenTranslate-sub003/internal/domain"
	"github.com/hubo1989/ScreenTranslate-sub003/internal/ports"
)

const defaultBase = "https://fanyi-api.baidu.com"

type Client struct {
	cfg    domain.ProviderConfig
	appID  string
	secret string
	salt   func() string
	http   *resty.Client
}

var _ ports.TranslationProvider = (*Client)(nil)

func New(cfg domain.ProviderConfig, appID, secret string) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultTimeout
	}
	return &Client{
		cfg:    cfg,
		appID:  appID,
		secret: secret,
		salt:   func() string { return fmt.Sprintf("%d", rand.Int63()) },
		http:   resty.New().SetTimeout(timeout),
	}
}

func (c *Client) ID() domain.EngineType { return domain.EngineBaidu }
func (c *Client) Name() string          { return "Baidu Translate" }

func (c *Client) IsAvailable() bool { return c.appID != "" && c.secret != "" }

// Sign computes the request signature: MD5(appid + q + salt + secret).
func Sign(appID, q, salt, secret string) string {
	sum := md5.Sum([]byte(appID + q + salt + secret))
	return hex.EncodeToString(sum[:])
}

func (c *Client) Translate(ctx context.Context, text, from, to string) (domain.TranslationResult, error) {
	if strings.TrimSpace(text) == "" {
		return domain.TranslationResult{}, domain.ErrEmptyInput
	}
	if !c.IsAvailable() {
		return domain.TranslationResult{}, &domain.InvalidConfigError{Reason: "Baidu app id or secret missing"}
	}
	if from == "" {
		from = "auto"
	}
	salt := c.salt()
	var resp struct {
		ErrorCode   string `json:"error_code"`
		ErrorMsg    string `json:"error_msg"`
		TransResult []struct {
			Src string `json:"src"`
			Dst string `json:"dst"`
		} `json:"trans_result"`
	}
	rr, err := c.http.R().SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     text,
			"from":  from,
			"to":    to,
			"appid": c.appID,
			"salt":  salt,
			"sign":  Sign(c.appID, text, salt, c.secret),
		}).
		SetResult(&resp).
		Get(c.baseURL() + "/api/trans/vip/translate")
	if err != nil {
		return domain.TranslationResult{}, &domain.ConnectionError{Reason: err.Error(), Err: err}
	}
	if rr.IsError() {
		return domain.TranslationResult{}, &domain.TranslationError{Reason: rr.Status()}
	}
	if resp.ErrorCode != "" && resp.ErrorCode != "0" {
		return domain.TranslationResult{}, mapError(resp.ErrorCode, resp.ErrorMsg)
	}
	if len(resp.TransResult) == 0 {
		return domain.TranslationResult{}, &domain.TranslationError{Reason: "empty trans_result"}
	}
	var sb strings.Builder
	for i, tr := range resp.TransResult {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(tr.Dst)
	}
	return domain.TranslationResult{
		SourceText:     text,
		TranslatedText: sb.String(),
		SourceLang:     from,
		TargetLang:     to,
	}, nil
}

func (c *Client) TranslateBatch(ctx context.Context, texts []string, from, to string) ([]domain.TranslationResult, error) {
	if len(texts) == 0 {
		return nil, domain.ErrEmptyInput
	}
	out := make([]domain.TranslationResult, 0, len(texts))
	for _, t := range texts {
		res, err := c.Translate(ctx, t, from, to)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (c *Client) CheckConnection(ctx context.Context) bool {
	_, err := c.Translate(ctx, "Hello", "en", "zh")
	return err == nil
}

func (c *Client) baseURL() string {
	if c.cfg.BaseURL != "" {
		return strings.TrimRight(c.cfg.BaseURL, "/")
	}
	return defaultBase
}

// Baidu reports failures in-band with numeric codes; the interesting ones are
// signature/appid problems (configuration) and 54003 (QPS limit).
func mapError(code, msg string) error {
	switch code {
	case "52003", "54001", "58002":
		return &domain.InvalidConfigError{Reason: fmt.Sprintf("baidu error %s: %s", code, msg)}
	case "54003", "54004":
		return &domain.RateLimitError{}
	}
	return &domain.TranslationError{Reason: fmt.Sprintf("baidu error %s: %s", code, msg)}
}
