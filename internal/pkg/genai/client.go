package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/cenkalti/backoff/v4"

	gapi "github.com/vibra-app/vibra/internal/pkg/genai/api"
	"github.com/vibra-app/vibra/internal/pkg/persistence"
)

// Client communicates with the generative AI service
type Client struct {
	httpclient *http.Client
	readingURL string
	imageURL   string
	timeout    time.Duration
	backoff    func() backoff.BackOff
}

// NewClient creates a generator client
func NewClient(readingURL, imageURL string) (*Client, error) {
	res := Client{}
	if readingURL == "" {
		return nil, fmt.Errorf("no readingURL")
	}
	if imageURL == "" {
		return nil, fmt.Errorf("no imageURL")
	}
	res.readingURL = readingURL
	res.imageURL = imageURL
	res.timeout = time.Minute * 3
	res.httpclient = genHTTPClient()
	res.backoff = newSimpleBackoff
	return &res, nil
}

type readingRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateReading asks the text model for a structured reading
func (sp *Client) GenerateReading(ctx context.Context, prompt string) (*persistence.Reading, error) {
	b, err := json.Marshal(readingRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("can't marshal request: %w", err)
	}
	return goapp.InvokeWithBackoff(ctx, func() (*persistence.Reading, bool, error) {
		ctx, cancelF := context.WithTimeout(ctx, sp.timeout)
		defer cancelF()
		req, err := http.NewRequest(http.MethodPost, sp.readingURL, bytes.NewReader(b))
		if err != nil {
			return nil, false, err
		}
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(ctx)
		goapp.Log.Info().Str("url", req.URL.String()).Str("method", req.Method).Msg("call")
		resp, err := sp.httpclient.Do(req)
		if err != nil {
			return nil, goapp.IsRetryableErr(err), fmt.Errorf("can't call: %w", err)
		}
		defer func() {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
			_ = resp.Body.Close()
		}()
		if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
			err = fmt.Errorf("can't invoke '%s': %w", req.URL.String(), err)
			return nil, goapp.IsRetryableCode(resp.StatusCode), err
		}
		res := &persistence.Reading{}
		if err = json.NewDecoder(resp.Body).Decode(res); err != nil {
			return nil, true, fmt.Errorf("can't decode response: %w", err)
		}
		// the model may return a syntactically valid but incomplete object
		if err := res.Validate(); err != nil {
			return nil, true, fmt.Errorf("bad reading: %w", err)
		}
		return res, false, nil
	}, sp.backoff())
}

type imageRequest struct {
	Prompt               string `json:"prompt"`
	ReferenceImageBase64 string `json:"referenceImageBase64,omitempty"`
}

type imageResponse struct {
	Images []struct {
		Base64   string `json:"base64"`
		MimeType string `json:"mimeType"`
	} `json:"images"`
}

// GenerateImage asks the image model for an artwork.
// Reference image bytes are optional
func (sp *Client) GenerateImage(ctx context.Context, prompt string, reference []byte) (*gapi.ImageData, error) {
	rd := imageRequest{Prompt: prompt}
	if len(reference) > 0 {
		rd.ReferenceImageBase64 = base64.StdEncoding.EncodeToString(reference)
	}
	b, err := json.Marshal(rd)
	if err != nil {
		return nil, fmt.Errorf("can't marshal request: %w", err)
	}
	return goapp.InvokeWithBackoff(ctx, func() (*gapi.ImageData, bool, error) {
		ctx, cancelF := context.WithTimeout(ctx, sp.timeout)
		defer cancelF()
		req, err := http.NewRequest(http.MethodPost, sp.imageURL, bytes.NewReader(b))
		if err != nil {
			return nil, false, err
		}
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(ctx)
		goapp.Log.Info().Str("url", req.URL.String()).Str("method", req.Method).Msg("call")
		resp, err := sp.httpclient.Do(req)
		if err != nil {
			return nil, goapp.IsRetryableErr(err), fmt.Errorf("can't call: %w", err)
		}
		defer func() {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
			_ = resp.Body.Close()
		}()
		if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
			err = fmt.Errorf("can't invoke '%s': %w", req.URL.String(), err)
			return nil, goapp.IsRetryableCode(resp.StatusCode), err
		}
		var respData imageResponse
		if err = json.NewDecoder(resp.Body).Decode(&respData); err != nil {
			return nil, true, fmt.Errorf("can't decode response: %w", err)
		}
		if len(respData.Images) == 0 {
			return nil, false, fmt.Errorf("no image in response")
		}
		img := respData.Images[0]
		if img.Base64 == "" {
			return nil, false, fmt.Errorf("no image data in response")
		}
		content, err := base64.StdEncoding.DecodeString(dropDataURLPrefix(img.Base64))
		if err != nil {
			return nil, false, fmt.Errorf("can't decode image data: %w", err)
		}
		mime := img.MimeType
		if mime == "" {
			mime = "image/png"
		}
		return &gapi.ImageData{Content: content, MimeType: mime}, false, nil
	}, sp.backoff())
}

func dropDataURLPrefix(s string) string {
	if i := strings.Index(s, ","); i >= 0 {
		return s[i+1:]
	}
	return s
}

func genHTTPClient() *http.Client {
	return &http.Client{Transport: newTransport()}
}

func newTransport() http.RoundTripper {
	res := http.DefaultTransport.(*http.Transport).Clone()
	res.DialContext = (&net.Dialer{
		Timeout:   time.Second * 10,
		KeepAlive: time.Second * 30,
	}).DialContext
	res.MaxIdleConns = 10
	res.MaxIdleConnsPerHost = 5
	res.IdleConnTimeout = time.Second * 90
	return res
}

func newSimpleBackoff() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2)
}
