package coordinator

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lidofinance/frostsig/frost"
	"github.com/lidofinance/frostsig/signer/api/http_api/requests"
	"github.com/lidofinance/frostsig/signer/api/http_api/responses"
)

// SignerClient talks to one signer service per endpoint.
type SignerClient interface {
	RequestCommitment(ctx context.Context, endpoint string, message []byte) (*responses.NonceResponse, error)
	RequestSignatureShare(ctx context.Context, endpoint string, pkg *frost.SigningPackage) (*frost.SignatureShare, error)
	Identity(ctx context.Context, endpoint string) (*responses.IdentityResponse, error)
}

// SignerError is a non-2xx answer from a signer.
type SignerError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *SignerError) Error() string {
	return fmt.Sprintf("signer %s responded %d: %s", e.Endpoint, e.StatusCode, e.Message)
}

type response struct {
	ErrorMessage string          `json:"error_message,omitempty"`
	Result       json.RawMessage `json:"result"`
}

type HTTPClient struct {
	httpClient *http.Client
}

func NewHTTPClient(httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{httpClient: httpClient}
}

func (c *HTTPClient) RequestCommitment(ctx context.Context, endpoint string, message []byte) (*responses.NonceResponse, error) {
	var result responses.NonceResponse
	form := &requests.NonceForm{Message: hex.EncodeToString(message)}
	if err := c.do(ctx, http.MethodPost, endpoint, "/nonce", form, &result); err != nil {
		return nil, err
	}
	if result.ParticipantID == 0 || result.Commitments == nil {
		return nil, fmt.Errorf("signer %s returned an incomplete commitment", endpoint)
	}
	return &result, nil
}

func (c *HTTPClient) RequestSignatureShare(ctx context.Context, endpoint string, pkg *frost.SigningPackage) (*frost.SignatureShare, error) {
	pkgBz, err := json.Marshal(pkg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal signing package: %w", err)
	}
	var result responses.SignResponse
	if err := c.do(ctx, http.MethodPost, endpoint, "/sign", &requests.SignForm{Package: pkgBz}, &result); err != nil {
		return nil, err
	}
	if result.Share == nil {
		return nil, fmt.Errorf("signer %s returned no share", endpoint)
	}
	return result.Share, nil
}

func (c *HTTPClient) Identity(ctx context.Context, endpoint string) (*responses.IdentityResponse, error) {
	var result responses.IdentityResponse
	if err := c.do(ctx, http.MethodGet, endpoint, "/identity", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint, path string, body, result interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	url := strings.TrimRight(endpoint, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to build request to %s: %w", url, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send HTTP request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read body from %s: %w", url, err)
	}

	var envelope response
	if err := json.Unmarshal(responseBody, &envelope); err != nil {
		if resp.StatusCode/100 != 2 {
			return &SignerError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(responseBody))}
		}
		return fmt.Errorf("failed to unmarshal response from %s: %w", url, err)
	}
	if resp.StatusCode/100 != 2 || envelope.ErrorMessage != "" {
		return &SignerError{Endpoint: endpoint, StatusCode: resp.StatusCode, Message: envelope.ErrorMessage}
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("failed to unmarshal result from %s: %w", url, err)
	}
	return nil
}
