package cluster

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"rangekv/pkg/kverrors"
	"rangekv/pkg/types"
)

// RouteResponse is the wire envelope of the internal hop endpoint. On
// failure Kind classifies the error so the caller side can rebuild one that
// answers the same errors.Is checks.
type RouteResponse struct {
	Status string    `json:"status"`
	Value  string    `json:"value,omitempty"`
	Error  string    `json:"error,omitempty"`
	Kind   ErrorKind `json:"kind,omitempty"`
}

const routePath = "/api/internal/route"

// HTTPDispatcher forwards routing hops to one peer node over HTTP. The
// remote node re-enters routing with its own table, so the reply may itself
// be the product of further hops.
type HTTPDispatcher struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPDispatcher creates a dispatcher for the peer at baseURL. timeout
// bounds the whole hop including any further forwarding the peer does;
// expiry surfaces as ErrDispatchTimeout, not as a generic transport error.
func NewHTTPDispatcher(baseURL string, timeout time.Duration) *HTTPDispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPDispatcher{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// DialHTTP returns a DialFunc treating node IDs as host:port.
func DialHTTP(timeout time.Duration) DialFunc {
	return func(target types.NodeID) (Dispatcher, error) {
		if target == "" {
			return nil, fmt.Errorf("cluster: empty dispatch target")
		}
		return NewHTTPDispatcher("http://"+string(target), timeout), nil
	}
}

func (c *HTTPDispatcher) Dispatch(ctx context.Context, owner types.NodeID, req RouteRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode route request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+routePath,
		bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("create route request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("dispatch to %s: %w", owner, kverrors.ErrDispatchTimeout)
		}
		return "", fmt.Errorf("dispatch to %s: %w", owner, err)
	}
	defer resp.Body.Close()

	var rr RouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("dispatch to %s: status %d, bad response body %q: %w", owner, resp.StatusCode, raw, err)
	}

	if rr.Kind != KindNone {
		return "", RemoteError(rr.Kind, rr.Error)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dispatch to %s: status %d: %s", owner, resp.StatusCode, rr.Error)
	}

	return rr.Value, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var uerr *url.Error
	return errors.As(err, &uerr) && uerr.Timeout()
}
