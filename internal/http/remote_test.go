package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rangekv/pkg/cluster"
	"rangekv/pkg/kverrors"
)

// stub peer answering the hop endpoint with a fixed envelope
func stubPeer(t *testing.T, status int, body cluster.RouteResponse) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/internal/route" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func dispatchTo(t *testing.T, ts *httptest.Server) (string, error) {
	t.Helper()
	d := cluster.NewHTTPDispatcher(ts.URL, time.Second)
	return d.Dispatch(context.Background(), "peer", cluster.RouteRequest{
		Key: []byte("k"),
		Op:  cluster.Operation{Name: cluster.OpGet},
	})
}

func TestHTTPDispatcher_Success(t *testing.T) {
	ts := stubPeer(t, http.StatusOK, cluster.RouteResponse{Status: "success", Value: "v42"})

	got, err := dispatchTo(t, ts)
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if got != "v42" {
		t.Fatalf("Dispatch = %q, want v42", got)
	}
}

func TestHTTPDispatcher_ErrorKindsSurviveTheWire(t *testing.T) {
	cases := []struct {
		kind   cluster.ErrorKind
		status int
		want   error
	}{
		{cluster.KindNotFound, http.StatusNotFound, kverrors.ErrNotFound},
		{cluster.KindNoRoute, http.StatusMisdirectedRequest, cluster.ErrNoRoute},
		{cluster.KindLoop, http.StatusLoopDetected, cluster.ErrRoutingLoop},
		{cluster.KindSaturated, http.StatusServiceUnavailable, kverrors.ErrSaturated},
		{cluster.KindTimeout, http.StatusGatewayTimeout, kverrors.ErrDispatchTimeout},
	}

	for _, c := range cases {
		ts := stubPeer(t, c.status, cluster.RouteResponse{
			Status: "error",
			Error:  "remote says: " + string(c.kind),
			Kind:   c.kind,
		})

		_, err := dispatchTo(t, ts)
		if err == nil {
			t.Fatalf("kind %s: expected error", c.kind)
		}
		if !errors.Is(err, c.want) {
			t.Fatalf("kind %s: errors.Is failed for %v", c.kind, err)
		}
		// текст удалённой ошибки доходит без изменений
		if err.Error() != "remote says: "+string(c.kind) {
			t.Fatalf("kind %s: message mangled: %q", c.kind, err.Error())
		}
	}
}

func TestHTTPDispatcher_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(ts.Close)

	d := cluster.NewHTTPDispatcher(ts.URL, 20*time.Millisecond)
	_, err := d.Dispatch(context.Background(), "peer", cluster.RouteRequest{
		Key: []byte("k"),
		Op:  cluster.Operation{Name: cluster.OpGet},
	})
	if !errors.Is(err, kverrors.ErrDispatchTimeout) {
		t.Fatalf("slow peer: got %v, want dispatch timeout", err)
	}
}

func TestHTTPDispatcher_ContextDeadline(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(ts.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	d := cluster.NewHTTPDispatcher(ts.URL, time.Second)
	_, err := d.Dispatch(ctx, "peer", cluster.RouteRequest{
		Key: []byte("k"),
		Op:  cluster.Operation{Name: cluster.OpGet},
	})
	if !errors.Is(err, kverrors.ErrDispatchTimeout) {
		t.Fatalf("expired context: got %v, want dispatch timeout", err)
	}
}
