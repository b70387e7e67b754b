package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"rangekv/pkg/cluster"
	"rangekv/pkg/partition"
	"rangekv/pkg/store"
	"rangekv/pkg/types"
	"rangekv/pkg/workpool"
)

// testNode — полноценная нода на httptest-листенере
type testNode struct {
	id     types.NodeID
	router *cluster.Router
	kv     *store.Store
	ts     *httptest.Server
}

func startNode(t *testing.T) *testNode {
	t.Helper()

	kv := store.New()
	pool := workpool.New(2, 8)
	pool.Start(context.Background())

	router := cluster.NewRouter("", nil, nil, cluster.DialHTTP(2*time.Second))
	srv := NewServer(router, pool, "")
	ts := httptest.NewServer(srv.createRouter())

	// identity известна только после старта листенера
	id := types.NodeID(strings.TrimPrefix(ts.URL, "http://"))
	router.Local = id
	router.Executor = cluster.NewLocalExecutor(id, kv)

	t.Cleanup(func() {
		ts.Close()
		pool.Stop()
		_ = kv.Close()
	})

	return &testNode{id: id, router: router, kv: kv, ts: ts}
}

func decodeResponse(t *testing.T, resp *http.Response) Response {
	t.Helper()
	defer resp.Body.Close()

	var r Response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("decode response: %v (body %q)", err, body)
	}
	return r
}

func putString(t *testing.T, baseURL, key, value string) *http.Response {
	t.Helper()

	form := url.Values{"key": {key}, "value": {value}}
	req, err := http.NewRequest(http.MethodPut, baseURL+"/api/string", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("create PUT request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("execute PUT request: %v", err)
	}
	return resp
}

func TestServer_TwoNodeForwarding(t *testing.T) {
	foo := startNode(t)
	bar := startNode(t)

	table := partition.Table{
		{Lo: 'a', Hi: 'm', Owner: foo.id},
		{Lo: 'n', Hi: 'z', Owner: bar.id},
	}
	foo.router.UpdateTable(table)
	bar.router.UpdateTable(table)

	// "hello" принадлежит foo, но пишем через bar
	resp := putString(t, bar.ts.URL, "hello", "world")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("PUT via bar: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	if v, ok, _ := foo.kv.GetString("hello"); !ok || v != "world" {
		t.Fatalf("value did not land on foo: %q, %v", v, ok)
	}
	if bar.kv.Len() != 0 {
		t.Fatalf("bar stored a key it does not own, len=%d", bar.kv.Len())
	}

	// читается с любой ноды
	for _, node := range []*testNode{foo, bar} {
		resp, err := http.Get(node.ts.URL + "/api/string?key=hello")
		if err != nil {
			t.Fatalf("GET via %s: %v", node.id, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET via %s: status %d", node.id, resp.StatusCode)
		}
		if r := decodeResponse(t, resp); r.Value != "world" {
			t.Fatalf("GET via %s = %q, want world", node.id, r.Value)
		}
	}

	// node_identity исполняется на владельце, через один хоп
	d := cluster.NewHTTPDispatcher(bar.ts.URL, 2*time.Second)
	got, err := d.Dispatch(context.Background(), bar.id, cluster.RouteRequest{
		Key: []byte("hello"),
		Op:  cluster.Operation{Name: cluster.OpNodeIdentity},
	})
	if err != nil {
		t.Fatalf("Dispatch(node_identity) error: %v", err)
	}
	if got != string(foo.id) {
		t.Fatalf("node_identity = %q, want %q", got, foo.id)
	}

	// delete через неместную ноду
	req, _ := http.NewRequest(http.MethodDelete, bar.ts.URL+"/api?key=hello", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("DELETE: status %d", resp.StatusCode)
	}
	if _, ok, _ := foo.kv.GetString("hello"); ok {
		t.Fatal("key survived delete")
	}
}

func TestServer_GetMissingKey(t *testing.T) {
	node := startNode(t)
	node.router.UpdateTable(partition.Table{{Lo: 0, Hi: 255, Owner: node.id}})

	resp, err := http.Get(node.ts.URL + "/api/string?key=absent")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET(absent): status %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestServer_NoRouteIncludesTable(t *testing.T) {
	node := startNode(t)
	table := partition.Table{{Lo: 'a', Hi: 'm', Owner: node.id}}
	node.router.UpdateTable(table)

	resp, err := http.Get(node.ts.URL + "/api/string?key=zebra")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusMisdirectedRequest {
		t.Fatalf("GET(zebra): status %d, want 421", resp.StatusCode)
	}
	r := decodeResponse(t, resp)
	if !strings.Contains(r.Error, "zebra") || !strings.Contains(r.Error, table.String()) {
		t.Fatalf("diagnostic %q lacks key or table", r.Error)
	}
}

func TestServer_RouteEndpointSaturation(t *testing.T) {
	node := startNode(t)
	node.router.UpdateTable(partition.Table{{Lo: 0, Hi: 255, Owner: node.id}})

	// подменяем пул на уже насыщенный
	saturated := workpool.New(1, 1)
	// not started: submit still queues one; fill the queue
	if _, err := saturated.Submit(func() (string, error) { return "", nil }); err != nil {
		t.Fatalf("prefill submit: %v", err)
	}
	srv := NewServer(node.router, saturated, "")
	ts := httptest.NewServer(srv.createRouter())
	defer ts.Close()

	d := cluster.NewHTTPDispatcher(ts.URL, 2*time.Second)
	_, err := d.Dispatch(context.Background(), node.id, cluster.RouteRequest{
		Key: []byte("k"),
		Op:  cluster.Operation{Name: cluster.OpNodeIdentity},
	})
	if err == nil {
		t.Fatal("expected saturation error")
	}
	if got := cluster.KindOf(err); got != cluster.KindSaturated {
		t.Fatalf("error kind = %q (%v), want saturated", got, err)
	}
}
