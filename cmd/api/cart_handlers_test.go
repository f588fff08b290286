package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	catalogmem "storefront/pkg/catalog/memory"
	"storefront/pkg/checkout"
	"storefront/pkg/config"
	"storefront/pkg/logger"
	sessionmem "storefront/pkg/session/memory"
)

// newTestServer mounts the production routes over in-memory dependencies
// and returns a client that keeps the cart session cookie across requests.
func newTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	cfg = config.Load()
	log = logger.New(io.Discard, logger.LevelError, "test", nil)
	tracer = nil

	ctx := context.Background()
	mem := catalogmem.New()
	mem.CreateItem(ctx, catalog.Item{ID: "item-1", Name: "Carrot", Price: 500})
	mem.CreateItem(ctx, catalog.Item{ID: "item-2", Name: "Potato", Price: 1000})
	repo = mem

	carts = sessionmem.New()
	engine = cart.NewEngine(catalogAdapter{repo: repo}, log)
	checkouts = checkout.NewService(engine, carts, checkout.NewStubGateway(log), log)

	srv := httptest.NewServer(newRouter())
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return srv, &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeCart(t *testing.T, resp *http.Response) cartResponse {
	t.Helper()
	defer resp.Body.Close()
	var cr cartResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	return cr
}

func TestCartFlow(t *testing.T) {
	srv, client := newTestServer(t)

	resp := postJSON(t, client, srv.URL+"/cart/add", addCartRequest{ItemID: "item-1", Quantity: 2})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, client, srv.URL+"/cart/add", addCartRequest{ItemID: "item-2", Quantity: 1})
	cr := decodeCart(t, resp)
	if len(cr.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %+v", cr.Lines)
	}
	if cr.Total != 2000 || cr.TaxIncludedTotal != 2200 {
		t.Fatalf("unexpected totals: %d / %d", cr.Total, cr.TaxIncludedTotal)
	}

	resp = postJSON(t, client, srv.URL+"/cart/remove/item-1", nil)
	cr = decodeCart(t, resp)
	if len(cr.Lines) != 1 || cr.Lines[0].ItemID != "item-2" {
		t.Fatalf("unexpected lines after remove: %+v", cr.Lines)
	}
	if cr.Total != 1000 || cr.TaxIncludedTotal != 1100 {
		t.Fatalf("unexpected totals after remove: %d / %d", cr.Total, cr.TaxIncludedTotal)
	}

	resp, err := client.Get(srv.URL + "/cart")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	cr = decodeCart(t, resp)
	if cr.Total != 1000 {
		t.Fatalf("view does not match last mutation: %+v", cr)
	}
}

func TestCartAddAccumulatesAcrossRequests(t *testing.T) {
	srv, client := newTestServer(t)

	postJSON(t, client, srv.URL+"/cart/add", addCartRequest{ItemID: "item-1", Quantity: 2}).Body.Close()
	resp := postJSON(t, client, srv.URL+"/cart/add", addCartRequest{ItemID: "item-1", Quantity: 3})
	cr := decodeCart(t, resp)
	if len(cr.Lines) != 1 || cr.Lines[0].Quantity != 5 {
		t.Fatalf("expected one line with quantity 5, got %+v", cr.Lines)
	}
}

func TestCartErrors(t *testing.T) {
	srv, client := newTestServer(t)

	resp := postJSON(t, client, srv.URL+"/cart/add", addCartRequest{ItemID: "nope", Quantity: 1})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown item: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, client, srv.URL+"/cart/add", addCartRequest{ItemID: "item-1", Quantity: 0})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("zero quantity: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, client, srv.URL+"/cart/remove/item-1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("remove absent line: status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestItemsEndpoints(t *testing.T) {
	srv, client := newTestServer(t)

	resp, err := client.Get(srv.URL + "/items")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var items []catalog.Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	resp, err = client.Get(srv.URL + "/items/item-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var it catalog.Item
	if err := json.NewDecoder(resp.Body).Decode(&it); err != nil {
		t.Fatalf("decode: %v", err)
	}
	resp.Body.Close()
	if it.Name != "Carrot" {
		t.Fatalf("unexpected item: %+v", it)
	}

	resp, err = client.Get(srv.URL + "/items/missing")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCheckoutFlow(t *testing.T) {
	srv, client := newTestServer(t)

	resp := postJSON(t, client, srv.URL+"/pay/checkout", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty cart checkout: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	postJSON(t, client, srv.URL+"/cart/add", addCartRequest{ItemID: "item-1", Quantity: 2}).Body.Close()

	resp = postJSON(t, client, srv.URL+"/pay/checkout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("checkout: status %d", resp.StatusCode)
	}
	var sess checkout.Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	resp.Body.Close()
	if sess.ID == "" || sess.RedirectURL == "" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	resp, err := client.Get(srv.URL + "/pay/success")
	if err != nil {
		t.Fatalf("success: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("success: status %d", resp.StatusCode)
	}

	resp, err = client.Get(srv.URL + "/cart")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	cr := decodeCart(t, resp)
	if len(cr.Lines) != 0 || cr.Total != 0 {
		t.Fatalf("cart should be empty after payment: %+v", cr)
	}
}
