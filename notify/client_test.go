package notify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Ashenafi-pixel/simple-roulette/spin"
)

func TestSign_SortedValuesSkipAction(t *testing.T) {
	v := url.Values{}
	v.Set("b", "2")
	v.Set("a", "1")
	v.Set("action", "spin_result")
	v.Set("c", "3")

	m := hmac.New(sha256.New, []byte("secret"))
	m.Write([]byte("123"))
	want := hex.EncodeToString(m.Sum(nil))
	if got := Sign("secret", v); got != want {
		t.Errorf("Sign = %s, want %s", got, want)
	}
	v.Set("signature", "ignored")
	if got := Sign("secret", v); got != want {
		t.Error("signature field must not be signed")
	}
}

func TestSpinResult(t *testing.T) {
	got := make(chan url.Values, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.URL.Query()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	rec := spin.Record{
		SpinID:        "spin-1",
		SelectedIndex: 2,
		ItemName:      "Pizza",
		ItemWeight:    3,
		TotalWeight:   6,
		Address:       "0xabc",
		RevealedAt:    time.UnixMilli(1700000000123),
	}
	c := NewClient(srv.URL+"/hooks/roulette", "shh")
	if err := c.SpinResult(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	q := <-got
	if q.Get("action") != "spin_result" || q.Get("spin_id") != "spin-1" || q.Get("item_name") != "Pizza" {
		t.Errorf("query %v", q)
	}
	if q.Get("selected_index") != "2" || q.Get("revealed_at") != "1700000000123" {
		t.Errorf("query %v", q)
	}
	sig := q.Get("signature")
	q.Del("signature")
	if sig == "" || sig != Sign("shh", q) {
		t.Errorf("signature %q does not verify", sig)
	}
}

func TestSpinResult_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	if err := NewClient(srv.URL, "").SpinResult(context.Background(), spin.Record{SpinID: "x"}); err == nil {
		t.Error("403 should be an error")
	}
}
