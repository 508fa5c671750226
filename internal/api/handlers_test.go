package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/splitpay/splitpay/internal/service"
	"github.com/splitpay/splitpay/internal/storage/memory"
)

const (
	creatorAddr = "0x1111111111111111111111111111111111111111"
	aliceAddr   = "0x2222222222222222222222222222222222222222"
	bobAddr     = "0x3333333333333333333333333333333333333333"
	carolAddr   = "0x4444444444444444444444444444444444444444"
)

// setupTestServer starts the API over a fresh in-memory store.
func setupTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()
	srv := NewServer(service.NewSplitService(memory.New()), false)
	ts := httptest.NewServer(srv.Router())
	return ts, ts.Close
}

// splitData is the decoded data object of a split response.
type splitData struct {
	Token           string `json:"token"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	AmountPerPerson string `json:"amountPerPerson"`
	Participants    []struct {
		Address     string `json:"address"`
		Amount      string `json:"amount"`
		Paid        bool   `json:"paid"`
		TxReference string `json:"txReference"`
	} `json:"participants"`
	PaymentStatus struct {
		Collected string `json:"collected"`
		Remaining string `json:"remaining"`
		PaidCount int    `json:"paidCount"`
	} `json:"paymentStatus"`
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Errors  []string        `json:"errors"`
	Data    json.RawMessage `json:"data"`
}

func postJSON(t *testing.T, url string, body any) (*http.Response, envelope) {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

func getJSON(t *testing.T, url string) (*http.Response, envelope) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp, env
}

func decodeSplit(t *testing.T, env envelope) splitData {
	t.Helper()
	var data splitData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode split data: %v", err)
	}
	return data
}

func createDinner(t *testing.T, base string) splitData {
	t.Helper()
	resp, env := postJSON(t, base+"/api/splits", map[string]any{
		"name":           "Dinner",
		"amount":         "100",
		"participants":   4,
		"creatorAddress": creatorAddr,
		"creatorChain":   "1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", resp.StatusCode, env.Message)
	}
	return decodeSplit(t, env)
}

// Scenario A: create -> active, one pre-paid creator, 25.00 per person.
func TestCreateSplit(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	data := createDinner(t, ts.URL)
	if data.Status != "active" {
		t.Errorf("expected active, got %s", data.Status)
	}
	if data.AmountPerPerson != "25" {
		t.Errorf("expected amountPerPerson 25, got %s", data.AmountPerPerson)
	}
	if len(data.Participants) != 1 {
		t.Fatalf("expected 1 participant, got %d", len(data.Participants))
	}
	if !data.Participants[0].Paid {
		t.Error("creator must be pre-marked paid")
	}
	if len(data.Token) != 12 {
		t.Errorf("token %q is not 12 characters", data.Token)
	}
}

// Scenario B: join succeeds once, duplicate join fails.
func TestJoinSplit(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	created := createDinner(t, ts.URL)
	joinURL := fmt.Sprintf("%s/api/splits/%s/join", ts.URL, created.Token)

	resp, env := postJSON(t, joinURL, map[string]any{"address": aliceAddr, "chain": "137"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join: expected 200, got %d (%s)", resp.StatusCode, env.Message)
	}
	data := decodeSplit(t, env)
	if len(data.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(data.Participants))
	}
	if data.Participants[1].Paid {
		t.Error("new participant must start unpaid")
	}
	if data.Participants[1].Amount != "25" {
		t.Errorf("expected owed 25, got %s", data.Participants[1].Amount)
	}

	resp, env = postJSON(t, joinURL, map[string]any{"address": aliceAddr, "chain": "137"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate join: expected 400, got %d", resp.StatusCode)
	}
	if env.Success {
		t.Error("duplicate join must not report success")
	}
	if len(env.Errors) == 0 || env.Errors[0] != "already_joined" {
		t.Errorf("expected already_joined error kind, got %v", env.Errors)
	}
}

// Scenario C: completion happens exactly on the final payment.
func TestMarkPaidToCompletion(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	created := createDinner(t, ts.URL)
	base := fmt.Sprintf("%s/api/splits/%s", ts.URL, created.Token)

	others := []string{aliceAddr, bobAddr, carolAddr}
	for _, addr := range others {
		if resp, env := postJSON(t, base+"/join", map[string]any{"address": addr, "chain": "1"}); resp.StatusCode != http.StatusOK {
			t.Fatalf("join %s: got %d (%s)", addr, resp.StatusCode, env.Message)
		}
	}

	for i, addr := range others {
		resp, env := postJSON(t, base+"/pay", map[string]any{"address": addr, "txReference": "0xtx"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("pay %s: got %d (%s)", addr, resp.StatusCode, env.Message)
		}
		data := decodeSplit(t, env)
		if i < len(others)-1 && data.Status != "active" {
			t.Errorf("completed early after %d payments", i+1)
		}
		if i == len(others)-1 && data.Status != "completed" {
			t.Errorf("expected completed after final payment, got %s", data.Status)
		}
	}

	// Terminal state: a further pay attempt fails.
	resp, env := postJSON(t, base+"/pay", map[string]any{"address": aliceAddr})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 on double pay, got %d", resp.StatusCode)
	}
	if len(env.Errors) == 0 || env.Errors[0] != "already_paid" {
		t.Errorf("expected already_paid, got %v", env.Errors)
	}
}

func TestGetSplit(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	created := createDinner(t, ts.URL)

	resp, env := getJSON(t, fmt.Sprintf("%s/api/splits/%s", ts.URL, created.Token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	data := decodeSplit(t, env)
	if data.Name != "Dinner" {
		t.Errorf("expected Dinner, got %s", data.Name)
	}
	if data.PaymentStatus.PaidCount != 1 {
		t.Errorf("expected 1 paid (creator), got %d", data.PaymentStatus.PaidCount)
	}
	if data.PaymentStatus.Collected != "25" {
		t.Errorf("expected collected 25, got %s", data.PaymentStatus.Collected)
	}
}

func TestGetSplit_NotFound(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	resp, env := getJSON(t, ts.URL+"/api/splits/ZZZZZZZZZZZZ")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	if env.Success {
		t.Error("not-found must not report success")
	}
}

func TestGetSplit_MalformedToken(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	for _, tok := range []string{"short", "lowercase000", "WAYTOOLONGTOKEN1"} {
		resp, _ := getJSON(t, ts.URL+"/api/splits/"+tok)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("token %q: expected 400, got %d", tok, resp.StatusCode)
		}
	}
}

func TestCreate_ValidationBoundary(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	cases := []struct {
		participants int
		wantStatus   int
	}{
		{1, http.StatusBadRequest},
		{2, http.StatusCreated},
		{50, http.StatusCreated},
		{51, http.StatusBadRequest},
	}
	for _, c := range cases {
		resp, _ := postJSON(t, ts.URL+"/api/splits", map[string]any{
			"name":           "Boundary",
			"amount":         "100",
			"participants":   c.participants,
			"creatorAddress": creatorAddr,
			"creatorChain":   "1",
		})
		if resp.StatusCode != c.wantStatus {
			t.Errorf("participants=%d: expected %d, got %d", c.participants, c.wantStatus, resp.StatusCode)
		}
	}
}

func TestCreate_InvalidShapes(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	valid := func() map[string]any {
		return map[string]any{
			"name":           "Dinner",
			"amount":         "100",
			"participants":   4,
			"creatorAddress": creatorAddr,
			"creatorChain":   "1",
		}
	}

	cases := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{"empty name", func(m map[string]any) { m["name"] = "" }},
		{"long name", func(m map[string]any) { m["name"] = strings.Repeat("x", 101) }},
		{"long multibyte name", func(m map[string]any) { m["name"] = strings.Repeat("é", 101) }},
		{"zero amount", func(m map[string]any) { m["amount"] = "0" }},
		{"negative amount", func(m map[string]any) { m["amount"] = "-5" }},
		{"bad address", func(m map[string]any) { m["creatorAddress"] = "0x123" }},
		{"missing chain", func(m map[string]any) { m["creatorChain"] = "" }},
		{"long description", func(m map[string]any) { m["description"] = strings.Repeat("é", 501) }},
	}
	for _, c := range cases {
		body := valid()
		c.mutate(body)
		resp, env := postJSON(t, ts.URL+"/api/splits", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", c.name, resp.StatusCode)
		}
		if len(env.Errors) == 0 {
			t.Errorf("%s: expected validation detail strings", c.name)
		}
	}
}

// Limits count characters, not bytes: a 100-rune multibyte name is
// within bounds even though it exceeds 100 bytes.
func TestCreate_MultibyteNameWithinLimit(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	resp, env := postJSON(t, ts.URL+"/api/splits", map[string]any{
		"name":           strings.Repeat("é", 100),
		"amount":         "100",
		"participants":   4,
		"creatorAddress": creatorAddr,
		"creatorChain":   "1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected 201 for 100-rune name, got %d (%v)", resp.StatusCode, env.Errors)
	}
}

func TestCancelSplit(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	created := createDinner(t, ts.URL)
	cancelURL := fmt.Sprintf("%s/api/splits/%s/cancel", ts.URL, created.Token)

	resp, _ := postJSON(t, cancelURL, map[string]any{"address": aliceAddr})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("non-creator cancel: expected 403, got %d", resp.StatusCode)
	}

	resp, env := postJSON(t, cancelURL, map[string]any{"address": creatorAddr})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel: expected 200, got %d (%s)", resp.StatusCode, env.Message)
	}
	if data := decodeSplit(t, env); data.Status != "cancelled" {
		t.Errorf("expected cancelled, got %s", data.Status)
	}

	resp, _ = postJSON(t, fmt.Sprintf("%s/api/splits/%s/join", ts.URL, created.Token),
		map[string]any{"address": aliceAddr, "chain": "1"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("join after cancel: expected 400, got %d", resp.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	resp, env := getJSON(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || !env.Success {
		t.Errorf("healthz: got %d success=%v", resp.StatusCode, env.Success)
	}
}
