package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/set-night/sharemitra/internal/domain"
	"github.com/set-night/sharemitra/internal/lock"
	"github.com/set-night/sharemitra/internal/metrics"
	"github.com/set-night/sharemitra/internal/repository/memory"
	"github.com/set-night/sharemitra/internal/service"
	"github.com/shopspring/decimal"
)

type stubOracle struct {
	mu        sync.Mutex
	broadcast string
	recipient string
	err       error
}

func (o *stubOracle) Ask(_ context.Context, prompt string, _ []byte, _ int) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return "", o.err
	}
	if strings.Contains(prompt, "broadcast list information page") {
		return o.recipient, nil
	}
	return o.broadcast, nil
}

type stubProvider struct {
	mu        sync.Mutex
	n         int
	payoutErr error
}

func (p *stubProvider) CreateContact(context.Context, *domain.User, string) (string, error) {
	return "cont_1", nil
}

func (p *stubProvider) CreateFundAccount(context.Context, string, *domain.PaymentMethod) (string, error) {
	return "fa_1", nil
}

func (p *stubProvider) CreatePayout(_ context.Context, fa string, _ domain.PaymentType, amount decimal.Decimal, ref string) (*service.ProviderPayout, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.payoutErr != nil {
		return nil, p.payoutErr
	}
	p.n++
	return &service.ProviderPayout{ID: fmt.Sprintf("pout_%d", p.n), FundAccountID: fa, Status: "processing", ReferenceID: ref}, nil
}

func (p *stubProvider) FetchPayout(_ context.Context, id string) (*service.ProviderPayout, error) {
	return &service.ProviderPayout{ID: id, Status: "processed"}, nil
}

type testServer struct {
	store    *memory.MemoryStore
	oracle   *stubOracle
	provider *stubProvider
	srv      *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewMemoryStore()
	store.PutUser(domain.User{UserID: "u1", Name: "Asha", Phone: "9876543210"})
	store.PutWallet("u1", decimal.Zero)
	if _, err := store.CreateTask(context.Background(), &domain.Task{
		TaskID: "t1", Title: "Share", ExpectedLink: "https://shop.example.in/offer", Price: decimal.NewFromInt(50),
	}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	oracle := &stubOracle{
		broadcast: `{"is_whatsapp_screenshot": true, "is_broadcast_list": true, "contains_expected_link": true}`,
		recipient: `{"participant_count": 4, "is_valid_list": true, "group_name": "Friends"}`,
	}
	provider := &stubProvider{}
	m := metrics.New()

	wallets := service.NewWalletService(store)
	h := New(Deps{
		Submissions:    service.NewSubmissionService(store, service.NewEvidenceVerifier(oracle, 2, m), wallets, nil, nil, m),
		Tasks:          service.NewTaskService(store, store, nil),
		Wallets:        wallets,
		PaymentMethods: service.NewPaymentMethodService(store, nil),
		Payouts:        service.NewPayoutService(store, provider, wallets, lock.NewLocal(), nil, nil, m),
		Store:          store,
		Metrics:        m,
	})
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return &testServer{store: store, oracle: oracle, provider: provider, srv: srv}
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (int, apiResponse) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return ts.send(t, req)
}

func (ts *testServer) send(t *testing.T, req *http.Request) (int, apiResponse) {
	t.Helper()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, out
}

func (ts *testServer) submit(t *testing.T, fields map[string]string, files map[string][]byte) (int, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	for k, data := range files {
		fw, err := mw.CreateFormFile(k, k+".png")
		if err != nil {
			t.Fatalf("CreateFormFile: %v", err)
		}
		fw.Write(data)
	}
	mw.Close()
	req, _ := http.NewRequest(http.MethodPost, ts.srv.URL+"/image/api/verify", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return ts.send(t, req)
}

func pngImage(t *testing.T, seed int64) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	img := image.NewGray(image.Rect(0, 0, 128, 128))
	var cells [8][8]uint8
	for y := range cells {
		for x := range cells[y] {
			cells[y][x] = uint8(rng.Intn(256))
		}
	}
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			img.SetGray(x, y, color.Gray{Y: cells[y/16][x/16]})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png: %v", err)
	}
	return buf.Bytes()
}

func decodeData(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode data %s: %v", raw, err)
	}
}

func TestVerifyFlow(t *testing.T) {
	ts := newTestServer(t)
	files := map[string][]byte{"image": pngImage(t, 1), "group_image": pngImage(t, 2)}
	fields := map[string]string{"taskId": "t1", "userId": "u1"}

	code, resp := ts.submit(t, fields, files)
	if code != http.StatusOK || !resp.Success {
		t.Fatalf("accepted: %d %+v", code, resp)
	}
	var data struct {
		Status           string          `json:"status"`
		ParticipantCount int             `json:"participant_count"`
		Balance          decimal.Decimal `json:"balance"`
	}
	decodeData(t, resp.Data, &data)
	if data.Status != "accepted" || data.ParticipantCount != 4 || !data.Balance.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("data = %+v", data)
	}

	code, resp = ts.submit(t, fields, files)
	if code != http.StatusOK || resp.Success || !strings.Contains(string(resp.Data), "already_done") {
		t.Fatalf("resubmit: %d %+v", code, resp)
	}

	code, _ = ts.do(t, http.MethodGet, "/wallet/info?userId=u1", nil)
	if code != http.StatusOK {
		t.Fatalf("wallet info: %d", code)
	}

	code, resp = ts.do(t, http.MethodDelete, "/tasks/t1", nil)
	if code != http.StatusBadRequest || resp.Success {
		t.Fatalf("delete credited task: %d %+v", code, resp)
	}
}

func TestVerifyErrors(t *testing.T) {
	ts := newTestServer(t)
	img := pngImage(t, 3)

	code, _ := ts.submit(t, map[string]string{"taskId": "t1", "userId": "u1"}, map[string][]byte{"image": img})
	if code != http.StatusBadRequest {
		t.Fatalf("missing group image: %d", code)
	}
	code, _ = ts.submit(t, map[string]string{"taskId": "nope", "userId": "u1"}, map[string][]byte{"image": img, "group_image": img})
	if code != http.StatusNotFound {
		t.Fatalf("unknown task: %d", code)
	}

	ts.oracle.recipient = `{"participant_count": 1, "is_valid_list": true}`
	code, resp := ts.submit(t, map[string]string{"taskId": "t1", "userId": "u1"}, map[string][]byte{"image": img, "group_image": img})
	if code != http.StatusOK || resp.Success || !strings.Contains(string(resp.Data), "rejected") {
		t.Fatalf("too few recipients: %d %+v", code, resp)
	}
	if resp.Message != "broadcast list must contain at least 2 recipients" {
		t.Fatalf("too few recipients message = %q", resp.Message)
	}

	ts.oracle.err = &domain.ExternalError{Service: "oracle", Code: domain.CodeOracleUnreachable, Err: errors.New("timeout")}
	code, resp = ts.submit(t, map[string]string{"taskId": "t1", "userId": "u1"}, map[string][]byte{"image": img, "group_image": img})
	if code != http.StatusInternalServerError || resp.Success {
		t.Fatalf("oracle down: %d %+v", code, resp)
	}
}

func TestTaskEndpoints(t *testing.T) {
	ts := newTestServer(t)

	code, resp := ts.do(t, http.MethodPost, "/tasks", map[string]any{"title": "New", "expected_link": "https://a.in/x", "price": "12.5"})
	if code != http.StatusCreated {
		t.Fatalf("create: %d %+v", code, resp)
	}
	var created struct {
		TaskID string `json:"taskId"`
	}
	decodeData(t, resp.Data, &created)

	if code, _ := ts.do(t, http.MethodPost, "/tasks", map[string]any{"title": "Bad", "expected_link": "not a url", "price": 5}); code != http.StatusBadRequest {
		t.Fatalf("invalid create: %d", code)
	}
	if code, _ := ts.do(t, http.MethodGet, "/tasks/missing", nil); code != http.StatusNotFound {
		t.Fatalf("get missing: %d", code)
	}
	if code, _ := ts.do(t, http.MethodPatch, "/tasks/"+created.TaskID, map[string]any{"title": "Renamed"}); code != http.StatusOK {
		t.Fatalf("update: %d", code)
	}
	if code, _ := ts.do(t, http.MethodPut, "/tasks/"+created.TaskID+"/hidden", map[string]any{"hidden": true}); code != http.StatusOK {
		t.Fatalf("hide: %d", code)
	}

	code, resp = ts.do(t, http.MethodGet, "/tasks?keyword=renamed&page=1&per_page=10", nil)
	if code != http.StatusOK || !strings.Contains(string(resp.Data), `"total_tasks":1`) {
		t.Fatalf("list: %d %s", code, resp.Data)
	}
	if code, _ := ts.do(t, http.MethodGet, "/tasks?page=x", nil); code != http.StatusBadRequest {
		t.Fatalf("bad page: %d", code)
	}

	code, resp = ts.do(t, http.MethodGet, "/users/u9/next-task", nil)
	if code != http.StatusOK || resp.Message != "Task hidden" {
		t.Fatalf("next task: %d %+v", code, resp)
	}

	if code, _ := ts.do(t, http.MethodDelete, "/tasks/"+created.TaskID, nil); code != http.StatusOK {
		t.Fatalf("delete: %d", code)
	}
	if code, _ := ts.do(t, http.MethodGet, "/users/u1/task-history", nil); code != http.StatusOK {
		t.Fatalf("history: %d", code)
	}
}

func TestWithdrawEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	if _, err := ts.store.Apply(ctx, service.NewWalletService(ts.store).Credit("u1", "t0", decimal.NewFromInt(50))); err != nil {
		t.Fatalf("credit: %v", err)
	}

	code, resp := ts.do(t, http.MethodPost, "/payout/withdraw", map[string]any{"userId": "u1", "amount": 10, "paymentType": 0})
	if code != http.StatusBadRequest || resp.Success {
		t.Fatalf("no payment method: %d %+v", code, resp)
	}

	code, _ = ts.do(t, http.MethodPost, "/payment/methods", map[string]any{"userId": "u1", "paymentMethod": "upi", "upiId": "asha@okaxis"})
	if code != http.StatusOK {
		t.Fatalf("save payment method: %d", code)
	}

	code, resp = ts.do(t, http.MethodPost, "/payout/withdraw", map[string]any{"userId": "u1", "amount": 100, "paymentType": 0})
	if code != http.StatusBadRequest || !strings.Contains(resp.Message, "insufficient") {
		t.Fatalf("overdraw: %d %+v", code, resp)
	}
	if ts.provider.n != 0 {
		t.Fatalf("provider called on overdraw")
	}

	code, resp = ts.do(t, http.MethodPost, "/payout/withdraw", map[string]any{"userId": "u1", "amount": 20, "paymentType": 0})
	if code != http.StatusOK {
		t.Fatalf("withdraw: %d %+v", code, resp)
	}
	var res struct {
		PayoutID  string          `json:"payout_id"`
		Remaining decimal.Decimal `json:"remaining_balance"`
	}
	decodeData(t, resp.Data, &res)
	if res.PayoutID != "pout_1" || !res.Remaining.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("withdraw data = %+v", res)
	}

	ts.provider.payoutErr = &domain.ExternalError{
		Service: "razorpay", Code: domain.CodePayoutCallFailed,
		Payload: map[string]any{"error": "account blocked"}, Err: errors.New("status 400"),
	}
	code, resp = ts.do(t, http.MethodPost, "/payout/withdraw", map[string]any{"userId": "u1", "amount": 5, "paymentType": 0})
	if code != http.StatusInternalServerError || !strings.Contains(string(resp.Data), "account blocked") {
		t.Fatalf("provider failure: %d %+v", code, resp)
	}
	w, _ := ts.store.GetWallet(ctx, "u1")
	if !w.Balance.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("balance = %s after provider failure", w.Balance)
	}

	code, resp = ts.do(t, http.MethodGet, "/payout/status?userId=u1", nil)
	if code != http.StatusOK || !strings.Contains(string(resp.Data), "Processed") {
		t.Fatalf("status: %d %s", code, resp.Data)
	}
	code, resp = ts.do(t, http.MethodGet, "/payouts?keyword=asha", nil)
	if code != http.StatusOK || !strings.Contains(string(resp.Data), `"total_payouts":1`) {
		t.Fatalf("history: %d %s", code, resp.Data)
	}

	if code, _ := ts.do(t, http.MethodGet, "/payment/methods?userId=u1", nil); code != http.StatusOK {
		t.Fatalf("list payment methods: %d", code)
	}
	if code, _ := ts.do(t, http.MethodDelete, "/payment/methods/missing?userId=u1", nil); code != http.StatusNotFound {
		t.Fatalf("delete missing payment method: %d", code)
	}
}

func TestWalletInfoErrors(t *testing.T) {
	ts := newTestServer(t)
	if code, _ := ts.do(t, http.MethodGet, "/wallet/info", nil); code != http.StatusBadRequest {
		t.Fatalf("missing user: %d", code)
	}
	if code, _ := ts.do(t, http.MethodGet, "/wallet/info?userId=ghost", nil); code != http.StatusNotFound {
		t.Fatalf("unknown wallet: %d", code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)
	if code, resp := ts.do(t, http.MethodGet, "/healthz", nil); code != http.StatusOK || !resp.Success {
		t.Fatalf("healthz: %d", code)
	}
	resp, err := http.Get(ts.srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status = %d", resp.StatusCode)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.Invalid("x"), http.StatusBadRequest},
		{domain.ErrDuplicateEvidence, http.StatusBadRequest},
		{domain.ErrTaskHasSubmissions, http.StatusBadRequest},
		{domain.ErrInsufficientBalance, http.StatusBadRequest},
		{domain.ErrWalletNotFound, http.StatusNotFound},
		{domain.ErrBusy, http.StatusConflict},
		{&domain.ExternalError{Service: "razorpay", Code: domain.CodePayoutCallFailed}, http.StatusInternalServerError},
		{&domain.PostPayoutLedgerError{PayoutID: "p"}, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Fatalf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
