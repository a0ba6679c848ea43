package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"jacksonjar/internal/domain"
	"jacksonjar/internal/http/handlers"
	"jacksonjar/internal/jar"
	"jacksonjar/internal/middleware"
	"jacksonjar/internal/testutil"
)

type harness struct {
	merchants *testutil.MerchantStore
	donations *testutil.DonationStore
	platform  *testutil.FakePlatform
	sessions  *middleware.Sessions
	notified  *countingNotifier
	handler   http.Handler
}

type countingNotifier struct {
	calls int
}

func (c *countingNotifier) DonationReceived(context.Context, domain.Merchant, domain.Donation, string) error {
	c.calls++
	return nil
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		merchants: testutil.NewMerchantStore(),
		platform:  testutil.NewFakePlatform(),
		sessions:  middleware.NewSessions("test-secret", time.Hour, false),
		notified:  &countingNotifier{},
	}
	h.donations = testutil.NewDonationStore(h.merchants)
	log := zerolog.New(io.Discard)
	svc := jar.NewService(h.merchants, h.donations, h.platform, jar.Settings{
		JacksonCents:   2000,
		PlatformFee:    100,
		Currency:       "usd",
		PublishableKey: "pk_test_123",
	}, log, jar.WithNotifier(h.notified))
	app := handlers.NewApp(svc, h.sessions, nil, "https://jar.example", false, log)
	h.handler = NewRouter(app, Options{
		Logger:           log,
		Merchants:        h.merchants,
		DefaultLocale:    "en",
		ChargeRatePerMin: 100,
	})
	return h
}

func (h *harness) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) loginCookie(t *testing.T, merchantID int64) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := h.sessions.Issue(rec, merchantID); err != nil {
		t.Fatal(err)
	}
	return findCookie(t, rec, middleware.SessionCookie)
}

func findCookie(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func chargeRequest(merchantID, token, email string) *http.Request {
	form := url.Values{}
	if token != "" {
		form.Set("stripeToken", token)
	}
	if email != "" {
		form.Set("stripeEmail", email)
	}
	req := httptest.NewRequest(http.MethodPost, "/charge/"+merchantID, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}

func TestChargeSuccessRedirectsToThanks(t *testing.T) {
	h := newHarness(t)
	m := h.merchants.Seed(domain.Merchant{StripeUserID: "acct_1", Name: "Cafe"})

	rec := h.do(chargeRequest("1", "tok_visa", "donor@example.com"))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/thanks/1" {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
	n, _ := h.donations.CountForMerchant(context.Background(), m.ID)
	if n != 1 {
		t.Fatalf("donation count = %d, want 1", n)
	}
	if got := h.donations.All()[0].Amount; got != 2000 {
		t.Fatalf("amount = %d", got)
	}

	thanks := h.do(httptest.NewRequest(http.MethodGet, "/thanks/1", nil))
	if thanks.Code != http.StatusOK {
		t.Fatalf("thanks status = %d", thanks.Code)
	}
	var view struct {
		Merchant struct {
			Name string `json:"name"`
		} `json:"merchant"`
	}
	decode(t, thanks, &view)
	if view.Merchant.Name != "Cafe" {
		t.Fatalf("thanks merchant = %q", view.Merchant.Name)
	}
}

func TestChargeSameTokenTwiceRecordsOnce(t *testing.T) {
	h := newHarness(t)
	h.merchants.Seed(domain.Merchant{StripeUserID: "acct_1", Name: "Cafe"})

	for i := 0; i < 2; i++ {
		rec := h.do(chargeRequest("1", "tok_visa", "donor@example.com"))
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/thanks/1" {
			t.Fatalf("post %d: status = %d location = %q", i+1, rec.Code, rec.Header().Get("Location"))
		}
	}
	if got := len(h.donations.All()); got != 1 {
		t.Fatalf("donations = %d, want 1", got)
	}
	if h.notified.calls != 1 {
		t.Fatalf("notifications = %d, want 1", h.notified.calls)
	}
}

func TestChargeDeclinedFlashesOnJar(t *testing.T) {
	h := newHarness(t)
	h.merchants.Seed(domain.Merchant{StripeUserID: "acct_1", Name: "Cafe"})

	rec := h.do(chargeRequest("1", testutil.DeclineToken, "donor@example.com"))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/jar/1" {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
	if len(h.donations.All()) != 0 {
		t.Fatal("declined charge recorded")
	}

	req := httptest.NewRequest(http.MethodGet, "/jar/1", nil)
	req.AddCookie(findCookie(t, rec, "jar_flash"))
	jarRec := h.do(req)
	var view struct {
		Flashes []handlers.Flash `json:"flashes"`
	}
	decode(t, jarRec, &view)
	if len(view.Flashes) != 1 || view.Flashes[0].Category != "warning" || !strings.Contains(view.Flashes[0].Message, "declined") {
		t.Fatalf("flashes = %+v", view.Flashes)
	}
}

func TestChargeUnknownMerchant(t *testing.T) {
	h := newHarness(t)

	rec := h.do(chargeRequest("42", "tok_visa", "donor@example.com"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if h.platform.ChargeCount() != 0 {
		t.Fatal("charge API called for unknown merchant")
	}
}

func TestChargeMissingFields(t *testing.T) {
	h := newHarness(t)
	h.merchants.Seed(domain.Merchant{StripeUserID: "acct_1"})

	rec := h.do(chargeRequest("1", "", "donor@example.com"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if h.platform.ChargeCount() != 0 {
		t.Fatal("charge API called without a token")
	}
}

func TestChargeUnknownMerchantEmptyForm(t *testing.T) {
	h := newHarness(t)

	rec := h.do(chargeRequest("999", "", ""))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if h.platform.ChargeCount() != 0 {
		t.Fatal("charge API called for unknown merchant")
	}
}

func TestChargePersistFailureIs500(t *testing.T) {
	h := newHarness(t)
	h.merchants.Seed(domain.Merchant{StripeUserID: "acct_1"})
	h.donations.CreateErr = errors.New("db down")

	rec := h.do(chargeRequest("1", "tok_visa", "donor@example.com"))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestJarLookup(t *testing.T) {
	h := newHarness(t)
	h.merchants.Seed(domain.Merchant{StripeUserID: "acct_1", Name: "Cafe", StripeSecretKey: "sk_secret"})

	rec := h.do(httptest.NewRequest(http.MethodGet, "/jar/1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "sk_secret") {
		t.Fatal("jar view leaked credentials")
	}
	var view struct {
		PublishableKey string `json:"publishable_key"`
		Amount         int64  `json:"amount"`
		ChargeURL      string `json:"charge_url"`
	}
	decode(t, rec, &view)
	if view.PublishableKey != "pk_test_123" || view.Amount != 2000 || view.ChargeURL != "/charge/1" {
		t.Fatalf("view = %+v", view)
	}

	for _, path := range []string{"/jar/99", "/jar/abc", "/thanks/99"} {
		if rec := h.do(httptest.NewRequest(http.MethodGet, path, nil)); rec.Code != http.StatusNotFound {
			t.Fatalf("%s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestIndexCountsAndLoggedInRedirect(t *testing.T) {
	h := newHarness(t)
	a := h.merchants.Seed(domain.Merchant{StripeUserID: "acct_1"})
	h.merchants.Seed(domain.Merchant{StripeUserID: "acct_2"})
	h.do(chargeRequest("1", "tok_1", "x@example.com"))
	h.do(chargeRequest("1", "tok_2", "y@example.com"))

	rec := h.do(httptest.NewRequest(http.MethodGet, "/", nil))
	var view struct {
		Jacksons  int64 `json:"total_jackson_count"`
		Merchants int64 `json:"total_merchant_count"`
	}
	decode(t, rec, &view)
	if view.Jacksons != 2 || view.Merchants != 1 {
		t.Fatalf("index = %+v", view)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(h.loginCookie(t, a.ID))
	if rec := h.do(req); rec.Code != http.StatusFound || rec.Header().Get("Location") != "/home" {
		t.Fatalf("logged-in index: status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestHomeRequiresSession(t *testing.T) {
	h := newHarness(t)
	m := h.merchants.Seed(domain.Merchant{StripeUserID: "acct_1", Name: "Cafe"})

	for _, path := range []string{"/home", "/details"} {
		rec := h.do(httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
			t.Fatalf("%s anonymous: status = %d location = %q", path, rec.Code, rec.Header().Get("Location"))
		}
	}

	h.do(chargeRequest("1", "tok_1", "x@example.com"))
	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(h.loginCookie(t, m.ID))
	rec := h.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("home status = %d", rec.Code)
	}
	var view struct {
		JarURL       string `json:"jar_url"`
		Count        int    `json:"count"`
		CountVerbose string `json:"count_verbose"`
		Donations    []struct {
			TimeAgo string `json:"time_ago"`
		} `json:"donations"`
	}
	decode(t, rec, &view)
	if view.JarURL != "https://jar.example/jar/1" || view.Count != 1 || view.CountVerbose != "1 Jackson" {
		t.Fatalf("home = %+v", view)
	}
	if len(view.Donations) != 1 || view.Donations[0].TimeAgo == "" {
		t.Fatalf("donations = %+v", view.Donations)
	}
}

func TestDetailsOmitsCredentials(t *testing.T) {
	h := newHarness(t)
	m := h.merchants.Seed(domain.Merchant{
		StripeUserID:    "acct_1",
		Email:           "owner@example.com",
		StripeSecretKey: "sk_secret",
		RefreshToken:    "rt_secret",
	})

	req := httptest.NewRequest(http.MethodGet, "/details", nil)
	req.AddCookie(h.loginCookie(t, m.ID))
	rec := h.do(req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "sk_secret") || strings.Contains(body, "rt_secret") {
		t.Fatalf("details leaked credentials: %s", body)
	}
	if !strings.Contains(body, "owner@example.com") {
		t.Fatalf("details missing email: %s", body)
	}
}

func TestOAuthCallbackConnectsAndLogsIn(t *testing.T) {
	h := newHarness(t)
	h.platform.Tokens["ac_1"] = domain.OAuthToken{StripeUserID: "acct_1", AccessToken: "sk_1"}
	h.platform.Tokens["ac_2"] = domain.OAuthToken{StripeUserID: "acct_1", AccessToken: "sk_2"}
	h.platform.Accounts["acct_1"] = domain.AccountProfile{Email: "owner@example.com", Name: "Cafe"}

	rec := h.do(httptest.NewRequest(http.MethodGet, "/oauth/callback?code=ac_1", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/home" {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
	cookie := findCookie(t, rec, middleware.SessionCookie)

	h.platform.Accounts["acct_1"] = domain.AccountProfile{Email: "new@example.com", Name: "Cafe Two"}
	h.do(httptest.NewRequest(http.MethodGet, "/oauth/callback?code=ac_2", nil))
	if h.merchants.Count() != 1 {
		t.Fatalf("merchants = %d, want 1", h.merchants.Count())
	}
	m, _ := h.merchants.GetByStripeUserID(context.Background(), "acct_1")
	if m.Email != "new@example.com" || m.StripeSecretKey != "sk_2" {
		t.Fatalf("merchant not refreshed: %+v", m)
	}

	req := httptest.NewRequest(http.MethodGet, "/home", nil)
	req.AddCookie(cookie)
	if rec := h.do(req); rec.Code != http.StatusOK {
		t.Fatalf("session not established: %d", rec.Code)
	}
}

func TestOAuthCallbackErrors(t *testing.T) {
	h := newHarness(t)

	for _, path := range []string{
		"/oauth/callback?error=access_denied&error_description=The+user+denied+your+request",
		"/oauth/callback?code=bogus",
	} {
		rec := h.do(httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/home" {
			t.Fatalf("%s: status = %d location = %q", path, rec.Code, rec.Header().Get("Location"))
		}
		findCookie(t, rec, "jar_flash")
		for _, c := range rec.Result().Cookies() {
			if c.Name == middleware.SessionCookie {
				t.Fatalf("%s: session issued on failure", path)
			}
		}
	}
	if h.merchants.Count() != 0 {
		t.Fatal("failed callbacks created merchants")
	}
}

func TestAuthorizeRedirects(t *testing.T) {
	h := newHarness(t)
	rec := h.do(httptest.NewRequest(http.MethodGet, "/authorize", nil))
	if rec.Code != http.StatusFound || !strings.HasPrefix(rec.Header().Get("Location"), "https://connect.stripe.com/oauth/authorize") {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLogoutClearsSession(t *testing.T) {
	h := newHarness(t)
	m := h.merchants.Seed(domain.Merchant{StripeUserID: "acct_1"})

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(h.loginCookie(t, m.ID))
	rec := h.do(req)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("status = %d location = %q", rec.Code, rec.Header().Get("Location"))
	}
	if c := findCookie(t, rec, middleware.SessionCookie); c.MaxAge >= 0 {
		t.Fatalf("session cookie not expired: %+v", c)
	}

	index := httptest.NewRequest(http.MethodGet, "/", nil)
	index.AddCookie(findCookie(t, rec, "jar_flash"))
	var view struct {
		Flashes []handlers.Flash `json:"flashes"`
	}
	decode(t, h.do(index), &view)
	if len(view.Flashes) != 1 || view.Flashes[0].Message != "Logout Successful - See you soon!" || view.Flashes[0].Category != "info" {
		t.Fatalf("flashes = %+v", view.Flashes)
	}
}

func TestWebhook(t *testing.T) {
	h := newHarness(t)
	h.merchants.Seed(domain.Merchant{StripeUserID: "acct_1", Email: "old@example.com"})
	payload := testutil.EncodeTestEvent(domain.Event{
		ID:        "evt_1",
		Type:      domain.EventAccountUpdated,
		AccountID: "acct_1",
		Profile:   &domain.AccountProfile{Email: "new@example.com"},
	})

	bad := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(payload)))
	bad.Header.Set("Stripe-Signature", "forged")
	if rec := h.do(bad); rec.Code != http.StatusBadRequest {
		t.Fatalf("forged webhook status = %d, want 400", rec.Code)
	}
	m, _ := h.merchants.GetByID(context.Background(), 1)
	if m.Email != "old@example.com" {
		t.Fatal("forged webhook mutated merchant")
	}

	good := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(string(payload)))
	good.Header.Set("Stripe-Signature", "valid")
	if rec := h.do(good); rec.Code != http.StatusOK {
		t.Fatalf("webhook status = %d", rec.Code)
	}
	m, _ = h.merchants.GetByID(context.Background(), 1)
	if m.Email != "new@example.com" {
		t.Fatalf("webhook not applied: %+v", m)
	}
}

func TestHealthAndNotFound(t *testing.T) {
	h := newHarness(t)
	if rec := h.do(httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)); rec.Code != http.StatusOK {
		t.Fatalf("health status = %d", rec.Code)
	}
	rec := h.do(httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown route status = %d", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	if body.Error != "not_found" {
		t.Fatalf("error = %q", body.Error)
	}
}

func TestChargeRateLimited(t *testing.T) {
	h := newHarness(t)
	h.merchants.Seed(domain.Merchant{StripeUserID: "acct_1"})
	log := zerolog.New(io.Discard)
	app := handlers.NewApp(
		jar.NewService(h.merchants, h.donations, h.platform, jar.Settings{JacksonCents: 2000, PlatformFee: 100, Currency: "usd"}, log),
		h.sessions, nil, "", false, log,
	)
	limited := NewRouter(app, Options{Logger: log, Merchants: h.merchants, ChargeRatePerMin: 1})

	first := httptest.NewRecorder()
	limited.ServeHTTP(first, chargeRequest("1", "tok_1", "a@example.com"))
	second := httptest.NewRecorder()
	limited.ServeHTTP(second, chargeRequest("1", "tok_2", "a@example.com"))
	if first.Code != http.StatusSeeOther || second.Code != http.StatusTooManyRequests {
		t.Fatalf("statuses = %d, %d", first.Code, second.Code)
	}
}
