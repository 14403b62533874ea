package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/bengalmatrimony/backend/internal/middleware"
	"github.com/bengalmatrimony/backend/internal/models"
	"github.com/bengalmatrimony/backend/internal/services"
	"github.com/bengalmatrimony/backend/internal/session"
)

type stubVerifier map[string]string // token -> email

func (s stubVerifier) VerifyIDToken(ctx context.Context, token string) (*appMiddleware.VerifiedIdentity, error) {
	email, ok := s[token]
	if !ok {
		return nil, errors.New("bad token")
	}
	return &appMiddleware.VerifiedIdentity{UID: "uid-" + token, Email: email}, nil
}

func (s stubVerifier) LookupUser(ctx context.Context, email string) (*appMiddleware.ProviderProfile, error) {
	return &appMiddleware.ProviderProfile{DisplayName: "Provider Name", PhotoURL: "https://photos/p.jpg"}, nil
}

type stubProvider struct {
	intents map[string]*services.PaymentIntent
}

func (p *stubProvider) CreateIntent(ctx context.Context, amount int64, currency, email string, biodataID int) (*services.PaymentIntent, error) {
	return &services.PaymentIntent{ID: "pi_new", ClientSecret: "cs_new", Amount: amount, Currency: currency, Email: email, BiodataID: biodataID}, nil
}

func (p *stubProvider) GetIntent(ctx context.Context, id string) (*services.PaymentIntent, error) {
	pi, ok := p.intents[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown", services.ErrPaymentNotConfirmed)
	}
	return pi, nil
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Kind    string            `json:"kind"`
	Errors  map[string]string `json:"errors"`
}

type testApp struct {
	t        *testing.T
	handler  http.Handler
	sessions *session.Manager
	users    *services.UserService
	biodatas *services.BiodataService
	payments *services.PaymentService
	provider *stubProvider
}

func newTestApp(t *testing.T, policy services.DisclosurePolicy) *testApp {
	t.Helper()

	sessions, err := session.NewManager("test-secret-test-secret-test-secret", time.Hour, false)
	require.NoError(t, err)
	images, err := services.NewImageService(t.TempDir(), t.TempDir())
	require.NoError(t, err)

	users := services.NewUserService()
	biodatas := services.NewBiodataService()
	favourites := services.NewFavouriteService()
	payments := services.NewPaymentService()
	requests := services.NewPremiumRequestService()
	stories := services.NewStoryService()
	provider := &stubProvider{intents: map[string]*services.PaymentIntent{}}

	h := NewRouter(Deps{
		AllowedOrigins:  []string{"http://localhost:5173"},
		UploadDir:       t.TempDir(),
		MaxUploadSizeMB: 1,
		Sessions:        sessions,
		Verifier:        stubVerifier{"tok-a": "a@example.com", "tok-b": "b@example.com"},
		Users:           users,
		Biodatas:        biodatas,
		Favourites:      favourites,
		Payments:        payments,
		Messages:        services.NewMessageService(),
		Stories:         stories,
		Gate:            services.NewContactGate(payments, policy),
		Premium:         services.NewPremiumWorkflow(requests, users, biodatas, services.NoopTransactor{}),
		Accounts:        services.NewAccountService(users, favourites, requests, services.NoopTransactor{}),
		Checkout:        services.NewCheckout(provider, payments, "usd", 500),
		Images:          images,
		Registry:        prometheus.NewRegistry(),
	})

	return &testApp{t: t, handler: h, sessions: sessions, users: users, biodatas: biodatas, payments: payments, provider: provider}
}

// user registers email with the given role and premium flag.
func (a *testApp) user(email string, role models.Role, premium bool) {
	a.t.Helper()
	_, err := a.users.Create(context.Background(), &models.User{Email: email, Role: role, Premium: models.BoolFlag(premium)})
	require.NoError(a.t, err)
}

// do sends a request as email; an empty email is anonymous.
func (a *testApp) do(method, path, email string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()

	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(a.t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if email != "" {
		token, _, err := a.sessions.Issue(email)
		require.NoError(a.t, err)
		req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (a *testApp) createBiodata(email, name string) *models.Biodata {
	a.t.Helper()
	rec, env := a.do(http.MethodPost, "/biodata", email, map[string]interface{}{
		"biodataType": "Female", "name": name, "dateOfBirth": "1999-02-03", "age": 26,
		"occupation": "Teacher", "mobileNumber": "01711111111",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var b models.Biodata
	require.NoError(a.t, json.Unmarshal(env.Data, &b))
	return &b
}

// createBiodataPlain creates a biodata without premium-only fields.
func (a *testApp) createBiodataPlain(email string) *models.Biodata {
	a.t.Helper()
	rec, env := a.do(http.MethodPost, "/biodata", email, map[string]interface{}{
		"biodataType": "Male", "name": "Plain", "dateOfBirth": "1995-06-01", "age": 30, "occupation": "Farmer",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var b models.Biodata
	require.NoError(a.t, json.Unmarshal(env.Data, &b))
	return &b
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestOwnerSeesContactsStrangerDoesNot(t *testing.T) {
	app := newTestApp(t, services.PolicyPerProfile)
	app.user("owner@example.com", models.RoleUser, true)
	app.user("stranger@example.com", models.RoleUser, false)
	app.user("admin@example.com", models.RoleAdmin, false)

	b := app.createBiodata("Owner@Example.com", "Rina")
	assert.Equal(t, "owner@example.com", b.ContactEmail)
	assert.True(t, bool(b.Premium))
	path := fmt.Sprintf("/biodata/%d", b.BiodataID)

	_, env := app.do(http.MethodGet, path, "owner@example.com", nil)
	got := decode[models.Biodata](t, env.Data)
	assert.Equal(t, "01711111111", got.MobileNumber)
	assert.Equal(t, "owner@example.com", got.ContactEmail)

	_, env = app.do(http.MethodGet, path, "admin@example.com", nil)
	assert.Equal(t, "01711111111", decode[models.Biodata](t, env.Data).MobileNumber)

	_, env = app.do(http.MethodGet, path, "stranger@example.com", nil)
	got = decode[models.Biodata](t, env.Data)
	assert.Empty(t, got.MobileNumber)
	assert.Empty(t, got.ContactEmail)
	assert.True(t, got.ContactLocked)
	assert.Equal(t, "Rina", got.Name)

	for _, p := range []string{"/biodatas", "/featured-members", "/premium-biodata"} {
		rec, env := app.do(http.MethodGet, p, "", nil)
		require.Equal(t, http.StatusOK, rec.Code, p)
		list := decode[[]models.Biodata](t, env.Data)
		require.Len(t, list, 1, p)
		assert.Empty(t, list[0].MobileNumber, p)
		assert.NotContains(t, rec.Body.String(), "01711111111", p)
	}

	rec, _ := app.do(http.MethodGet, path, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPaymentUnlocksOnlyPaidProfile(t *testing.T) {
	app := newTestApp(t, services.PolicyPerProfile)
	app.user("p1@example.com", models.RoleUser, true)
	app.user("p2@example.com", models.RoleUser, true)
	app.user("viewer@example.com", models.RoleUser, false)

	paid := app.createBiodata("p1@example.com", "Paid")
	other := app.createBiodata("p2@example.com", "Other")

	app.provider.intents["pi_ok"] = &services.PaymentIntent{
		ID: "pi_ok", Amount: 500, Currency: "usd", Status: models.PaymentStatusSucceeded,
		Email: "viewer@example.com", BiodataID: paid.BiodataID,
	}
	rec, _ := app.do(http.MethodPost, "/payments", "viewer@example.com", map[string]interface{}{
		"name": "Viewer", "paymentId": "pi_ok", "biodataId": paid.BiodataID, "amount": 500,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env := app.do(http.MethodPost, "/payments", "viewer@example.com", map[string]interface{}{
		"paymentId": "pi_ok", "biodataId": paid.BiodataID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, models.KindConflict, env.Kind)

	_, env = app.do(http.MethodGet, fmt.Sprintf("/biodata/%d", paid.BiodataID), "viewer@example.com", nil)
	assert.Equal(t, "01711111111", decode[models.Biodata](t, env.Data).MobileNumber)

	_, env = app.do(http.MethodGet, fmt.Sprintf("/biodata/%d", other.BiodataID), "viewer@example.com", nil)
	assert.Empty(t, decode[models.Biodata](t, env.Data).MobileNumber)

	_, env = app.do(http.MethodGet, "/payments", "viewer@example.com", nil)
	assert.Len(t, decode[[]models.Payment](t, env.Data), 1)

	rec, _ = app.do(http.MethodGet, "/all-payments", "viewer@example.com", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCheapPaymentDoesNotUnlock(t *testing.T) {
	app := newTestApp(t, services.PolicyPerProfile)
	app.user("p1@example.com", models.RoleUser, true)
	b := app.createBiodata("p1@example.com", "Paid")

	rec, env := app.do(http.MethodPost, "/payments/intent", "viewer@example.com", map[string]interface{}{"amountInCents": 1, "biodataId": b.BiodataID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.KindValidation, env.Kind)

	app.provider.intents["pi_cheap"] = &services.PaymentIntent{
		ID: "pi_cheap", Amount: 1, Currency: "usd", Status: models.PaymentStatusSucceeded,
		Email: "viewer@example.com", BiodataID: b.BiodataID,
	}
	rec, env = app.do(http.MethodPost, "/payments", "viewer@example.com", map[string]interface{}{
		"paymentId": "pi_cheap", "biodataId": b.BiodataID, "amount": 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.KindValidation, env.Kind)

	_, env = app.do(http.MethodGet, fmt.Sprintf("/biodata/%d", b.BiodataID), "viewer@example.com", nil)
	assert.Empty(t, decode[models.Biodata](t, env.Data).MobileNumber)
}

func TestBlanketPolicyUnlocksEverything(t *testing.T) {
	app := newTestApp(t, services.PolicyBlanket)
	app.user("p1@example.com", models.RoleUser, true)
	app.user("p2@example.com", models.RoleUser, true)

	paid := app.createBiodata("p1@example.com", "Paid")
	other := app.createBiodata("p2@example.com", "Other")
	_, err := app.payments.Record(context.Background(), &models.Payment{
		Email: "viewer@example.com", BiodataID: paid.BiodataID, PaymentID: "pi_1", Status: models.PaymentStatusSucceeded,
	})
	require.NoError(t, err)

	_, env := app.do(http.MethodGet, fmt.Sprintf("/biodata/%d", other.BiodataID), "viewer@example.com", nil)
	assert.Equal(t, "01711111111", decode[models.Biodata](t, env.Data).MobileNumber)
}

func TestPaymentNotSucceededIsRejected(t *testing.T) {
	app := newTestApp(t, services.PolicyPerProfile)
	app.provider.intents["pi_wait"] = &services.PaymentIntent{ID: "pi_wait", Amount: 500, Status: "processing"}

	rec, env := app.do(http.MethodPost, "/payments", "viewer@example.com", map[string]interface{}{"paymentId": "pi_wait", "biodataId": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.KindValidation, env.Kind)

	list, err := app.payments.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	rec, env = app.do(http.MethodPost, "/create-payment-intent", "viewer@example.com", map[string]interface{}{"amountInCents": 500, "biodataId": 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cs_new", decode[models.PaymentIntentResponse](t, env.Data).ClientSecret)
}

func TestPremiumFieldsNeedMembership(t *testing.T) {
	app := newTestApp(t, services.PolicyPerProfile)
	app.user("free@example.com", models.RoleUser, false)

	rec, env := app.do(http.MethodPost, "/biodata", "free@example.com", map[string]interface{}{
		"biodataType": "Male", "name": "Karim", "dateOfBirth": "1995-06-01", "age": 30,
		"occupation": "Farmer", "mobileNumber": "01800000000",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, models.KindAuthorization, env.Kind)

	rec, env = app.do(http.MethodPost, "/biodata", "free@example.com", map[string]interface{}{
		"biodataType": "Male", "name": "Karim", "dateOfBirth": "1995-06-01", "age": 30, "occupation": "Farmer",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	b := decode[models.Biodata](t, env.Data)
	path := fmt.Sprintf("/biodata/%d", b.BiodataID)

	// Resubmitting the unchanged value is allowed, changing it is not.
	rec, _ = app.do(http.MethodPatch, path, "free@example.com", map[string]interface{}{"occupation": "Trader", "mobileNumber": ""})
	assert.Equal(t, http.StatusOK, rec.Code)
	rec, _ = app.do(http.MethodPatch, path, "free@example.com", map[string]interface{}{"mobileNumber": "01800000000"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = app.do(http.MethodPatch, path, "intruder@example.com", map[string]interface{}{"occupation": "X"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = app.do(http.MethodPost, "/biodata", "free@example.com", map[string]interface{}{
		"biodataType": "Male", "name": "Again", "dateOfBirth": "1995-06-01", "age": 30, "occupation": "Farmer",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = app.do(http.MethodPost, "/biodata", "new@example.com", map[string]interface{}{"name": "Incomplete"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Errors, "age")
}

func TestPremiumRequestApproval(t *testing.T) {
	app := newTestApp(t, services.PolicyPerProfile)
	app.user("u@example.com", models.RoleUser, false)
	app.user("admin@example.com", models.RoleAdmin, false)

	rec, env := app.do(http.MethodPost, "/request-premium", "u@example.com", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	req := decode[models.PremiumRequest](t, env.Data)

	rec, _ = app.do(http.MethodPost, "/request-premium", "u@example.com", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, env = app.do(http.MethodGet, "/premium-requests?email=u@example.com", "u@example.com", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.PremiumRequest](t, env.Data), 1)
	rec, _ = app.do(http.MethodGet, "/premium-requests", "u@example.com", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	path := "/premium-requests/" + req.ID
	rec, _ = app.do(http.MethodPatch, path, "u@example.com", map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = app.do(http.MethodPatch, path, "admin@example.com", map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, rec.Code)
	u, err := app.users.GetByEmail(context.Background(), "u@example.com")
	require.NoError(t, err)
	assert.True(t, bool(u.Premium))

	rec, _ = app.do(http.MethodPatch, path, "admin@example.com", map[string]string{"status": "pending"})
	require.Equal(t, http.StatusOK, rec.Code)
	u, err = app.users.GetByEmail(context.Background(), "u@example.com")
	require.NoError(t, err)
	assert.False(t, bool(u.Premium))

	rec, env = app.do(http.MethodPatch, path, "admin@example.com", map[string]string{"status": "rejected"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.KindValidation, env.Kind)
}

func TestAdminPremiumToggle(t *testing.T) {
	app := newTestApp(t, services.PolicyPerProfile)
	app.user("admin@example.com", models.RoleAdmin, false)
	app.user("u@example.com", models.RoleUser, false)
	b := app.createBiodataPlain("u@example.com")

	u, err := app.users.GetByEmail(context.Background(), "u@example.com")
	require.NoError(t, err)

	rec, _ := app.do(http.MethodPatch, "/users/premium/"+u.ID, "u@example.com", map[string]bool{"premium": true})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := app.do(http.MethodPatch, "/users/premium/"+u.ID, "admin@example.com", map[string]bool{"premium": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, bool(decode[models.User](t, env.Data).Premium))

	got, err := app.biodatas.GetByID(context.Background(), b.BiodataID)
	require.NoError(t, err)
	assert.True(t, bool(got.Premium))
}

func TestUserRegistrationAndSession(t *testing.T) {
	app := newTestApp(t, services.PolicyPerProfile)

	post := func(path, token string, body interface{}) *httptest.ResponseRecorder {
		b, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		app.handler.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, post("/users", "", map[string]string{"email": "a@example.com"}).Code)
	assert.Equal(t, http.StatusForbidden, post("/users", "tok-a", map[string]string{"email": "b@example.com"}).Code)

	rec := post("/users", "tok-a", map[string]interface{}{"email": "A@example.com", "role": "admin", "premium": true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	u := decode[models.User](t, env.Data)
	assert.Equal(t, models.RoleUser, u.Role)
	assert.False(t, bool(u.Premium))
	assert.Equal(t, "Provider Name", u.Name)

	assert.Equal(t, http.StatusConflict, post("/users", "tok-a", map[string]string{"email": "a@example.com"}).Code)

	rec = post("/session", "tok-a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/user?email=a@example.com", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFavouritesAreOwnedAndRedacted(t *testing.T) {
	app := newTestApp(t, services.PolicyPerProfile)
	app.user("owner@example.com", models.RoleUser, true)
	b := app.createBiodata("owner@example.com", "Rina")

	rec, env := app.do(http.MethodPost, "/favourite", "fan@example.com", map[string]int{"biodataId": b.BiodataID})
	require.Equal(t, http.StatusCreated, rec.Code)
	fav := decode[models.Favourite](t, env.Data)
	assert.Empty(t, fav.Biodata.MobileNumber)

	rec, _ = app.do(http.MethodPost, "/favourite", "fan@example.com", map[string]int{"biodataId": b.BiodataID})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec, _ = app.do(http.MethodPost, "/favourite", "fan@example.com", map[string]int{"biodataId": 999})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	_, env = app.do(http.MethodGet, "/favourites", "fan@example.com", nil)
	assert.Len(t, decode[[]models.Favourite](t, env.Data), 1)

	rec, _ = app.do(http.MethodDelete, "/favourite/"+fav.ID, "other@example.com", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = app.do(http.MethodDelete, "/favourite/"+fav.ID, "fan@example.com", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFavouriteRevealsAfterPayment(t *testing.T) {
	app := newTestApp(t, services.PolicyPerProfile)
	app.user("owner@example.com", models.RoleUser, true)
	b := app.createBiodata("owner@example.com", "Rina")

	rec, env := app.do(http.MethodPost, "/favourite", "fan@example.com", map[string]int{"biodataId": b.BiodataID})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, decode[models.Favourite](t, env.Data).Biodata.MobileNumber)

	_, err := app.payments.Record(context.Background(), &models.Payment{
		Email: "fan@example.com", BiodataID: b.BiodataID, PaymentID: "pi_fan", Amount: 500, Status: models.PaymentStatusSucceeded,
	})
	require.NoError(t, err)

	_, env = app.do(http.MethodGet, "/favourites", "fan@example.com", nil)
	list := decode[[]models.Favourite](t, env.Data)
	require.Len(t, list, 1)
	assert.Equal(t, "01711111111", list[0].Biodata.MobileNumber)
	assert.False(t, list[0].Biodata.ContactLocked)
}

func TestStoriesAndStats(t *testing.T) {
	app := newTestApp(t, services.PolicyPerProfile)
	app.user("a@example.com", models.RoleUser, true)
	app.user("b@example.com", models.RoleUser, true)
	mine := app.createBiodata("a@example.com", "A")
	partner := app.createBiodata("b@example.com", "B")

	rec, _ := app.do(http.MethodPost, "/stories", "nobiodata@example.com", map[string]interface{}{
		"partnerBiodataId": partner.BiodataID, "dateOfMarriage": "2025-12-01", "review": "Happy", "rating": 5,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, env := app.do(http.MethodPost, "/stories", "a@example.com", map[string]interface{}{
		"partnerBiodataId": partner.BiodataID, "dateOfMarriage": "2025-12-01", "review": "Happy", "rating": 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, mine.BiodataID, decode[models.SuccessStory](t, env.Data).SelfBiodataID)

	_, env = app.do(http.MethodGet, "/stories/top", "", nil)
	assert.Len(t, decode[[]models.SuccessStory](t, env.Data), 1)

	_, env = app.do(http.MethodGet, "/stats", "", nil)
	assert.Equal(t, models.BiodataStats{Total: 2, Female: 2, Premium: 2, Stories: 1}, decode[models.BiodataStats](t, env.Data))
}

func TestContactMessageFlow(t *testing.T) {
	app := newTestApp(t, services.PolicyPerProfile)
	app.user("admin@example.com", models.RoleAdmin, false)

	rec, env := app.do(http.MethodPost, "/contact-message", "", map[string]string{"name": "Guest", "email": "not-an-email", "message": "Hi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Errors, "email")

	rec, _ = app.do(http.MethodPost, "/contact-message", "", map[string]string{"name": "Guest", "email": "guest@example.com", "message": "Hi"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = app.do(http.MethodGet, "/contact-messages", "guest@example.com", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	_, env = app.do(http.MethodGet, "/contact-messages", "admin@example.com", nil)
	assert.Len(t, decode[[]models.ContactMessage](t, env.Data), 1)
}

func TestHealthAndMetrics(t *testing.T) {
	app := newTestApp(t, services.PolicyPerProfile)

	rec, _ := app.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = app.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `bengal_matrimony_http_requests_total{method="GET",route="/health",status="200"}`)
}
