package attendance

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emargement-backend/internal/platform/auth"
)

var wireTimestamp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`)

type apiHarness struct {
	router *gin.Engine
	tokens *auth.JWT
	store  *spyStore
}

func newAPIHarness(t *testing.T) *apiHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens := auth.NewJWT([]byte("handler-test-secret"), time.Hour)
	spy := &spyStore{Store: NewMemoryStore()}
	svc := NewService(spy, tokens, Options{})

	r := gin.New()
	RegisterRoutes(r.Group("/api"), svc)
	return &apiHarness{router: r, tokens: tokens, store: spy}
}

func (h *apiHarness) token(t *testing.T, subject string, role auth.Role) string {
	t.Helper()
	tok, err := h.tokens.Issue(subject, role)
	require.NoError(t, err)
	return tok
}

func (h *apiHarness) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func submitBody(session string) string {
	b, _ := json.Marshal(map[string]string{"sessionId": session, "signatureBlob": validBlob()})
	return string(b)
}

// wireList は一覧レスポンスを JSON のまま読む
type wireList struct {
	Data []struct {
		LearnerID  string `json:"learnerId"`
		CapturedAt string `json:"capturedAt"`
	} `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) Code {
	t.Helper()
	var body errorDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body.Error.Code
}

func TestHandler_SubmitFlow(t *testing.T) {
	h := newAPIHarness(t)
	l1 := h.token(t, "L1", auth.RoleLearner)

	w := h.do(http.MethodPost, "/api/signature", l1, submitBody("IT_IA"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEmpty(t, res["id"])
	assert.Regexp(t, wireTimestamp, res["capturedAt"])

	w = h.do(http.MethodPost, "/api/signature", l1, submitBody("IT_IA"))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeDuplicateSubmission, errorCode(t, w))

	w = h.do(http.MethodPost, "/api/signature", l1, submitBody("MATH"))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHandler_SubmitAuthBeforeBody(t *testing.T) {
	h := newAPIHarness(t)

	w := h.do(http.MethodPost, "/api/signature", "", `{not json`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, CodeUnauthenticated, errorCode(t, w))

	other := auth.NewJWT([]byte("other-secret"), time.Hour)
	forged, err := other.Issue("L1", auth.RoleLearner)
	require.NoError(t, err)
	w = h.do(http.MethodPost, "/api/signature", forged, submitBody("IT_IA"))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	l1 := h.token(t, "L1", auth.RoleLearner)
	w = h.do(http.MethodPost, "/api/signature", l1, `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, CodeInvalidSubmission, errorCode(t, w))

	w = h.do(http.MethodPost, "/api/signature", l1, `{"sessionId":"IT_IA","signatureBlob":"short"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body errorDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "signatureBlob", body.Error.Field)

	assert.EqualValues(t, 0, h.store.inserts.Load())
}

func TestHandler_ClientSuppliedIdentityAndTimeIgnored(t *testing.T) {
	h := newAPIHarness(t)
	l1 := h.token(t, "L1", auth.RoleLearner)

	body, _ := json.Marshal(map[string]string{
		"sessionId":     "IT_IA",
		"signatureBlob": validBlob(),
		"learnerId":     "someone-else",
		"capturedAt":    "1999-01-01T00:00:00.000Z",
	})
	w := h.do(http.MethodPost, "/api/signature", l1, string(body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	admin := h.token(t, "root", auth.RoleAdmin)
	w = h.do(http.MethodGet, "/api/signature", admin, "")
	require.Equal(t, http.StatusOK, w.Code)

	var list wireList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "L1", list.Data[0].LearnerID)
	assert.Regexp(t, wireTimestamp, list.Data[0].CapturedAt)
	assert.False(t, strings.HasPrefix(list.Data[0].CapturedAt, "1999"))
}

func TestHandler_ListAndValidateRoles(t *testing.T) {
	h := newAPIHarness(t)
	l1 := h.token(t, "L1", auth.RoleLearner)
	w := h.do(http.MethodPost, "/api/signature", l1, submitBody("IT_IA"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = h.do(http.MethodGet, "/api/signature", l1, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, CodeForbidden, errorCode(t, w))

	w = h.do(http.MethodGet, "/api/signature?page=1&limit=5&search=it_", h.token(t, "lead", auth.RoleLead), "")
	require.Equal(t, http.StatusOK, w.Code)
	var list wireList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, Pagination{Page: 1, Limit: 5, Total: 1, TotalPages: 1}, list.Pagination)

	w = h.do(http.MethodGet, "/api/signature/validate/L1/IT_IA", h.token(t, "root", auth.RoleAdmin), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	expert := h.token(t, "qa", auth.RoleTestExpert)
	w = h.do(http.MethodGet, "/api/signature/validate/L1/IT_IA", expert, "")
	require.Equal(t, http.StatusOK, w.Code)
	var v struct {
		Valid   bool   `json:"valid"`
		Message string `json:"message"`
		Data    struct {
			CapturedAt string `json:"capturedAt"`
			LearnerID  string `json:"learnerId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.True(t, v.Valid)
	assert.Equal(t, MessageSignatureValid, v.Message)
	assert.Regexp(t, wireTimestamp, v.Data.CapturedAt)
	assert.Equal(t, "L1", v.Data.LearnerID)

	w = h.do(http.MethodGet, "/api/signature/validate/L1/UNKNOWN", expert, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, CodeNotFound, errorCode(t, w))
}

func TestHandler_StoreUnavailable(t *testing.T) {
	h := newAPIHarness(t)
	h.store.insertErr = errors.New("dial tcp: connection refused")

	w := h.do(http.MethodPost, "/api/signature", h.token(t, "L1", auth.RoleLearner), submitBody("IT_IA"))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, CodeStoreUnavailable, errorCode(t, w))
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.NotContains(t, w.Body.String(), "dial tcp")
}

func TestHandler_ListHugePage(t *testing.T) {
	h := newAPIHarness(t)
	w := h.do(http.MethodPost, "/api/signature", h.token(t, "L1", auth.RoleLearner), submitBody("IT_IA"))
	require.Equal(t, http.StatusCreated, w.Code)

	w = h.do(http.MethodGet, "/api/signature?page=4611686018427387905&limit=10", h.token(t, "root", auth.RoleAdmin), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list wireList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Data)
	assert.EqualValues(t, 1, list.Pagination.Total)
}

func TestErrorFromErr_UnknownErrorIsInternal(t *testing.T) {
	body := errorFromErr(errors.New("boom"))
	assert.Equal(t, CodeInternal, body.Error.Code)
	assert.Equal(t, "internal error", body.Error.Message)
}
