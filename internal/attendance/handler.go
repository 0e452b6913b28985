package attendance

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"emargement-backend/internal/platform/auth"
)

// 署名画像（data URL）を想定した上限
const maxSubmitBodyBytes = 5 << 20

type Handler struct{ svc *Service }

func RegisterRoutes(r gin.IRouter, svc *Service) {
	h := &Handler{svc: svc}

	// POST /signature （全ロール）
	r.POST("/signature", h.Submit)
	// GET /signature （admin / lead / test_expert）
	r.GET("/signature", h.List)
	// GET /signature/validate/:learnerId/:sessionId （test_expert）
	r.GET("/signature/validate/:learnerId/:sessionId", h.Validate)
}

// ---------- error body ----------

type errorDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
		Field   string `json:"field,omitempty"`
	} `json:"error"`
}

func errorBody(code Code, msg, field string) errorDTO {
	var e errorDTO
	e.Error.Code = code
	e.Error.Message = msg
	e.Error.Field = field
	return e
}

func errorFromErr(err error) errorDTO {
	var api *APIError
	if errors.As(err, &api) {
		return errorBody(api.Code, api.Message, api.Field)
	}
	api = ErrInternal("internal error")
	return errorBody(api.Code, api.Message, api.Field)
}

func writeError(c *gin.Context, err error) {
	var api *APIError
	if errors.As(err, &api) && api.Retryable() {
		c.Header("Retry-After", "1")
	}
	c.JSON(toHTTPStatus(err), errorFromErr(err))
}

func bearer(c *gin.Context) string {
	// 形式不正は空トークン扱い → サービス側で UNAUTHENTICATED
	tok, _ := auth.BearerToken(c.GetHeader("Authorization"))
	return tok
}

// ---------- handlers ----------

// Submit godoc
// @Summary   Submit today's signature for a session
// @Tags      signature
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body SubmitRequest true "session and signature image"
// @Success   201 {object} SubmitResponse
// @Failure   400 {object} errorDTO
// @Failure   401 {object} errorDTO
// @Failure   409 {object} errorDTO
// @Failure   503 {object} errorDTO
// @Router    /signature [post]
func (h *Handler) Submit(c *gin.Context) {
	tok := bearer(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSubmitBodyBytes)

	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// 認証エラーを先に返す（未認証の相手に入力エラーの詳細を見せない）
		if _, aerr := h.svc.Authorize(tok, auth.CapSubmit); aerr != nil {
			writeError(c, aerr)
			return
		}
		c.JSON(http.StatusBadRequest, errorBody(CodeInvalidSubmission, "invalid json body", ""))
		return
	}

	res, err := h.svc.Submit(c.Request.Context(), tok, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// List godoc
// @Summary   List signatures, newest first
// @Tags      signature
// @Produce   json
// @Security  BearerAuth
// @Param     page   query int    false "page number (1-based)"
// @Param     limit  query int    false "page size (max 100)"
// @Param     search query string false "case-insensitive substring of learnerId or sessionId"
// @Success   200 {object} ListResponse
// @Failure   401 {object} errorDTO
// @Failure   403 {object} errorDTO
// @Router    /signature [get]
func (h *Handler) List(c *gin.Context) {
	q := ListQuery{
		Page:   parseIntDefault(c.Query("page"), DefaultPage),
		Limit:  parseIntDefault(c.Query("limit"), DefaultPageLimit),
		Search: c.Query("search"),
	}
	res, err := h.svc.List(c.Request.Context(), bearer(c), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Validate godoc
// @Summary   Check the stored timestamp of a learner's latest signature for a session
// @Tags      signature
// @Produce   json
// @Security  BearerAuth
// @Param     learnerId path string true "learner id"
// @Param     sessionId path string true "session id"
// @Success   200 {object} ValidateResponse
// @Failure   401 {object} errorDTO
// @Failure   403 {object} errorDTO
// @Failure   404 {object} errorDTO
// @Router    /signature/validate/{learnerId}/{sessionId} [get]
func (h *Handler) Validate(c *gin.Context) {
	res, err := h.svc.Validate(c.Request.Context(), bearer(c), c.Param("learnerId"), c.Param("sessionId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ---------- helpers ----------

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
