package attendance

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/unicode/norm"

	"emargement-backend/internal/platform/auth"
	"emargement-backend/internal/platform/logging"
)

const (
	queryKindList     = "list"
	queryKindValidate = "validate"

	MessageSignatureValid   = "signature validated"
	MessageInvalidTimestamp = "invalid timestamp detected"
)

// GET /signature
func (s *Service) List(ctx context.Context, token string, q ListQuery) (ListResponse, error) {
	if _, err := s.Authorize(token, auth.CapList); err != nil {
		s.obs.ObserveQuery(queryKindList, string(CodeOf(err)))
		return ListResponse{}, err
	}

	q = normalizeListQuery(q)
	rows, total, err := s.store.List(ctx, q)
	if err != nil {
		logging.FromContext(ctx).WithError(err).Error("failed to list signatures")
		s.obs.ObserveQuery(queryKindList, string(CodeStoreUnavailable))
		return ListResponse{}, ErrStoreUnavailable("signatures could not be listed", err)
	}

	s.obs.ObserveQuery(queryKindList, "ok")
	return ListResponse{
		Data: lo.Map(rows, func(r Record, _ int) RecordResponse { return r.toDTO() }),
		Pagination: Pagination{
			Page:       q.Page,
			Limit:      q.Limit,
			Total:      total,
			TotalPages: (total + int64(q.Limit) - 1) / int64(q.Limit),
		},
	}, nil
}

// GET /signature/validate/:learnerId/:sessionId
//
// 最新記録の captured_at が読めるかだけを見る。壊れていても 200 で valid=false
func (s *Service) Validate(ctx context.Context, token, learnerID, sessionID string) (ValidateResponse, error) {
	if _, err := s.Authorize(token, auth.CapValidate); err != nil {
		s.obs.ObserveQuery(queryKindValidate, string(CodeOf(err)))
		return ValidateResponse{}, err
	}

	// 保存時と同じ正規化をかけてから引く
	sessionID = norm.NFC.String(strings.TrimSpace(sessionID))
	rec, err := s.store.Latest(ctx, strings.TrimSpace(learnerID), sessionID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			s.obs.ObserveQuery(queryKindValidate, string(CodeNotFound))
			return ValidateResponse{}, ErrNotFound("signature not found")
		}
		logging.FromContext(ctx).WithError(err).Error("failed to load signature")
		s.obs.ObserveQuery(queryKindValidate, string(CodeStoreUnavailable))
		return ValidateResponse{}, ErrStoreUnavailable("signature could not be loaded", err)
	}

	out := ValidateResponse{
		Data: ValidationData{LearnerID: rec.LearnerID, SessionID: rec.SessionID},
	}
	if rec.HasValidTimestamp() {
		ts := Timestamp(rec.CapturedAt)
		created := rec.CapturedAt
		out.Valid = true
		out.Message = MessageSignatureValid
		out.Data.CapturedAt = &ts
		out.Data.ServerTimeAtCreation = &created
	} else {
		out.Message = MessageInvalidTimestamp
	}
	s.obs.ObserveQuery(queryKindValidate, "ok")
	return out, nil
}

func normalizeListQuery(q ListQuery) ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageLimit
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	// (Page-1)*Limit が int を溢れないように。これより先は必ず空ページ
	if maxPage := math.MaxInt / q.Limit; q.Page > maxPage {
		q.Page = maxPage
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

