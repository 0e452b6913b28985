package attendance

import (
	"context"
	"errors"
	"strings"
	"time"

	"emargement-backend/internal/platform/auth"
	"emargement-backend/internal/platform/logging"
)

const DefaultWriteTimeout = 5 * time.Second

// Observer はメトリクス通知先（metrics.Service が満たす）
type Observer interface {
	ObserveSubmission(result, role string)
	ObserveQuery(kind, result string)
}

type nopObserver struct{}

func (nopObserver) ObserveSubmission(string, string) {}
func (nopObserver) ObserveQuery(string, string)      {}

type Options struct {
	// 「同じ日」を判定する基準タイムゾーン。nil なら UTC
	Location           *time.Location
	MinSignatureLength int
	WriteTimeout       time.Duration
	Clock              Clock
	Observer           Observer
}

// ===== Service =====

type Service struct {
	store        Store
	verifier     auth.Verifier
	validator    *SubmissionValidator
	clock        Clock
	loc          *time.Location
	writeTimeout time.Duration
	obs          Observer
}

func NewService(store Store, verifier auth.Verifier, opts Options) *Service {
	s := &Service{
		store:        store,
		verifier:     verifier,
		validator:    NewSubmissionValidator(opts.MinSignatureLength),
		clock:        opts.Clock,
		loc:          opts.Location,
		writeTimeout: opts.WriteTimeout,
		obs:          opts.Observer,
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.writeTimeout <= 0 {
		s.writeTimeout = DefaultWriteTimeout
	}
	if s.obs == nil {
		s.obs = nopObserver{}
	}
	return s
}

// Authorize: トークン検証 → ケイパビリティ確認。ストアには触らない
func (s *Service) Authorize(token string, cap auth.Capability) (auth.Identity, error) {
	id, err := s.verifier.Verify(token)
	if err != nil {
		return auth.Identity{}, ErrUnauthenticated("authentication required")
	}
	if id.SubjectID == "" {
		return auth.Identity{}, ErrUnauthenticated("token has no subject")
	}
	if !id.Role.Can(cap) {
		allowed := strings.Join(auth.RoleNames(auth.RolesWith(cap)), ", ")
		return auth.Identity{}, ErrForbidden("this operation requires one of the roles: " + allowed)
	}
	return id, nil
}

// POST /signature
//
// learnerId はトークンの subject、capturedAt はサーバー時計で決まる。
// 1人1セッション1日1件。重複なら DUPLICATE_SUBMISSION。
func (s *Service) Submit(ctx context.Context, token string, in SubmitRequest) (SubmitResponse, error) {
	id, err := s.Authorize(token, auth.CapSubmit)
	if err != nil {
		s.obs.ObserveSubmission(string(CodeOf(err)), "")
		return SubmitResponse{}, err
	}
	role := id.Role.String()

	sub, err := s.validator.Validate(in)
	if err != nil {
		s.obs.ObserveSubmission(string(CodeInvalidSubmission), role)
		return SubmitResponse{}, err
	}

	now := s.clock.Now().UTC().Truncate(time.Millisecond)
	rec := &Record{
		LearnerID:     id.SubjectID,
		SessionID:     sub.SessionID,
		SignatureBlob: sub.SignatureBlob,
		CapturedAt:    now,
		SignedOn:      DayOf(now, s.loc).Date,
	}

	// 受理した時点で書き込みは完了させる（クライアント切断で中断しない）
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.writeTimeout)
	defer cancel()

	if err := s.store.Insert(wctx, rec); err != nil {
		if errors.Is(err, ErrRecordExists) {
			s.obs.ObserveSubmission(string(CodeDuplicateSubmission), role)
			return SubmitResponse{}, ErrDuplicateSubmission("already signed for this session today")
		}
		// 署名本体はログに出さない
		logging.FromContext(ctx).
			WithError(err).
			WithField("learner_id", rec.LearnerID).
			WithField("session_id", rec.SessionID).
			Error("failed to store signature")
		s.obs.ObserveSubmission(string(CodeStoreUnavailable), role)
		return SubmitResponse{}, ErrStoreUnavailable("signature could not be stored, retry later", err)
	}

	s.obs.ObserveSubmission("ok", role)
	return SubmitResponse{ID: rec.ID, CapturedAt: Timestamp(rec.CapturedAt)}, nil
}
