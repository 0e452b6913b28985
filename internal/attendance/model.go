package attendance

import (
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"
)

// DB行に対応（スキャン用）
type attendanceRow struct {
	ID            string
	LearnerID     string
	SessionID     string
	SignatureBlob string
	CapturedAt    sql.NullTime
	SignedOn      string // DATE → "YYYY-MM-DD"
}

// Record は確定した1件の署名。作成後は更新しない
type Record struct {
	ID            string
	LearnerID     string
	SessionID     string
	SignatureBlob string
	CapturedAt    time.Time
	SignedOn      string
}

func (r attendanceRow) toModel() Record {
	rec := Record{
		ID:            r.ID,
		LearnerID:     r.LearnerID,
		SessionID:     r.SessionID,
		SignatureBlob: r.SignatureBlob,
		SignedOn:      r.SignedOn,
	}
	if r.CapturedAt.Valid {
		rec.CapturedAt = r.CapturedAt.Time.UTC()
	}
	return rec
}

// HasValidTimestamp: captured_at が欠損/ゼロ値なら改ざん・破損とみなす
func (r Record) HasValidTimestamp() bool {
	return !r.CapturedAt.IsZero()
}

func (r Record) toDTO() RecordResponse {
	return RecordResponse{
		ID:            r.ID,
		LearnerID:     r.LearnerID,
		SessionID:     r.SessionID,
		SignatureBlob: r.SignatureBlob,
		CapturedAt:    Timestamp(r.CapturedAt),
		SignedOn:      r.SignedOn,
	}
}

// Day is one calendar day in the reference timezone: [Start, End] with End = next midnight - 1ms.
type Day struct {
	Date  string
	Start time.Time
	End   time.Time
}

// DayOf: 夏時間の切り替え日も AddDate で正しく 23h/25h になる
func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	next := start.AddDate(0, 0, 1)
	return Day{
		Date:  start.Format(DateLayout),
		Start: start,
		End:   next.Add(-time.Millisecond),
	}
}

// ===== 時刻とID =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type IDGen interface {
	New(t time.Time) (string, error)
}

type ulidGen struct{}

func (ulidGen) New(t time.Time) (string, error) {
	if t.IsZero() {
		t = time.Now()
	}
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
