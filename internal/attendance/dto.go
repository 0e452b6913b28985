package attendance

import "time"

const (
	DefaultPage      = 1
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	DateLayout       = "2006-01-02"
	// ミリ秒固定・UTC（例: 2024-03-01T09:00:00.000Z）
	TimestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// SubmitRequest: learnerId や時刻は受け取らない（トークンとサーバー時計から決める）
type SubmitRequest struct {
	SessionID     string `json:"sessionId"`
	SignatureBlob string `json:"signatureBlob"`
}

type SubmitResponse struct {
	ID         string    `json:"id"`
	CapturedAt Timestamp `json:"capturedAt"`
}

type RecordResponse struct {
	ID            string    `json:"id"`
	LearnerID     string    `json:"learnerId"`
	SessionID     string    `json:"sessionId"`
	SignatureBlob string    `json:"signatureBlob"`
	CapturedAt    Timestamp `json:"capturedAt"`
	SignedOn      string    `json:"signedOn"`
}

type ListQuery struct {
	Page   int
	Limit  int
	Search string
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type ListResponse struct {
	Data       []RecordResponse `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

type ValidationData struct {
	CapturedAt           *Timestamp `json:"capturedAt"`
	ServerTimeAtCreation *time.Time `json:"serverTimeAtCreation"`
	LearnerID            string     `json:"learnerId"`
	SessionID            string     `json:"sessionId"`
}

type ValidateResponse struct {
	Valid   bool           `json:"valid"`
	Message string         `json:"message"`
	Data    ValidationData `json:"data"`
}

// Timestamp is time.Time on the wire with millisecond precision in UTC.
type Timestamp time.Time

func (t Timestamp) Time() time.Time { return time.Time(t) }

func (t Timestamp) String() string {
	return time.Time(t).UTC().Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}
