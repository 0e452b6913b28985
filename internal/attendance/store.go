package attendance

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"strings"

	"emargement-backend/internal/platform/db"
)

// Store は署名記録の永続化。Insert は (learner, session, signedOn) の一意性を原子的に保証すること
type Store interface {
	// Insert: rec.ID を採番して保存。同じ日の記録があれば ErrRecordExists
	Insert(ctx context.Context, rec *Record) error
	List(ctx context.Context, q ListQuery) ([]Record, int64, error)
	// Latest: learner+session の最新1件。無ければ ErrRecordNotFound
	Latest(ctx context.Context, learnerID, sessionID string) (Record, error)
	// HasLearner は learnerID の記録が1件でもあるか（アカウントIDの再利用防止に使う）
	HasLearner(ctx context.Context, learnerID string) (bool, error)
}

const selectColumns = `
	SELECT id, learner_id, session_id, signature_blob, captured_at, DATE_FORMAT(signed_on, '%Y-%m-%d') AS signed_on
	FROM attendance_records`

// SQLStore: MySQL 実装。UNIQUE(learner_id, session_id, signed_on) に重複判定を任せる
type SQLStore struct {
	db  *sql.DB
	ids IDGen
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(conn *sql.DB) *SQLStore {
	return &SQLStore{db: conn, ids: ulidGen{}}
}

func (s *SQLStore) Insert(ctx context.Context, rec *Record) error {
	id, err := s.ids.New(rec.CapturedAt)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
	INSERT INTO attendance_records (id, learner_id, session_id, signature_blob, captured_at, signed_on)
	VALUES (?, ?, ?, ?, ?, ?)`,
		id, rec.LearnerID, rec.SessionID, rec.SignatureBlob, rec.CapturedAt.UTC(), rec.SignedOn,
	)
	if err != nil {
		if db.IsDuplicateKey(err) {
			return ErrRecordExists
		}
		return err
	}
	rec.ID = id
	return nil
}

// List: 一覧と COUNT を同じ読み取りTxで取る
func (s *SQLStore) List(ctx context.Context, q ListQuery) ([]Record, int64, error) {
	var (
		where string
		args  []any
	)
	if q.Search != "" {
		where = " WHERE LOWER(learner_id) LIKE ? OR LOWER(session_id) LIKE ?"
		p := likePattern(q.Search)
		args = append(args, p, p)
	}

	var (
		out   []Record
		total int64
	)
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendance_records"+where, args...).Scan(&total); err != nil {
			return err
		}

		var buf bytes.Buffer
		buf.WriteString(selectColumns)
		buf.WriteString(where)
		buf.WriteString(" ORDER BY captured_at DESC, id DESC LIMIT ? OFFSET ?")

		rows, err := tx.QueryContext(ctx, buf.String(), append(args, q.Limit, q.Offset())...)
		if err != nil {
			return err
		}
		defer rows.Close()

		out, err = scanRecords(rows)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *SQLStore) Latest(ctx context.Context, learnerID, sessionID string) (Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+`
	WHERE learner_id = ? AND session_id = ?
	ORDER BY captured_at DESC, id DESC
	LIMIT 1`, learnerID, sessionID)

	var r attendanceRow
	if err := row.Scan(&r.ID, &r.LearnerID, &r.SessionID, &r.SignatureBlob, &r.CapturedAt, &r.SignedOn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, err
	}
	return r.toModel(), nil
}

// ===== helpers =====

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var out []Record
	for rows.Next() {
		var r attendanceRow
		if err := rows.Scan(&r.ID, &r.LearnerID, &r.SessionID, &r.SignatureBlob, &r.CapturedAt, &r.SignedOn); err != nil {
			return nil, err
		}
		out = append(out, r.toModel())
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern: 検索語はリテラル扱い（% や _ はエスケープ）
func likePattern(search string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
}

func (s *SQLStore) HasLearner(ctx context.Context, learnerID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM attendance_records WHERE learner_id = ? LIMIT 1`, learnerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
