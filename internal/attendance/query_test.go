package attendance

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, f *fixture, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		f.clock.Set(day1.Add(time.Duration(i) * time.Minute))
		_, err := f.submit(t, "tok-l1", fmt.Sprintf("S%02d", i))
		require.NoError(t, err)
	}
}

func TestList_RoleGate(t *testing.T) {
	f := newFixture(t, nil)
	seed(t, f, 1)
	ctx := context.Background()

	for _, tok := range []string{"tok-l1", "tok-l2", "tok-norole"} {
		_, err := f.svc.List(ctx, tok, ListQuery{})
		assert.Equal(t, CodeForbidden, CodeOf(err), tok)
		assert.Contains(t, err.Error(), "admin, lead, test_expert")
	}
	_, err := f.svc.List(ctx, "", ListQuery{})
	assert.Equal(t, CodeUnauthenticated, CodeOf(err))
	assert.EqualValues(t, 0, f.store.lists.Load())

	for _, tok := range []string{"tok-admin", "tok-lead", "tok-expert"} {
		res, err := f.svc.List(ctx, tok, ListQuery{})
		require.NoError(t, err, tok)
		assert.Len(t, res.Data, 1)
	}
}

func TestList_DefaultsAndPagination(t *testing.T) {
	f := newFixture(t, nil)
	seed(t, f, 25)
	ctx := context.Background()

	res, err := f.svc.List(ctx, "tok-admin", ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, Pagination{Page: 1, Limit: 10, Total: 25, TotalPages: 3}, res.Pagination)
	require.Len(t, res.Data, 10)
	// 新しい順
	assert.Equal(t, "S24", res.Data[0].SessionID)
	assert.Equal(t, "S15", res.Data[9].SessionID)

	res, err = f.svc.List(ctx, "tok-admin", ListQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	require.Len(t, res.Data, 5)
	assert.Equal(t, "S04", res.Data[0].SessionID)
	assert.Equal(t, "S00", res.Data[4].SessionID)

	res, err = f.svc.List(ctx, "tok-admin", ListQuery{Page: 9, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.EqualValues(t, 25, res.Pagination.Total)

	res, err = f.svc.List(ctx, "tok-admin", ListQuery{Page: -2, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pagination.Page)
	assert.Equal(t, MaxPageLimit, res.Pagination.Limit)
	assert.Len(t, res.Data, 25)
}

func TestList_HugePageIsEmpty(t *testing.T) {
	f := newFixture(t, nil)
	seed(t, f, 3)
	ctx := context.Background()

	for _, page := range []int{4611686018427387905, math.MaxInt} {
		res, err := f.svc.List(ctx, "tok-admin", ListQuery{Page: page, Limit: 10})
		require.NoError(t, err, page)
		assert.Empty(t, res.Data)
		assert.EqualValues(t, 3, res.Pagination.Total)
		assert.Positive(t, res.Pagination.Page)
	}

	q := normalizeListQuery(ListQuery{Page: math.MaxInt, Limit: MaxPageLimit})
	assert.GreaterOrEqual(t, q.Offset(), 0)
}

func TestList_Search(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.clock.Set(day1)
	_, err := f.submit(t, "tok-l1", "IT_IA")
	require.NoError(t, err)
	_, err = f.submit(t, "tok-l2", "Maths_101")
	require.NoError(t, err)

	res, err := f.svc.List(ctx, "tok-lead", ListQuery{Search: "it_ia"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "L1", res.Data[0].LearnerID)

	// learnerId でもヒット
	res, err = f.svc.List(ctx, "tok-lead", ListQuery{Search: "l2"})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Maths_101", res.Data[0].SessionID)

	// 正規表現ではなくリテラル
	res, err = f.svc.List(ctx, "tok-lead", ListQuery{Search: ".*"})
	require.NoError(t, err)
	assert.Empty(t, res.Data)
	assert.EqualValues(t, 0, res.Pagination.TotalPages)
}

func TestValidate(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.clock.Set(time.Date(2024, 3, 1, 8, 15, 0, 250000000, time.UTC))
	sub, err := f.submit(t, "tok-l1", "IT_IA")
	require.NoError(t, err)

	for _, tok := range []string{"tok-l1", "tok-admin", "tok-lead"} {
		_, err := f.svc.Validate(ctx, tok, "L1", "IT_IA")
		assert.Equal(t, CodeForbidden, CodeOf(err), tok)
	}
	assert.EqualValues(t, 0, f.store.latests.Load())

	res, err := f.svc.Validate(ctx, "tok-expert", "L1", "IT_IA")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, MessageSignatureValid, res.Message)
	require.NotNil(t, res.Data.CapturedAt)
	assert.Equal(t, sub.CapturedAt.String(), res.Data.CapturedAt.String())
	assert.Equal(t, "L1", res.Data.LearnerID)
	assert.Equal(t, "IT_IA", res.Data.SessionID)

	_, err = f.svc.Validate(ctx, "tok-expert", "L1", "NOPE")
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestValidate_LatestRecordWins(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	f.clock.Set(day1)
	_, err := f.submit(t, "tok-l1", "IT_IA")
	require.NoError(t, err)
	f.clock.Set(day1.AddDate(0, 0, 1))
	second, err := f.submit(t, "tok-l1", "IT_IA")
	require.NoError(t, err)

	res, err := f.svc.Validate(ctx, "tok-expert", "L1", "IT_IA")
	require.NoError(t, err)
	require.NotNil(t, res.Data.CapturedAt)
	assert.Equal(t, second.CapturedAt.String(), res.Data.CapturedAt.String())
}

func TestValidate_CorruptTimestamp(t *testing.T) {
	f := newFixture(t, nil)

	// captured_at が読めなかった行を模す
	require.NoError(t, f.mem.Insert(context.Background(), &Record{
		LearnerID: "L9", SessionID: "IT_IA", SignatureBlob: validBlob(), SignedOn: "2024-03-01",
	}))

	res, err := f.svc.Validate(context.Background(), "tok-expert", "L9", "IT_IA")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, MessageInvalidTimestamp, res.Message)
	assert.Nil(t, res.Data.CapturedAt)
	assert.Equal(t, 1, f.obs.queries["validate/ok"])
}
