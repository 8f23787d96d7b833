package table

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/jumpvector/core/journal"
	"github.com/kilianp07/jumpvector/core/jumpvector"
	"github.com/kilianp07/jumpvector/core/operator"
)

func newOperator(store journal.Store) *operator.Operator {
	tbl := jumpvector.New([]jumpvector.Entry{
		{Code: 0, Handler: func(_, v byte) bool { return v%2 == 0 }},
		{Code: 1, Handler: func(_, v byte) bool { return v%2 == 1 }},
		{},
	}, 10)
	return operator.New(tbl, operator.WithJournal(store))
}

func do(t *testing.T, h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestMux_Auth(t *testing.T) {
	h := NewMux(newOperator(journal.NewMemoryStore(0)), "tok")
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/table", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, h, http.MethodGet, "/api/table", "", "nope").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/table", "", "tok").Code)
}

func TestTableHandler(t *testing.T) {
	op := newOperator(journal.NopStore{})
	require.True(t, op.Register(9, func(_, v byte) bool { return v > 99 }))
	h := NewMux(op, "")

	rr := do(t, h, http.MethodGet, "/api/table", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var v View
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v))
	assert.Equal(t, View{
		Capacity: 10,
		Active:   3,
		Entries:  []Entry{{0, 0}, {1, 1}, {2, 9}},
	}, v)

	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodPost, "/api/table", "", "").Code)
}

func TestDispatchHandler(t *testing.T) {
	store := journal.NewMemoryStore(0)
	h := NewMux(newOperator(store), "")

	rr := do(t, h, http.MethodPost, "/api/dispatch", `{"command_id":"x","code":1,"value":3}`, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var r operator.Reply
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &r))
	assert.Equal(t, operator.Reply{CommandID: "x", Code: 1, Value: 3, Mapped: true, Result: true, Outcome: "accepted"}, r)

	rr = do(t, h, http.MethodPost, "/api/dispatch", `{"code":42,"value":3}`, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &r))
	assert.False(t, r.Mapped)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/dispatch", `{"value":3}`, "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/api/dispatch", `{"code":256}`, "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, do(t, h, http.MethodGet, "/api/dispatch", "", "").Code)

	recs, err := store.Query(context.Background(), journal.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "api", recs[0].Source)
}

func TestJournalHandler_Filters(t *testing.T) {
	store := journal.NewMemoryStore(0)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, rec := range []journal.Record{
		{Code: 0, Outcome: "accepted", Result: true},
		{Code: 1, Outcome: "rejected"},
		{Code: 0, Outcome: "rejected"},
		{Code: 7, Outcome: "unmapped"},
	} {
		rec.Timestamp = base.Add(time.Duration(i) * time.Minute)
		rec.CommandID = string(rune('a' + i))
		require.NoError(t, store.Append(context.Background(), rec))
	}
	h := NewJournalHandler(store)

	get := func(target string) []journal.Record {
		rr := do(t, h, http.MethodGet, target, "", "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		var recs []journal.Record
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &recs))
		return recs
	}
	ids := func(recs []journal.Record) []string {
		out := make([]string, len(recs))
		for i, r := range recs {
			out[i] = r.CommandID
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "c", "d"}, ids(get("/api/journal")))
	assert.Equal(t, []string{"a", "c"}, ids(get("/api/journal?code=0")))
	assert.Equal(t, []string{"b", "c"}, ids(get("/api/journal?outcome=rejected")))
	assert.Equal(t, []string{"c", "d"}, ids(get("/api/journal?limit=2")))
	assert.Equal(t, []string{"b", "c"}, ids(get("/api/journal?start=2024-05-01T12:01:00Z&end=2024-05-01T12:02:00Z")))
	assert.Empty(t, get("/api/journal?code=200"))

	for _, bad := range []string{"?code=x", "?limit=-1", "?start=yesterday", "?end=2024"} {
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/journal"+bad, "", "").Code, bad)
	}
}
