package table

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/jumpvector/core/journal"
	"github.com/kilianp07/jumpvector/core/operator"
)

// Entry is one active table slot.
type Entry struct {
	Index int    `json:"index"`
	Code  uint32 `json:"code"`
}

// View is the body of GET /api/table.
type View struct {
	Capacity int     `json:"capacity"`
	Active   int     `json:"active"`
	Entries  []Entry `json:"entries"`
}

// NewMux routes the table API. Every request must carry "Bearer <token>"
// in its Authorization header when token is non-empty.
func NewMux(op *operator.Operator, token string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/table", NewTableHandler(op))
	mux.Handle("/api/journal", NewJournalHandler(op.Journal()))
	mux.Handle("/api/dispatch", NewDispatchHandler(op))
	return requireToken(token, mux)
}

func requireToken(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// NewTableHandler exposes the active entries via GET /api/table.
func NewTableHandler(op *operator.Operator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		snap := op.Snapshot()
		v := View{Capacity: snap.Capacity, Active: snap.Active, Entries: make([]Entry, len(snap.Codes))}
		for i, c := range snap.Codes {
			v.Entries[i] = Entry{Index: i, Code: c}
		}
		writeJSON(w, v)
	})
}

// NewJournalHandler exposes journal records via GET /api/journal with the
// optional start, end (RFC3339), code, outcome and limit parameters.
func NewJournalHandler(store journal.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		q, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		records, err := store.Query(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []journal.Record{}
		}
		writeJSON(w, records)
	})
}

func parseQuery(r *http.Request) (journal.Query, error) {
	v := r.URL.Query()
	q := journal.Query{Outcome: v.Get("outcome")}
	if s := v.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, fmt.Errorf("start: %w", err)
		}
		q.Start = t
	}
	if s := v.Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, fmt.Errorf("end: %w", err)
		}
		q.End = t
	}
	if s := v.Get("code"); s != "" {
		c, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return q, fmt.Errorf("code: %w", err)
		}
		code := uint32(c)
		q.Code = &code
	}
	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, errors.New("limit must be a non-negative integer")
		}
		q.Limit = n
	}
	return q, nil
}

// NewDispatchHandler runs a command posted to /api/dispatch and answers with
// its reply.
func NewDispatchHandler(op *operator.Operator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := readBody(w, r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cmd, err := operator.DecodeCommand(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cmd.Source = "api"
		writeJSON(w, op.Handle(r.Context(), cmd))
	})
}

const maxBody = 4 << 10

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer func() { _ = r.Body.Close() }()
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
