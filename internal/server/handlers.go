package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/matthewbaird/nlquery/internal/activity"
	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/service"
)

type api struct {
	svc *service.Service
	log *zap.Logger
}

type queryRequest struct {
	Query string `json:"query"`
}

type translateRequest struct {
	Query  string          `json:"query"`
	Target string          `json:"target"`
	Intent json.RawMessage `json:"intent,omitempty"` // explicit intent, used instead of Query
}

type batchRequest struct {
	Queries []string `json:"queries"`
}

type intentResponse struct {
	Query  string          `json:"query"`
	Intent json.RawMessage `json:"intent"`
}

func (a *api) parse(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	in, err := a.svc.Parse(r.Context(), req.Query)
	if err != nil {
		a.serviceErrorToHTTP(w, err)
		return
	}
	encoded, err := intent.Marshal(in)
	if err != nil {
		a.serviceErrorToHTTP(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, intentResponse{Query: req.Query, Intent: encoded})
}

func (a *api) translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}

	var (
		tr  *service.Translation
		err error
	)
	if len(req.Intent) > 0 && string(req.Intent) != "null" {
		in, derr := intent.Decode(req.Intent)
		if derr != nil {
			a.writeError(w, http.StatusBadRequest, "INVALID_INTENT", derr.Error())
			return
		}
		tr, err = a.svc.Translate(r.Context(), req.Target, in, req.Query)
	} else {
		tr, err = a.svc.TranslateText(r.Context(), req.Target, req.Query)
	}
	if err != nil {
		a.serviceErrorToHTTP(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, tr)
}

func (a *api) batch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	if len(req.Queries) > service.MaxBatch {
		a.writeError(w, http.StatusRequestEntityTooLarge, "BATCH_TOO_LARGE", "too many queries")
		return
	}
	results, err := a.svc.ParseBatch(r.Context(), req.Queries)
	if err != nil {
		a.serviceErrorToHTTP(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (a *api) execute(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
		return
	}
	res, err := a.svc.Execute(r.Context(), req.Query)
	if err != nil {
		a.serviceErrorToHTTP(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, res)
}

func (a *api) tokens(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	a.writeJSON(w, http.StatusOK, map[string]any{"query": q, "tokens": a.svc.Tokens(q)})
}

func (a *api) keywords(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, service.KeywordTable(a.svc.Keywords()))
}

type activityResponse struct {
	Entries    []activity.Entry `json:"entries"`
	NextCursor string           `json:"next_cursor,omitempty"`
	Total      int              `json:"total"`
}

// activity lists recorded parse events. With q it searches query texts;
// otherwise it pages with limit and cursor.
func (a *api) activity(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Query()
	var since *time.Time
	if v := p.Get("since"); v != "" {
		t, err := cast.ToTimeE(v)
		if err != nil {
			a.writeError(w, http.StatusBadRequest, "INVALID_SINCE", err.Error())
			return
		}
		since = &t
	}
	limit := cast.ToInt(p.Get("limit"))

	if q := p.Get("q"); q != "" {
		entries, total, err := a.svc.SearchHistory(r.Context(), q, activity.SearchOptions{
			EventType: p.Get("event_type"),
			Since:     since,
			Limit:     limit,
		})
		if err != nil {
			a.serviceErrorToHTTP(w, err)
			return
		}
		a.writeJSON(w, http.StatusOK, activityResponse{Entries: nonNil(entries), Total: total})
		return
	}

	entries, next, total, err := a.svc.History(r.Context(), activity.QueryOptions{
		Since:      since,
		EventTypes: splitList(p.Get("event_type")),
		Kinds:      splitList(p.Get("kind")),
		FailedOnly: cast.ToBool(p.Get("failed")),
		Limit:      limit,
		Cursor:     p.Get("cursor"),
	})
	if err != nil {
		a.serviceErrorToHTTP(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, activityResponse{Entries: nonNil(entries), NextCursor: next, Total: total})
}

func (a *api) schema(w http.ResponseWriter, r *http.Request) {
	reg := a.svc.Registry()
	out := make([]any, 0, len(reg.IndexNames()))
	for _, name := range reg.IndexNames() {
		out = append(out, reg.Index(name))
	}
	a.writeJSON(w, http.StatusOK, map[string]any{"indexes": out})
}

func nonNil(entries []activity.Entry) []activity.Entry {
	if entries == nil {
		return []activity.Entry{}
	}
	return entries
}
