package httpapi

import (
	"net/http"

	"coin-insights/internal/query"
)

type chatRequest struct {
	Question string `json:"question"`
}

func (a *API) handleHello(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "Hello, World!")
}

func (a *API) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := a.engine.Summary(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleNames(w http.ResponseWriter, r *http.Request) {
	names, err := a.engine.Names(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (a *API) handleRange(w http.ResponseWriter, r *http.Request) {
	var req query.RangeRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	result, err := a.engine.Range(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	var req query.SnapshotRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	result, err := a.engine.Snapshot(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleMostInteresting(w http.ResponseWriter, r *http.Request) {
	var req query.YearRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	result, err := a.engine.MostInteresting(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	var req query.YearRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	result, err := a.engine.YearStats(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleVolatility(w http.ResponseWriter, r *http.Request) {
	var req query.YearRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	result, err := a.engine.Volatility(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) handleChat(w http.ResponseWriter, r *http.Request) {
	if a.limiter != nil && !a.limiter.Allow() {
		writeMessage(w, http.StatusTooManyRequests, "too many chat requests, slow down")
		return
	}
	var req chatRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	reply, err := a.chat.Ask(r.Context(), req.Question)
	if err != nil {
		a.metrics.RecordChatFailure()
		a.writeError(w, r, err)
		return
	}
	a.metrics.RecordIntent(string(reply.Intent))
	writeJSON(w, http.StatusOK, reply)
}
