package pagekit

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	clientdist "github.com/pagekit-dev/pagekit/client/dist"
	pkerrors "github.com/pagekit-dev/pagekit/internal/errors"
	"github.com/pagekit-dev/pagekit/pkg/growl"
	"github.com/pagekit-dev/pagekit/pkg/live"
	"github.com/pagekit-dev/pagekit/pkg/markup"
	"go.opentelemetry.io/otel/attribute"
)

// maxBodyBytes caps request bodies on the API routes.
const maxBodyBytes = 64 * 1024

// NotifyRequest is the body of POST /api/notify.
type NotifyRequest struct {
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// NotifyResponse is returned by POST /api/notify.
type NotifyResponse struct {
	Delivered int `json:"delivered"`
}

// ParseSeverity maps a severity tag to a growl.Severity. The empty string
// and "none" map to growl.SeverityNone.
func ParseSeverity(s string) (growl.Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return growl.SeverityNone, true
	case "info":
		return growl.SeverityInfo, true
	case "danger", "error":
		return growl.SeverityDanger, true
	case "success":
		return growl.SeveritySuccess, true
	}
	return growl.SeverityNone, false
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	name := a.config.Name
	if name == "" {
		name = "pagekit"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := a.index.Execute(w, map[string]string{
		"Name":     name,
		"LivePath": a.config.Live.Path,
	})
	if err != nil {
		a.logger.Error("render index failed", "error", err)
	}
}

func (a *App) handleClient(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(clientdist.PagekitJS)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": a.hub.Len(),
	})
}

func (a *App) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req NotifyRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		a.writeError(w, http.StatusBadRequest,
			pkerrors.New("E300").WithDetail("body must be a JSON object").Wrap(err))
		return
	}

	severity, ok := ParseSeverity(req.Severity)
	if !ok {
		a.writeError(w, http.StatusBadRequest,
			pkerrors.New("E300").
				WithDetailf("unknown severity %q", req.Severity).
				WithSuggestion("Use one of none, info, danger, success"))
		return
	}

	delivered := a.Broadcast(r.Context(), req.Message, severity)
	a.logger.Debug("notify broadcast",
		"severity", severity.String(),
		"delivered", delivered)
	writeJSON(w, http.StatusAccepted, NotifyResponse{Delivered: delivered})
}

func (a *App) handleNL2BR(w http.ResponseWriter, r *http.Request) {
	a.convert(w, r, markup.NL2BR)
}

func (a *App) handleBR2NL(w http.ResponseWriter, r *http.Request) {
	a.convert(w, r, markup.BR2NL)
}

// convert applies fn to a plain-text request body.
func (a *App) convert(w http.ResponseWriter, r *http.Request, fn func(string) string) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		a.writeError(w, status, pkerrors.New("E300").Wrap(err))
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, fn(string(body)))
}

func (a *App) writeError(w http.ResponseWriter, status int, err *pkerrors.PageError) {
	a.logger.Debug("request rejected", "status", status, "error", err)
	body := map[string]string{
		"code":  err.Code,
		"error": err.Message,
	}
	if err.Detail != "" {
		body["detail"] = err.Detail
	}
	if err.Suggestion != "" {
		body["hint"] = err.Suggestion
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// sessionAttributes tags banner spans with the page they were sent to.
func sessionAttributes(s *live.Session) func(growl.Message) []attribute.KeyValue {
	return func(growl.Message) []attribute.KeyValue {
		return []attribute.KeyValue{attribute.String("pagekit.session_id", s.ID)}
	}
}
