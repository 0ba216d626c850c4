package wire

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/matthewbaird/nlquery/internal/intent"
	"github.com/matthewbaird/nlquery/internal/nlq"
	"github.com/matthewbaird/nlquery/internal/repl/autocomplete"
	"github.com/matthewbaird/nlquery/internal/repl/meta"
	"github.com/matthewbaird/nlquery/internal/repl/session"
	"github.com/matthewbaird/nlquery/internal/service"
)

const (
	// rowBatchSize controls how many rows are sent per "rows" message.
	rowBatchSize = 50
)

// Handler manages WebSocket connections for the REPL.
type Handler struct {
	sessions     *session.Manager
	svc          *service.Service
	autocomplete *autocomplete.Engine
	meta         *meta.Handler
	log          *zap.Logger
}

// NewHandler creates a WebSocket handler with all dependencies.
func NewHandler(
	sessions *session.Manager,
	svc *service.Service,
	ac *autocomplete.Engine,
	metaHandler *meta.Handler,
	log *zap.Logger,
) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		sessions:     sessions,
		svc:          svc,
		autocomplete: ac,
		meta:         metaHandler,
		log:          log,
	}
}

// ServeHTTP upgrades to WebSocket and runs the message loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Warn("repl: websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	sess := h.sessions.Create()
	defer h.sessions.Remove(sess.ID)
	ctx := r.Context()
	log := h.log.With(zap.String("session", sess.ID))

	h.send(ctx, conn, ServerMessage{
		Type: "session",
		Data: SessionData{
			SessionID: sess.ID,
			Target:    string(sess.CurrentTarget()),
		},
	})

	for {
		var msg ClientMessage
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				log.Debug("repl: connection closed", zap.Int("status", int(websocket.CloseStatus(err))))
			}
			return
		}
		sess.Touch()

		switch msg.Type {
		case "execute":
			h.handleExecute(ctx, conn, sess, msg)
		case "autocomplete":
			h.handleAutocomplete(ctx, conn, msg)
		case "ping":
			h.send(ctx, conn, ServerMessage{Type: "pong", RequestID: msg.ID})
		default:
			h.sendError(ctx, conn, msg.ID, "unknown_type", fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

func (h *Handler) handleExecute(ctx context.Context, conn *websocket.Conn, sess *session.Session, msg ClientMessage) {
	start := time.Now()

	var data ExecuteData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid execute data")
		return
	}
	if data.Query == "" {
		h.sendError(ctx, conn, msg.ID, "empty_query", "empty query")
		return
	}

	if meta.IsMeta(data.Query) {
		cmd, args := meta.Split(data.Query)
		result, err := h.meta.Execute(sess, cmd, args)
		if err != nil {
			h.sendError(ctx, conn, msg.ID, "meta_error", err.Error())
			return
		}
		h.send(ctx, conn, ServerMessage{Type: "meta", RequestID: msg.ID, Data: result})
		return
	}

	sess.AddHistory(data.Query)
	total := 0

	switch target := sess.CurrentTarget(); target {
	case session.TargetIntent:
		in, err := h.svc.Parse(ctx, data.Query)
		if err != nil {
			h.sendFailure(ctx, conn, msg.ID, err)
			return
		}
		encoded, err := intent.Marshal(in)
		if err != nil {
			h.sendError(ctx, conn, msg.ID, "encode_error", err.Error())
			return
		}
		h.send(ctx, conn, ServerMessage{Type: "intent", RequestID: msg.ID, Data: IntentData{Intent: encoded}})

	case session.TargetES, session.TargetSQL:
		tr, err := h.svc.TranslateText(ctx, string(target), data.Query)
		if err != nil {
			h.sendFailure(ctx, conn, msg.ID, err)
			return
		}
		h.send(ctx, conn, ServerMessage{Type: "translation", RequestID: msg.ID, Data: tr})

	case session.TargetExec:
		result, err := h.svc.Execute(ctx, data.Query)
		if err != nil {
			h.sendFailure(ctx, conn, msg.ID, err)
			return
		}
		if result.Meta != nil {
			total = result.Meta.Total
			h.send(ctx, conn, ServerMessage{
				Type:      "meta",
				RequestID: msg.ID,
				Data: MetaData{
					Table: result.Meta.Table,
					Kind:  result.Meta.Kind,
					SQL:   result.SQL,
					Args:  result.Args,
					Total: result.Meta.Total,
				},
			})
		}
		for i := 0; i < len(result.Rows); i += rowBatchSize {
			end := min(i+rowBatchSize, len(result.Rows))
			h.send(ctx, conn, ServerMessage{
				Type:      "rows",
				RequestID: msg.ID,
				Data:      RowsData{Rows: result.Rows[i:end]},
			})
		}
		if result.Count != nil {
			h.send(ctx, conn, ServerMessage{Type: "rows", RequestID: msg.ID, Data: CountData{Count: *result.Count}})
		}
	}

	h.send(ctx, conn, ServerMessage{
		Type:      "done",
		RequestID: msg.ID,
		Data: DoneData{
			Total:   total,
			Elapsed: time.Since(start).String(),
		},
	})
}

func (h *Handler) handleAutocomplete(ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	var data AutocompleteData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid autocomplete data")
		return
	}

	items := h.autocomplete.Complete(data.Query, data.Cursor)
	h.send(ctx, conn, ServerMessage{
		Type:      "completions",
		RequestID: msg.ID,
		Data:      CompletionsData{Items: items},
	})
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		h.log.Debug("repl: write error", zap.Error(err))
	}
}

// sendFailure reports a parse error with its position, anything else as
// an exec error.
func (h *Handler) sendFailure(ctx context.Context, conn *websocket.Conn, requestID string, err error) {
	info := service.NewErrorInfo(err)
	code := "exec_error"
	if _, ok := nlq.AsParseError(err); ok {
		code = "parse_error"
	}
	h.send(ctx, conn, ServerMessage{
		Type:      "error",
		RequestID: requestID,
		Data:      ErrorData{Code: code, Message: err.Error(), Detail: info},
	})
}

func (h *Handler) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	h.send(ctx, conn, ServerMessage{
		Type:      "error",
		RequestID: requestID,
		Data: ErrorData{
			Code:    code,
			Message: message,
		},
	})
}
