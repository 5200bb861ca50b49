package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"livepoll-service/internal/app"
	"livepoll-service/internal/domain"
)

const (
	writeWait = 10 * time.Second
	readWait  = 5 * time.Minute
)

// WSHandler upgrades HTTP requests to websockets and bridges them into the
// session coordinator: inbound envelopes become typed commands, coordinator
// events flow back through a single writer goroutine.
type WSHandler struct {
	coord    *app.Coordinator
	upgrader websocket.Upgrader
	validate *validator.Validate
	log      zerolog.Logger
}

func NewWSHandler(coord *app.Coordinator, log zerolog.Logger) *WSHandler {
	return &WSHandler{
		coord: coord,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		validate: validator.New(),
		log:      log,
	}
}

// inboundMessage peeks at the message type before full payload parsing.
type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	events, cancel := h.coord.Connect(connID)
	defer cancel()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		// Closing the connection here unblocks the read loop when the
		// coordinator closes the stream (kick, shutdown).
		defer conn.Close()
		for ev := range events {
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				h.log.Debug().Err(err).Str("conn", connID).Msg("ws write error")
				return
			}
		}
	}()

	var readErr error
	for {
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		var inbound inboundMessage
		if readErr = conn.ReadJSON(&inbound); readErr != nil {
			break
		}
		cmd, err := h.decodeCommand(inbound)
		if err != nil {
			h.coord.EmitError(connID, "invalid-payload", err.Error())
			continue
		}
		h.coord.Handle(connID, cmd)
	}

	h.coord.Disconnect(connID, disconnectCause(readErr))
	<-writerDone
}

// disconnectCause maps the read-loop error to a registry cause: a normal
// closure is an explicit leave, anything else is treated as a network or
// server-side drop and retained for the grace window.
func disconnectCause(err error) domain.DisconnectCause {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		return domain.DisconnectExplicitLeave
	}
	return domain.DisconnectOther
}

// decodeCommand turns one wire envelope into a command variant. Unknown
// types and malformed payloads are rejected before they reach the
// coordinator.
func (h *WSHandler) decodeCommand(in inboundMessage) (domain.Command, error) {
	switch in.Type {
	case "register-student":
		return decodePayload[domain.RegisterStudent](h, in.Payload)
	case "register-teacher":
		return domain.RegisterTeacher{}, nil
	case "create-question":
		return decodePayload[domain.CreateQuestion](h, in.Payload)
	case "submit-response":
		return decodePayload[domain.SubmitResponse](h, in.Payload)
	case "end-question":
		return decodePayload[domain.EndQuestion](h, in.Payload)
	case "delete-history-entry":
		return decodePayload[domain.DeleteHistoryEntry](h, in.Payload)
	case "kick-participant":
		return decodePayload[domain.KickParticipant](h, in.Payload)
	case "send-chat-message":
		return decodePayload[domain.SendChatMessage](h, in.Payload)
	case "request-chat-history":
		return domain.RequestChatHistory{}, nil
	case "request-poll-history":
		return domain.RequestPollHistory{}, nil
	case "request-poll-results":
		return domain.RequestPollResults{}, nil
	case "check-active-questions":
		return domain.CheckActiveQuestions{}, nil
	case "heartbeat":
		return domain.Heartbeat{}, nil
	default:
		return nil, fmt.Errorf("unsupported message type %q", in.Type)
	}
}

func decodePayload[T domain.Command](h *WSHandler, raw json.RawMessage) (domain.Command, error) {
	var cmd T
	if err := h.unmarshal(raw, &cmd); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (h *WSHandler) unmarshal(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	if err := h.validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}
