package http

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"trivia-game-service/internal/app"
	"trivia-game-service/internal/game"
)

type WSHandler struct {
	service  *app.GameService
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.GameService, log *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	SetName       string `json:"setName"`
	Teams         int    `json:"teams"`
	Ranked        bool   `json:"ranked"`
	LosePoints    *bool  `json:"losePoints"`
	Shuffle       *bool  `json:"shuffle"`
	AnswerSeconds int    `json:"answerSeconds"`
}

type joinPayload struct {
	Team int `json:"team"`
}

type answerPayload struct {
	Text string `json:"text"`
}

type commandPayload struct {
	Kind string `json:"kind"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the game
// use cases. One connection represents one player in one channel.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	channel := r.URL.Query().Get("channel")
	userID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")
	if channel == "" || userID == "" || displayName == "" {
		http.Error(w, "missing channel, userId, or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 32)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	var pumps sync.WaitGroup

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	// subscribe forwards the channel's game announcements into the write
	// queue. Each pump exits when the game ends or the connection closes.
	subscribe := func() {
		updates, cancel, err := h.service.Subscribe(channel)
		if err != nil {
			return
		}
		pumps.Add(1)
		go func() {
			defer pumps.Done()
			defer cancel()
			for {
				select {
				case update, ok := <-updates:
					if !ok {
						return
					}
					select {
					case send <- outboundMessage[any]{Type: string(update.Type), Payload: update}:
					case <-closeSignals:
						return
					}
				case <-closeSignals:
					return
				}
			}
		}()
	}

	if h.service.Active(channel) {
		subscribe()
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}

		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid start payload")
				continue
			}
			params := app.StartParams{
				SetName:       payload.SetName,
				NumTeams:      payload.Teams,
				Ranked:        payload.Ranked,
				LosePoints:    boolOr(payload.LosePoints, true),
				Shuffle:       boolOr(payload.Shuffle, true),
				AnswerSeconds: payload.AnswerSeconds,
			}
			if err := h.service.StartGame(r.Context(), channel, userID, params); err != nil {
				send <- errorMessage(err.Error())
				continue
			}
			subscribe()
			send <- outboundMessage[any]{Type: "game_created", Payload: map[string]string{"channel": channel}}

		case "join":
			var payload joinPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid join payload")
				continue
			}
			h.dispatch(send, channel, game.Event{
				Kind:       game.EventJoin,
				PlayerID:   userID,
				PlayerName: displayName,
				TeamSlot:   payload.Team,
			})

		case "leave":
			h.dispatch(send, channel, game.Event{Kind: game.EventLeave, PlayerID: userID, PlayerName: displayName})

		case "ready":
			h.dispatch(send, channel, game.Event{Kind: game.EventReady, PlayerID: userID})

		case "buzz":
			h.dispatch(send, channel, game.Event{Kind: game.EventBuzz, PlayerID: userID, PlayerName: displayName})

		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid answer payload")
				continue
			}
			h.dispatch(send, channel, game.Event{Kind: game.EventAnswer, PlayerID: userID, Text: payload.Text})

		case "command":
			var payload commandPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- errorMessage("invalid command payload")
				continue
			}
			command, ok := parseCommand(payload.Kind)
			if !ok {
				send <- errorMessage("unsupported command")
				continue
			}
			h.dispatch(send, channel, game.Event{Kind: game.EventControl, PlayerID: userID, Command: command})

		default:
			send <- errorMessage("unsupported message type")
		}
	}

	close(closeSignals)
	pumps.Wait()
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(send chan<- outboundMessage[any], channel string, ev game.Event) {
	if err := h.service.Dispatch(channel, ev); err != nil {
		send <- errorMessage(err.Error())
	}
}

// parseCommand maps the chat-style command aliases onto the control enum.
func parseCommand(kind string) (game.Command, bool) {
	switch kind {
	case "endtrivia", "end":
		return game.CommandEnd, true
	case "teamlb", "tlb":
		return game.CommandTeamStandings, true
	case "playerlb", "plb":
		return game.CommandPlayerStandings, true
	}
	return "", false
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}
