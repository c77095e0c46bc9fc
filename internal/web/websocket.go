// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gitlab.com/accumulatenetwork/vestingd/internal/events"
	"gitlab.com/accumulatenetwork/vestingd/internal/identity"
	"gitlab.com/accumulatenetwork/vestingd/internal/ledger"
	"gitlab.com/accumulatenetwork/vestingd/internal/view"
	"gitlab.com/accumulatenetwork/vestingd/pkg/errors"
)

const (
	MessagePage     = "page"
	MessageIdentity = "identity"
	MessageError    = "error"
)

// Request is a message from a websocket client.
type Request struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Message is a message pushed to a websocket client.
type Message struct {
	Type     string             `json:"type"`
	Session  string             `json:"session,omitempty"`
	Page     *view.Page         `json:"page,omitempty"`
	Identity *identity.Identity `json:"identity,omitempty"`
	Error    *errors.Error      `json:"error,omitempty"`
}

// serveWebsocket runs one ledger session for the lifetime of the connection.
func (s *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Info().Err(err).Msg("Websocket upgrade failed")
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	id := uuid.NewString()
	logger := s.logger.With().Str("session", id).Logger()
	session := ledger.NewSession(ledger.SessionOptions{
		ID:          id,
		Contracts:   s.Contracts,
		Events:      s.Events,
		Concurrency: s.Concurrency,
		Logger:      logger,
	})
	defer session.Close()

	// Only the latest page matters, so a slow client skips pages
	pages := make(chan view.Page, 1)
	unsub := events.SubscribeSync(session.Bus(), func(e ledger.Changed) {
		events.OfferLatest(pages, view.Render(e.Snapshot, s.View))
	})
	defer unsub()

	send := make(chan *Message, 16)

	// Write loop
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error().Interface("error", r).Str("stack", string(debug.Stack())).Msg("Write loop panicked")
			}
		}()

		// Ensure the read loop stops
		defer conn.Close()

		for {
			var msg *Message
			select {
			case <-ctx.Done():
				return
			case page := <-pages:
				msg = &Message{Type: MessagePage, Session: id, Page: &page}
			case msg = <-send:
			}

			err := conn.WriteJSON(msg)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					logger.Info().Err(err).Msg("Write message failed")
				}
				cancel()
				return
			}
		}
	}()

	push := func(msg *Message) {
		select {
		case send <- msg:
		case <-ctx.Done():
		}
	}

	// Read loop
	for {
		req := new(Request)
		err := conn.ReadJSON(req)
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !errors.Is(err, io.EOF) {
				logger.Debug().Err(err).Msg("Read message failed")
			}
			return
		}

		switch strings.ToLower(req.Method) {
		case "select":
			p := new(AccountRequest)
			err := s.parse(req.Params, p)
			if err == nil {
				err = session.Select(p.Account)
			}
			if err != nil {
				push(&Message{Type: MessageError, Session: id, Error: asError(errors.BadRequest, err)})
			}

		case "identity":
			p := new(AddressRequest)
			err := s.parse(req.Params, p)
			if err != nil {
				push(&Message{Type: MessageError, Session: id, Error: asError(errors.BadRequest, err)})
				continue
			}
			lookup, err := s.Resolver.Start(ctx, p.Address)
			if err != nil {
				push(&Message{Type: MessageError, Session: id, Error: asError(errors.BadRequest, err)})
				continue
			}
			current := lookup.Current()
			push(&Message{Type: MessageIdentity, Session: id, Identity: &current})
			if current.Loading {
				go func() {
					select {
					case <-lookup.Done():
						final := lookup.Current()
						push(&Message{Type: MessageIdentity, Session: id, Identity: &final})
					case <-ctx.Done():
					}
				}()
			}

		default:
			push(&Message{Type: MessageError, Session: id, Error: errors.NotFound.WithFormat("%s is not a method", req.Method).Public()})
		}
	}
}

func asError(code errors.Status, err error) *errors.Error {
	var e *errors.Error
	if !errors.As(err, &e) {
		e = code.With(err.Error())
	}
	return e.Public()
}
