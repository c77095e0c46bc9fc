// Copyright 2024 The Accumulate Authors
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package web

import (
	"context"
	"net/http"

	"github.com/AccumulateNetwork/jsonrpc2/v15"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"gitlab.com/accumulatenetwork/vestingd/internal/identity"
	"gitlab.com/accumulatenetwork/vestingd/internal/ledger"
	"gitlab.com/accumulatenetwork/vestingd/internal/view"
)

// IdentityResolver resolves display labels for addresses.
type IdentityResolver interface {
	Resolve(ctx context.Context, addr string) (*identity.Identity, error)
	Start(ctx context.Context, addr string) (*identity.Lookup, error)
}

type Options struct {
	Contracts ledger.Contracts
	// Events may be nil, in which case websocket sessions do not update
	// after the initial load.
	Events      ledger.EventSource
	Resolver    IdentityResolver
	View        view.Options
	Concurrency int
	Logger      zerolog.Logger
}

type Server struct {
	Options
	builder  *ledger.Builder
	methods  jsonrpc2.MethodMap
	validate *validator.Validate
	upgrader *websocket.Upgrader
	logger   zerolog.Logger
}

func NewServer(opts Options) *Server {
	s := new(Server)
	s.Options = opts
	s.logger = opts.Logger
	s.builder = ledger.NewBuilder(opts.Contracts, opts.Concurrency, s.logger)
	s.validate = validator.New()
	s.upgrader = &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
	s.populateMethodTable()
	return s
}

func (s *Server) NewMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/v1", jsonrpc2.HTTPRequestHandler(s.methods, jrpcLogger{s.logger}))
	mux.Handle("/ws", http.HandlerFunc(s.serveWebsocket))
	mux.Handle("/", StaticHandler())
	return mux
}

// jrpcLogger adapts zerolog to the JSON-RPC handler's logger.
type jrpcLogger struct {
	zerolog.Logger
}

func (l jrpcLogger) Println(values ...interface{}) {
	l.Info().Msg(fmtln(values...))
}

func (l jrpcLogger) Printf(format string, values ...interface{}) {
	l.Info().Msgf(format, values...)
}
