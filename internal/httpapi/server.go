// Package httpapi exposes hosted games over HTTP: one line of move text per
// request in, JSON snapshots, PGN and PNG boards out.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/termchess/internal/obslog"
	"github.com/park285/termchess/internal/render"
	"github.com/park285/termchess/internal/session"
	"github.com/park285/termchess/pkg/chessdto"
)

type Server struct {
	sessions *session.Manager
	renderer render.Renderer
	srv      *fasthttp.Server
}

func NewServer(sessions *session.Manager, renderer render.Renderer) *Server {
	if renderer == nil {
		renderer = render.NewRenderer()
	}
	s := &Server{sessions: sessions, renderer: renderer}
	s.srv = &fasthttp.Server{
		Handler:      s.Handler,
		Name:         "termchess",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

func (s *Server) ListenAndServe(addr string) error { return s.srv.ListenAndServe(addr) }

func (s *Server) Serve(ln net.Listener) error { return s.srv.Serve(ln) }

func (s *Server) Shutdown(ctx context.Context) error { return s.srv.ShutdownWithContext(ctx) }

// Handler routes:
//
//	POST /games                  start a game
//	GET  /games/{id}             current snapshot
//	DELETE /games/{id}           drop the game and its stored snapshot
//	POST /games/{id}/moves       submit one line of move text
//	GET  /games/{id}/board.png   rendered board (?flip=1 for Black's side)
//	GET  /games/{id}/pgn         PGN so far
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	path := strings.Trim(string(ctx.Path()), "/")
	parts := strings.Split(path, "/")
	method := string(ctx.Method())

	switch {
	case path == "healthz":
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	case len(parts) == 1 && parts[0] == "games":
		if !allow(ctx, method, fasthttp.MethodPost) {
			break
		}
		s.startGame(ctx)
	case len(parts) == 2 && parts[0] == "games":
		switch method {
		case fasthttp.MethodGet:
			s.getGame(ctx, parts[1])
		case fasthttp.MethodDelete:
			s.removeGame(ctx, parts[1])
		default:
			allow(ctx, method, "GET, DELETE")
		}
	case len(parts) == 3 && parts[0] == "games":
		id := parts[1]
		switch parts[2] {
		case "moves":
			if allow(ctx, method, fasthttp.MethodPost) {
				s.submit(ctx, id)
			}
		case "board.png":
			if allow(ctx, method, fasthttp.MethodGet) {
				s.boardPNG(ctx, id)
			}
		case "pgn":
			if allow(ctx, method, fasthttp.MethodGet) {
				s.pgn(ctx, id)
			}
		default:
			writeError(ctx, fasthttp.StatusNotFound, chessdto.DomainError{Code: chessdto.CodeNotFound, Message: "no such route"})
		}
	default:
		writeError(ctx, fasthttp.StatusNotFound, chessdto.DomainError{Code: chessdto.CodeNotFound, Message: "no such route"})
	}

	obslog.L().Debug("http_request",
		zap.String("method", method),
		zap.String("path", string(ctx.Path())),
		zap.Int("status", ctx.Response.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func allow(ctx *fasthttp.RequestCtx, method, want string) bool {
	if method == want {
		return true
	}
	ctx.Response.Header.Set("Allow", want)
	writeError(ctx, fasthttp.StatusMethodNotAllowed, chessdto.DomainError{Code: chessdto.CodeMalformed, Message: "method not allowed"})
	return false
}

func (s *Server) startGame(ctx *fasthttp.RequestCtx) {
	var req chessdto.StartGameRequest
	if body := ctx.PostBody(); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(ctx, fasthttp.StatusBadRequest, chessdto.DomainError{Code: chessdto.CodeMalformed, Message: "invalid JSON body"})
			return
		}
	}
	snap, err := s.sessions.Start(ctx, req)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	ctx.Response.Header.Set("Location", "/games/"+snap.GameID)
	writeJSON(ctx, fasthttp.StatusCreated, snap)
}

func (s *Server) getGame(ctx *fasthttp.RequestCtx, id string) {
	snap, err := s.sessions.Get(ctx, id)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, snap)
}

func (s *Server) removeGame(ctx *fasthttp.RequestCtx, id string) {
	if !s.sessions.Remove(ctx, id) {
		writeDomainError(ctx, fmt.Errorf("%w: %s", session.ErrNotFound, id))
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

// submit accepts either a JSON PlayRequest or the raw move text as the body.
func (s *Server) submit(ctx *fasthttp.RequestCtx, id string) {
	input := string(ctx.PostBody())
	if strings.HasPrefix(string(ctx.Request.Header.ContentType()), "application/json") {
		var req chessdto.PlayRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			writeError(ctx, fasthttp.StatusBadRequest, chessdto.DomainError{Code: chessdto.CodeMalformed, Message: "invalid JSON body"})
			return
		}
		input = req.Input
	}
	res, err := s.sessions.Submit(ctx, id, input)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, res)
}

func (s *Server) boardPNG(ctx *fasthttp.RequestCtx, id string) {
	snap, err := s.sessions.Get(ctx, id)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	flip := string(ctx.QueryArgs().Peek("flip"))
	img, err := s.renderer.RenderPNG(ctx, *snap, render.Options{Flip: flip == "1" || flip == "true"})
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	ctx.SetContentType("image/png")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(img)
}

func (s *Server) pgn(ctx *fasthttp.RequestCtx, id string) {
	text, err := s.sessions.PGN(ctx, id)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}
	ctx.SetContentType("application/x-chess-pgn")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString(text)
}

// statusFor maps a classified error onto an HTTP status.
func statusFor(err error, de chessdto.DomainError) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return fasthttp.StatusNotFound
	case errors.Is(err, session.ErrTooManyGames):
		return fasthttp.StatusServiceUnavailable
	}
	switch de.Code {
	case chessdto.CodeGameOver, chessdto.CodeNoDrawOffer:
		return fasthttp.StatusConflict
	case chessdto.CodeIllegalMove, chessdto.CodeMissingPromotion, chessdto.CodeInvalidCastle,
		chessdto.CodeMalformed, chessdto.CodeInvalidPosition:
		return fasthttp.StatusBadRequest
	case chessdto.CodeNotFound:
		return fasthttp.StatusNotFound
	default:
		return fasthttp.StatusInternalServerError
	}
}

func writeDomainError(ctx *fasthttp.RequestCtx, err error) {
	de := chessdto.FromError(err)
	switch {
	case errors.Is(err, session.ErrNotFound):
		de.Code = chessdto.CodeNotFound
	case errors.Is(err, session.ErrTooManyGames):
		de.Code, de.Retryable = chessdto.CodeTooManyGames, true
	}
	status := statusFor(err, de)
	if status >= fasthttp.StatusInternalServerError {
		obslog.L().Error("http_internal_error", zap.String("path", string(ctx.Path())), zap.Error(err))
	}
	writeError(ctx, status, de)
}

func writeError(ctx *fasthttp.RequestCtx, status int, de chessdto.DomainError) {
	writeJSON(ctx, status, chessdto.ErrorResponse{Error: de})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"error":{"code":"internal","message":"encode response"}}`)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(raw)
}
