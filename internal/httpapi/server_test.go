package httpapi

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/park285/termchess/internal/session"
	"github.com/park285/termchess/pkg/chessdto"
)

func newTestClient(t *testing.T, opts ...session.Option) *Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	srv := NewServer(session.NewManager(opts...), nil)
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		_ = ln.Close()
	})
	return NewClient("http://chess.test", WithRetry(1), WithDial(func(addr string) (net.Conn, error) {
		return ln.Dial()
	}))
}

func domainErr(t *testing.T, err error) chessdto.DomainError {
	t.Helper()
	var de chessdto.DomainError
	if !errors.As(err, &de) {
		t.Fatalf("err = %v, want DomainError", err)
	}
	return de
}

func TestPlayOverHTTP(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	snap, err := c.Start(ctx, chessdto.StartGameRequest{White: "Alice", Black: "Bob"})
	if err != nil {
		t.Fatal(err)
	}
	for _, mv := range []string{"e2-e4", "e7-e5", "f1-c4", "b8-c6", "d1-h5", "g8-f6"} {
		if _, err := c.Play(ctx, snap.GameID, mv); err != nil {
			t.Fatalf("Play(%s): %v", mv, err)
		}
	}
	res, err := c.Play(ctx, snap.GameID, "h5-f7")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Finished || res.SAN != "Qxf7#" || res.Move != "h5-f7++" {
		t.Fatalf("result = %+v", res)
	}

	got, err := c.Get(ctx, snap.GameID)
	if err != nil || got.Status != chessdto.StatusCheckmate || got.Winner != "white" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	pgn, err := c.PGN(ctx, snap.GameID)
	if err != nil || !strings.Contains(pgn, `[White "Alice"]`) || !strings.HasSuffix(pgn, "1-0") {
		t.Fatalf("PGN = %q, %v", pgn, err)
	}
	img, err := c.BoardPNG(ctx, snap.GameID, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(bytes.NewReader(img)); err != nil {
		t.Fatalf("decode png: %v", err)
	}

	_, err = c.Play(ctx, snap.GameID, "e8-e7")
	if de := domainErr(t, err); de.Code != chessdto.CodeGameOver {
		t.Fatalf("after mate = %+v", de)
	}
}

func TestErrorsOverHTTP(t *testing.T) {
	c := newTestClient(t, session.WithMaxGames(1))
	ctx := context.Background()
	snap, err := c.Start(ctx, chessdto.StartGameRequest{})
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		input     string
		code      string
		retryable bool
	}{
		{"e2-e5", chessdto.CodeIllegalMove, true},
		{"e2e4x", chessdto.CodeMalformed, true},
		{"O-O", chessdto.CodeInvalidCastle, true},
		{"=", chessdto.CodeNoDrawOffer, true},
	}
	for _, tc := range cases {
		_, err := c.Play(ctx, snap.GameID, tc.input)
		de := domainErr(t, err)
		if de.Code != tc.code || de.Retryable != tc.retryable {
			t.Errorf("Play(%q) = %+v, want %s", tc.input, de, tc.code)
		}
	}

	_, err = c.Get(ctx, "nope")
	if de := domainErr(t, err); de.Code != chessdto.CodeNotFound {
		t.Fatalf("missing game = %+v", de)
	}
	_, err = c.Start(ctx, chessdto.StartGameRequest{})
	if de := domainErr(t, err); de.Code != chessdto.CodeTooManyGames {
		t.Fatalf("limit = %+v", de)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{session.ErrNotFound, fasthttp.StatusNotFound},
		{session.ErrTooManyGames, fasthttp.StatusServiceUnavailable},
		{errors.New("boom"), fasthttp.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusFor(c.err, chessdto.FromError(c.err)); got != c.want {
			t.Errorf("statusFor(%v) = %d, want %d", c.err, got, c.want)
		}
	}
	if got := statusFor(nil, chessdto.DomainError{Code: chessdto.CodeGameOver}); got != fasthttp.StatusConflict {
		t.Errorf("game over = %d", got)
	}
	if got := statusFor(nil, chessdto.DomainError{Code: chessdto.CodeIllegalMove}); got != fasthttp.StatusBadRequest {
		t.Errorf("illegal = %d", got)
	}
}

func TestRoutingAndRawBody(t *testing.T) {
	srv := NewServer(session.NewManager(), nil)

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetRequestURI("/games")
	srv.Handler(&ctx)
	if ctx.Response.StatusCode() != fasthttp.StatusCreated {
		t.Fatalf("start status = %d body=%s", ctx.Response.StatusCode(), ctx.Response.Body())
	}
	loc := string(ctx.Response.Header.Peek("Location"))

	var mv fasthttp.RequestCtx
	mv.Request.Header.SetMethod(fasthttp.MethodPost)
	mv.Request.SetRequestURI(loc + "/moves")
	mv.Request.SetBodyString("e2-e4\n")
	srv.Handler(&mv)
	if mv.Response.StatusCode() != fasthttp.StatusOK {
		t.Fatalf("raw move status = %d body=%s", mv.Response.StatusCode(), mv.Response.Body())
	}

	var bad fasthttp.RequestCtx
	bad.Request.Header.SetMethod(fasthttp.MethodPut)
	bad.Request.SetRequestURI(loc)
	srv.Handler(&bad)
	if bad.Response.StatusCode() != fasthttp.StatusMethodNotAllowed || string(bad.Response.Header.Peek("Allow")) != "GET, DELETE" {
		t.Fatalf("PUT status = %d", bad.Response.StatusCode())
	}

	for i, want := range []int{fasthttp.StatusNoContent, fasthttp.StatusNotFound} {
		var del fasthttp.RequestCtx
		del.Request.Header.SetMethod(fasthttp.MethodDelete)
		del.Request.SetRequestURI(loc)
		srv.Handler(&del)
		if del.Response.StatusCode() != want {
			t.Fatalf("DELETE #%d status = %d, want %d", i+1, del.Response.StatusCode(), want)
		}
	}

	var unknown fasthttp.RequestCtx
	unknown.Request.SetRequestURI("/nowhere")
	srv.Handler(&unknown)
	if unknown.Response.StatusCode() != fasthttp.StatusNotFound {
		t.Fatalf("unknown route status = %d", unknown.Response.StatusCode())
	}
}
