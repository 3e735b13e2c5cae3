// Package mcp serves the document tools over the Model Context Protocol on
// newline-delimited JSON-RPC 2.0.
package mcp

import (
	"context"
	"io"
	"os"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/docsmith/docsmith/internal/tools"
)

type Server struct {
	registry *tools.Registry
	handler  *Handler
}

func NewServer(registry *tools.Registry) *Server {
	return &Server{
		registry: registry,
		handler:  NewHandler(registry),
	}
}

func (s *Server) Registry() *tools.Registry {
	return s.registry
}

// ServeStdio runs the server over stdin/stdout until the client disconnects
// or the context is canceled.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, stdioPipe{})
}

// Serve runs the server over an arbitrary transport.
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.PlainObjectCodec{})
	conn := jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handler.Handle))
	defer conn.Close()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-conn.DisconnectNotify():
		return nil
	}
}

// stdioPipe joins stdin and stdout into one transport. Close only releases
// stdin; stdout stays open for the process's remaining lifetime.
type stdioPipe struct{}

func (stdioPipe) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioPipe) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioPipe) Close() error                { return os.Stdin.Close() }
