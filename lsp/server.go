// Copyright 2020-2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package lsp serves reparse documents over the Language Server Protocol.
//
// Only text synchronization is implemented. Documents are synchronized
// incrementally, and every change reparses the document against its previous
// tree and publishes the resulting diagnostics.
package lsp

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	// Backend for the logging done inside glsp.
	_ "github.com/tliron/commonlog/simple"

	"github.com/bufbuild/reparse"
	"github.com/bufbuild/reparse/internal/logging"
)

// Name is the name the server reports to clients.
const Name = "reparse"

// ErrUnknownDocument is returned for changes to a document that was never
// opened.
var ErrUnknownDocument = errors.New("lsp: unknown document")

// Server is a language server for reparse documents.
type Server struct {
	version string
	opts    []reparse.Option
	logger  *log.Logger
	ctx     context.Context

	handler protocol.Handler
	server  *server.Server

	mu   sync.Mutex
	docs map[protocol.DocumentUri]*reparse.Document
}

// NewServer returns a server that parses documents with opts.
func NewServer(version string, logger *log.Logger, opts ...reparse.Option) *Server {
	s := &Server{
		version: version,
		opts:    opts,
		logger:  logger,
		ctx:     logging.WithLogger(context.Background(), logger),
		docs:    make(map[protocol.DocumentUri]*reparse.Document),
	}

	s.handler = protocol.Handler{
		Initialize:            s.initialize,
		Initialized:           s.initialized,
		Shutdown:              s.shutdown,
		SetTrace:              s.setTrace,
		TextDocumentDidOpen:   s.didOpen,
		TextDocumentDidChange: s.didChange,
		TextDocumentDidClose:  s.didClose,
	}
	s.server = server.NewServer(&s.handler, Name, false)
	return s
}

// Configure sets up the logging done by the protocol layer. It writes to
// stderr, since stdout carries the protocol itself.
func Configure(level string) {
	verbosity := 0
	switch logging.ParseLevel(level) {
	case log.DebugLevel:
		verbosity = 2
	case log.InfoLevel:
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)
}

// RunStdio serves a single client over stdin and stdout.
func (s *Server) RunStdio() error {
	return s.server.RunStdio()
}

// RunTCP serves clients connecting to address.
func (s *Server) RunTCP(address string) error {
	return s.server.RunTCP(address)
}

// Document returns the open document for uri.
func (s *Server) Document(uri protocol.DocumentUri) (*reparse.Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	return doc, ok
}

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	if params.ClientInfo != nil {
		s.logger.Info("initializing", "client", params.ClientInfo.Name)
	}

	capabilities := s.handler.CreateServerCapabilities()
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    Name,
			Version: &s.version,
		},
	}, nil
}

func (s *Server) initialized(*glsp.Context, *protocol.InitializedParams) error {
	return nil
}

func (s *Server) shutdown(*glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) didOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	item := params.TextDocument
	doc, err := reparse.Open(s.ctx, uriPath(item.URI), item.Text, item.Version, s.opts...)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.docs[item.URI] = doc
	s.mu.Unlock()

	s.logger.Debug("opened", logging.FieldURI, item.URI, logging.FieldVersion, item.Version)
	s.publish(ctx, item.URI, doc)
	return nil
}

func (s *Server) didChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDocument, uri)
	}

	edits, err := convertChanges(doc.Text(), params.ContentChanges)
	if err != nil {
		return fmt.Errorf("%s: %w", uri, err)
	}
	stats, err := doc.Apply(s.ctx, params.TextDocument.Version, edits...)
	if err != nil {
		s.logger.Warn("change rejected", logging.FieldURI, uri, logging.FieldError, err)
		return err
	}

	s.logger.Debug("changed",
		logging.FieldURI, uri,
		logging.FieldVersion, params.TextDocument.Version,
		logging.FieldReused, stats.ReusedNodes+stats.ReusedTokens,
		logging.FieldLexed, stats.LexedTokens,
	)
	s.publish(ctx, uri, doc)
	return nil
}

func (s *Server) didClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()

	// Clear whatever the client is still showing.
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) publish(ctx *glsp.Context, uri protocol.DocumentUri, doc *reparse.Document) {
	version := protocol.UInteger(doc.Version())
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     &version,
		Diagnostics: convertDiagnostics(doc.Diagnostics()),
	})
}

// uriPath returns the file path of a file: URI, or the URI itself otherwise.
func uriPath(uri protocol.DocumentUri) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return uri
	}
	return u.Path
}
