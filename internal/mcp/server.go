// Package mcp implements the stdio MCP server that exposes ccrecall's
// query tools: JSON-RPC 2.0 messages framed one per line, a tool registry,
// and the three memory tools.
package mcp

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/richardwhiteii/ccrecall/internal/corpus"
	"github.com/richardwhiteii/ccrecall/internal/mcp/wire"
	"github.com/richardwhiteii/ccrecall/internal/recall"
)

// maxMessageBytes is the maximum size of a single incoming message.
const maxMessageBytes = 1024 * 1024

// serverName identifies this server in the initialize handshake.
const serverName = "ccrecall"

// Server is the MCP stdio server.
type Server struct {
	stdin   io.Reader
	stdout  io.Writer
	scanner *bufio.Scanner
	version string

	corpus *corpus.Scanner
	engine *recall.Engine
	tools  map[string]toolHandler
}

// NewServer creates an MCP server over os.Stdin/os.Stdout.
func NewServer(corpusScanner *corpus.Scanner, engine *recall.Engine, version string) *Server {
	s := &Server{
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		version: version,
		corpus:  corpusScanner,
		engine:  engine,
	}
	s.registerTools()
	return s
}

// SetStdin sets the input stream (for testing).
func (s *Server) SetStdin(r io.Reader) {
	s.stdin = r
	s.scanner = nil
}

// SetStdout sets the output stream (for testing).
func (s *Server) SetStdout(w io.Writer) {
	s.stdout = w
}

// Start runs the message loop until stdin closes.
func (s *Server) Start() error {
	log.Info().Str("version", s.version).Msg("MCP server starting")

	for {
		msg, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				log.Info().Msg("MCP server shutting down (EOF)")
				return nil
			}
			log.Error().Err(err).Msg("Error reading message")
			continue
		}

		response := s.handleMessage(msg)
		if response == nil {
			continue
		}
		if err := s.writeMessage(response); err != nil {
			log.Error().Err(err).Msg("Error writing response")
		}
	}
}

// readMessage reads one line-framed JSON-RPC message.
func (s *Server) readMessage() (*wire.Message, error) {
	if s.scanner == nil {
		s.scanner = bufio.NewScanner(s.stdin)
		s.scanner.Buffer(make([]byte, 0, 64*1024), maxMessageBytes)
	}

	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return nil, io.EOF
	}

	var msg wire.Message
	if err := json.Unmarshal(s.scanner.Bytes(), &msg); err != nil {
		return nil, fmt.Errorf("parse JSON-RPC message: %w", err)
	}
	return &msg, nil
}

// writeMessage writes one line-framed JSON-RPC message.
func (s *Server) writeMessage(msg *wire.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal JSON-RPC message: %w", err)
	}
	if _, err := fmt.Fprintf(s.stdout, "%s\n", data); err != nil {
		return fmt.Errorf("write stdout: %w", err)
	}
	return nil
}
