package rolestep

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
)

// Server exposes a Producer over HTTP JSON-RPC so it can serve as a remote
// role step for the pipeline executor.
type Server struct {
	card     RoleCard
	producer Producer
	http     *http.Server
	listener net.Listener
}

// NewServer creates a server for the given producer.
func NewServer(card RoleCard, producer Producer) *Server {
	return &Server{
		card:     card,
		producer: producer,
	}
}

// Start binds addr, registers routes, and begins serving in a background
// goroutine. Use Addr to learn the bound address when addr uses port 0.
func (s *Server) Start(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+WellKnownCardPath, s.handleRoleCard)
	mux.HandleFunc("POST /", s.handleJSONRPC)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("rolestep: listen %s: %w", addr, err)
	}
	s.listener = ln
	s.http = &http.Server{Handler: mux}

	go s.http.Serve(ln)

	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// handleRoleCard serves the role card at the well-known endpoint.
func (s *Server) handleRoleCard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(s.card); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleJSONRPC processes incoming JSON-RPC 2.0 requests.
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONRPCError(w, nil, ErrCodeParse, "Parse error: "+err.Error())
		return
	}

	switch req.Method {
	case MethodProduce:
		s.dispatchProduce(r.Context(), w, &req)
	default:
		writeJSONRPCError(w, req.ID, ErrCodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

func (s *Server) dispatchProduce(ctx context.Context, w http.ResponseWriter, req *JSONRPCRequest) {
	var params StepRequest
	if err := json.Unmarshal(req.Params, &params); err != nil {
		writeJSONRPCError(w, req.ID, ErrCodeInvalidParams, "Invalid params: "+err.Error())
		return
	}
	if params.Role != s.card.Role {
		writeJSONRPCError(w, req.ID, ErrCodeInvalidParams,
			fmt.Sprintf("producer serves role %q, got request for %q", s.card.Role, params.Role))
		return
	}

	result, err := s.producer.Produce(ctx, params)
	if err != nil {
		writeJSONRPCError(w, req.ID, ErrCodeInternal, err.Error())
		return
	}

	writeJSONRPCResult(w, req.ID, result)
}

func writeJSONRPCResult(w http.ResponseWriter, id any, result any) {
	data, err := json.Marshal(result)
	if err != nil {
		writeJSONRPCError(w, id, ErrCodeInternal, err.Error())
		return
	}
	json.NewEncoder(w).Encode(JSONRPCResponse{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  data,
	})
}

func writeJSONRPCError(w http.ResponseWriter, id any, code int, msg string) {
	json.NewEncoder(w).Encode(JSONRPCResponse{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   &JSONRPCError{Code: code, Message: msg},
	})
}
