package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/pddkit/pddserve/internal/clog"
	"github.com/pddkit/pddserve/internal/dispatch"
	"github.com/pddkit/pddserve/internal/registry"
	"github.com/pddkit/pddserve/internal/version"
)

type rootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
}

type commandsResponse struct {
	Commands []registry.CommandSpec `json:"commands"`
	Total    int                    `json:"total"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// executeBody mirrors dispatch.Request with pointers so a missing command
// can be told apart from an empty one.
type executeBody struct {
	Command  *string       `json:"command"`
	Args     dispatch.Args `json:"args"`
	Prompt   *string       `json:"prompt"`
	Basename *string       `json:"basename"`
}

type fileBody struct {
	Path    *string `json:"path"`
	Content *string `json:"content"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{
		Message: "PDD Backend API is running",
		Version: version.APIVersion,
	})
}

func (s *Server) handleCommands(w http.ResponseWriter, _ *http.Request) {
	cmds := s.Dispatcher.Commands()
	writeJSON(w, http.StatusOK, commandsResponse{Commands: cmds, Total: len(cmds)})
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var body executeBody
	if err := decodeBody(w, r, &body); err != nil {
		writeDetail(w, err.Error())
		return
	}
	if body.Command == nil {
		writeDetail(w, "field required: command")
		return
	}

	resp := s.Dispatcher.Execute(r.Context(), dispatch.Request{
		Command:  *body.Command,
		Args:     body.Args,
		Prompt:   deref(body.Prompt),
		Basename: deref(body.Basename),
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSaveFile(w http.ResponseWriter, r *http.Request) {
	var body fileBody
	if err := decodeBody(w, r, &body); err != nil {
		writeDetail(w, err.Error())
		return
	}
	switch {
	case body.Path == nil:
		writeDetail(w, "field required: path")
		return
	case body.Content == nil:
		writeDetail(w, "field required: content")
		return
	}

	writeJSON(w, http.StatusOK, s.Files.Write(*body.Path, *body.Content))
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("path") {
		writeDetail(w, "query parameter required: path")
		return
	}
	writeJSON(w, http.StatusOK, s.Files.Read(q.Get("path")))
}

// decodeBody decodes a JSON object body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeDetail(w http.ResponseWriter, detail string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Detail: detail})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		clog.Debug("write response: %v", err)
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
