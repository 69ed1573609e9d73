package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/gray-logic-registry/internal/audit"
	"github.com/nerrad567/gray-logic-registry/internal/registry"
)

// ValueResponse describes one parameter value.
type ValueResponse struct {
	Path  string `json:"path"`
	Name  string `json:"name,omitempty"`
	Type  string `json:"type"`
	Value string `json:"value"`
}

// SetValueRequest is the body of PUT /values/*. Type is optional; without it
// the value is parsed as the parameter's own type.
type SetValueRequest struct {
	Type  string `json:"type,omitempty"`
	Value string `json:"value"`
}

// ExportNode is one element of an export response.
type ExportNode struct {
	Kind  string `json:"kind"`
	Path  string `json:"path"`
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	Value string `json:"value,omitempty"`
}

// resolvePath resolves the URL tail, numeric or named, writing the error
// response on failure.
func (s *Server) resolvePath(w http.ResponseWriter, r *http.Request) (registry.Path, bool) {
	p, err := s.registry.ResolveNamed(chi.URLParam(r, "*"))
	if err != nil {
		writeRegistryError(w, err)
		return registry.Path{}, false
	}
	return p, true
}

// valueResponse formats v for p. The caller owns v.
func (s *Server) valueResponse(p registry.Path, v registry.Value) (ValueResponse, error) {
	text, err := registry.FormatString(v)
	if err != nil {
		return ValueResponse{}, err
	}
	name, err := s.registry.NameOf(p)
	if err != nil {
		name = ""
	}
	return ValueResponse{Path: p.String(), Name: name, Type: v.Type.String(), Value: text}, nil
}

// handleGetValue returns a parameter's value. With ?type= the read fails
// unless the parameter has that type.
func (s *Server) handleGetValue(w http.ResponseWriter, r *http.Request) {
	p, ok := s.resolvePath(w, r)
	if !ok {
		return
	}

	var (
		v   registry.Value
		err error
	)
	if typeName := r.URL.Query().Get("type"); typeName != "" {
		t, perr := registry.ParseType(typeName)
		if perr != nil {
			writeBadRequest(w, perr.Error())
			return
		}
		v, err = s.registry.GetTyped(p, t)
	} else {
		v, err = s.registry.Get(p)
	}
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	resp, err := s.valueResponse(p, v)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleSetValue writes a parameter, converting the value as needed.
func (s *Server) handleSetValue(w http.ResponseWriter, r *http.Request) {
	p, ok := s.resolvePath(w, r)
	if !ok {
		return
	}

	var req SetValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	v := registry.StringValue(req.Value)
	if req.Type != "" {
		t, err := registry.ParseType(req.Type)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		if v, err = registry.ParseValue(t, req.Value); err != nil {
			writeRegistryError(w, err)
			return
		}
	}

	err := s.registry.Set(p, v)
	s.recordAudit(r, audit.ActionSet, p, map[string]any{"type": req.Type, "value": req.Value}, err)
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	current, err := s.registry.Get(p)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	resp, err := s.valueResponse(p, current)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCommit runs commit handlers for the addressed subtree.
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	p, ok := s.resolvePath(w, r)
	if !ok {
		return
	}
	err := s.registry.Commit(r.Context(), p)
	s.recordAudit(r, audit.ActionCommit, p, nil, err)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "committed", "path": p.String()})
}

// handleExport walks the addressed subtree. ?depth= follows the registry's
// depth rules and defaults to 0, the whole subtree.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	p, ok := s.resolvePath(w, r)
	if !ok {
		return
	}

	depth := 0
	if d := r.URL.Query().Get("depth"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil || n < 0 {
			writeBadRequest(w, "depth must be a non-negative integer")
			return
		}
		depth = n
	}

	nodes := []ExportNode{}
	err := s.registry.Export(p, depth, func(n registry.Node) error {
		node := ExportNode{Kind: n.Kind.String(), Path: n.Path.String(), Name: nodeName(n)}
		if n.Kind == registry.NodeParam {
			text, err := registry.FormatString(n.Value)
			if err != nil {
				return err
			}
			node.Type = n.Value.Type.String()
			node.Value = text
		}
		nodes = append(nodes, node)
		return nil
	})
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": p.String(), "depth": depth, "nodes": nodes})
}

// nodeName returns the local name of an exported node.
func nodeName(n registry.Node) string {
	switch n.Kind {
	case registry.NodeNamespace:
		return n.Namespace.String()
	case registry.NodeSchema:
		return n.Schema.Name
	case registry.NodeInstance:
		if n.Instance.Name != "" {
			return n.Instance.Name
		}
		return strconv.FormatUint(uint64(n.Instance.ID()), 10)
	}
	return n.Item.Name
}

// handleLoad loads the addressed subtree from every load source.
func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	p, ok := s.resolvePath(w, r)
	if !ok {
		return
	}
	err := s.registry.Load(r.Context(), p)
	s.recordAudit(r, audit.ActionLoad, p, nil, err)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "path": p.String()})
}

// handleSave saves the addressed subtree to the save destination.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	p, ok := s.resolvePath(w, r)
	if !ok {
		return
	}
	err := s.registry.Save(r.Context(), p)
	s.recordAudit(r, audit.ActionSave, p, nil, err)
	if err != nil {
		writeRegistryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "path": p.String()})
}
