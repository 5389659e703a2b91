package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/partimport/pkg/buildinfo"
	"github.com/matzehuels/partimport/pkg/category"
	"github.com/matzehuels/partimport/pkg/errors"
	"github.com/matzehuels/partimport/pkg/parameter"
	"github.com/matzehuels/partimport/pkg/part"
	"github.com/matzehuels/partimport/pkg/pipeline"
)

type snapshotInfo struct {
	Status     string         `json:"status"`
	Build      buildinfo.Info `json:"build"`
	Categories int            `json:"categories"`
	Parameters int            `json:"parameters"`
	Hooks      int            `json:"hooks"`
	LoadedAt   time.Time      `json:"loaded_at"`
}

func info(snap *pipeline.Snapshot) snapshotInfo {
	return snapshotInfo{
		Status:     "ok",
		Build:      buildinfo.Current(),
		Categories: snap.Tree.Len(),
		Parameters: snap.Schema.Len(),
		Hooks:      len(snap.Hooks),
		LoadedAt:   snap.LoadedAt,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, info(s.engine.Snapshot()))
}

// categoryNode is the JSON form of a category and its subtree.
type categoryNode struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Aliases     []string        `json:"aliases,omitempty"`
	Structural  bool            `json:"structural,omitempty"`
	Ignored     bool            `json:"ignored,omitempty"`
	Parameters  []string        `json:"parameters,omitempty"`
	Children    []*categoryNode `json:"children,omitempty"`
}

func encodeTree(t *category.Tree, id category.ID) *categoryNode {
	n := t.Node(id)
	out := &categoryNode{
		Name:        n.Name,
		Description: n.Description,
		Aliases:     n.Aliases,
		Structural:  n.Structural,
		Ignored:     t.IsIgnored(id),
		Parameters:  t.EffectiveParameters(id),
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, encodeTree(t, c))
	}
	return out
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	t := s.engine.Snapshot().Tree
	roots := make([]*categoryNode, 0, len(t.Roots()))
	for _, id := range t.Roots() {
		roots = append(roots, encodeTree(t, id))
	}
	writeJSON(w, http.StatusOK, roots)
}

type categoryMatch struct {
	Path       []string `json:"path"`
	Assignable bool     `json:"assignable"`
	Parameters []string `json:"parameters"`
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "query parameter q is required"))
		return
	}
	t := s.engine.Snapshot().Tree
	id, ok := t.Find(q)
	if !ok {
		s.writeError(w, r, errors.New(errors.ErrCodeNotFound, "no category named %q", q))
		return
	}
	writeJSON(w, http.StatusOK, categoryMatch{
		Path:       t.PathOf(id),
		Assignable: t.Assignable(id),
		Parameters: t.EffectiveParameters(id),
	})
}

type suggestion struct {
	Path  []string `json:"path"`
	Score float64  `json:"score"`
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	path := query["path"]
	if len(path) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "query parameter path is required"))
		return
	}
	n := pipeline.DefaultSuggestions
	if v := query.Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "n must be a positive integer, got %q", v))
			return
		}
		n = parsed
	}
	out := []suggestion{}
	for _, sg := range s.engine.Snapshot().Categories.Suggest(path, n) {
		out = append(out, suggestion{Path: sg.Path, Score: sg.Score})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleParameters(w http.ResponseWriter, _ *http.Request) {
	defs := s.engine.Snapshot().Schema.Definitions()
	if defs == nil {
		defs = []parameter.Definition{}
	}
	writeJSON(w, http.StatusOK, defs)
}

// resolveRequest is the body of POST /v1/resolve. Category, when set,
// places the part into that root-to-leaf path instead of resolving the
// supplier's category path.
type resolveRequest struct {
	Part     part.Raw `json:"part"`
	Category []string `json:"category,omitempty"`
}

type resolveResponse struct {
	Result  part.Result                 `json:"result"`
	Part    *part.Resolved              `json:"part,omitempty"`
	Reason  category.Reason             `json:"reason,omitempty"`
	Skipped []pipeline.SkippedParameter `json:"skipped,omitempty"`
	Code    errors.Code                 `json:"code,omitempty"`
	Error   string                      `json:"error,omitempty"`
}

func newResolveResponse(p *part.Resolved, out pipeline.Outcome) resolveResponse {
	resp := resolveResponse{
		Result:  out.Result,
		Part:    p,
		Reason:  out.Category.Reason,
		Skipped: out.Skipped,
	}
	if out.Err != nil {
		resp.Code = errors.GetCode(out.Err)
		resp.Error = errors.UserMessage(out.Err)
	}
	return resp
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	var (
		p   *part.Resolved
		out pipeline.Outcome
	)
	if len(req.Category) > 0 {
		p, out = s.engine.ResolveIn(r.Context(), &req.Part, req.Category)
	} else {
		p, out = s.engine.Resolve(r.Context(), &req.Part)
	}
	writeJSON(w, http.StatusOK, newResolveResponse(p, out))
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "no suppliers configured"))
		return
	}
	var req pipeline.Request
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Term == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "term is required"))
		return
	}

	var (
		raw *part.Raw
		err error
	)
	if req.Supplier == "" {
		raw, err = s.registry.FindAny(r.Context(), req.Term)
	} else {
		raw, err = s.registry.Find(r.Context(), req.Supplier, req.Term)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, out := s.engine.Resolve(r.Context(), raw)
	writeJSON(w, http.StatusOK, newResolveResponse(p, out))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	src := s.engine.Snapshot().Sources
	if len(src.Files()) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "configuration was not loaded from files"))
		return
	}
	if err := s.engine.Reload(r.Context(), src); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info(s.engine.Snapshot()))
}
