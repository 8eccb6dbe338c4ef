package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/benoitkugler/svg2png/internal/cache"
	"github.com/benoitkugler/svg2png/svgerr"
)

// convertRequest holds the parameters of both routes.
// Width and Height equal to 0 mean unset; Scale equal to 0 or 1 means
// no scaling.
type convertRequest struct {
	SVG    string  `json:"svg"`
	Width  int     `json:"width,omitempty"`
	Height int     `json:"height,omitempty"`
	Scale  float64 `json:"scale,omitempty"`
}

func (req convertRequest) useScale() bool { return req.Scale != 0 && req.Scale != 1 }

// cacheKey covers only the parameters passed to the converter, so that
// requests producing the same image share an entry.
func (req convertRequest) cacheKey(prefix string) string {
	if req.useScale() {
		return cache.Key(prefix, "svg-to-png", "scale", req.Scale, req.SVG)
	}
	return cache.Key(prefix, "svg-to-png", "size", req.Width, req.Height, req.SVG)
}

func optional(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}

// decodeRequest reads the parameters from the JSON body of a POST,
// or from the query string otherwise.
func decodeRequest(r *http.Request) (convertRequest, error) {
	var req convertRequest
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return req, svgerr.Wrap(svgerr.CodeAllocation, err, "request body too large")
			}
			if errors.Is(err, io.EOF) {
				return req, nil // empty body, reported as a missing svg
			}
			return req, svgerr.Wrap(svgerr.CodeInvalidArgument, err, "invalid JSON body")
		}
		return req, nil
	}

	q := r.URL.Query()
	req.SVG = q.Get("svg")
	var err error
	if v := q.Get("width"); v != "" {
		if req.Width, err = strconv.Atoi(v); err != nil {
			return req, svgerr.Wrap(svgerr.CodeInvalidArgument, err, "invalid width")
		}
	}
	if v := q.Get("height"); v != "" {
		if req.Height, err = strconv.Atoi(v); err != nil {
			return req, svgerr.Wrap(svgerr.CodeInvalidArgument, err, "invalid height")
		}
	}
	if v := q.Get("scale"); v != "" {
		if req.Scale, err = strconv.ParseFloat(v, 64); err != nil {
			return req, svgerr.Wrap(svgerr.CodeInvalidArgument, err, "invalid scale")
		}
	}
	return req, nil
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.SVG == "" {
		writeJSONError(w, http.StatusBadRequest, "SVG content is required", svgerr.CodeInvalidArgument)
		return
	}

	key := req.cacheKey(s.cfg.CachePrefix)
	if data, ok := s.cacheGet(r.Context(), key); ok {
		w.Header().Set("X-Cache", "HIT")
		s.write(w, "image/png", data)
		return
	}

	var data []byte
	if req.useScale() {
		data, err = s.conv.ConvertWithScale(req.SVG, req.Scale)
	} else {
		data, err = s.conv.ConvertWithDimensions(req.SVG, optional(req.Width), optional(req.Height))
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.cacheSet(r.Context(), key, data)
	w.Header().Set("X-Cache", "MISS")
	s.write(w, "image/png", data)
}

func (s *Server) handleDimensions(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.SVG == "" {
		writeJSONError(w, http.StatusBadRequest, "SVG content is required", svgerr.CodeInvalidArgument)
		return
	}

	key := cache.Key(s.cfg.CachePrefix, "dimensions", req.SVG)
	if data, ok := s.cacheGet(r.Context(), key); ok {
		w.Header().Set("X-Cache", "HIT")
		s.write(w, "application/json", data)
		return
	}

	dims, err := s.conv.GetDimensions(req.SVG)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := json.Marshal(dims)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.cacheSet(r.Context(), key, data)
	w.Header().Set("X-Cache", "MISS")
	s.write(w, "application/json", data)
}

func (s *Server) write(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if s.cfg.CacheControl != "" {
		w.Header().Set("Cache-Control", s.cfg.CacheControl)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// cacheGet treats cache failures as misses.
func (s *Server) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	data, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Cache read failed", "err", err, "request_id", requestIDFrom(ctx))
		return nil, false
	}
	return data, hit
}

func (s *Server) cacheSet(ctx context.Context, key string, data []byte) {
	if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("Cache write failed", "err", err, "request_id", requestIDFrom(ctx))
	}
}

// statusFor maps an error code to an HTTP status.
func statusFor(code svgerr.Code) int {
	switch code {
	case svgerr.CodeParse, svgerr.CodeInvalidArgument:
		return http.StatusBadRequest
	case svgerr.CodeAllocation:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := svgerr.GetCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Conversion failed", "err", err, "request_id", requestIDFrom(r.Context()))
	} else {
		s.logger.Debug("Rejected request", "err", err, "request_id", requestIDFrom(r.Context()))
	}
	if code == "" {
		code = "INTERNAL_ERROR"
	}
	writeJSONError(w, status, svgerr.UserMessage(err), code)
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  svgerr.Code `json:"code,omitempty"`
}

func writeJSONError(w http.ResponseWriter, status int, msg string, code svgerr.Code) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg, Code: code})
}
