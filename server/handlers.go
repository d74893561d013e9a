package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/meigma/asar"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	file, header, err := r.FormFile(FormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload_too_large",
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request",
			fmt.Sprintf("missing multipart file field %q", FormField))
		return
	}
	defer file.Close()

	css, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "read upload: "+err.Error())
		return
	}

	name := r.FormValue("name")
	if name == "" {
		name = uploadName(header.Filename)
	}

	res, err := s.conv.Convert(r.Context(), string(css), name)
	if err != nil {
		status, kind := classify(err)
		if status >= http.StatusInternalServerError {
			s.log().Error("convert failed", "file", name, "error", err)
		}
		writeError(w, status, kind, err.Error())
		return
	}

	h := w.Header()
	h.Set("Content-Type", "application/x-asar")
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Name}))
	h.Set("Content-Length", strconv.Itoa(len(res.Data)))
	h.Set("X-Content-Digest", res.Digest.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}

// uploadName reduces a client-supplied file name to its last element.
// Browsers on Windows may send full paths.
func uploadName(name string) string {
	name = strings.ReplaceAll(name, `\`, "/")
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// classify maps a conversion error to a status code and error kind.
func classify(err error) (int, string) {
	var parseErr *asar.MetadataParseError
	switch {
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity, "metadata"
	case errors.Is(err, asar.ErrInvalidFileName),
		errors.Is(err, asar.ErrEmptyName),
		errors.Is(err, asar.ErrNestedPath),
		errors.Is(err, asar.ErrDuplicateName):
		return http.StatusBadRequest, "file_name"
	case errors.Is(err, asar.ErrHeaderTooLarge), errors.Is(err, asar.ErrSizeOverflow):
		return http.StatusRequestEntityTooLarge, "upload_too_large"
	}
	return http.StatusInternalServerError, "internal"
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
