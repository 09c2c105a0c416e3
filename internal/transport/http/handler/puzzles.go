package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-puzzle-api/internal/application/puzzle"
	"github.com/go-puzzle-api/internal/domain"
	"github.com/go-puzzle-api/internal/transport/http/middleware"
)

// formOverhead is allowed on top of the image limit for the text fields
// and multipart framing.
const formOverhead = 1 << 20

// PuzzleHandler exposes the puzzle record lifecycle.
type PuzzleHandler struct {
	svc      puzzle.Service
	maxImage int64
}

func NewPuzzleHandler(svc puzzle.Service, maxImageBytes int64) *PuzzleHandler {
	return &PuzzleHandler{svc: svc, maxImage: maxImageBytes}
}

func (h *PuzzleHandler) List(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	views, err := h.svc.ReadAll(r.Context(), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *PuzzleHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	in, err := h.parseInput(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	id, err := h.svc.Create(r.Context(), in, claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedEnvelope{ID: id, Message: "puzzle created"})
}

func (h *PuzzleHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	v, err := h.svc.Read(r.Context(), chi.URLParam(r, "id"), claims.UserID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *PuzzleHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	in, err := h.parseInput(w, r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in, claims.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "puzzle updated"})
}

func (h *PuzzleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), claims.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "puzzle deleted"})
}

// parseInput reads a multipart or urlencoded form. The optional picture is
// the "image" file field.
func (h *PuzzleHandler) parseInput(w http.ResponseWriter, r *http.Request) (domain.PuzzleInput, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxImage+formOverhead)

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(formOverhead); err != nil {
			return domain.PuzzleInput{}, formError(err)
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return domain.PuzzleInput{}, formError(err)
		}
	default:
		return domain.PuzzleInput{}, fmt.Errorf("unsupported content type %q: %w", mt, domain.ErrBadRequest)
	}

	in := domain.PuzzleInput{
		Title:               r.PostFormValue("title"),
		PiecesNumber:        r.PostFormValue("piecesNumber"),
		SizeHeight:          r.PostFormValue("sizeHeight"),
		SizeWidth:           r.PostFormValue("sizeWidth"),
		Manufacturer:        r.PostFormValue("manufacturer"),
		LastPlayed:          r.PostFormValue("lastPlayed"),
		Location:            r.PostFormValue("location"),
		Complete:            r.PostFormValue("complete"),
		MissingPiecesNumber: r.PostFormValue("missingPiecesNumber"),
		PrivateNote:         r.PostFormValue("privateNote"),
		SharedNote:          r.PostFormValue("sharedNote"),
		IsPrivate:           r.PostFormValue("isPrivate"),
		IsLentOut:           r.PostFormValue("isLentOut"),
		LentOutToString:     r.PostFormValue("lentOutToString"),
	}
	if r.MultipartForm == nil {
		return in, nil
	}

	f, _, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil
	}
	if err != nil {
		return domain.PuzzleInput{}, formError(err)
	}
	defer f.Close()
	// one byte past the limit is enough for the normalizer to reject it
	if in.Image, err = io.ReadAll(io.LimitReader(f, h.maxImage+1)); err != nil {
		return domain.PuzzleInput{}, fmt.Errorf("read image: %w", err)
	}
	return in, nil
}

func formError(err error) error {
	var tooBig *http.MaxBytesError
	if errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large") {
		return fmt.Errorf("request body: %w", domain.ErrImageTooLarge)
	}
	return fmt.Errorf("malformed form: %w", domain.ErrBadRequest)
}
