package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/matiasleandrokruk/bookcompanion/internal/domain/translation"
)

// Messages the book frontend shows verbatim.
const (
	MsgTranslateUnauthorized = "Unauthorized. Please sign in to use translation."
	MsgTextsNotArray         = "Invalid request. texts must be an array."
)

// Translator is the endpoint service. translation.Service satisfies it.
type Translator interface {
	Translate(ctx context.Context, req translation.Request) (*translation.Response, error)
}

// TranslateHandler serves /api/translate and /api/chapters/translate.
type TranslateHandler struct {
	translator Translator
	driver     *translation.Driver
}

// NewTranslateHandler creates a TranslateHandler. driver runs chapter
// passes in-process and normally sends its batches to translator.
func NewTranslateHandler(translator Translator, driver *translation.Driver) *TranslateHandler {
	return &TranslateHandler{translator: translator, driver: driver}
}

// translateRequest keeps texts raw so a non-array value is reported as
// such instead of as a generic decode failure.
type translateRequest struct {
	Texts          json.RawMessage `json:"texts"`
	TargetLanguage string          `json:"targetLanguage"`
	Chapter        string          `json:"chapter"`
	Title          string          `json:"title"`
}

// Translate handles POST /api/translate.
//
// Response codes:
//   - 200 OK: one translation per text, in order
//   - 400 Bad Request: texts missing or not an array of strings
//   - 502 Bad Gateway: the translation backend failed
func (h *TranslateHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, MsgTextsNotArray)
		return
	}
	texts, ok := parseTexts(req.Texts)
	if !ok {
		writeError(w, http.StatusBadRequest, MsgTextsNotArray)
		return
	}

	resp, err := h.translator.Translate(r.Context(), translation.Request{
		Texts:          texts,
		TargetLanguage: req.TargetLanguage,
		Chapter:        req.Chapter,
		Title:          req.Title,
	})
	if err != nil {
		writeTranslateError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// TranslateChapter handles POST /api/chapters/translate. A failed pass
// still answers 200 with state "error" or "partially_translated".
//
// Response codes:
//   - 200 OK: pass finished, see state
//   - 400 Bad Request: missing html or unsupported selector
//   - 422 Unprocessable Entity: the selector matched nothing
//   - 500 Internal Server Error: verifyRestore did not reproduce the original
func (h *TranslateHandler) TranslateChapter(w http.ResponseWriter, r *http.Request) {
	var req translation.ChapterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.HTML) == "" {
		writeError(w, http.StatusBadRequest, "html is required")
		return
	}

	res, err := translation.TranslateChapter(r.Context(), h.driver, req)
	if err != nil {
		switch {
		case errors.Is(err, translation.ErrContentNotFound):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, translation.ErrInvalidSelector):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "chapter translation failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func parseTexts(raw json.RawMessage) ([]string, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	texts := []string{}
	if err := json.Unmarshal(raw, &texts); err != nil {
		return nil, false
	}
	return texts, true
}

func writeTranslateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, translation.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, MsgTextsNotArray)
	case errors.Is(err, translation.ErrServiceUnavailable):
		writeError(w, http.StatusBadGateway, translation.FallbackMessage)
	default:
		writeError(w, http.StatusInternalServerError, "translation failed")
	}
}
