package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"filevault/internal/auth"
	"filevault/internal/domain"
	"filevault/internal/service"
)

type ShareHandler struct {
	shareService *service.ShareService
	auth         *auth.Auth
	baseURL      string
}

type createShareRequest struct {
	ResourceType domain.ResourceType `json:"resource_type"`
	ResourceID   string              `json:"resource_id"`
	Duration     string              `json:"duration,omitempty"`
}

func NewShareHandler(shareService *service.ShareService, auth *auth.Auth, baseURL string) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
		auth:         auth,
		baseURL:      baseURL,
	}
}

func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	userID, err := h.auth.UserID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req createShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	link, err := h.shareService.CreateShareLink(r.Context(), req.ResourceType, req.ResourceID, userID, req.Duration)
	if err != nil {
		writeError(w, err)
		return
	}

	response := struct {
		*domain.ShareLink
		URL string `json:"url"`
	}{
		ShareLink: link,
		URL:       fmt.Sprintf("%s/s/%s", h.baseURL, link.Token),
	}

	writeJSON(w, http.StatusCreated, response)
}

// GetShared — публичный просмотр по токену, без аутентификации.
func (h *ShareHandler) GetShared(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "token is required"})
		return
	}

	resource, err := h.shareService.Resolve(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resource)
}

// DownloadShared редиректит на объект файла по действующему токену.
func (h *ShareHandler) DownloadShared(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "token is required"})
		return
	}

	url, err := h.shareService.DownloadURL(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}
