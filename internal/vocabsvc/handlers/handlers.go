package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	"github.com/lamnochka-debug/vocab-services/internal/vocabsvc/service"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	exports   *service.ExportService
}

func NewHandler(exports *service.ExportService) *Handler {
	return &Handler{exports: exports}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "vocab service is running at port " + os.Getenv("VOCAB_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode health response: %v", err)
	}
}

// ExportHandler streams the user's cards as a CSV attachment.
func (h *Handler) ExportHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid user id"})
		return
	}

	data, err := h.exports.ExportCSV(r.Context(), userID)
	if err != nil {
		log.Errorf("Error [ExportService.ExportCSV] %s", err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "export failed"})
		return
	}
	if data == nil {
		h.CreateResponse(w, Response{Code: http.StatusNotFound, Error: "no cards to export"})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="vocab_export.csv"`)
	if _, err := w.Write(data); err != nil {
		log.Errorf("Failed to write export response: %v", err)
	}
}
