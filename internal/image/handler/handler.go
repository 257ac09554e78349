package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-menu-service/internal/api"
	"github.com/fekuna/omnipos-menu-service/pkg/logger"
	"github.com/fekuna/omnipos-menu-service/pkg/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxImageBytes = 10 << 20

var ErrNotAnImage = errors.New("uploaded file is not an image")

// ImageHandler stores uploads through the image store and answers with the
// reference to put into image_url.
type ImageHandler struct {
	store  storage.ImageStore
	logger logger.ZapLogger
}

func NewImageHandler(store storage.ImageStore, log logger.ZapLogger) *ImageHandler {
	return &ImageHandler{
		store:  store,
		logger: log,
	}
}

func (h *ImageHandler) Mount(r chi.Router) {
	r.Post("/images", h.Upload)
}

func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		api.BadRequest(w, r, err)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		api.BadRequest(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		api.BadRequest(w, r, ErrNotAnImage)
		return
	}

	ref, err := h.store.Save(r.Context(), header.Filename, contentType, file)
	if err != nil {
		h.logger.Error("failed to store image", zap.String("filename", header.Filename), zap.Error(err))
		api.Fail(w, r, h.logger, err)
		return
	}

	api.Message(w, r, http.StatusCreated, map[string]string{"image_url": ref}, "ImageStored", nil)
}
