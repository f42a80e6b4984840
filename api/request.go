package api

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-backend/errs"
	"github.com/rpupo63/portfolio-backend/services"
)

// decodeRequest fills dst from a JSON body, or hands the parsed form values
// to fromForm for urlencoded and multipart submissions.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst any, fromForm func(url.Values)) error {
	r.Body = http.MaxBytesReader(w, r.Body, services.MaxUploadBytes)

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				return errs.NewMaxBodySizeExceededError(maxErr.Limit)
			}
			return errs.NewMalformedPayloadError("json", err)
		}
		return nil
	}

	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(services.MaxUploadBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errs.NewMaxBodySizeExceededError(maxErr.Limit)
		}
		return errs.NewMalformedPayloadError("form", err)
	}

	fromForm(r.Form)
	return nil
}

// formImage returns the uploaded "image" file, or nil when none was sent.
// The caller closes the returned file.
func formImage(r *http.Request) (*services.Upload, multipart.File, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, errs.NewMalformedPayloadError("image", err)
	}
	if header.Filename == "" {
		file.Close()
		return nil, nil, nil
	}
	return &services.Upload{Filename: header.Filename, Body: file}, file, nil
}

func formBool(v url.Values, key string) bool {
	switch strings.ToLower(v.Get(key)) {
	case "1", "on", "true", "yes", "y":
		return true
	}
	return false
}

func urlUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := chi.URLParam(r, param)
	if raw == "" {
		return uuid.Nil, errs.NewBadRequestError("missing " + param)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errs.NewNotFoundError(param + " not found")
	}
	return id, nil
}
