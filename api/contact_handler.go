package api

import (
	"net/http"
	"net/url"

	"github.com/rpupo63/portfolio-backend/services"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contactHandler struct {
	responder Responder
	logger    zerolog.Logger
	contact   *services.ContactService
}

func newContactHandler(contact *services.ContactService) contactHandler {
	logger := log.With().Str("handlerName", "contactHandler").Logger()

	return contactHandler{
		responder: NewResponder(logger),
		logger:    logger,
		contact:   contact,
	}
}

func (h contactHandler) submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form services.ContactForm
		err := decodeRequest(w, r, &form, func(v url.Values) {
			form.Name = v.Get("name")
			form.Email = v.Get("email")
			form.Message = v.Get("message")
		})
		if err != nil {
			h.responder.Fail(w, r, err, "/about")
			return
		}

		message, err := h.contact.Submit(r.Context(), form)
		if err != nil {
			h.responder.Fail(w, r, err, "/about")
			return
		}

		if wantsJSON(r) {
			h.responder.WriteJSONStatus(w, http.StatusCreated, message)
			return
		}
		setFlash(w, flashSuccess, "Thanks for reaching out! Your message has been sent.")
		redirect(w, r, "/about")
	}
}

func (h contactHandler) list() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		messages, err := h.contact.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, ContactListResponse{
			pageMeta: newPageMeta(w, r),
			Messages: messages,
			Total:    len(messages),
		})
	}
}

func (h contactHandler) markRead() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlUUID(r, "messageID")
		if err != nil {
			h.responder.Fail(w, r, err, "/admin/messages")
			return
		}
		if err := h.contact.MarkRead(r.Context(), id); err != nil {
			h.responder.Fail(w, r, err, "/admin/messages")
			return
		}

		if wantsJSON(r) {
			h.responder.WriteJSON(w, StatusResponse{Status: "read"})
			return
		}
		redirect(w, r, "/admin/messages")
	}
}
