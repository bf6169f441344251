package handlers

import (
	"net/http"

	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/http/respond"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models"
	"github.com/Pawantripathi2606/railway-deployment-mess-mgmt/internal/models/dto"
)

// MessageHandler carries member/admin conversations. System reminders show
// up in the member inbox but never in the admin queue.
type MessageHandler struct {
	deps *Deps
}

func NewMessageHandler(deps *Deps) *MessageHandler {
	return &MessageHandler{deps: deps}
}

func (h *MessageHandler) Register(mux *http.ServeMux) {
	g := h.deps.Guard
	mux.Handle("GET /user/messages", g.Member(h.inbox))
	mux.Handle("POST /user/messages/send", g.Member(h.send))
	mux.Handle("POST /user/messages/{id}/reply", g.Member(h.memberReply))

	mux.Handle("GET /manage/messages", g.Admin(h.queue))
	mux.Handle("GET /manage/messages/{id}", g.Admin(h.detail))
	mux.Handle("POST /manage/messages/{id}/resolve", g.Admin(h.resolve))
	mux.Handle("POST /manage/messages/{id}/reply", g.Admin(h.adminReply))
}

func (h *MessageHandler) inbox(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.deps.Store.ListMessages(r.Context(), models.MessageFilter{AccountID: actor(r).ID})
	if err != nil {
		h.deps.internalError(w, r, "failed to list messages", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{"messages": msgs})
}

func (h *MessageHandler) send(w http.ResponseWriter, r *http.Request) {
	var req dto.MessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, req.Validate()) {
		return
	}
	ctx := r.Context()
	acct := actor(r)
	msg, err := h.deps.Store.CreateMessage(ctx, models.Message{
		AccountID: acct.ID,
		Subject:   req.Subject,
		Body:      req.Body,
		Type:      models.MessageFromUser,
		Status:    models.MessagePending,
	})
	if err != nil {
		h.deps.internalError(w, r, "failed to send message", err)
		return
	}
	h.deps.record(ctx, acct.ID, models.ActivityMessage, "Sent message: "+msg.Subject, ref(msg.ID))
	h.deps.Notifier.MemberMessage(ctx, acct, msg)
	respond.JSON(w, http.StatusCreated, "Your message has been sent to the admin successfully!", msg)
}

func (h *MessageHandler) memberReply(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "message")
	if !ok {
		return
	}
	var req dto.UserReplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, req.Validate()) {
		return
	}
	ctx := r.Context()
	acct := actor(r)
	msg, err := h.deps.Store.ReplyAsMember(ctx, id, acct.ID, req.UserReply, h.deps.now())
	if err != nil {
		h.deps.storeError(w, r, "message", err)
		return
	}
	h.deps.record(ctx, acct.ID, models.ActivityMessage, "Replied to message: "+msg.Subject, ref(msg.ID))
	respond.JSON(w, http.StatusOK, "Your reply has been sent successfully!", msg)
}

func (h *MessageHandler) queue(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	filter := models.MessageFilter{Type: models.MessageFromUser}
	switch status {
	case "", "all":
		status = "all"
	default:
		filter.Status = models.MessageStatus(status)
		if !filter.Status.Valid() {
			respond.Validation(w, "Please correct the errors below.", map[string]string{"status": "choose all, pending or resolved"})
			return
		}
	}
	ctx := r.Context()
	msgs, err := h.deps.Store.ListMessages(ctx, filter)
	if err != nil {
		h.deps.internalError(w, r, "failed to list messages", err)
		return
	}
	pending, err := h.deps.Store.CountMessages(ctx, models.MessageFilter{Type: models.MessageFromUser, Status: models.MessagePending})
	if err != nil {
		h.deps.internalError(w, r, "failed to count messages", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", map[string]any{
		"status":        status,
		"messages":      msgs,
		"pending_count": pending,
	})
}

func (h *MessageHandler) detail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "message")
	if !ok {
		return
	}
	msg, err := h.deps.Store.GetMessage(r.Context(), id)
	if err != nil {
		h.deps.storeError(w, r, "message", err)
		return
	}
	respond.JSON(w, http.StatusOK, "ok", msg)
}

func (h *MessageHandler) resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "message")
	if !ok {
		return
	}
	msg, err := h.deps.Store.ResolveMessage(r.Context(), id, h.deps.now())
	if err != nil {
		h.deps.storeError(w, r, "message", err)
		return
	}
	h.deps.record(r.Context(), actor(r).ID, models.ActivityMessage, "Resolved message: "+msg.Subject, ref(msg.ID))
	respond.JSON(w, http.StatusOK, "Message marked as resolved.", msg)
}

func (h *MessageHandler) adminReply(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "message")
	if !ok {
		return
	}
	var req dto.AdminReplyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if invalid(w, req.Validate()) {
		return
	}
	msg, err := h.deps.Store.ReplyAsAdmin(r.Context(), id, req.AdminReply, h.deps.now())
	if err != nil {
		h.deps.storeError(w, r, "message", err)
		return
	}
	h.deps.record(r.Context(), actor(r).ID, models.ActivityMessage, "Answered message: "+msg.Subject, ref(msg.ID))
	respond.JSON(w, http.StatusOK, "Reply sent successfully!", msg)
}
