package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Epsilon-byte/ScholarsUnited/internal/domain"
	"github.com/Epsilon-byte/ScholarsUnited/internal/gateway"
	"github.com/Epsilon-byte/ScholarsUnited/internal/postgres"
	"github.com/Epsilon-byte/ScholarsUnited/internal/service"
	httpmw "github.com/Epsilon-byte/ScholarsUnited/internal/transport/http/middleware"
	"github.com/Epsilon-byte/ScholarsUnited/pkg/httputil"

	"github.com/go-chi/chi/v5"
)

// Handler is the REST surface other platform services (and the web app) use
// to publish into the gateway and to read message history and presence.
type Handler struct {
	gw       *gateway.Gateway
	chatSvc  *service.ChatService
	partSvc  *service.ParticipationService
	notifSvc *service.NotificationService
}

func NewHandler(gw *gateway.Gateway, chat *service.ChatService, part *service.ParticipationService, notif *service.NotificationService) *Handler {
	return &Handler{gw: gw, chatSvc: chat, partSvc: part, notifSvc: notif}
}

// GET /rooms/{id}/members
func (h *Handler) GetMembers(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	members := h.gw.UsersInRoom(roomID)
	if members == nil {
		members = []int64{}
	}
	httputil.JSON(w, http.StatusOK, MembersResponse{RoomID: roomID, Members: members})
}

// GET /rooms/{id}/chat?limit=&cursor=
func (h *Handler) GetChatHistory(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	msgs, next, err := h.chatSvc.History(r.Context(), roomID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		if errors.Is(err, postgres.ErrInvalidCursor) {
			httputil.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
			return
		}
		slog.Error("handler.GetChatHistory:", slog.Any("err", err))
		httputil.JSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := HistoryResponse{Items: make([]MessageItem, 0, len(msgs)), NextCursor: next}
	for _, m := range msgs {
		resp.Items = append(resp.Items, MessageItem{
			ID:        m.ID,
			RoomID:    m.RoomID,
			SenderID:  m.SenderID,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// POST /rooms/{id}/messages — persist then fan out to whoever is connected.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	userID := httpmw.UserIDFromCtx(r.Context())

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	ok, err := h.partSvc.CheckParticipation(r.Context(), userID, roomID)
	if err != nil {
		slog.Error("handler.PostMessage participation:", slog.Any("err", err))
		httputil.JSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "participation check failed"})
		return
	}
	if !ok {
		httputil.JSON(w, http.StatusForbidden, ErrorResponse{Error: "not a participant"})
		return
	}

	msg, err := h.chatSvc.CreateMessage(r.Context(), roomID, userID, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) || errors.Is(err, service.ErrMessageTooLong) {
			httputil.JSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("handler.PostMessage:", slog.Any("err", err))
		httputil.JSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	h.gw.PublishMessage(*msg)
	httputil.JSON(w, http.StatusCreated, MessageItem{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	})
}

// DELETE /rooms/{id}/messages/{messageID}
func (h *Handler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	messageID := chi.URLParam(r, "messageID")
	userID := httpmw.UserIDFromCtx(r.Context())

	if err := h.chatSvc.DeleteMessage(r.Context(), roomID, messageID, userID); err != nil {
		if errors.Is(err, domain.ErrMessageNotFound) {
			httputil.JSON(w, http.StatusNotFound, ErrorResponse{Error: "message not found"})
			return
		}
		slog.Error("handler.DeleteMessage:", slog.Any("err", err))
		httputil.JSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	h.gw.EmitMessageDeleted(roomID, messageID)
	w.WriteHeader(http.StatusNoContent)
}

// PUT /rooms/{id}/messages/{messageID}
func (h *Handler) UpdateMessage(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "id")
	messageID := chi.URLParam(r, "messageID")
	userID := httpmw.UserIDFromCtx(r.Context())

	var req UpdateMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	msg, err := h.chatSvc.UpdateMessage(r.Context(), roomID, messageID, userID, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrEmptyMessage) || errors.Is(err, service.ErrMessageTooLong) {
			httputil.JSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		if errors.Is(err, domain.ErrMessageNotFound) {
			httputil.JSON(w, http.StatusNotFound, ErrorResponse{Error: "message not found"})
			return
		}
		slog.Error("handler.UpdateMessage:", slog.Any("err", err))
		httputil.JSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	h.gw.EmitMessageUpdated(*msg)
	httputil.JSON(w, http.StatusOK, MessageItem{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		SenderID:  msg.SenderID,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	})
}

// GET /presence/{userID}
func (h *Handler) GetPresence(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		httputil.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}
	httputil.JSON(w, http.StatusOK, PresenceResponse{UserID: userID, Online: h.gw.IsUserOnline(userID)})
}

// POST /notifications/user/{userID}
func (h *Handler) NotifyUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		httputil.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == "" {
		httputil.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	n, err := h.notifSvc.Notify(r.Context(), userID, req.Kind, req.Body, req.Link)
	if err != nil {
		slog.Error("handler.NotifyUser:", slog.Any("err", err))
		httputil.JSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	httputil.JSON(w, http.StatusCreated, NotificationItem{
		ID:        n.ID,
		Kind:      n.Kind,
		Body:      n.Body,
		Link:      n.Link,
		CreatedAt: n.CreatedAt,
	})
}

// POST /notifications/broadcast
func (h *Handler) BroadcastNotification(w http.ResponseWriter, r *http.Request) {
	var req NotifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Body == "" {
		httputil.JSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid json"})
		return
	}

	h.notifSvc.Announce(req.Kind, req.Body)
	w.WriteHeader(http.StatusAccepted)
}

// GET /notifications?limit=
func (h *Handler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			limit = n
		}
	}

	items, err := h.notifSvc.ListUnread(r.Context(), userID, limit)
	if err != nil {
		slog.Error("handler.ListNotifications:", slog.Any("err", err))
		httputil.JSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	resp := NotificationsResponse{Items: make([]NotificationItem, 0, len(items))}
	for _, n := range items {
		resp.Items = append(resp.Items, NotificationItem{
			ID:        n.ID,
			Kind:      n.Kind,
			Body:      n.Body,
			Link:      n.Link,
			CreatedAt: n.CreatedAt,
		})
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// POST /notifications/{id}/read
func (h *Handler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	userID := httpmw.UserIDFromCtx(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.notifSvc.MarkRead(r.Context(), userID, id); err != nil {
		slog.Error("handler.MarkNotificationRead:", slog.Any("err", err))
		httputil.JSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
