// Package handler exposes the direct-messaging core over HTTP.
package handler

//go:generate mockgen -destination=mocks/mock_chat_service.go -package=mocks taskchat/internal/chat/service ChatService
//go:generate mockgen -destination=mocks/mock_attachments.go -package=mocks taskchat/internal/chat/handler Attachments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"taskchat/internal/chat/attachment"
	"taskchat/internal/chat/models"
	"taskchat/internal/chat/service"
	"taskchat/internal/common"
)

const multipartMemory = 8 << 20

// Attachments is the upload/download side of the attachment gateway.
type Attachments interface {
	MaxBytes() int64
	Store(ctx context.Context, field, originalName, declaredMIME string, content io.Reader) (*models.FileBody, error)
	Discard(ctx context.Context, file *models.FileBody)
	Download(ctx context.Context, filename, token string) (*attachment.Download, error)
	View(ctx context.Context, filename, token string) (*attachment.Download, error)
}

type SendMessageResponse struct {
	Message *models.Message `json:"message"`
}

type ConversationsResponse struct {
	Conversations []*models.ConversationSummary `json:"conversations"`
}

type StatusUpdateRequest struct {
	SenderID string `json:"senderId" validate:"required"`
}

type StatusUpdateResponse struct {
	Message       string `json:"message"`
	ModifiedCount int64  `json:"modifiedCount"`
}

type OnlineUsersResponse struct {
	Users []*models.UserRef `json:"users"`
}

type ChatHandler struct {
	chatService service.ChatService
	attachments Attachments
}

func NewChatHandler(chatService service.ChatService, attachments Attachments) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		attachments: attachments,
	}
}

// RegisterFileRoutes mounts the attachment routes. They authenticate with the
// token themselves so a bad filename is rejected before anything else runs.
func (h *ChatHandler) RegisterFileRoutes(api *mux.Router) {
	api.HandleFunc("/messages/download/{filename}", h.DownloadFile).Methods(http.MethodGet)
	api.HandleFunc("/messages/view/{filename}", h.ViewFile).Methods(http.MethodGet)
}

// RegisterRoutes mounts the routes that expect an authenticated user id in
// the request context.
func (h *ChatHandler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/messages/direct", h.SendDirectMessage).Methods(http.MethodPost)
	api.HandleFunc("/messages/direct/read", h.MarkAsRead).Methods(http.MethodPut)
	api.HandleFunc("/messages/direct/delivered", h.MarkAsDelivered).Methods(http.MethodPut)
	api.HandleFunc("/messages/direct/{userId}", h.GetDirectMessages).Methods(http.MethodGet)
	api.HandleFunc("/messages/conversations", h.GetConversations).Methods(http.MethodGet)
	api.HandleFunc("/messages/{messageId}", h.DeleteMessage).Methods(http.MethodDelete)
	api.HandleFunc("/users/online", h.GetOnlineUsers).Methods(http.MethodGet)
}

func (h *ChatHandler) SendDirectMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewUnauthorizedError("Authorization required"))
		return
	}

	var in service.SendInput
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, err := h.readMultipart(w, r, &in)
		if err != nil {
			common.WriteError(w, err)
			return
		}
		in.File = file
	} else if err := common.DecodeJSON(w, r, &in); err != nil {
		common.WriteError(w, err)
		return
	}

	msg, err := h.chatService.SendMessage(r.Context(), userID, in)
	if err != nil {
		h.attachments.Discard(r.Context(), in.File)
		common.WriteError(w, err)
		return
	}

	common.WriteJSON(w, http.StatusCreated, SendMessageResponse{Message: msg})
}

// readMultipart fills in from the form fields and stores the optional "file"
// part. Fields are validated before the upload touches storage.
func (h *ChatHandler) readMultipart(w http.ResponseWriter, r *http.Request, in *service.SendInput) (*models.FileBody, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.attachments.MaxBytes()+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, common.NewValidationError(fmt.Sprintf("File exceeds the %d MB limit", h.attachments.MaxBytes()>>20))
		}
		return nil, common.NewValidationError("Invalid multipart form: " + err.Error())
	}
	defer r.MultipartForm.RemoveAll()

	in.RecipientID = r.FormValue("recipientId")
	in.Content = r.FormValue("content")
	in.MessageType = models.MessageKind(r.FormValue("messageType"))
	if err := common.Validate(in); err != nil {
		return nil, err
	}

	part, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, common.NewValidationError("Invalid file upload: " + err.Error())
	}
	defer part.Close()

	return h.attachments.Store(r.Context(), "file", header.Filename, header.Header.Get("Content-Type"), part)
}

func (h *ChatHandler) GetDirectMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewUnauthorizedError("Authorization required"))
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	result, err := h.chatService.GetMessageHistory(r.Context(), userID, mux.Vars(r)["userId"], page, limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, result)
}

func (h *ChatHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewUnauthorizedError("Authorization required"))
		return
	}

	conversations, err := h.chatService.GetConversations(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if conversations == nil {
		conversations = []*models.ConversationSummary{}
	}
	common.WriteJSON(w, http.StatusOK, ConversationsResponse{Conversations: conversations})
}

func (h *ChatHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.chatService.MarkRead, "Messages marked as read")
}

func (h *ChatHandler) MarkAsDelivered(w http.ResponseWriter, r *http.Request) {
	h.updateStatus(w, r, h.chatService.MarkDelivered, "Messages marked as delivered")
}

func (h *ChatHandler) updateStatus(
	w http.ResponseWriter,
	r *http.Request,
	update func(ctx context.Context, userID, senderID string) (int64, error),
	done string,
) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewUnauthorizedError("Authorization required"))
		return
	}

	var req StatusUpdateRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		common.WriteError(w, err)
		return
	}

	modified, err := update(r.Context(), userID, req.SenderID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, StatusUpdateResponse{Message: done, ModifiedCount: modified})
}

func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := common.UserIDFromContext(r.Context())
	if !ok {
		common.WriteError(w, common.NewUnauthorizedError("Authorization required"))
		return
	}

	if err := h.chatService.DeleteMessage(r.Context(), userID, mux.Vars(r)["messageId"]); err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, common.MessageResponse{Message: "Message deleted successfully"})
}

func (h *ChatHandler) GetOnlineUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.chatService.OnlineUsers(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, OnlineUsersResponse{Users: users})
}

func (h *ChatHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, h.attachments.Download)
}

func (h *ChatHandler) ViewFile(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, h.attachments.View)
}

func (h *ChatHandler) serveFile(
	w http.ResponseWriter,
	r *http.Request,
	open func(ctx context.Context, filename, token string) (*attachment.Download, error),
) {
	d, err := open(r.Context(), mux.Vars(r)["filename"], common.BearerToken(r))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	defer d.Content.Close()

	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Content-Disposition", d.Disposition)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if d.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(d.Size, 10))
	}
	if d.CacheControl != "" {
		w.Header().Set("Cache-Control", d.CacheControl)
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, d.Content); err != nil {
		log.Printf("Error streaming file: %v", err)
	}
}
