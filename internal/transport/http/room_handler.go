package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizpulse/internal/app"
	"quizpulse/internal/domain"
)

// RoomHandler is the thin request/response surface used only to create a
// room and hand back its join code.
type RoomHandler struct {
	service *app.RoomService
}

func NewRoomHandler(service *app.RoomService) *RoomHandler {
	return &RoomHandler{service: service}
}

type createRoomRequest struct {
	QuizID string `json:"quiz_id"`
}

type createRoomResponse struct {
	RoomCode string `json:"room_code"`
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuizID == "" {
		http.Error(w, "missing quiz_id", http.StatusBadRequest)
		return
	}

	code, err := h.service.CreateRoom(r.Context(), req.QuizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotFound) {
			http.Error(w, "quiz not found", http.StatusNotFound)
			return
		}
		log.Printf("create room failed: %v", err)
		http.Error(w, "failed to create room", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(createRoomResponse{RoomCode: code})
}
