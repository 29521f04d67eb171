package roomhandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatrelay/internal/chat"
)

type Handler struct {
	registry *chat.Registry
}

func New(registry *chat.Registry) *Handler { return &Handler{registry: registry} }

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/api/rooms", h.list)
	r.DELETE("/api/rooms/:id", h.remove)
}

// @Summary		List rooms
// @Description	Returns every room with its current member names.
// @Tags			Rooms
// @Success		200	{array}	chat.RoomInfo
// @Router			/api/rooms [get]
func (h *Handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.List())
}

// @Summary		Remove a room
// @Description	Deletes an empty (or single-member) room. The default room and the last remaining room cannot be removed. Removing a missing room succeeds as a no-op.
// @Tags			Rooms
// @Param			id	path		string	true	"Room ID"	default(lobby)
// @Success		200	{object}	RemoveRoomResponse
// @Failure		400	{object}	ErrorResponse
// @Router			/api/rooms/{id} [delete]
func (h *Handler) remove(c *gin.Context) {
	removed, err := h.registry.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: removeErrorMessage(err)})
		return
	}
	if !removed {
		c.JSON(http.StatusOK, AlreadyRemovedResponse{Message: "Room already removed."})
		return
	}
	c.JSON(http.StatusOK, RemoveRoomResponse{Type: "success", Value: "Room removed."})
}

func removeErrorMessage(err error) string {
	switch {
	case errors.Is(err, chat.ErrDefaultRoom):
		return "Cannot remove the default room."
	case errors.Is(err, chat.ErrLastRoom):
		return "Cannot remove the last room."
	case errors.Is(err, chat.ErrRoomOccupied):
		return "Room has more than 1 user."
	default:
		return "Failed to remove room from database."
	}
}
