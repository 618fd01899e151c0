package admin

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/mcupsell/upsell-board/api/internal/interfaces/http/common"
	"go.mongodb.org/mongo-driver/mongo"
)

type loginRequest struct {
	LocationID string `json:"locationId"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Token     string                   `json:"token"`
	ExpiresAt time.Time                `json:"expiresAt"`
	User      common.AuthenticatedUser `json:"user"`
}

// loginHandler checks the per-location manager password and issues a
// manager token scoped to that location.
func (h *Handler) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		var req loginRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, common.MaxRequestBody)).Decode(&req); err != nil {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		locationID := strings.TrimSpace(req.LocationID)
		if locationID == "" || req.Password == "" {
			common.WriteJSON(h.logger, w, http.StatusBadRequest, map[string]string{"error": "locationId and password are required"})
			return
		}

		password, err := h.managerAccess.Password(ctx, locationID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				common.WriteJSON(h.logger, w, http.StatusUnauthorized, map[string]string{"error": "wrong password"})
				return
			}
			h.logger.Printf("manager login: password lookup failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
			return
		}

		if subtle.ConstantTimeCompare([]byte(password), []byte(req.Password)) != 1 {
			common.WriteJSON(h.logger, w, http.StatusUnauthorized, map[string]string{"error": "wrong password"})
			return
		}

		user := common.AuthenticatedUser{
			LocationID: locationID,
			Role:       common.RoleManager,
		}
		token, expiresAt, err := h.issueToken(user, "")
		if err != nil {
			h.logger.Printf("manager login: token issue failed: %v", err)
			common.WriteJSON(h.logger, w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, loginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			User:      user,
		})
	}
}
