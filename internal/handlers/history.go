package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/namefreezers/city-weather-charts/internal/repository"
	"github.com/namefreezers/city-weather-charts/internal/services"
)

type historyRequest struct {
	City  string `form:"city" binding:"required"`
	Limit int    `form:"limit" binding:"omitempty,min=1"`
}

type observationResponse struct {
	ID         int64           `json:"id"`
	RunID      string          `json:"run_id"`
	City       string          `json:"city"`
	Country    string          `json:"country"`
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	Temp       float64         `json:"temp"`
	TempMin    float64         `json:"temp_min"`
	TempMax    float64         `json:"temp_max"`
	ObservedAt time.Time       `json:"observed_at"`
	Payload    json.RawMessage `json:"payload"`
}

// HistoryHandler returns a Gin handler for GET /api/history
func HistoryHandler(svc services.ObservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req historyRequest
		if err := c.ShouldBindQuery(&req); err != nil {
			// 400 Invalid input
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		obs, err := svc.History(c.Request.Context(), req.City, req.Limit)
		if err != nil {
			if errors.Is(err, services.ErrInvalidCity) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, toResponse(obs))
	}
}

// RunHandler returns a Gin handler for GET /api/runs/:id
func RunHandler(svc services.ObservationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		runID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		obs, err := svc.Run(c.Request.Context(), runID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if len(obs) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
			return
		}
		c.JSON(http.StatusOK, toResponse(obs))
	}
}

func toResponse(obs []repository.Observation) []observationResponse {
	resp := make([]observationResponse, len(obs))
	for i, o := range obs {
		resp[i] = observationResponse{
			ID:         o.ID,
			RunID:      o.RunID.String(),
			City:       o.City,
			Country:    o.Country,
			Latitude:   o.Latitude,
			Longitude:  o.Longitude,
			Temp:       o.Temp,
			TempMin:    o.TempMin,
			TempMax:    o.TempMax,
			ObservedAt: o.ObservedAt,
			Payload:    json.RawMessage(o.Payload),
		}
	}
	return resp
}
