package handlers

import (
	"context"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rishibpanchal/ReachIQ/internal/growth"
	"github.com/rishibpanchal/ReachIQ/internal/storage"
	"github.com/rishibpanchal/ReachIQ/pkg/logger"
)

type WebSocketHandler struct {
	pipeline *growth.Pipeline
	store    storage.Store
}

func NewWebSocketHandler(pipeline *growth.Pipeline, store storage.Store) *WebSocketHandler {
	return &WebSocketHandler{
		pipeline: pipeline,
		store:    store,
	}
}

// HandleConnection serves live prediction requests over a websocket. Each
// request gets a server-assigned id so clients can correlate responses.
func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established")

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	for {
		var msg struct {
			Type      string `json:"type"`
			CompanyID string `json:"company_id"`
		}

		err := c.ReadJSON(&msg)
		if err != nil {
			logger.Error("Failed to read WebSocket message", zap.Error(err))
			break
		}

		if msg.Type != "predict" {
			continue
		}

		requestID := uuid.New().String()
		logger.Info("Processing WebSocket prediction",
			zap.String("request_id", requestID),
			zap.String("company_id", msg.CompanyID),
		)

		err = h.streamPrediction(c, requestID, msg.CompanyID)
		if err != nil {
			logger.Error("Failed to stream prediction", zap.Error(err))
			h.sendError(c, requestID, "Failed to compute prediction")
		}
	}
}

func (h *WebSocketHandler) streamPrediction(c *websocket.Conn, requestID, companyID string) error {
	ctx := context.Background()

	resolved, err := storage.ResolveCompanyID(companyID)
	if err != nil {
		h.sendError(c, requestID, "Invalid company ID")
		return nil
	}

	h.sendStatus(c, requestID, "Loading company profile...")

	profile, err := h.store.GetCompany(ctx, resolved)
	if err != nil {
		return err
	}
	if profile == nil {
		h.sendError(c, requestID, "Company not found")
		return nil
	}

	history, err := h.store.GetHistory(ctx, resolved)
	if err != nil {
		history = nil
	}

	h.sendStatus(c, requestID, "Computing growth curve...")

	prediction := h.pipeline.PredictGrowthCurve(*profile, history, nil, true)

	return c.WriteJSON(map[string]interface{}{
		"type":       "prediction",
		"request_id": requestID,
		"data":       prediction,
	})
}

func (h *WebSocketHandler) sendStatus(c *websocket.Conn, requestID, content string) {
	msg := map[string]interface{}{
		"type":       "status",
		"request_id": requestID,
		"content":    content,
	}

	if err := c.WriteJSON(msg); err != nil {
		logger.Warn("Failed to send status message", zap.Error(err))
	}
}

func (h *WebSocketHandler) sendError(c *websocket.Conn, requestID, errorMsg string) {
	msg := map[string]interface{}{
		"type":       "error",
		"request_id": requestID,
		"error":      errorMsg,
	}

	if err := c.WriteJSON(msg); err != nil {
		logger.Warn("Failed to send error message", zap.Error(err))
	}
}
