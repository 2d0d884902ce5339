package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/football-insights/internal/usecase"
)

type settleFinishedRequest struct {
	Limit      int     `json:"limit" validate:"gte=0,lte=500"`
	MaxWorkers int     `json:"max_workers" validate:"gte=0,lte=64"`
	MatchIDs   []int64 `json:"match_ids" validate:"omitempty,max=500,dive,gt=0"`
}

func (h *Handler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSettlement")
	defer span.End()

	postID := strings.TrimSpace(r.PathValue("postID"))
	if postID == "" {
		writeError(ctx, w, fmt.Errorf("%w: postID is required", usecase.ErrInvalidInput))
		return
	}

	record, err := h.settlementService.GetSettlement(ctx, postID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settlementDTOFromDomain(record))
}

func (h *Handler) SettlePost(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SettlePost")
	defer span.End()

	actor, ok := actorFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: missing actor", usecase.ErrUnauthorized))
		return
	}

	postID := strings.TrimSpace(r.PathValue("postID"))
	record, err := h.settlementService.SettlePost(ctx, actor, postID)
	if err != nil {
		h.logger.WarnContext(ctx, "settle post failed",
			"post_id", postID,
			"actor_id", actor.ID,
			"actor_role", actor.Role,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "post settled",
		"post_id", record.PostID,
		"match_id", record.MatchID,
		"actor_id", actor.ID,
		"points", record.Scoring.Points,
	)
	writeSuccess(ctx, w, http.StatusOK, settlementDTOFromDomain(record))
}

func (h *Handler) RunSettleFinishedJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSettleFinishedJob")
	defer span.End()

	req, err := decodeSettleFinishedRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.settlementService.SettleFinished(ctx, usecase.SettleFinishedInput{
		Limit:      req.Limit,
		MaxWorkers: req.MaxWorkers,
		MatchIDs:   req.MatchIDs,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "settle finished job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "settle finished job done",
		"matches", result.MatchCount,
		"posts", result.PostCount,
		"settled", result.SettledCount,
		"failed", result.FailedCount,
		"skipped", result.SkippedCount,
	)
	writeSuccess(ctx, w, http.StatusOK, result)
}

func decodeSettleFinishedRequest(r *http.Request) (settleFinishedRequest, error) {
	if r.Body == nil {
		return settleFinishedRequest{}, nil
	}

	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req settleFinishedRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return settleFinishedRequest{}, nil
		}
		return settleFinishedRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}
