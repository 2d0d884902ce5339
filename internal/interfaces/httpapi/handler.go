package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/football-insights/internal/platform/logging"
	"github.com/riskibarqy/football-insights/internal/usecase"
)

type Handler struct {
	matchService      *usecase.MatchQueryService
	settlementService *usecase.SettlementService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchQueryService,
	settlementService *usecase.SettlementService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:      matchService,
		settlementService: settlementService,
		logger:            logger.Named("httpapi"),
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(payload any) error {
	if err := h.validator.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func parseInt64PathValue(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}

func parseIntQuery(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}
