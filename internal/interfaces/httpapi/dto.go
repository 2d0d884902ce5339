package httpapi

import (
	"time"

	"github.com/riskibarqy/football-insights/internal/domain/settlement"
)

type settlementDetailDTO struct {
	Event       string  `json:"event"`
	Coefficient float64 `json:"coefficient"`
	Result      string  `json:"result"`
	Reason      string  `json:"reason"`
}

type settlementSummaryDTO struct {
	Total     int     `json:"total"`
	Won       int     `json:"won"`
	Lost      int     `json:"lost"`
	Undecided int     `json:"undecided"`
	HitRate   float64 `json:"hitRate"`
	ROI       float64 `json:"roi"`
}

type settlementDTO struct {
	ID        string                `json:"id"`
	PostID    string                `json:"postId"`
	MatchID   int64                 `json:"matchId"`
	Details   []settlementDetailDTO `json:"details"`
	Summary   settlementSummaryDTO  `json:"summary"`
	Points    int                   `json:"points"`
	Breakdown map[string]int        `json:"breakdown"`
	SettledAt time.Time             `json:"settledAt"`
}

func settlementDTOFromDomain(record settlement.PredictionStats) settlementDTO {
	details := make([]settlementDetailDTO, 0, len(record.Details))
	for _, detail := range record.Details {
		details = append(details, settlementDetailDTO{
			Event:       detail.Event,
			Coefficient: detail.Coefficient,
			Result:      string(detail.Result),
			Reason:      detail.Reason,
		})
	}

	breakdown := record.Scoring.Breakdown
	if breakdown == nil {
		breakdown = map[string]int{}
	}

	return settlementDTO{
		ID:      record.ID,
		PostID:  record.PostID,
		MatchID: record.MatchID,
		Details: details,
		Summary: settlementSummaryDTO{
			Total:     record.Summary.Total,
			Won:       record.Summary.Won,
			Lost:      record.Summary.Lost,
			Undecided: record.Summary.Undecided,
			HitRate:   record.Summary.HitRate,
			ROI:       record.Summary.ROI,
		},
		Points:    record.Scoring.Points,
		Breakdown: breakdown,
		SettledAt: record.SettledAt,
	}
}
