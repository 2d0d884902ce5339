package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/football-insights/internal/usecase"
)

const startDateLayout = "2006-01-02"

var validate = validator.New()

type commonOptions struct {
	Loop        bool
	IntervalMS  int `validate:"gte=1"`
	MaxRequests int `validate:"gte=0"`
}

func (o commonOptions) Interval() time.Duration {
	return time.Duration(o.IntervalMS) * time.Millisecond
}

type historyOptions struct {
	Days         int `validate:"gte=1,lte=90"`
	PageSize     int `validate:"gte=1,lte=500"`
	MaxDays      int `validate:"gte=1,lte=3650"`
	StartDate    string
	Competitions string
	Teams        string
	NoStats      bool
}

func (o historyOptions) toInput() (usecase.HistoryDriveInput, error) {
	if err := validate.Struct(o); err != nil {
		return usecase.HistoryDriveInput{}, fmt.Errorf("invalid history options: %w", err)
	}

	input := usecase.HistoryDriveInput{
		Days:      o.Days,
		PageSize:  o.PageSize,
		MaxDays:   o.MaxDays,
		WithStats: !o.NoStats,
	}

	if raw := strings.TrimSpace(o.StartDate); raw != "" {
		start, err := time.ParseInLocation(startDateLayout, raw, time.UTC)
		if err != nil {
			return usecase.HistoryDriveInput{}, fmt.Errorf("--startDate must use YYYY-MM-DD: %w", err)
		}
		input.StartDate = &start
	}

	var err error
	if input.CompetitionIDs, err = parseIDList("--competitions", o.Competitions); err != nil {
		return usecase.HistoryDriveInput{}, err
	}
	if input.TeamIDs, err = parseIDList("--teams", o.Teams); err != nil {
		return usecase.HistoryDriveInput{}, err
	}
	return input, nil
}

type statsOptions struct {
	MatchID int64  `validate:"gte=0"`
	Status  string `validate:"oneof=finished live any"`
	Limit   int    `validate:"gte=1,lte=500"`
}

func (o statsOptions) toInput() (usecase.StatsImportInput, error) {
	o.Status = strings.ToLower(strings.TrimSpace(o.Status))
	if err := validate.Struct(o); err != nil {
		return usecase.StatsImportInput{}, fmt.Errorf("invalid stats options: %w", err)
	}
	return usecase.StatsImportInput{MatchID: o.MatchID, Status: o.Status, Limit: o.Limit}, nil
}

type settleOptions struct {
	Limit   int   `validate:"gte=1,lte=500"`
	Workers int   `validate:"gte=0,lte=64"`
	MatchID int64 `validate:"gte=0"`
	PostID  string
}

func (o settleOptions) toInput() (usecase.SettleFinishedInput, error) {
	if err := validate.Struct(o); err != nil {
		return usecase.SettleFinishedInput{}, fmt.Errorf("invalid settle options: %w", err)
	}
	input := usecase.SettleFinishedInput{Limit: o.Limit, MaxWorkers: o.Workers}
	if o.MatchID > 0 {
		input.MatchIDs = []int64{o.MatchID}
	}
	return input, nil
}

func parseIDList(flag, raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%s: invalid id %q", flag, part)
		}
		out = append(out, id)
	}
	return out, nil
}
