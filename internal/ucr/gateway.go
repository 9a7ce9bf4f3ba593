package ucr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/crimetrends/ucr-mcp-server/internal/client"
	"github.com/crimetrends/ucr-mcp-server/internal/errors"
	"github.com/crimetrends/ucr-mcp-server/internal/vocab"
)

// Parameter bounds for the forecast horizon and history window.
const (
	MinMonthsAhead     = 1
	MaxMonthsAhead     = 12
	DefaultMonthsAhead = 6

	// MinHistoryYear is the earliest year the history backend covers with
	// the summarized monthly endpoint.
	MinHistoryYear  = 2015
	DefaultFromYear = 2020
)

// Doer is the transport dependency of the gateway. *client.Client satisfies
// it; tests substitute a stub.
type Doer interface {
	Do(ctx context.Context, req *client.Request) (*client.Response, *errors.Error)
}

// Service is the gateway surface the tool layer depends on.
type Service interface {
	FetchForecast(ctx context.Context, offense vocab.Offense, region vocab.Region, monthsAhead int) (*ForecastResult, *errors.Error)
	FetchRecentHistory(ctx context.Context, offense vocab.Offense, region vocab.Region, months int) ([]HistoryPoint, *errors.Error)
	FetchHistory(ctx context.Context, offense vocab.Offense, region vocab.Region, fromYear, toYear int) (*HistoricalSeries, *errors.Error)
	FetchModels(ctx context.Context, region vocab.Region) ([]ModelDescriptor, *errors.Error)
}

// Gateway translates domain requests into backend HTTP calls and decodes the
// responses into validated domain values. It holds no per-call state.
type Gateway struct {
	doer   Doer
	logger *zap.Logger
	now    func() time.Time
}

// NewGateway creates a gateway over the shared backend client.
func NewGateway(doer Doer, logger *zap.Logger) *Gateway {
	return &Gateway{
		doer:   doer,
		logger: logger,
		now:    time.Now,
	}
}

var _ Service = (*Gateway)(nil)

// ValidateMonthsAhead checks the forecast horizon bounds. Out-of-range values
// are rejected with the clamped value as a suggestion, never silently clamped.
func ValidateMonthsAhead(months int) *errors.Error {
	if months < MinMonthsAhead || months > MaxMonthsAhead {
		nearest := months
		if nearest < MinMonthsAhead {
			nearest = MinMonthsAhead
		}
		if nearest > MaxMonthsAhead {
			nearest = MaxMonthsAhead
		}
		return errors.NewOutOfRange("months_ahead", months, MinMonthsAhead, MaxMonthsAhead, nearest)
	}
	return nil
}

// predictResponse mirrors the prediction backend's forecast payload.
type predictResponse struct {
	Predictions []struct {
		Date      Period  `json:"date"`
		Predicted float64 `json:"predicted"`
		Lower     float64 `json:"lower"`
		Upper     float64 `json:"upper"`
	} `json:"predictions"`
	Metadata struct {
		ModelType   string  `json:"model_type"`
		MAPE        float64 `json:"mape"`
		TrainingEnd Period  `json:"training_end"`
		Parameters  struct {
			Order         []int `json:"order"`
			SeasonalOrder []int `json:"seasonal_order"`
		} `json:"parameters"`
	} `json:"metadata"`
}

// FetchForecast requests a forecast from the prediction backend and validates
// the decoded payload: non-empty, ordered consecutive months, and coherent
// confidence bounds on every point.
func (g *Gateway) FetchForecast(ctx context.Context, offense vocab.Offense, region vocab.Region, monthsAhead int) (*ForecastResult, *errors.Error) {
	if err := ValidateMonthsAhead(monthsAhead); err != nil {
		return nil, err
	}

	req := &client.Request{
		Backend: client.PredictBackend,
		Method:  http.MethodPost,
		Path:    fmt.Sprintf("/api/v1/predict/%s", offense),
		Body:    map[string]int{"months": monthsAhead},
	}
	if !region.IsNational() {
		req.Query = map[string]string{"state": string(region)}
	}

	resp, cerr := g.doer.Do(ctx, req)
	if cerr != nil {
		return nil, cerr
	}

	var payload predictResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, errors.NewBadPayload(string(client.PredictBackend),
			fmt.Sprintf("Could not decode forecast response: %v", err))
	}
	if len(payload.Predictions) == 0 {
		return nil, errors.NewBadPayload(string(client.PredictBackend),
			"Forecast response contained no predictions")
	}

	points := make([]ForecastPoint, 0, len(payload.Predictions))
	for i, p := range payload.Predictions {
		if p.Date.IsZero() {
			return nil, errors.NewBadPayload(string(client.PredictBackend),
				fmt.Sprintf("Forecast point %d is missing its date", i))
		}
		if p.Lower > p.Predicted || p.Predicted > p.Upper {
			return nil, errors.NewBadPayload(string(client.PredictBackend),
				fmt.Sprintf("Forecast point %s has incoherent bounds (lower=%.1f predicted=%.1f upper=%.1f)",
					p.Date, p.Lower, p.Predicted, p.Upper))
		}
		if i > 0 && points[i-1].Period.Next() != p.Date {
			return nil, errors.NewBadPayload(string(client.PredictBackend),
				fmt.Sprintf("Forecast periods are not consecutive: %s does not follow %s",
					p.Date, points[i-1].Period))
		}
		points = append(points, ForecastPoint{
			Period:    p.Date,
			Predicted: p.Predicted,
			Lower:     p.Lower,
			Upper:     p.Upper,
		})
	}

	g.logger.Debug("Forecast fetched",
		zap.String("offense", string(offense)),
		zap.String("region", string(region)),
		zap.Int("points", len(points)),
		zap.String("model_type", payload.Metadata.ModelType),
	)

	return &ForecastResult{
		Offense: offense,
		Region:  region,
		Points:  points,
		Model: ModelInfo{
			ModelType:   payload.Metadata.ModelType,
			MAPE:        payload.Metadata.MAPE,
			TrainingEnd: payload.Metadata.TrainingEnd,
			Parameters: ModelParameters{
				Order:         payload.Metadata.Parameters.Order,
				SeasonalOrder: payload.Metadata.Parameters.SeasonalOrder,
			},
		},
	}, nil
}

// recentHistoryResponse mirrors the prediction backend's trailing-history
// payload, which it serves from the same training data the models use.
type recentHistoryResponse struct {
	History []struct {
		Date   Period  `json:"date"`
		Actual float64 `json:"actual"`
	} `json:"history"`
}

// FetchRecentHistory returns the trailing actuals the prediction backend
// keeps alongside its models. Used for forecast context and for the current
// value in comparisons.
func (g *Gateway) FetchRecentHistory(ctx context.Context, offense vocab.Offense, region vocab.Region, months int) ([]HistoryPoint, *errors.Error) {
	query := map[string]string{"months": strconv.Itoa(months)}
	if !region.IsNational() {
		query["state"] = string(region)
	}

	resp, cerr := g.doer.Do(ctx, &client.Request{
		Backend: client.PredictBackend,
		Method:  http.MethodGet,
		Path:    fmt.Sprintf("/api/v1/history/%s", offense),
		Query:   query,
	})
	if cerr != nil {
		return nil, cerr
	}

	var payload recentHistoryResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, errors.NewBadPayload(string(client.PredictBackend),
			fmt.Sprintf("Could not decode history response: %v", err))
	}
	if len(payload.History) == 0 {
		return nil, errors.NewBadPayload(string(client.PredictBackend),
			"History response contained no data points")
	}

	points := make([]HistoryPoint, 0, len(payload.History))
	for _, h := range payload.History {
		points = append(points, HistoryPoint{
			Period: h.Date,
			Actual: int64(h.Actual + 0.5),
		})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Period.Before(points[j].Period) })
	return points, nil
}

// historyResponse mirrors the FBI Crime Data Explorer summarized payload. The
// actuals and rates are keyed by a region-dependent label, then by "MM-YYYY".
type historyResponse struct {
	Offenses struct {
		Actuals map[string]map[string]*float64 `json:"actuals"`
		Rates   map[string]map[string]*float64 `json:"rates"`
	} `json:"offenses"`
}

// validateYearRange checks the history window bounds against the backend's
// coverage floor and the current year.
func (g *Gateway) validateYearRange(fromYear, toYear int) *errors.Error {
	currentYear := g.now().Year()
	if fromYear < MinHistoryYear {
		return errors.NewYearRange(
			fmt.Sprintf("from_year must be %d or later, got %d", MinHistoryYear, fromYear),
			map[string]any{"from_year": fromYear, "min_year": MinHistoryYear})
	}
	if toYear > currentYear {
		return errors.NewYearRange(
			fmt.Sprintf("to_year must not be in the future, got %d (current year is %d)", toYear, currentYear),
			map[string]any{"to_year": toYear, "current_year": currentYear})
	}
	if fromYear > toYear {
		return errors.NewYearRange(
			fmt.Sprintf("from_year %d is after to_year %d", fromYear, toYear),
			map[string]any{"from_year": fromYear, "to_year": toYear})
	}
	return nil
}

// FetchHistory requests monthly actuals from the history backend for whole
// calendar years and returns them as an ordered series. toYear of 0 defaults
// to the current year.
func (g *Gateway) FetchHistory(ctx context.Context, offense vocab.Offense, region vocab.Region, fromYear, toYear int) (*HistoricalSeries, *errors.Error) {
	if toYear == 0 {
		toYear = g.now().Year()
	}
	if err := g.validateYearRange(fromYear, toYear); err != nil {
		return nil, err
	}

	var path, seriesKey string
	if region.IsNational() {
		path = fmt.Sprintf("/summarized/national/%s", offense)
		seriesKey = "United States Offenses"
	} else {
		path = fmt.Sprintf("/summarized/state/%s/%s", region, offense)
		seriesKey = fmt.Sprintf("%s Offenses", vocab.StateName(string(region)))
	}

	resp, cerr := g.doer.Do(ctx, &client.Request{
		Backend: client.HistoryBackend,
		Method:  http.MethodGet,
		Path:    path,
		Query: map[string]string{
			"from": fmt.Sprintf("01-%d", fromYear),
			"to":   fmt.Sprintf("12-%d", toYear),
		},
	})
	if cerr != nil {
		return nil, cerr
	}

	var payload historyResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, errors.NewBadPayload(string(client.HistoryBackend),
			fmt.Sprintf("Could not decode crime data response: %v", err))
	}

	actuals, ok := payload.Offenses.Actuals[seriesKey]
	if !ok || len(actuals) == 0 {
		return nil, errors.NewBackendUnavailable(string(client.HistoryBackend),
			fmt.Sprintf("No %s data reported for %s between %d and %d",
				offense.DisplayName(), region.DisplayName(), fromYear, toYear), false)
	}
	rates := payload.Offenses.Rates[seriesKey]

	points := make([]HistoryPoint, 0, len(actuals))
	for raw, value := range actuals {
		if value == nil {
			continue
		}
		period, err := ParsePeriod(raw)
		if err != nil {
			return nil, errors.NewBadPayload(string(client.HistoryBackend),
				fmt.Sprintf("Crime data response has an unparseable period %q", raw))
		}
		point := HistoryPoint{Period: period, Actual: int64(*value + 0.5)}
		if rate, ok := rates[raw]; ok && rate != nil {
			point.Rate = rate
		}
		points = append(points, point)
	}
	if len(points) == 0 {
		return nil, errors.NewBackendUnavailable(string(client.HistoryBackend),
			fmt.Sprintf("No %s data reported for %s between %d and %d",
				offense.DisplayName(), region.DisplayName(), fromYear, toYear), false)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Period.Before(points[j].Period) })

	g.logger.Debug("History fetched",
		zap.String("offense", string(offense)),
		zap.String("region", string(region)),
		zap.Int("from_year", fromYear),
		zap.Int("to_year", toYear),
		zap.Int("points", len(points)),
	)

	return &HistoricalSeries{
		Offense:  offense,
		Region:   region,
		FromYear: fromYear,
		ToYear:   toYear,
		Points:   points,
	}, nil
}

// modelsResponse mirrors the prediction backend's model registry payload.
type modelsResponse struct {
	Models []struct {
		Offense     string  `json:"offense"`
		Location    string  `json:"location"`
		ModelType   string  `json:"model_type"`
		MAPE        float64 `json:"mape"`
		TrainingEnd Period  `json:"training_end"`
		Parameters  struct {
			Order         []int `json:"order"`
			SeasonalOrder []int `json:"seasonal_order"`
		} `json:"parameters"`
	} `json:"models"`
}

// FetchModels lists the models the prediction backend has available for the
// region, sorted by offense. The registry is relayed as-is, not interpreted.
func (g *Gateway) FetchModels(ctx context.Context, region vocab.Region) ([]ModelDescriptor, *errors.Error) {
	req := &client.Request{
		Backend: client.PredictBackend,
		Method:  http.MethodGet,
		Path:    "/api/v1/models",
	}
	if !region.IsNational() {
		req.Query = map[string]string{"state": string(region)}
	}

	resp, cerr := g.doer.Do(ctx, req)
	if cerr != nil {
		return nil, cerr
	}

	var payload modelsResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, errors.NewBadPayload(string(client.PredictBackend),
			fmt.Sprintf("Could not decode model registry response: %v", err))
	}

	models := make([]ModelDescriptor, 0, len(payload.Models))
	for _, m := range payload.Models {
		models = append(models, ModelDescriptor{
			Offense:     m.Offense,
			Location:    m.Location,
			ModelType:   m.ModelType,
			MAPE:        m.MAPE,
			TrainingEnd: m.TrainingEnd,
			Parameters: ModelParameters{
				Order:         m.Parameters.Order,
				SeasonalOrder: m.Parameters.SeasonalOrder,
			},
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Offense < models[j].Offense })
	return models, nil
}
