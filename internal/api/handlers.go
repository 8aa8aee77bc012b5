package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/matzehuels/linebalance/pkg/bounds"
	apperrors "github.com/matzehuels/linebalance/pkg/errors"
	"github.com/matzehuels/linebalance/pkg/instance"
	"github.com/matzehuels/linebalance/pkg/pipeline"
	"github.com/matzehuels/linebalance/pkg/plan"
	"github.com/matzehuels/linebalance/pkg/score"
)

// scorePayload is the JSON form of a lexicographic score.
type scorePayload struct {
	Hard   int64 `json:"hard"`
	Medium int64 `json:"medium"`
	Soft   int64 `json:"soft"`
}

func toScorePayload(s score.Score) scorePayload {
	return scorePayload{Hard: s.Hard, Medium: s.Medium, Soft: s.Soft}
}

// featuresPayload is the JSON form of the reference feature breakdown.
type featuresPayload struct {
	DirectInversions   int64 `json:"direct_inversions"`
	StrictInversions   int64 `json:"strict_inversions"`
	DeepInversions     int64 `json:"deep_inversions"`
	DependencyDistance int64 `json:"dependency_distance"`
	Violations         int64 `json:"violations"`
	Excess             int64 `json:"excess"`
	UsedStations       int64 `json:"used_stations"`
	Span               int64 `json:"span"`
	MaxLoad            int64 `json:"max_load"`
	SquaredLoads       int64 `json:"squared_loads"`
}

func toFeaturesPayload(f score.Features) featuresPayload {
	return featuresPayload{
		DirectInversions:   f.DirectInversions,
		StrictInversions:   f.StrictInversions,
		DeepInversions:     f.DeepInversions,
		DependencyDistance: f.DependencyDistance,
		Violations:         f.Violations,
		Excess:             f.Excess,
		UsedStations:       f.UsedStations,
		Span:               f.Span,
		MaxLoad:            f.MaxLoad,
		SquaredLoads:       f.SquaredLoads,
	}
}

// solveResponse is the reply body for POST /v1/solve.
type solveResponse struct {
	InstanceHash string                    `json:"instance_hash"`
	Assignment   map[int]int               `json:"assignment"`
	Loads        []int                     `json:"loads"`
	CycleTime    int                       `json:"cycle_time"`
	Stations     int                       `json:"stations"`
	Score        scorePayload              `json:"score"`
	Feasible     bool                      `json:"feasible"`
	Features     featuresPayload           `json:"features"`
	Intervals    map[int]bounds.Interval   `json:"intervals,omitempty"`
	Artifacts    map[string][]byte         `json:"artifacts,omitempty"`
	Cache        pipeline.CacheInfo        `json:"cache"`
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrCodeInvalidInstance, err, "decode request"))
		return
	}
	opts.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, solveResponse{
		InstanceHash: result.InstanceHash,
		Assignment:   result.Assignment,
		Loads:        result.Loads,
		CycleTime:    result.CycleTime,
		Stations:     result.Stats.StationCount,
		Score:        toScorePayload(result.Score),
		Feasible:     result.Score.Feasible(),
		Features:     toFeaturesPayload(result.Features),
		Intervals:    result.Intervals,
		Artifacts:    result.Artifacts,
		Cache:        result.CacheInfo,
	})
}

// scoreRequest is the body for POST /v1/score.
type scoreRequest struct {
	Instance   instance.Instance `json:"instance"`
	Assignment map[int]int       `json:"assignment"`
}

// scoreResponse is the reply body for POST /v1/score.
type scoreResponse struct {
	Score    scorePayload    `json:"score"`
	Feasible bool            `json:"feasible"`
	Features featuresPayload `json:"features"`
	Loads    []int           `json:"loads"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrCodeInvalidInstance, err, "decode request"))
		return
	}

	prob, err := req.Instance.Problem()
	if err != nil {
		writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrCodeInvalidInstance, err, "invalid instance"))
		return
	}
	p, err := plan.New(prob)
	if err != nil {
		writeError(w, http.StatusBadRequest, apperrors.Wrap(apperrors.ErrCodeInvalidInstance, err, "invalid instance"))
		return
	}
	for taskID, station := range req.Assignment {
		if err := p.Assign(taskID, station); err != nil {
			code := apperrors.ErrCodeInvalidAssignment
			if errors.Is(err, plan.ErrUnknownTask) {
				code = apperrors.ErrCodeTaskNotFound
			}
			serr := apperrors.Wrap(code, err, "assign task %d to station %d", taskID, station)
			writeError(w, apperrors.HTTPStatus(code), serr)
			return
		}
	}

	sc, err := score.CrossCheck(p)
	if err != nil {
		writeError(w, http.StatusInternalServerError,
			apperrors.Wrap(apperrors.ErrCodeScoreMismatch, err, "score engines disagree"))
		return
	}

	writeJSON(w, http.StatusOK, scoreResponse{
		Score:    toScorePayload(sc),
		Feasible: sc.Feasible(),
		Features: toFeaturesPayload(score.Measure(p)),
		Loads:    p.Loads(),
	})
}

// statusFor maps pipeline errors to HTTP status codes. Structured errors
// carry their own mapping, inconsistent score engines are a server fault,
// and everything else from Execute is bad input.
func statusFor(err error) int {
	if code := apperrors.GetCode(err); code != "" {
		return apperrors.HTTPStatus(code)
	}
	if errors.Is(err, score.ErrInconsistent) {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}
