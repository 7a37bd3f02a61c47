package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/liftlog/internal/formula"
	"github.com/meltforce/liftlog/internal/models"
	"github.com/meltforce/liftlog/internal/progression"
	"github.com/meltforce/liftlog/internal/suggest"
	"github.com/meltforce/liftlog/internal/warmup"
)

// defaultTimeRange returns start/end defaulting to the last 90 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -90)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetSetHistory = mcp.NewTool("get_set_history",
	mcp.WithDescription("Query logged sets with optional exercise filter. Returns weight, reps, RIR, and estimated 1RM for each set."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 90 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match, e.g. 'bench press')")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("List each exercise's best estimated 1RM with the set that produced it."),
)

var toolGetExerciseProgress = mcp.NewTool("get_exercise_progress",
	mcp.WithDescription("Session-by-session history for one exercise: every logged set grouped by session, most recent first."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (partial match)")),
	mcp.WithNumber("sessions", mcp.Description("How many recent sessions to return. Defaults to 10.")),
)

var toolEstimateOneRM = mcp.NewTool("estimate_one_rm",
	mcp.WithDescription("Estimate a one-rep max from a weight and rep count using the Epley formula."),
	mcp.WithNumber("weight_kg", mcp.Required(), mcp.Description("Weight lifted in kilograms")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Reps performed")),
)

var toolGetStrengthScores = mcp.NewTool("get_strength_scores",
	mcp.WithDescription("Compute DOTS, Wilks, and IPF GL scores for a lift total using the latest logged bodyweight and configured sex."),
	mcp.WithNumber("total_kg", mcp.Required(), mcp.Description("Lift total in kilograms (e.g. squat + bench + deadlift)")),
)

var toolSuggestNextTarget = mcp.NewTool("suggest_next_target",
	mcp.WithDescription("Suggest the next first-work-set prescription for an exercise based on its history and any lifter-entered 1RM."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (partial match)")),
)

var toolGenerateWarmups = mcp.NewTool("generate_warmups",
	mcp.WithDescription("Generate a warmup ramp leading up to a working weight, rounded to the configured plate increment."),
	mcp.WithNumber("weight_kg", mcp.Required(), mcp.Description("First work-set weight in kilograms")),
)

// --- Tool handlers ---

func (h *handlers) getSetHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	records, err := h.ds.QuerySetRecords(ctx, uid, start, end, req.GetString("exercise", ""))
	if err != nil {
		h.log.Error("mcp get_set_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	records, err := h.ds.GetPersonalRecords(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}
	limit := req.GetInt("sessions", 10)

	exercise, err := h.findExercise(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	history, err := h.ds.ExerciseHistory(ctx, uid, exercise.ID, limit)
	if err != nil {
		h.log.Error("mcp get_exercise_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise": exercise,
		"sessions": history,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) estimateOneRM(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, err := req.RequireFloat("weight_kg")
	if err != nil {
		return mcp.NewToolResultError("weight_kg parameter is required"), nil
	}
	reps, err := req.RequireInt("reps")
	if err != nil {
		return mcp.NewToolResultError("reps parameter is required"), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"weight_kg":     weight,
		"reps":          reps,
		"estimated_1rm": formula.Estimate1RM(weight, reps),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getStrengthScores(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	total, err := req.RequireFloat("total_kg")
	if err != nil {
		return mcp.NewToolResultError("total_kg parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	bodyweight, err := h.ds.LatestBodyweight(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_strength_scores", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if bodyweight <= 0 {
		return mcp.NewToolResultError("no bodyweight logged; scores need a bodyweight"), nil
	}
	settings, err := h.ds.GetSettings(ctx, uid)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]float64{
		"total_kg":      total,
		"bodyweight_kg": bodyweight,
		"dots":          formula.CalculateDOTS(total, bodyweight, settings.Sex),
		"wilks":         formula.CalculateWilks(total, bodyweight, settings.Sex),
		"ipf_gl":        formula.CalculateIPFGL(total, bodyweight, settings.Sex),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) suggestNextTarget(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	exercise, err := h.findExercise(ctx, name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	history, err := h.ds.ExerciseHistory(ctx, uid, exercise.ID, 10)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	override, err := h.ds.GetOneRMOverride(ctx, uid, exercise.ID)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	settings, err := h.ds.GetSettings(ctx, uid)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	spec := models.ProgressionSpec{Mode: models.ProgressionStatic}
	state := &models.RunnerExerciseState{
		ExerciseID:    exercise.ID,
		Name:          exercise.Name,
		HistoryLogs:   history,
		Progression:   spec,
		OneRMOverride: override,
	}
	state.Target = progression.NewResolver(settings).Resolve(spec, nil, history)

	suggestion := suggest.ForSet(suggest.Input{
		Exercise:            state,
		SetNumber:           1,
		IntensityMultiplier: 1.0,
		Settings:            settings,
	})

	result, err := mcp.NewToolResultJSON(map[string]any{
		"exercise":   exercise,
		"suggestion": suggestion,
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) generateWarmups(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, err := req.RequireFloat("weight_kg")
	if err != nil {
		return mcp.NewToolResultError("weight_kg parameter is required"), nil
	}

	uid := UserIDFromContext(ctx)
	settings, err := h.ds.GetSettings(ctx, uid)
	if err != nil {
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	ramp := warmup.GenerateRamp(weight, settings.RoundingIncrementKg)
	result, err := mcp.NewToolResultJSON(ramp)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// findExercise resolves a name to a catalog entry, case-insensitive, exact
// match winning over partial.
func (h *handlers) findExercise(ctx context.Context, name string) (*models.Exercise, error) {
	exercises, err := h.ds.ListExercises(ctx)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(name)
	var partial *models.Exercise
	for i := range exercises {
		lower := strings.ToLower(exercises[i].Name)
		if lower == needle {
			return &exercises[i], nil
		}
		if partial == nil && strings.Contains(lower, needle) {
			partial = &exercises[i]
		}
	}
	if partial == nil {
		return nil, fmt.Errorf("no exercise matching %q", name)
	}
	return partial, nil
}
