// Package prompts provides pre-built prompts for common crime data analyses.
package prompts

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// PromptDefinition represents a prompt with its metadata and handler
type PromptDefinition struct {
	// Prompt is the MCP prompt metadata
	Prompt *mcp.Prompt
	// Handler is the function that generates the prompt content
	Handler mcp.PromptHandler
}

// Registry holds all registered prompts
type Registry struct {
	logger  *zap.Logger
	prompts []*PromptDefinition
}

// NewRegistry creates a new prompt registry with all available prompts
func NewRegistry(logger *zap.Logger) *Registry {
	r := &Registry{
		logger: logger,
	}
	r.registerPrompts()
	return r
}

// GetPrompts returns all registered prompt definitions
func (r *Registry) GetPrompts() []*PromptDefinition {
	return r.prompts
}

// registerPrompts registers all available prompts
func (r *Registry) registerPrompts() {
	r.prompts = []*PromptDefinition{
		r.crimeOutlookPrompt(),
		r.trendReviewPrompt(),
		r.offenseComparisonPrompt(),
	}
}

// Helper to create a prompt result with user role
func createPromptResult(description, content string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: content,
				},
			},
		},
	}
}

// getStringArg safely extracts a string argument with a default value
func getStringArg(args map[string]string, key, defaultVal string) string {
	if val, ok := args[key]; ok && val != "" {
		return val
	}
	return defaultVal
}

// crimeOutlookPrompt creates the "crime_outlook" prompt definition
func (r *Registry) crimeOutlookPrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "crime_outlook",
			Title:       "Crime Outlook",
			Description: "Build a forward-looking outlook for one offense type, grounded in recent history",
			Arguments: []*mcp.PromptArgument{
				{
					Name:        "offense",
					Description: "Offense type to analyze (e.g. 'violent-crime', 'burglary')",
					Required:    false,
				},
				{
					Name:        "state",
					Description: "Optional 2-letter state code (CA, TX, FL, NY, IL)",
					Required:    false,
				},
			},
		},
		Handler: func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			offense := getStringArg(req.Params.Arguments, "offense", "violent-crime")
			state := getStringArg(req.Params.Arguments, "state", "")
			scope := "nationally"
			if state != "" {
				scope = "for " + state
			}

			content := fmt.Sprintf(`Let's build an outlook for %s %s. Work through these steps:

1. Run: ucr_info with offense "%s" to confirm what the category covers and which model backs it
2. Run: ucr_history with offense "%s" and from_year 2020 to see the recent trajectory
3. Run: ucr_forecast with offense "%s", include_history true, and months_ahead 6

Then summarize: where the trend has been, where the model expects it to go, and how much confidence the error rate (MAPE) warrants. Remember the most recent year of history is usually partial.`, offense, scope, offense, offense, offense)

			return createPromptResult("Crime outlook workflow", content), nil
		},
	}
}

// trendReviewPrompt creates the "trend_review" prompt definition
func (r *Registry) trendReviewPrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "trend_review",
			Title:       "Historical Trend Review",
			Description: "Review how reported crime has moved over a multi-year window",
			Arguments: []*mcp.PromptArgument{
				{
					Name:        "offense",
					Description: "Offense type to review",
					Required:    false,
				},
				{
					Name:        "from_year",
					Description: "First year of the window (2015 or later)",
					Required:    false,
				},
			},
		},
		Handler: func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			offense := getStringArg(req.Params.Arguments, "offense", "property-crime")
			fromYear := getStringArg(req.Params.Arguments, "from_year", "2018")

			content := fmt.Sprintf(`Let's review the historical record for %s since %s:

1. Run: ucr_history with offense "%s", from_year %s, format "detailed" for the full annual and monthly data
2. Note which years are marked partial; do not compare them directly against complete years
3. If a state matters, repeat the call with the state parameter (CA, TX, FL, NY, IL are supported)

Summarize the annual movement and flag any year-over-year change beyond 10%% as notable.`, offense, fromYear, offense, fromYear)

			return createPromptResult("Historical trend review workflow", content), nil
		},
	}
}

// offenseComparisonPrompt creates the "offense_comparison" prompt definition
func (r *Registry) offenseComparisonPrompt() *PromptDefinition {
	return &PromptDefinition{
		Prompt: &mcp.Prompt{
			Name:        "offense_comparison",
			Title:       "Offense Comparison",
			Description: "Compare projected trends across offense categories to prioritize attention",
			Arguments: []*mcp.PromptArgument{
				{
					Name:        "state",
					Description: "Optional 2-letter state code (CA, TX, FL, NY, IL)",
					Required:    false,
				},
			},
		},
		Handler: func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
			state := getStringArg(req.Params.Arguments, "state", "")
			stateNote := ""
			if state != "" {
				stateNote = fmt.Sprintf(` with state "%s"`, state)
			}

			content := fmt.Sprintf(`Let's find which crime categories are projected to move most:

1. Run: ucr_compare with offenses ["violent-crime", "property-crime", "homicide", "burglary", "motor-vehicle-theft"]%s
2. Rows come back ranked largest projected increase first; changes beyond 10%% are flagged as significant
3. For the top row, run: ucr_forecast with that offense and include_history true to see the full picture

Summarize which categories deserve attention and why, citing the projected percent changes.`, stateNote)

			return createPromptResult("Offense comparison workflow", content), nil
		},
	}
}
