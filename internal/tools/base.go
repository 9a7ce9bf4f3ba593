package tools

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/crimetrends/ucr-mcp-server/internal/errors"
	"github.com/crimetrends/ucr-mcp-server/internal/ucr"
	"github.com/crimetrends/ucr-mcp-server/internal/vocab"
)

// BaseTool provides common functionality for all tools
type BaseTool struct {
	svc    ucr.Service
	logger *zap.Logger
}

// NewBaseTool creates a new base tool
func NewBaseTool(svc ucr.Service, logger *zap.Logger) *BaseTool {
	return &BaseTool{
		svc:    svc,
		logger: logger,
	}
}

// GetStringParam safely gets a string parameter from arguments
func GetStringParam(arguments map[string]interface{}, key string, required bool) (string, error) {
	val, exists := arguments[key]
	if !exists {
		if required {
			return "", fmt.Errorf("missing required parameter: %s", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("parameter %s must be a string", key)
	}

	return str, nil
}

// GetIntParam safely gets an integer parameter from arguments, falling back
// to def when the parameter is absent. JSON numbers arrive as float64.
func GetIntParam(arguments map[string]interface{}, key string, def int) (int, error) {
	val, exists := arguments[key]
	if !exists {
		return def, nil
	}

	switch v := val.(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, fmt.Errorf("parameter %s must be a number", key)
	}
}

// GetBoolParam safely gets a boolean parameter from arguments
func GetBoolParam(arguments map[string]interface{}, key string, def bool) (bool, error) {
	val, exists := arguments[key]
	if !exists {
		return def, nil
	}

	boolVal, ok := val.(bool)
	if !ok {
		return false, fmt.Errorf("parameter %s must be a boolean", key)
	}

	return boolVal, nil
}

// GetStringSliceParam safely gets a string array parameter from arguments
func GetStringSliceParam(arguments map[string]interface{}, key string, required bool) ([]string, error) {
	val, exists := arguments[key]
	if !exists {
		if required {
			return nil, fmt.Errorf("missing required parameter: %s", key)
		}
		return nil, nil
	}

	raw, ok := val.([]interface{})
	if !ok {
		return nil, fmt.Errorf("parameter %s must be an array of strings", key)
	}
	out := make([]string, 0, len(raw))
	for i, item := range raw {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("parameter %s[%d] must be a string", key, i)
		}
		out = append(out, str)
	}
	return out, nil
}

// resolveCommonParams normalizes the offense, state, and format parameters
// shared by most tools. Format is resolved first so validation errors can be
// rendered in the caller's requested format.
func resolveCommonParams(arguments map[string]interface{}) (vocab.Offense, vocab.Region, ucr.Format, *errors.Error) {
	formatStr, err := GetStringParam(arguments, "format", false)
	if err != nil {
		return "", "", ucr.FormatSummary, errors.NewInvalidFormat(fmt.Sprintf("%v", arguments["format"]))
	}
	format, derr := ucr.ParseFormat(formatStr)
	if derr != nil {
		return "", "", ucr.FormatSummary, derr
	}

	offenseStr, err := GetStringParam(arguments, "offense", true)
	if err != nil {
		return "", "", format, errors.New(errors.CodeInvalidOffense, errors.ValidationError, err.Error()).
			WithSuggestion(fmt.Sprintf("Provide one of: %s.", joinOffenses()))
	}
	offense, derr := vocab.NormalizeOffense(offenseStr)
	if derr != nil {
		return "", "", format, derr
	}

	region, derr := resolveRegion(arguments)
	if derr != nil {
		return "", "", format, derr
	}
	return offense, region, format, nil
}

// resolveRegion normalizes the optional state parameter.
func resolveRegion(arguments map[string]interface{}) (vocab.Region, *errors.Error) {
	stateStr, err := GetStringParam(arguments, "state", false)
	if err != nil {
		return "", errors.NewMalformedRegion(fmt.Sprintf("%v", arguments["state"]), vocab.States())
	}
	return vocab.NormalizeRegion(stateStr)
}

func joinOffenses() string {
	out := ""
	for i, o := range vocab.Offenses() {
		if i > 0 {
			out += ", "
		}
		out += o
	}
	return out
}
