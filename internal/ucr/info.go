package ucr

import (
	"fmt"
	"strings"

	"github.com/crimetrends/ucr-mcp-server/internal/vocab"
)

// OffenseInfo is the static reference entry for one offense category, drawn
// from the UCR definitions.
type OffenseInfo struct {
	Summary    string
	Definition string
	Includes   []string
	Notes      string
}

// offenseCatalog holds the static UCR reference material served by the info
// tool. It never changes at runtime.
var offenseCatalog = map[vocab.Offense]OffenseInfo{
	vocab.ViolentCrime: {
		Summary:    "Composite of offenses involving force or threat of force.",
		Definition: "The UCR violent crime index aggregates murder and nonnegligent manslaughter, rape, robbery, and aggravated assault.",
		Includes:   []string{"homicide", "rape", "robbery", "aggravated assault"},
		Notes:      "A composite index; individual component trends can diverge from the aggregate.",
	},
	vocab.PropertyCrime: {
		Summary:    "Composite of offenses involving the taking of property without force against a person.",
		Definition: "The UCR property crime index aggregates burglary, larceny-theft, and motor vehicle theft.",
		Includes:   []string{"burglary", "larceny-theft", "motor vehicle theft"},
		Notes:      "Arson is collected separately and is not part of this index.",
	},
	vocab.Homicide: {
		Summary:    "Murder and nonnegligent manslaughter.",
		Definition: "The willful killing of one human being by another, as determined by police investigation rather than court findings.",
		Includes:   []string{"murder", "nonnegligent manslaughter"},
		Notes:      "Excludes deaths by negligence, suicide, accident, and justifiable homicide.",
	},
	vocab.Burglary: {
		Summary:    "Unlawful entry of a structure to commit a felony or theft.",
		Definition: "The unlawful entry of a structure to commit a felony or a theft; forcible entry is not required.",
		Includes:   []string{"forcible entry", "unlawful entry without force", "attempted forcible entry"},
		Notes:      "Structures include dwellings, offices, and other buildings; vehicles are covered by motor vehicle theft.",
	},
	vocab.MotorVehicleTheft: {
		Summary:    "Theft or attempted theft of a motor vehicle.",
		Definition: "The theft or attempted theft of a self-propelled vehicle that runs on land and not on rails.",
		Includes:   []string{"automobiles", "trucks", "buses", "motorcycles"},
		Notes:      "Excludes farm equipment, watercraft, and aircraft, and taking for temporary use by someone with lawful access.",
	},
}

// CatalogEntry returns the static reference entry for an offense.
func CatalogEntry(offense vocab.Offense) (OffenseInfo, bool) {
	info, ok := offenseCatalog[offense]
	return info, ok
}

// RenderModelsList renders the full model registry for a region as a
// numbered list, one entry per offense model.
func RenderModelsList(models []ModelDescriptor, region vocab.Region) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Available Forecast Models (%s):\n\n", region.DisplayName())
	if len(models) == 0 {
		b.WriteString("No models are currently registered for this region.\n")
		return b.String()
	}
	for i, m := range models {
		offense := vocab.Offense(m.Offense)
		fmt.Fprintf(&b, "%d. %s\n", i+1, offense.DisplayName())
		fmt.Fprintf(&b, "   Model: %s | Error rate (MAPE): %.1f%%", m.ModelType, m.MAPE)
		if !m.TrainingEnd.IsZero() {
			fmt.Fprintf(&b, " | Data through: %s", m.TrainingEnd.Display())
		}
		b.WriteString("\n")
		if info, ok := offenseCatalog[offense]; ok {
			fmt.Fprintf(&b, "   %s\n", info.Summary)
		}
	}
	fmt.Fprintf(&b, "\nSupported states for state-level data: %s. All other regions are covered by the national aggregate.\n",
		strings.Join(vocab.States(), ", "))
	return b.String()
}

// RenderModelDetails renders the full reference entry for one offense,
// combining the static UCR definition with the backend's model descriptor.
// model may be nil when the registry has no entry for the offense.
func RenderModelDetails(offense vocab.Offense, model *ModelDescriptor, region vocab.Region) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n\n", offense.DisplayName(), region.DisplayName())

	if info, ok := offenseCatalog[offense]; ok {
		fmt.Fprintf(&b, "Definition: %s\n", info.Definition)
		if len(info.Includes) > 0 {
			fmt.Fprintf(&b, "Includes: %s\n", strings.Join(info.Includes, ", "))
		}
		if info.Notes != "" {
			fmt.Fprintf(&b, "Notes: %s\n", info.Notes)
		}
	}

	if model == nil {
		b.WriteString("\nNo forecast model is currently registered for this offense in this region.\n")
		return b.String()
	}

	b.WriteString("\nForecast Model:\n")
	fmt.Fprintf(&b, "- Type: %s", model.ModelType)
	if model.ModelInfo().Seasonal() {
		b.WriteString(" (seasonal)")
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "- Error rate (MAPE): %.1f%% (lower is better)\n", model.MAPE)
	if !model.TrainingEnd.IsZero() {
		fmt.Fprintf(&b, "- Data through: %s\n", model.TrainingEnd.Display())
	}
	if len(model.Parameters.Order) > 0 {
		fmt.Fprintf(&b, "- Order: %s\n", formatOrder(model.Parameters.Order))
	}
	if len(model.Parameters.SeasonalOrder) > 0 {
		fmt.Fprintf(&b, "- Seasonal order: %s\n", formatOrder(model.Parameters.SeasonalOrder))
	}
	return b.String()
}

// ModelInfo converts a registry descriptor into the forecast model type.
func (m ModelDescriptor) ModelInfo() ModelInfo {
	return ModelInfo{
		ModelType:   m.ModelType,
		MAPE:        m.MAPE,
		TrainingEnd: m.TrainingEnd,
		Parameters:  m.Parameters,
	}
}

func formatOrder(order []int) string {
	parts := make([]string, len(order))
	for i, v := range order {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
