package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/anyvolt/assistant-backend/internal/domain"
)

// fieldMatcher maps question phrasing to a spec key and a renderer. Matchers
// are evaluated in table order; the first hit wins.
type fieldMatcher struct {
	key    string
	rx     *regexp.Regexp
	label  string
	render func(p *domain.Product) (string, bool)
}

// fieldMatchers is the static field-lookup intent table. Answering from the
// structured payload here keeps field questions away from the model entirely,
// so they can never be hallucinated.
var fieldMatchers = []fieldMatcher{
	{key: domain.SpecMotorType, rx: regexp.MustCompile(`(?i)\bmotor\s*type\b`), label: "Motor Type", render: renderString(domain.SpecMotorType)},
	{key: domain.SpecMotorFamily, rx: regexp.MustCompile(`(?i)\bmotor\s*family\b`), label: "Motor Family", render: renderString(domain.SpecMotorFamily)},
	{key: "supplyVoltage", rx: regexp.MustCompile(`(?i)\b(voltage|supply\s*voltage)\b`), label: "Supply Voltage", render: renderVoltageRange},
	{key: domain.SpecRatedPowerKw, rx: regexp.MustCompile(`(?i)\b(power|rated\s*power)\b`), label: "Rated Power", render: renderNumber(domain.SpecRatedPowerKw)},
	{key: domain.SpecRatedTorqueNm, rx: regexp.MustCompile(`(?i)\b(torque|rated\s*torque)\b`), label: "Rated Torque", render: renderNumber(domain.SpecRatedTorqueNm)},
	{key: domain.SpecIPRating, rx: regexp.MustCompile(`(?i)\bip\s*rating\b`), label: "IP Rating", render: renderString(domain.SpecIPRating)},
	{key: domain.SpecCooling, rx: regexp.MustCompile(`(?i)\bcooling\b`), label: "Cooling", render: renderString(domain.SpecCooling)},
	{key: domain.SpecMountType, rx: regexp.MustCompile(`(?i)\bmount(ing)?\s*(type)?\b`), label: "Mount Type", render: renderString(domain.SpecMountType)},
	{key: domain.SpecHasBrake, rx: regexp.MustCompile(`(?i)\b(has|have|with)\s*a?\s*brake\b`), label: "Brake", render: renderBrake},
}

var listIntentRegex = regexp.MustCompile(`(?i)\b(list|show|top|catalog|range)\b`)

// DetectIntent classifies a sanitized message. Field lookup takes precedence
// over list phrasing; FreeForm is the default.
func DetectIntent(message string) domain.Intent {
	if detectFieldIntent(message) != nil {
		return domain.IntentFieldLookup
	}
	if listIntentRegex.MatchString(message) {
		return domain.IntentListQuery
	}
	return domain.IntentFreeForm
}

func detectFieldIntent(message string) *fieldMatcher {
	for i := range fieldMatchers {
		if fieldMatchers[i].rx.MatchString(message) {
			return &fieldMatchers[i]
		}
	}
	return nil
}

// AnswerField answers a field-lookup question directly from the structured
// payload of the best candidate: the one whose name appears in the question,
// or the top-ranked one. Missing values produce an explicit don't-know reply,
// never a fabricated one.
func AnswerField(message string, candidates []domain.Candidate) (string, bool) {
	matcher := detectFieldIntent(message)
	if matcher == nil || len(candidates) == 0 {
		return "", false
	}

	questionLower := strings.ToLower(message)
	chosen := &candidates[0].Product
	for i := range candidates {
		name := strings.ToLower(candidates[i].Product.Name)
		if name != "" && strings.Contains(questionLower, name) {
			chosen = &candidates[i].Product
			break
		}
	}

	value, ok := matcher.render(chosen)
	if !ok {
		return fmt.Sprintf("I don't know that %s from the available data.", strings.ToLower(matcher.label)), true
	}

	name := chosen.Name
	if name == "" {
		name = "This product"
	}
	return fmt.Sprintf("%s for %s: %s", matcher.label, name, value), true
}

// AnswerList renders a numbered list of the top candidates' name and motor
// summary without any model call.
func AnswerList(candidates []domain.Candidate, topN int) string {
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}

	lines := make([]string, 0, len(candidates))
	for i, c := range candidates {
		title := c.Product.Name
		if title == "" {
			title = "Unnamed Product"
		}

		var motorParts []string
		if family := c.Product.SpecString(domain.SpecMotorFamily); family != "" {
			motorParts = append(motorParts, family)
		}
		if mtype := c.Product.SpecString(domain.SpecMotorType); mtype != "" {
			motorParts = append(motorParts, mtype)
		}
		motor := strings.Join(motorParts, " / ")
		if motor == "" {
			motor = "—"
		}

		lines = append(lines, fmt.Sprintf("%d) %s — %s", i+1, title, motor))
	}

	if len(lines) == 0 {
		return "I don't know."
	}
	return strings.Join(lines, "\n")
}

func renderString(key string) func(p *domain.Product) (string, bool) {
	return func(p *domain.Product) (string, bool) {
		v := p.SpecString(key)
		return v, v != ""
	}
}

func renderNumber(key string) func(p *domain.Product) (string, bool) {
	return func(p *domain.Product) (string, bool) {
		v, ok := p.SpecNumber(key)
		if !ok {
			return "", false
		}
		return formatNumber(v), true
	}
}

// renderVoltageRange builds the composite supply voltage answer from the
// min/max fields; either side may be missing.
func renderVoltageRange(p *domain.Product) (string, bool) {
	minV, okMin := p.SpecNumber(domain.SpecSupplyVoltageMinV)
	maxV, okMax := p.SpecNumber(domain.SpecSupplyVoltageMaxV)
	if !okMin && !okMax {
		return "", false
	}

	left, right := "—", "—"
	if okMin {
		left = formatNumber(minV)
	}
	if okMax {
		right = formatNumber(maxV)
	}
	return fmt.Sprintf("%s–%s V", left, right), true
}

func renderBrake(p *domain.Product) (string, bool) {
	hasBrake, ok := p.SpecBool(domain.SpecHasBrake)
	if !ok {
		return "", false
	}
	if hasBrake {
		return "Yes", true
	}
	return "No", true
}

// formatNumber renders a spec number without trailing zeros
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
