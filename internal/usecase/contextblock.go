package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/anyvolt/assistant-backend/internal/domain"
)

const (
	candidateSeparator = "\n---\n"
	nameBudget         = 120
	descriptionBudget  = 400
	placeholder        = "—"
)

// BuildContext renders the first maxCandidates candidates as a bounded,
// deterministic grounding block. Every candidate emits the same fixed-order
// labeled lines; missing fields render as a placeholder so the prompt
// structure stays uniform.
func BuildContext(candidates []domain.Candidate, maxCandidates int) string {
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}

	blocks := make([]string, 0, len(candidates))
	for i, c := range candidates {
		blocks = append(blocks, candidateBlock(i+1, &c.Product))
	}
	return strings.Join(blocks, candidateSeparator)
}

func candidateBlock(ordinal int, p *domain.Product) string {
	lines := []string{
		fmt.Sprintf("Product %d: %s", ordinal, truncate(orPlaceholder(p.Name), nameBudget)),
		fmt.Sprintf("Motor: %s", motorLine(p)),
		fmt.Sprintf("Voltage: %s", voltageLine(p)),
		fmt.Sprintf("Rated Power: %s", numberLine(p, domain.SpecRatedPowerKw, " kW")),
		fmt.Sprintf("Torque: %s", numberLine(p, domain.SpecRatedTorqueNm, " Nm")),
		fmt.Sprintf("Cooling: %s", orPlaceholder(p.SpecString(domain.SpecCooling))),
		fmt.Sprintf("IP: %s", orPlaceholder(p.SpecString(domain.SpecIPRating))),
		fmt.Sprintf("Mount: %s", orPlaceholder(p.SpecString(domain.SpecMountType))),
		fmt.Sprintf("Brake: %s", brakeLine(p)),
		fmt.Sprintf("Gearbox: %s", gearboxLine(p)),
		fmt.Sprintf("Size: %s", sizeLine(p)),
		fmt.Sprintf("Summary: %s", truncate(orPlaceholder(p.Description), descriptionBudget)),
	}
	return strings.Join(lines, "\n")
}

func motorLine(p *domain.Product) string {
	family := orPlaceholder(p.SpecString(domain.SpecMotorFamily))
	if mtype := p.SpecString(domain.SpecMotorType); mtype != "" {
		return family + " / " + mtype
	}
	return family
}

func voltageLine(p *domain.Product) string {
	minV, okMin := p.SpecNumber(domain.SpecSupplyVoltageMinV)
	maxV, okMax := p.SpecNumber(domain.SpecSupplyVoltageMaxV)
	switch {
	case okMin && okMax:
		return fmt.Sprintf("%s–%sV", formatNumber(minV), formatNumber(maxV))
	case okMin:
		return formatNumber(minV) + "V"
	case okMax:
		return formatNumber(maxV) + "V"
	}
	return placeholder
}

func numberLine(p *domain.Product, key, unit string) string {
	v, ok := p.SpecNumber(key)
	if !ok {
		return placeholder
	}
	return formatNumber(v) + unit
}

func brakeLine(p *domain.Product) string {
	hasBrake, _ := p.SpecBool(domain.SpecHasBrake)
	if !hasBrake {
		return "No"
	}

	voltage := placeholder
	if v, ok := p.SpecNumber(domain.SpecBrakeVoltageV); ok {
		voltage = formatNumber(v)
	}
	torque := placeholder
	if v, ok := p.SpecNumber(domain.SpecBrakeHoldingTorqueNm); ok {
		torque = formatNumber(v)
	}
	return fmt.Sprintf("Yes (%s V, %s Nm)", voltage, torque)
}

func gearboxLine(p *domain.Product) string {
	required, _ := p.SpecBool(domain.SpecGearboxRequired)
	if !required {
		return "Not required"
	}

	line := orPlaceholder(p.SpecString(domain.SpecGearboxType))
	if ratio, ok := p.SpecNumber(domain.SpecGearboxRatio); ok {
		line += " x" + formatNumber(ratio)
	}
	return line
}

func sizeLine(p *domain.Product) string {
	length := placeholder
	if v, ok := p.SpecNumber(domain.SpecMaxLengthMm); ok {
		length = formatNumber(v)
	}
	width := placeholder
	if v, ok := p.SpecNumber(domain.SpecMaxWidthMm); ok {
		width = formatNumber(v)
	}
	return fmt.Sprintf("%s L x %s W/D (mm)", length, width)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// truncate cuts s to at most budget bytes without splitting a rune
func truncate(s string, budget int) string {
	if len(s) <= budget {
		return s
	}
	for budget > 0 && !utf8.RuneStart(s[budget]) {
		budget--
	}
	return s[:budget]
}
