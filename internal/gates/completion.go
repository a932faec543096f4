package gates

import (
	"strings"

	"github.com/dealdesk/dealdesk/internal/models"
)

// ContactCompletion grades one POC. Name, designation and LinkedIn are the
// required fields; email and phone are optional but at least one of them is
// needed for green.
func ContactCompletion(c models.Contact) models.PocStatus {
	required := []string{c.Name, c.Designation, c.LinkedinProfile}
	optional := []string{c.Email, c.Phone}

	filled := 0
	for _, f := range required {
		if strings.TrimSpace(f) != "" {
			filled++
		}
	}
	optionalFilled := 0
	for _, f := range optional {
		if strings.TrimSpace(f) != "" {
			optionalFilled++
		}
	}

	if filled == 0 && optionalFilled == 0 {
		return models.PocRed
	}
	if filled == len(required) && optionalFilled >= 1 {
		return models.PocGreen
	}
	return models.PocAmber
}

// CompletionStatus grades a company's whole contact list: red with no
// contacts at all, otherwise the best grade among them.
func CompletionStatus(contacts []models.Contact) models.PocStatus {
	if len(contacts) == 0 {
		return models.PocRed
	}

	best := models.PocRed
	for _, c := range contacts {
		switch ContactCompletion(c) {
		case models.PocGreen:
			return models.PocGreen
		case models.PocAmber:
			best = models.PocAmber
		}
	}
	return best
}
