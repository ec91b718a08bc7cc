package service

import (
	"strings"
	"unicode/utf8"

	"github.com/gagansiddarth/SmartAgricultureExchange-sub000/internal/model"
)

// Factor labels appended by ScoreListing, in evaluation order. The order
// is a stable contract: the UI displays factors in this sequence and the
// admin queue uses it when breaking score ties.
const (
	FactorPrimaryImage     = "Primary photo uploaded"
	FactorMultipleImages   = "Multiple photos uploaded"
	FactorThreePlusImages  = "Three or more photos uploaded"
	FactorGPSCoordinates   = "GPS coordinates provided"
	FactorNamedLocation    = "Named location provided"
	FactorContactPhone     = "Contact phone provided"
	FactorVerifiedPhone    = "Phone number verified"
	FactorRichDescription  = "Detailed description"
	FactorVarietySpecified = "Crop variety specified"
)

// ScoreListing computes the trust score for a listing: an additive 0-100
// heuristic over verifiable provenance (photos, precise location,
// reachable contact). Pure and deterministic, no I/O; the result is a
// read-time projection and must not be persisted as source of truth.
func ScoreListing(l *model.Listing) model.VerificationAssessment {
	score := 0
	factors := []string{}

	if l.PrimaryImage() != "" {
		score += 20
		factors = append(factors, FactorPrimaryImage)
		if len(l.Images) >= 2 {
			score += 10
			factors = append(factors, FactorMultipleImages)
		}
		if len(l.Images) >= 3 {
			score += 10
			factors = append(factors, FactorThreePlusImages)
		}
	}

	// Coordinates take precedence over a free-text address; the lower
	// tier credit is not granted on top.
	if l.Latitude != nil && l.Longitude != nil {
		score += 25
		factors = append(factors, FactorGPSCoordinates)
	} else if hasNamedLocation(l) {
		score += 15
		factors = append(factors, FactorNamedLocation)
	}

	if l.ContactPhone != "" {
		score += 15
		factors = append(factors, FactorContactPhone)
	}
	if l.PhoneVerified {
		score += 5
		factors = append(factors, FactorVerifiedPhone)
	}
	if utf8.RuneCountInString(l.Description) > 50 {
		score += 10
		factors = append(factors, FactorRichDescription)
	}
	if l.Variety != "" {
		score += 5
		factors = append(factors, FactorVarietySpecified)
	}

	if score > 100 {
		score = 100
	}
	return model.VerificationAssessment{Score: score, Factors: factors}
}

func hasNamedLocation(l *model.Listing) bool {
	for _, part := range []string{l.Village, l.District, l.State} {
		if part != "" && !strings.EqualFold(part, "Unknown") {
			return true
		}
	}
	return false
}
