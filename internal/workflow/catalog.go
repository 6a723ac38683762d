// Package workflow implements the lead stage lifecycle: the stage
// catalog, transition validation, booking schedule calculation and the
// two-phase transition orchestrator. It has no persistence of its own;
// callers supply a LeadUpdater that commits the outcome.
package workflow

import "github.com/brickline/lead-api/internal/domain"

// StageInfo is one entry of the stage catalog shown to clients.
type StageInfo struct {
	Value domain.LeadStage
	Label string
	Color string
}

var stageCatalog = []StageInfo{
	{Value: domain.StageNewLead, Label: "New Lead", Color: "#2196F3"},
	{Value: domain.StageContacted, Label: "Contacted", Color: "#03A9F4"},
	{Value: domain.StageSiteVisitScheduled, Label: "Site Visit Scheduled", Color: "#FF9800"},
	{Value: domain.StageSiteVisitCompleted, Label: "Site Visit Completed", Color: "#FF5722"},
	{Value: domain.StageNegotiation, Label: "Negotiation", Color: "#9C27B0"},
	{Value: domain.StageBookingInProgress, Label: "Booking In Progress", Color: "#673AB7"},
	{Value: domain.StageBooked, Label: "Booked", Color: "#4CAF50"},
	{Value: domain.StageLostDead, Label: "Lost/Dead", Color: "#9E9E9E"},
}

// Stages returns the full stage catalog in pipeline order. The returned
// slice is a copy and safe for callers to modify.
func Stages() []StageInfo {
	out := make([]StageInfo, len(stageCatalog))
	copy(out, stageCatalog)
	return out
}

// StageByValue looks up a catalog entry by its stage value.
func StageByValue(stage domain.LeadStage) (StageInfo, bool) {
	for _, s := range stageCatalog {
		if s.Value == stage {
			return s, true
		}
	}
	return StageInfo{}, false
}

// StageIndex returns the position of a stage in the pipeline order, or
// -1 when the stage is not part of the catalog.
func StageIndex(stage domain.LeadStage) int {
	for i, s := range stageCatalog {
		if s.Value == stage {
			return i
		}
	}
	return -1
}
