package workflow

import (
	"strings"

	"github.com/brickline/lead-api/internal/domain"
)

// TransitionCommand is a requested stage change as captured from the
// caller. Dates arrive as strings and are normalized by Validate.
type TransitionCommand struct {
	TargetStage   domain.LeadStage
	Remark        string
	LostReason    string
	SiteVisitDate string
}

// ValidatedCommand is a transition that passed stage-level validation.
// When RequiresBooking is set, the command cannot be committed until a
// booking schedule has been validated and merged.
type ValidatedCommand struct {
	TargetStage     domain.LeadStage
	Remark          string
	LostReason      string
	SiteVisitDate   string
	RequiresBooking bool
}

// Validate checks a transition command against the target stage's
// required-field rules:
//
//   - the target stage must exist in the catalog
//   - Lost/Dead requires a non-empty lost reason, and no other stage
//     carries one
//   - Site Visit Scheduled requires a visit date
//   - Booked defers to the booking schedule, which is validated
//     separately before the command is committed
//
// The current stage is recorded but not restricted: a lead may move to
// any catalog stage, including back down the pipeline.
func Validate(current domain.LeadStage, cmd TransitionCommand) (*ValidatedCommand, error) {
	if _, ok := StageByValue(cmd.TargetStage); !ok {
		return nil, errUnknownStage(string(cmd.TargetStage))
	}

	out := &ValidatedCommand{
		TargetStage: cmd.TargetStage,
		Remark:      strings.TrimSpace(cmd.Remark),
	}

	switch cmd.TargetStage {
	case domain.StageLostDead:
		reason := strings.TrimSpace(cmd.LostReason)
		if reason == "" {
			return nil, errMissingLostReason()
		}
		out.LostReason = reason

	case domain.StageSiteVisitScheduled:
		date, ok := NormalizeDate(cmd.SiteVisitDate)
		if !ok {
			return nil, errMissingSiteVisitDate()
		}
		out.SiteVisitDate = date

	case domain.StageBooked:
		out.RequiresBooking = true
	}

	return out, nil
}
