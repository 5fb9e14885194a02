package network

import (
	"github.com/leonelquinteros/gotext"

	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
)

// ConfigureLocale loads gettext catalogs for command feedback. Without a
// catalog the English msgids are returned as-is.
func ConfigureLocale(dir, language string) {
	if dir == "" {
		return
	}
	gotext.Configure(dir, language, "default")
}

// Describe renders a result as a line a player can read.
func Describe(r outcome.Result) string {
	switch r.Status {
	case outcome.StatusAccepted:
		return gotext.Get("Done.")
	case outcome.StatusClamped:
		return gotext.Get("Done, but limited: %s", r.Detail)
	case outcome.StatusTerminal:
		return gotext.Get("Target destroyed.")
	}
	switch r.Reason {
	case outcome.ReasonInsufficientResources:
		return gotext.Get("Not enough resources.")
	case outcome.ReasonCapacityFull:
		return gotext.Get("No room left for that.")
	case outcome.ReasonAlreadyInProgress:
		return gotext.Get("Already underway.")
	case outcome.ReasonInvalidTarget:
		return gotext.Get("That target is not valid.")
	case outcome.ReasonInvalidAmount:
		return gotext.Get("That amount is not valid.")
	case outcome.ReasonUnknownKind:
		return gotext.Get("Unknown kind.")
	case outcome.ReasonAlreadyUnlocked:
		return gotext.Get("Already researched.")
	case outcome.ReasonPrerequisitesMissing:
		return gotext.Get("Research the prerequisites first.")
	case outcome.ReasonUnknownNode:
		return gotext.Get("No such research.")
	case outcome.ReasonNotInCombat:
		return gotext.Get("Not in combat.")
	case outcome.ReasonInCombat:
		return gotext.Get("Not possible during combat.")
	case outcome.ReasonWarpActive:
		return gotext.Get("The warp drive is engaged.")
	case outcome.ReasonNotWarping:
		return gotext.Get("The warp drive is not engaged.")
	case outcome.ReasonAreaDisabled:
		return gotext.Get("The crew is on strike there.")
	case outcome.ReasonDestroyed:
		return gotext.Get("The ship is destroyed.")
	case outcome.ReasonCaptured:
		return gotext.Get("The ship has been captured.")
	case outcome.ReasonWarpJammed:
		return gotext.Get("The warp drive is jammed.")
	case outcome.ReasonNoCraft:
		return gotext.Get("No craft launched.")
	case outcome.ReasonUnknownShip:
		return gotext.Get("No such ship.")
	case outcome.ReasonUnknownCommand:
		return gotext.Get("Unknown command.")
	case outcome.ReasonRateLimited:
		return gotext.Get("Too many commands, slow down.")
	}
	return gotext.Get("Request refused.")
}
