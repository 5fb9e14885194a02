package engine

import (
	"github.com/MRamiBalles/hullbreach/internal/domain/combat"
	"github.com/MRamiBalles/hullbreach/internal/domain/crew"
	"github.com/MRamiBalles/hullbreach/internal/domain/item"
	"github.com/MRamiBalles/hullbreach/internal/domain/outcome"
	"github.com/MRamiBalles/hullbreach/internal/domain/resource"
	"github.com/MRamiBalles/hullbreach/internal/platform/metrics"
)

// CommandType names an operation that can arrive over the wire.
type CommandType string

const (
	CmdStartWarp       CommandType = "start_warp"
	CmdStopWarp        CommandType = "stop_warp"
	CmdAccelerate      CommandType = "accelerate"
	CmdDecelerate      CommandType = "decelerate"
	CmdHoldThrust      CommandType = "hold_thrust"
	CmdEnterCombat     CommandType = "enter_combat"
	CmdEngage          CommandType = "engage"
	CmdExitCombat      CommandType = "exit_combat"
	CmdReceiveDamage   CommandType = "receive_damage"
	CmdFireMissile     CommandType = "fire_missile"
	CmdFireLaser       CommandType = "fire_laser"
	CmdCraftStrike     CommandType = "craft_strike"
	CmdLaunchFighter   CommandType = "launch_fighter"
	CmdLaunchBomber    CommandType = "launch_bomber"
	CmdRecallCraft     CommandType = "recall_craft"
	CmdAttemptBoard    CommandType = "attempt_board"
	CmdAttemptWarpAway CommandType = "attempt_warp_away"
	CmdSabotageWarp    CommandType = "sabotage_warp"
	CmdMoraleDelta     CommandType = "morale_delta"
	CmdMoraleEvent     CommandType = "morale_event"
	CmdLoseCrew        CommandType = "lose_crew"
	CmdStartResearch   CommandType = "start_research"
	CmdRepair          CommandType = "repair"
	CmdAddResource     CommandType = "add_resource"
	CmdAddItem         CommandType = "add_item"
)

// Command is the decoded form of a client request against one ship.
// Only the fields its Type needs are read.
type Command struct {
	Type     CommandType `json:"type"`
	ShipID   string      `json:"ship_id"`
	TargetID string      `json:"target_id,omitempty"`
	Amount   float64     `json:"amount,omitempty"`
	Count    int         `json:"count,omitempty"`
	Kind     string      `json:"kind,omitempty"`
	NodeID   string      `json:"node_id,omitempty"`
}

// Execute dispatches cmd to the matching engine operation.
func (e *Engine) Execute(cmd Command) outcome.Result {
	switch cmd.Type {
	case CmdStartWarp:
		return e.StartWarp(cmd.ShipID)
	case CmdStopWarp:
		return e.StopWarp(cmd.ShipID)
	case CmdAccelerate:
		return e.Accelerate(cmd.ShipID)
	case CmdDecelerate:
		return e.Decelerate(cmd.ShipID)
	case CmdHoldThrust:
		return e.HoldThrust(cmd.ShipID)
	case CmdEnterCombat:
		return e.EnterCombat(cmd.ShipID)
	case CmdEngage:
		return e.Engage(cmd.ShipID, cmd.TargetID)
	case CmdExitCombat:
		return e.ExitCombat(cmd.ShipID)
	case CmdReceiveDamage:
		kind := combat.DamageKind(cmd.Kind)
		if kind == "" {
			kind = combat.DamageKinetic
		}
		return e.ReceiveDamage(cmd.ShipID, cmd.Amount, kind)
	case CmdFireMissile:
		return e.FireMissile(cmd.ShipID, cmd.TargetID)
	case CmdFireLaser:
		return e.FireLaser(cmd.ShipID, cmd.TargetID)
	case CmdCraftStrike:
		return e.CraftStrike(cmd.ShipID, cmd.TargetID)
	case CmdLaunchFighter:
		return e.LaunchFighter(cmd.ShipID)
	case CmdLaunchBomber:
		return e.LaunchBomber(cmd.ShipID)
	case CmdRecallCraft:
		return e.RecallCraft(cmd.ShipID)
	case CmdAttemptBoard:
		return e.AttemptBoard(cmd.ShipID, cmd.TargetID)
	case CmdAttemptWarpAway:
		return e.AttemptWarpAway(cmd.ShipID)
	case CmdSabotageWarp:
		return e.SabotageWarp(cmd.ShipID, cmd.TargetID)
	case CmdMoraleDelta:
		return e.ApplyMoraleEvent(cmd.ShipID, cmd.Amount)
	case CmdMoraleEvent:
		ev := crew.MoraleEvent(cmd.Kind)
		if !ev.Valid() {
			return rejected(outcome.ReasonUnknownKind, "unknown morale event %q", cmd.Kind)
		}
		return e.RaiseMoraleEvent(cmd.ShipID, ev)
	case CmdLoseCrew:
		return e.LoseCrew(cmd.ShipID, cmd.Count)
	case CmdStartResearch:
		return e.StartResearch(cmd.ShipID, cmd.NodeID)
	case CmdRepair:
		return e.Repair(cmd.ShipID, cmd.Amount)
	case CmdAddResource:
		kind, err := resource.ParseKind(cmd.Kind)
		if err != nil {
			return rejected(outcome.ReasonUnknownKind, "%v", err)
		}
		return e.AddResource(cmd.ShipID, kind, cmd.Amount)
	case CmdAddItem:
		t, err := item.ParseItemType(cmd.Kind)
		if err != nil {
			return rejected(outcome.ReasonUnknownKind, "%v", err)
		}
		return e.AddItem(cmd.ShipID, t, cmd.Count)
	default:
		return rejected(outcome.ReasonUnknownCommand, "unknown command %q", cmd.Type)
	}
}

// rejected covers requests refused before reaching a ship.
func rejected(reason outcome.Reason, format string, args ...interface{}) outcome.Result {
	metrics.Get().RecordCommand(false)
	return outcome.Rejectf(reason, format, args...)
}
