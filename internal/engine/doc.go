// Package engine runs the ship simulation.
//
// ARCHITECTURAL RULE: subsystems never call each other directly. The Engine
// owns the ships, advances every subsystem in a fixed order on each tick and
// wires the narrow capabilities (fuel tank, ordnance store, cost payer) they
// need. Commands and ticks are serialized by the Engine's mutex.
package engine
