/*
Copyright © 2025 Groundwork Contributors
SPDX-License-Identifier: BSD-3-Clause
*/

package state

import (
	"github.com/getgroundwork/groundwork/internal/errs"
)

// Action is the operation the deploy path must perform to reach a healthy state
type Action string

const (
	// ActionCreate creates the stack from scratch
	ActionCreate Action = "CREATE"
	// ActionUpdate updates the existing stack in place
	ActionUpdate Action = "UPDATE"
	// ActionReconcileThenCreate resolves orphaned resources, by import or
	// discard, before creating the stack
	ActionReconcileThenCreate Action = "RECONCILE_THEN_CREATE"
	// ActionTeardownThenCreate removes the failed stack and its retained
	// resources, then creates from scratch
	ActionTeardownThenCreate Action = "TEARDOWN_THEN_CREATE"
)

// Plan is the planned transition from an observed state to a healthy deployment
type Plan struct {
	Action  Action
	Orphans []OrphanCandidate
}

// PlanTransition maps an observation onto the action that reaches a healthy
// deployment. Busy and stuck stacks cannot be planned around and return an
// error instead.
func PlanTransition(obs *Observation) (*Plan, error) {
	switch obs.State {
	case StateAbsent:
		if len(obs.Orphans) > 0 {
			return &Plan{Action: ActionReconcileThenCreate, Orphans: obs.Orphans}, nil
		}
		return &Plan{Action: ActionCreate}, nil
	case StateHealthy:
		return &Plan{Action: ActionUpdate}, nil
	case StateFailedInitial:
		return &Plan{Action: ActionTeardownThenCreate}, nil
	case StateFailedUpdate:
		// the previous deployment still stands; retry the update in place
		return &Plan{Action: ActionUpdate}, nil
	case StateDegraded:
		return &Plan{Action: ActionUpdate}, nil
	case StateBusy:
		return nil, errs.Newf(errs.CategoryStateConflict,
			"stack operation already in progress (%s), wait for it to finish", stackStatusOf(obs))
	case StateStuck:
		return nil, errs.Newf(errs.CategoryIrrecoverable,
			"stack is in %s and needs manual intervention before it can be managed again", stackStatusOf(obs))
	}
	return nil, errs.Newf(errs.CategoryIrrecoverable, "unrecognised stack state %s", obs.State)
}

func stackStatusOf(obs *Observation) string {
	if obs.Stack != nil {
		return string(obs.Stack.Status)
	}
	return string(obs.State)
}
