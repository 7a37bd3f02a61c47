package session

import (
	"github.com/google/uuid"
	"github.com/meltforce/liftlog/internal/models"
)

// SlotStatus is the render state of one set slot. Warmups strictly precede
// work sets; a slot becomes active only when everything that must
// logically precede it is logged.
type SlotStatus string

const (
	StatusPlannedWarmup SlotStatus = "planned_warmup"
	StatusActiveWarmup  SlotStatus = "active_warmup"
	StatusLoggedWarmup  SlotStatus = "logged_warmup"
	StatusActiveWork    SlotStatus = "active_work"
	StatusLoggedWork    SlotStatus = "logged_work"
	StatusFuture        SlotStatus = "future"
)

// Slot is one renderable row of an exercise's set list.
type Slot struct {
	SetNumber int            `json:"set_number"`
	SetType   models.SetType `json:"set_type"`
	Status    SlotStatus     `json:"status"`
	// Logged is the live record when the slot has been logged.
	Logged *models.SetRecord `json:"logged,omitempty"`
	// Planned is the generated warmup prescription for warmup slots.
	Planned *models.PlannedWarmup `json:"planned,omitempty"`
}

// Slots returns the ordered slot list for an exercise: planned warmups
// ascending, then work slots 1..TargetSets. Exactly one slot is active
// unless the exercise is complete.
func (r *Runner) Slots(exerciseID uuid.UUID) ([]Slot, error) {
	ex, ok := r.findExercise(exerciseID)
	if !ok {
		return nil, ErrExerciseNotFound
	}

	var slots []Slot
	warmupsDone := true
	activeSeen := false

	for i := range ex.PlannedWarmups {
		pw := &ex.PlannedWarmups[i]
		slot := Slot{SetNumber: pw.SetNumber, SetType: models.SetTypeWarmup, Planned: pw}
		if rec, logged := ex.LoggedSet(models.SetKey{SetNumber: pw.SetNumber, SetType: models.SetTypeWarmup}); logged {
			slot.Status = StatusLoggedWarmup
			slot.Logged = &rec
		} else if !activeSeen {
			slot.Status = StatusActiveWarmup
			activeSeen = true
			warmupsDone = false
		} else {
			slot.Status = StatusPlannedWarmup
			warmupsDone = false
		}
		slots = append(slots, slot)
	}

	for n := 1; n <= ex.TargetSets; n++ {
		slot := Slot{SetNumber: n, SetType: models.SetTypeWork}
		if rec, logged := ex.LoggedSet(models.SetKey{SetNumber: n, SetType: models.SetTypeWork}); logged {
			slot.Status = StatusLoggedWork
			slot.Logged = &rec
		} else if warmupsDone && !activeSeen {
			slot.Status = StatusActiveWork
			activeSeen = true
		} else {
			slot.Status = StatusFuture
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

// ActiveSlot returns the slot the lifter should log next, or false when
// the exercise is complete.
func (r *Runner) ActiveSlot(exerciseID uuid.UUID) (Slot, bool, error) {
	slots, err := r.Slots(exerciseID)
	if err != nil {
		return Slot{}, false, err
	}
	for _, s := range slots {
		if s.Status == StatusActiveWarmup || s.Status == StatusActiveWork {
			return s, true, nil
		}
	}
	return Slot{}, false, nil
}
