package scheduler

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	SlotMorning = "morning"
	SlotMidday  = "midday"
	SlotEvening = "evening"

	DefaultTimezone = "America/New_York"
)

// SlotNames is the fixed evaluation order.
var SlotNames = []string{SlotMorning, SlotMidday, SlotEvening}

type Slot struct {
	Enabled  bool   `json:"enabled"`
	Hour     int    `json:"hour" validate:"min=0,max=23"`
	Minute   int    `json:"minute" validate:"min=0,max=59"`
	Timezone string `json:"timezone" validate:"required,timezone"`
}

type Schedule struct {
	Morning Slot `json:"morning"`
	Midday  Slot `json:"midday"`
	Evening Slot `json:"evening"`
}

func DefaultSchedule() Schedule {
	return Schedule{
		Morning: Slot{Enabled: true, Hour: 7, Minute: 20, Timezone: DefaultTimezone},
		Midday:  Slot{Enabled: true, Hour: 11, Minute: 50, Timezone: DefaultTimezone},
		Evening: Slot{Enabled: true, Hour: 16, Minute: 20, Timezone: DefaultTimezone},
	}
}

func (s Schedule) Slot(name string) (Slot, bool) {
	switch name {
	case SlotMorning:
		return s.Morning, true
	case SlotMidday:
		return s.Midday, true
	case SlotEvening:
		return s.Evening, true
	}
	return Slot{}, false
}

var validate = validator.New()

// Validate rejects out-of-range times and unknown IANA zones.
func (s Schedule) Validate() error {
	for _, name := range SlotNames {
		slot, _ := s.Slot(name)
		if err := validate.Struct(slot); err != nil {
			return fmt.Errorf("invalid %s slot: %w", name, err)
		}
	}
	return nil
}

// SlotOverride is a partial slot; nil fields keep the current value.
type SlotOverride struct {
	Enabled  *bool   `json:"enabled"`
	Hour     *int    `json:"hour"`
	Minute   *int    `json:"minute"`
	Timezone *string `json:"timezone"`
}

type Overrides struct {
	Morning *SlotOverride `json:"morning"`
	Midday  *SlotOverride `json:"midday"`
	Evening *SlotOverride `json:"evening"`
}

func (s Schedule) Apply(o Overrides) Schedule {
	s.Morning = o.Morning.apply(s.Morning)
	s.Midday = o.Midday.apply(s.Midday)
	s.Evening = o.Evening.apply(s.Evening)
	return s
}

func (o *SlotOverride) apply(s Slot) Slot {
	if o == nil {
		return s
	}
	if o.Enabled != nil {
		s.Enabled = *o.Enabled
	}
	if o.Hour != nil {
		s.Hour = *o.Hour
	}
	if o.Minute != nil {
		s.Minute = *o.Minute
	}
	if o.Timezone != nil {
		s.Timezone = *o.Timezone
	}
	return s
}

// DueSlots returns the enabled slots whose local wall-clock hour and minute
// equal now in the slot's timezone. A slot with an unloadable zone is skipped.
func DueSlots(s Schedule, now time.Time) []string {
	var due []string
	for _, name := range SlotNames {
		slot, _ := s.Slot(name)
		if !slot.Enabled {
			continue
		}
		loc, err := time.LoadLocation(slot.Timezone)
		if err != nil {
			continue
		}
		local := now.In(loc)
		if local.Hour() == slot.Hour && local.Minute() == slot.Minute {
			due = append(due, name)
		}
	}
	return due
}
