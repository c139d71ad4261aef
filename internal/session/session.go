// Package session keeps each user's position in the quoting conversation.
package session

import (
	"context"
	"fmt"
	"time"
)

// Step is the conversation state of one user.
type Step int

const (
	StepStart Step = iota
	StepEmpresa
	StepMarModalidad
	StepMarEquipo
	StepAereoSubtipo
	StepOrigen
	StepPeso
	StepPesoVol
	StepPais
	StepPesoCourier
	// StepDone marks a delivered quote; sessions in it are deleted.
	StepDone
)

var stepNames = [...]string{
	StepStart:        "start",
	StepEmpresa:      "empresa",
	StepMarModalidad: "maritimo_modalidad",
	StepMarEquipo:    "mar_equipo",
	StepAereoSubtipo: "aereo_subtipo",
	StepOrigen:       "origen",
	StepPeso:         "peso",
	StepPesoVol:      "peso_vol",
	StepPais:         "pais",
	StepPesoCourier:  "peso_courier",
	StepDone:         "done",
}

// Steps lists every step in declaration order.
func Steps() []Step {
	out := make([]Step, len(stepNames))
	for i := range stepNames {
		out[i] = Step(i)
	}
	return out
}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

func (s Step) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(stepNames) {
		return nil, fmt.Errorf("unknown step %d", int(s))
	}
	return []byte(stepNames[s]), nil
}

func (s *Step) UnmarshalText(b []byte) error {
	for i, name := range stepNames {
		if name == string(b) {
			*s = Step(i)
			return nil
		}
	}
	return fmt.Errorf("unknown step %q", b)
}

// Data holds what the user has answered so far. Which fields are set depends
// on the step reached.
type Data struct {
	Tipo      string  `json:"tipo,omitempty"`
	Empresa   string  `json:"empresa,omitempty"`
	Modalidad string  `json:"modalidad,omitempty"`
	Subtipo   string  `json:"subtipo,omitempty"`
	Origen    string  `json:"origen,omitempty"`
	Pais      string  `json:"pais,omitempty"`
	Kg        float64 `json:"kg,omitempty"`
	Vol       float64 `json:"vol,omitempty"`
}

// Session is one user's conversation.
type Session struct {
	UserID    string    `json:"user_id"`
	Step      Step      `json:"step"`
	Data      Data      `json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns a session at StepStart.
func New(userID string) *Session {
	return &Session{UserID: userID, Step: StepStart, UpdatedAt: time.Now().UTC()}
}

// Reset clears collected data and returns to StepStart.
func (s *Session) Reset() {
	s.Step = StepStart
	s.Data = Data{}
}

// Store persists sessions by user id. Get creates a fresh session when none
// exists; callers Save after changing it.
type Store interface {
	Get(ctx context.Context, userID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, userID string) error
}
