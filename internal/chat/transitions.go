package chat

import (
	"context"
	"errors"
	"strings"

	"freightquote/internal/rate"
	"freightquote/internal/session"
)

// action runs a transition and returns the step to move to. Returning the
// current step keeps the user where they are.
type action func(c *Controller, ctx context.Context, s *session.Session, in Input) (session.Step, []Reply, error)

// rule is one cell of the transition table. targets lists every step act may
// return; anything else is rejected by Handle.
type rule struct {
	targets []session.Step
	act     action
}

const (
	subtipoCargo   = "carga"
	subtipoCourier = "courier"
)

var transitions = map[session.Step]map[inputClass]rule{
	session.StepStart: {
		inModeSea:  {to(session.StepEmpresa), chooseMode(rate.ModeSea)},
		inModeAir:  {to(session.StepEmpresa), chooseMode(rate.ModeAir)},
		inModeLand: {to(session.StepEmpresa), chooseMode(rate.ModeLand)},
		inText:     {to(session.StepStart), showMenu},
	},
	session.StepEmpresa: {
		inText: {to(session.StepMarModalidad, session.StepAereoSubtipo, session.StepOrigen, session.StepStart), setCompany},
	},
	session.StepMarModalidad: {
		inLCL:  {to(session.StepOrigen), chooseLCL},
		inFCL:  {to(session.StepMarEquipo), chooseFCL},
		inBack: {to(session.StepStart), goHome},
	},
	session.StepMarEquipo: {
		inEquip20:   {to(session.StepOrigen), chooseEquipment("FCL 20")},
		inEquip40:   {to(session.StepOrigen), chooseEquipment("FCL 40")},
		inEquip40HC: {to(session.StepOrigen), chooseEquipment("FCL 40 HC")},
		inBack:      {to(session.StepStart), goHome},
	},
	session.StepAereoSubtipo: {
		inCargo:   {to(session.StepOrigen), chooseCargo},
		inCourier: {to(session.StepPais), chooseCourier},
		inBack:    {to(session.StepStart), goHome},
	},
	session.StepOrigen: {
		inText: {to(session.StepPeso, session.StepDone, session.StepOrigen), setOrigin},
	},
	session.StepPeso: {
		inText: {to(session.StepPesoVol), setWeight},
	},
	session.StepPesoVol: {
		inText: {to(session.StepDone, session.StepPesoVol), setVolume},
	},
	session.StepPais: {
		inText: {to(session.StepPesoCourier), setCountry},
	},
	session.StepPesoCourier: {
		inText: {to(session.StepDone, session.StepPesoCourier), setCourierWeight},
	},
}

func to(steps ...session.Step) []session.Step { return steps }

func showMenu(c *Controller, _ context.Context, s *session.Session, _ Input) (session.Step, []Reply, error) {
	return session.StepStart, c.menu(), nil
}

func goHome(c *Controller, _ context.Context, s *session.Session, _ Input) (session.Step, []Reply, error) {
	s.Reset()
	return session.StepStart, c.menu(), nil
}

func chooseMode(mode rate.Mode) action {
	return func(c *Controller, _ context.Context, s *session.Session, _ Input) (session.Step, []Reply, error) {
		s.Data = session.Data{Tipo: string(mode)}
		return session.StepEmpresa, []Reply{text(promptCompany)}, nil
	}
}

func setCompany(c *Controller, _ context.Context, s *session.Session, in Input) (session.Step, []Reply, error) {
	s.Data.Empresa = strings.TrimSpace(in.Text)
	switch rate.Mode(s.Data.Tipo) {
	case rate.ModeSea:
		return session.StepMarModalidad, []Reply{seaMenu()}, nil
	case rate.ModeAir:
		return session.StepAereoSubtipo, []Reply{airMenu()}, nil
	case rate.ModeLand:
		return session.StepOrigen, []Reply{text(promptOriginSurface)}, nil
	}
	// A session without a mode cannot continue; start over.
	s.Reset()
	return session.StepStart, c.menu(), nil
}

func chooseLCL(c *Controller, _ context.Context, s *session.Session, _ Input) (session.Step, []Reply, error) {
	s.Data.Modalidad = "LCL"
	return session.StepOrigen, []Reply{text(promptOriginSurface)}, nil
}

func chooseFCL(c *Controller, _ context.Context, s *session.Session, _ Input) (session.Step, []Reply, error) {
	return session.StepMarEquipo, []Reply{equipmentMenu()}, nil
}

func chooseEquipment(modality string) action {
	return func(c *Controller, _ context.Context, s *session.Session, _ Input) (session.Step, []Reply, error) {
		s.Data.Modalidad = modality
		return session.StepOrigen, []Reply{text(promptOriginSurface)}, nil
	}
}

func chooseCargo(c *Controller, _ context.Context, s *session.Session, _ Input) (session.Step, []Reply, error) {
	s.Data.Subtipo = subtipoCargo
	return session.StepOrigen, []Reply{text(promptOriginAir)}, nil
}

func chooseCourier(c *Controller, _ context.Context, s *session.Session, _ Input) (session.Step, []Reply, error) {
	s.Data.Subtipo = subtipoCourier
	return session.StepPais, []Reply{text(promptCountry)}, nil
}

func setOrigin(c *Controller, ctx context.Context, s *session.Session, in Input) (session.Step, []Reply, error) {
	s.Data.Origen = strings.TrimSpace(in.Text)
	mode := rate.Mode(s.Data.Tipo)
	if mode == rate.ModeAir {
		return session.StepPeso, []Reply{text(promptWeight)}, nil
	}
	q, err := c.quote(ctx, mode, rate.Request{Origin: s.Data.Origen, Modality: s.Data.Modalidad})
	if err != nil {
		return session.StepOrigen, []Reply{text(msgUnavailable)}, err
	}
	if q == nil {
		return session.StepOrigen, []Reply{text(notFound(s.Data.Origen))}, nil
	}
	return c.deliver(ctx, s, q)
}

func setWeight(c *Controller, _ context.Context, s *session.Session, in Input) (session.Step, []Reply, error) {
	s.Data.Kg = float64(parseWhole(in.Text))
	return session.StepPesoVol, []Reply{text(promptVolume)}, nil
}

func setVolume(c *Controller, ctx context.Context, s *session.Session, in Input) (session.Step, []Reply, error) {
	s.Data.Vol = parseDecimal(in.Text)
	q, err := c.quote(ctx, rate.ModeAir, rate.Request{Origin: s.Data.Origen, Kg: s.Data.Kg, VolKg: s.Data.Vol})
	if err != nil {
		return session.StepPesoVol, []Reply{text(msgUnavailable)}, err
	}
	if q == nil {
		return session.StepPesoVol, []Reply{text(notFound(s.Data.Origen))}, nil
	}
	return c.deliver(ctx, s, q)
}

func setCountry(c *Controller, _ context.Context, s *session.Session, in Input) (session.Step, []Reply, error) {
	s.Data.Pais = strings.TrimSpace(in.Text)
	return session.StepPesoCourier, []Reply{text(promptCourierWeight)}, nil
}

func setCourierWeight(c *Controller, ctx context.Context, s *session.Session, in Input) (session.Step, []Reply, error) {
	s.Data.Kg = parseDecimal(in.Text)
	q, err := c.quote(ctx, rate.ModeCourier, rate.Request{Country: s.Data.Pais, Weight: s.Data.Kg})
	if err != nil {
		return session.StepPesoCourier, []Reply{text(courierFailed(s.Data.Pais, s.Data.Kg))}, err
	}
	if q == nil {
		return session.StepPesoCourier, []Reply{text(courierFailed(s.Data.Pais, s.Data.Kg))}, nil
	}
	return c.deliver(ctx, s, q)
}

var errNoEngine = errors.New("no pricing engine")

func (c *Controller) quote(ctx context.Context, mode rate.Mode, req rate.Request) (*rate.Quote, error) {
	eng := c.engines.ByMode(mode)
	if eng == nil {
		return nil, errNoEngine
	}
	return eng.Quote(ctx, req)
}

// deliver formats a priced quote, records it and ends the conversation.
func (c *Controller) deliver(ctx context.Context, s *session.Session, q *rate.Quote) (session.Step, []Reply, error) {
	msg, rec := c.format(s, q)
	c.record(ctx, rec)
	return session.StepDone, []Reply{text(msg)}, nil
}
