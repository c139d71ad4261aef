package chat

import (
	"freightquote/internal/session"
	"freightquote/internal/textnorm"
)

// inputClass is what an inbound message means for the transition table.
type inputClass int

const (
	inText inputClass = iota
	inRestart
	inBack
	inModeSea
	inModeAir
	inModeLand
	inLCL
	inFCL
	inEquip20
	inEquip40
	inEquip40HC
	inCargo
	inCourier
)

var classNames = map[inputClass]string{
	inText:      "text",
	inRestart:   "restart",
	inBack:      "back",
	inModeSea:   "mode_sea",
	inModeAir:   "mode_air",
	inModeLand:  "mode_land",
	inLCL:       "sea_lcl",
	inFCL:       "sea_fcl",
	inEquip20:   "eq_20",
	inEquip40:   "eq_40",
	inEquip40HC: "eq_40hc",
	inCargo:     "air_cargo",
	inCourier:   "air_courier",
}

func (k inputClass) String() string { return classNames[k] }

// Button ids double as class names.
var buttonClasses = func() map[string]inputClass {
	m := make(map[string]inputClass, len(classNames))
	for k, name := range classNames {
		if k != inText && k != inRestart {
			m[name] = k
		}
	}
	return m
}()

// typedAliases lets users type a menu option instead of tapping it.
var typedAliases = map[string]inputClass{
	"volver":    inBack,
	"atras":     inBack,
	"maritimo":  inModeSea,
	"mar":       inModeSea,
	"aereo":     inModeAir,
	"avion":     inModeAir,
	"terrestre": inModeLand,
	"camion":    inModeLand,
	"lcl":       inLCL,
	"fcl":       inFCL,
	"20":        inEquip20,
	"40":        inEquip40,
	"40 hc":     inEquip40HC,
	"40hc":      inEquip40HC,
	"carga":     inCargo,
	"courier":   inCourier,
}

// classify maps an input to a class. Restart keywords win everywhere; typed
// menu options only count where the current step has a rule for them, so a
// company called "Courier" stays free text.
func (c *Controller) classify(step session.Step, in Input) inputClass {
	text := textnorm.Normalize(in.Text)
	if c.restart[text] || in.ButtonID == "restart" {
		return inRestart
	}
	if k, ok := buttonClasses[in.ButtonID]; ok {
		return k
	}
	if k, ok := typedAliases[text]; ok {
		if _, handled := transitions[step][k]; handled {
			return k
		}
	}
	return inText
}
