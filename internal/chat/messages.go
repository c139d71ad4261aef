package chat

import (
	"fmt"
	"strconv"
	"strings"

	"freightquote/internal/quotelog"
	"freightquote/internal/rate"
	"freightquote/internal/session"
	"freightquote/internal/whatsapp"
)

const (
	msgWelcome          = "¡Hola! Soy el asistente de cotizaciones. ¿Qué tipo de envío querés cotizar?"
	promptCompany       = "¿A nombre de qué empresa cotizamos?"
	promptSeaModality   = "Elegí la modalidad marítima:"
	promptEquipment     = "Elegí el contenedor:"
	promptAirSubtype    = "¿Carga aérea o courier?"
	promptOriginSurface = "¿Desde qué ciudad o puerto sale la carga?"
	promptOriginAir     = "¿Desde qué ciudad o aeropuerto (código IATA) sale la carga?"
	promptWeight        = "Indicá el peso bruto en kg."
	promptVolume        = "Indicá el peso volumétrico en kg (0 si no lo sabés)."
	promptCountry       = "¿Desde qué país se envía el paquete?"
	promptCourierWeight = "Indicá el peso del paquete en kg (por ejemplo 2.5)."
	msgUnavailable      = "No pudimos consultar las tarifas en este momento. Probá de nuevo en unos minutos."
	msgDisclaimer       = "No incluye impuestos ni gastos locales."
)

func text(s string) Reply { return Reply{Kind: ReplyText, Text: s} }

func buttons(body string, bs ...whatsapp.Button) Reply {
	return Reply{Kind: ReplyButtons, Text: body, Buttons: bs}
}

func button(k inputClass, title string) whatsapp.Button {
	return whatsapp.Button{ID: k.String(), Title: title}
}

// menu is the mode menu, preceded by the welcome image when one is set.
func (c *Controller) menu() []Reply {
	var out []Reply
	if c.opts.WelcomeImageURL != "" {
		out = append(out, Reply{Kind: ReplyImage, ImageURL: c.opts.WelcomeImageURL, Text: msgWelcome})
	}
	body := msgWelcome
	if len(out) > 0 {
		body = "Elegí una opción:"
	}
	return append(out, buttons(body,
		button(inModeSea, "Marítimo"),
		button(inModeAir, "Aéreo"),
		button(inModeLand, "Terrestre"),
	))
}

func seaMenu() Reply {
	return buttons(promptSeaModality,
		button(inLCL, "LCL"),
		button(inFCL, "FCL"),
		button(inBack, "Volver"),
	)
}

// equipmentMenu has no back button; the three slots go to container sizes.
func equipmentMenu() Reply {
	return buttons(promptEquipment,
		button(inEquip20, "20'"),
		button(inEquip40, "40'"),
		button(inEquip40HC, "40' HC"),
	)
}

func airMenu() Reply {
	return buttons(promptAirSubtype,
		button(inCargo, "Carga"),
		button(inCourier, "Courier"),
		button(inBack, "Volver"),
	)
}

func notFound(origin string) string {
	return fmt.Sprintf("No encontramos una tarifa desde %q. Probá escribiendo el origen tal como figura en el tarifario (ciudad o código).", origin)
}

func courierFailed(country string, kg float64) string {
	return fmt.Sprintf("No pudimos cotizar el courier desde %s para %s kg. Revisá el país y el peso e intentá de nuevo.", country, weight(kg))
}

func weight(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// format renders the quote message and the matching log record.
func (c *Controller) format(s *session.Session, q *rate.Quote) (string, quotelog.Record) {
	d := s.Data
	rec := quotelog.Record{
		Timestamp:   c.opts.Now(),
		UserID:      s.UserID,
		Company:     d.Empresa,
		Mode:        q.Mode,
		Origin:      q.Origin,
		Destination: q.Destination,
		Total:       q.Total,
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cotización para %s\n", d.Empresa)
	switch q.Mode {
	case rate.ModeAir:
		rec.Weight = strconv.Itoa(int(d.Kg))
		rec.Volume = weight(d.Vol)
		rec.Modality = d.Subtipo
		fmt.Fprintf(&b, "Aéreo %s → %s\n", q.Origin, q.Destination)
		fmt.Fprintf(&b, "Peso facturable: %d kg x USD %s/kg\n", q.BillableKg, rate.FormatAmount(q.UnitPrice))
		if q.MinimumApplied {
			fmt.Fprintf(&b, "Se aplicó el mínimo de %d kg.\n", q.MinimumKg)
		}
		rec.Summary = fmt.Sprintf("Aéreo %s-%s %d kg USD %s", q.Origin, q.Destination, q.BillableKg, rate.FormatAmount(q.Total))
	case rate.ModeCourier:
		rec.Origin = d.Pais
		rec.Destination = c.opts.CourierDestination
		rec.Weight = weight(d.Kg)
		rec.Modality = string(q.Region)
		fmt.Fprintf(&b, "Courier desde %s (%s), %s kg\n", d.Pais, q.Region, weight(d.Kg))
		if q.Adjusted {
			fmt.Fprintf(&b, "Tarifa ajustada al escalón más cercano: %s kg.\n", weight(q.Bracket))
		}
		rec.Summary = fmt.Sprintf("Courier %s %s kg USD %s", d.Pais, weight(d.Kg), rate.FormatAmount(q.Total))
	default:
		label := "Marítimo"
		if q.Mode == rate.ModeLand {
			label = "Terrestre"
		}
		rec.Modality = d.Modalidad
		fmt.Fprintf(&b, "%s %s → %s", label, q.Origin, q.Destination)
		if q.Modality != "" {
			fmt.Fprintf(&b, " (%s)", q.Modality)
		}
		b.WriteString("\n")
		rec.Summary = strings.TrimSpace(fmt.Sprintf("%s %s-%s %s USD %s", label, q.Origin, q.Destination, d.Modalidad, rate.FormatAmount(q.Total)))
	}
	fmt.Fprintf(&b, "Total: USD %s\n", rate.FormatAmount(q.Total))
	fmt.Fprintf(&b, "Validez: %d días. %s", c.opts.ValidityDays, msgDisclaimer)
	return b.String(), rec
}
