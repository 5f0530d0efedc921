// Package sms implements Emma's SMS assistant: keyword intent detection,
// per-intent data lookup and SMS-sized replies.
package sms

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Intent string

const (
	IntentAnalyse Intent = "ANALYSE"
	IntentDonnees Intent = "DONNEES"
	IntentResume  Intent = "RESUME"
	IntentCalcul  Intent = "CALCUL"
	IntentSources Intent = "SOURCES"
	IntentAide    Intent = "AIDE"
	IntentUnknown Intent = "UNKNOWN"
)

const (
	CalcLoan      = "loan"
	CalcVariation = "variation"
	CalcRatio     = "ratio"
)

type Entities struct {
	Ticker      string   `json:"ticker,omitempty"`
	Modifier    string   `json:"modifier,omitempty"`
	DataType    string   `json:"dataType,omitempty"`
	Type        string   `json:"type,omitempty"`
	Region      string   `json:"region,omitempty"`
	Query       string   `json:"query,omitempty"`
	Calculation string   `json:"calculationType,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Years       *int     `json:"years,omitempty"`
	Rate        *float64 `json:"rate,omitempty"`
	From        *float64 `json:"from,omitempty"`
	To          *float64 `json:"to,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Earnings    *float64 `json:"earnings,omitempty"`
}

type Detection struct {
	Intent             Intent   `json:"intent"`
	Entities           Entities `json:"entities"`
	Confidence         float64  `json:"confidence"`
	NeedsClarification bool     `json:"needsClarification"`
	Clarification      string   `json:"clarification,omitempty"`
}

type rule struct {
	re *regexp.Regexp
	// calculation kind for CALCUL rules
	kind string
}

type intentRules struct {
	intent Intent
	rules  []rule
}

func r(expr string) rule { return rule{re: regexp.MustCompile(`(?i)` + expr)} }

func calc(expr, kind string) rule {
	return rule{re: regexp.MustCompile(`(?i)` + expr), kind: kind}
}

// Checked in order; the first matching pattern wins.
var intentTable = []intentRules{
	{IntentAnalyse, []rule{
		r(`^(?:analyse|analyser|analysis)\s+(?P<modifier>courte|court|rapide|compl[eè]te?|d[eé]taill[eé]e?)?\s*(?P<ticker>[A-Z]{1,5})`),
		r(`^(?P<ticker>[A-Z]{1,5})\s+(?:analyse|analysis)`),
		r(`^(?:que penses-tu|opinion|avis)\s+(?:de\s+|sur\s+)?(?P<ticker>[A-Z]{1,5})`),
	}},
	{IntentDonnees, []rule{
		r(`^(?:prix|price|cours)\s+(?P<ticker>[A-Z]{1,5})`),
		r(`^(?P<ticker>[A-Z]{1,5})\s+(?:prix|price)`),
		r(`^(?:taux|rate|rates)\s+(?P<type>fed|boc|ecb|inflation|chômage|unemployment)`),
		r(`^(?P<type>inflation|unemployment|gdp|pib)\s*(?P<region>usa|us|canada|ca|europe|eu)?`),
		r(`^(?:volume|volatilité|volatility)\s+(?P<ticker>[A-Z]{1,5})`),
	}},
	{IntentResume, []rule{
		r(`^(?:résumé|resume|summary|recherche)\s*:?\s*(?P<query>.+)`),
		r(`^(?:perplexity|search|rechercher)\s*:?\s*(?P<query>.+)`),
		r(`^(?:explique|explain|c'est quoi)\s+(?P<query>.+)`),
	}},
	{IntentCalcul, []rule{
		calc(`^(?:calcul|calculate)\s+(?:prêt|pret|loan|mortgage)\s+(?P<amount>[\d.]+)\s*(?P<k>k)?\s+(?P<years>\d+)\s*(?:ans|years?)\s+(?P<rate>[\d.]+)\s*%?`, CalcLoan),
		calc(`^(?:variation|change)\s*%?\s+(?P<from>[\d.]+)\s+(?P<to>[\d.]+)`, CalcVariation),
		calc(`^(?:ratio|pe|p/e)\s+(?P<price>[\d.]+)\s+(?P<earnings>[\d.]+)`, CalcRatio),
	}},
	{IntentSources, []rule{
		r(`^sources?\s*\??$`),
		r(`^(?:d'où|d ou|provenance|origine)\s+(?:viennent?|vient)\s+`),
		r(`^(?:quelles?)\s+(?:est la |sont les )?source`),
	}},
	{IntentAide, []rule{
		r(`^(?:aide|help|menu|commandes?|commands?)\s*\??$`),
		r(`^\?+$`),
		r(`^(?:comment|how)\s+(?:ça marche|does it work)`),
	}},
}

var tickerRe = regexp.MustCompile(`^[A-Z]{1,5}$`)

const (
	msgEmpty          = "Message vide. Envoyez 'Aide' pour voir les commandes."
	msgMissingTicker  = "Quel ticker voulez-vous analyser ? (ex: Analyse AAPL)"
	msgDataTicker     = "Quel ticker ? (ex: Prix AAPL)"
	msgMissingQuery   = "Que voulez-vous rechercher ? (ex: Résumé: dette Canada)"
	msgMissingParams  = "Paramètres manquants. Exemples:\n- Prêt: Calcul prêt 300k 25 ans 4.9%\n- Variation: Variation % 120 145"
	invalidTickerTmpl = `Ticker "%s" invalide. Format: 1-5 lettres majuscules (ex: AAPL, BTC).`
)

// HelpMessage lists the supported formats; it is also the reply to unknown input.
const HelpMessage = `Formats supportés:
• Analyse X (ex: Analyse AAPL)
• Prix X (ex: Prix BTC)
• Résumé: sujet (ex: Résumé: IA)
• Calcul prêt A B C (ex: Calcul prêt 300k 25 ans 4.9%)
• Source ?
• Aide`

// DetectIntent classifies message without calling any model.
func DetectIntent(message string) Detection {
	text := strings.TrimSpace(message)
	if text == "" {
		return Detection{Intent: IntentUnknown, NeedsClarification: true, Clarification: msgEmpty}
	}

	for _, ir := range intentTable {
		for _, rl := range ir.rules {
			m := rl.re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			ent := extract(ir.intent, rl, m)
			if msg, ok := validateEntities(ir.intent, ent); !ok {
				return Detection{Intent: ir.intent, Entities: ent, Confidence: 0.5, NeedsClarification: true, Clarification: msg}
			}
			return Detection{Intent: ir.intent, Entities: ent, Confidence: 1.0}
		}
	}

	return Detection{Intent: IntentUnknown, NeedsClarification: true, Clarification: HelpMessage}
}

func extract(intent Intent, rl rule, m []string) Entities {
	g := func(name string) string {
		if i := rl.re.SubexpIndex(name); i >= 0 && i < len(m) {
			return strings.TrimSpace(m[i])
		}
		return ""
	}

	var e Entities
	switch intent {
	case IntentAnalyse:
		e.Ticker = strings.ToUpper(g("ticker"))
		e.Modifier = strings.ToLower(g("modifier"))
		if e.Modifier == "" {
			e.Modifier = "complete"
		}
	case IntentDonnees:
		e.Ticker = strings.ToUpper(g("ticker"))
		e.Type = strings.ToLower(g("type"))
		e.DataType = dataType(strings.ToLower(m[0]))
		if e.Type != "" {
			e.Region = region(g("region"))
		}
	case IntentResume:
		e.Query = g("query")
	case IntentCalcul:
		e.Calculation = rl.kind
		switch rl.kind {
		case CalcLoan:
			if amount := parseFloat(g("amount")); amount != nil {
				if g("k") != "" {
					*amount *= 1000
				}
				e.Amount = amount
			}
			if y, err := strconv.Atoi(g("years")); err == nil {
				e.Years = &y
			}
			e.Rate = parseFloat(g("rate"))
		case CalcVariation:
			e.From = parseFloat(g("from"))
			e.To = parseFloat(g("to"))
		case CalcRatio:
			e.Price = parseFloat(g("price"))
			e.Earnings = parseFloat(g("earnings"))
		}
	}
	return e
}

func dataType(text string) string {
	switch {
	case strings.Contains(text, "prix"), strings.Contains(text, "price"), strings.Contains(text, "cours"):
		return "price"
	case strings.Contains(text, "taux"), strings.Contains(text, "rate"):
		return "rate"
	case strings.Contains(text, "inflation"):
		return "inflation"
	case strings.Contains(text, "chômage"), strings.Contains(text, "unemployment"):
		return "unemployment"
	case strings.Contains(text, "volume"):
		return "volume"
	case strings.Contains(text, "volatilité"), strings.Contains(text, "volatility"):
		return "volatility"
	case strings.Contains(text, "gdp"), strings.Contains(text, "pib"):
		return "gdp"
	default:
		return "unknown"
	}
}

func region(raw string) string {
	switch strings.ToLower(raw) {
	case "ca", "canada":
		return "CA"
	case "eu", "europe":
		return "EU"
	default:
		return "US"
	}
}

func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func positive(v *float64) bool { return v != nil && *v != 0 }

func validateEntities(intent Intent, e Entities) (string, bool) {
	switch intent {
	case IntentAnalyse:
		if e.Ticker == "" {
			return msgMissingTicker, false
		}
		if !tickerRe.MatchString(e.Ticker) {
			return fmt.Sprintf(invalidTickerTmpl, e.Ticker), false
		}
	case IntentDonnees:
		if e.Ticker == "" && e.Type == "" {
			return msgDataTicker, false
		}
		if e.Ticker != "" && !tickerRe.MatchString(e.Ticker) {
			return fmt.Sprintf(invalidTickerTmpl, e.Ticker), false
		}
	case IntentResume:
		if len([]rune(e.Query)) < 3 {
			return msgMissingQuery, false
		}
	case IntentCalcul:
		switch e.Calculation {
		case CalcLoan:
			if !positive(e.Amount) || e.Years == nil || *e.Years == 0 || !positive(e.Rate) {
				return msgMissingParams, false
			}
		case CalcVariation:
			if !positive(e.From) || !positive(e.To) {
				return msgMissingParams, false
			}
		}
	}
	return "", true
}
