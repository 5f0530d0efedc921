package briefing

// Design parameterises the HTML email wrapper. Stored overrides are merged
// over DefaultDesign by the email design service.
type Design struct {
	Colors     Colors     `json:"colors"`
	Typography Typography `json:"typography"`
	Header     Header     `json:"header"`
	Footer     Footer     `json:"footer"`
}

type Colors struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
	Text       string `json:"text"`
	Accent     string `json:"accent"`
}

type Typography struct {
	FontFamily string `json:"fontFamily"`
	FontSize   string `json:"fontSize"`
	LineHeight string `json:"lineHeight"`
}

type Header struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	ShowDate bool   `json:"showDate"`
}

type Footer struct {
	Text       string `json:"text"`
	Disclaimer string `json:"disclaimer"`
}

func DefaultDesign() Design {
	return Design{
		Colors: Colors{
			Primary:    "#1e40af",
			Secondary:  "#64748b",
			Background: "#f8fafc",
			Text:       "#0f172a",
			Accent:     "#10b981",
		},
		Typography: Typography{
			FontFamily: "-apple-system, Segoe UI, Roboto, Arial, sans-serif",
			FontSize:   "15px",
			LineHeight: "1.6",
		},
		Header: Header{
			Title:    "Emma | GOB Apps",
			Subtitle: "Votre assistante en analyse financière",
			ShowDate: true,
		},
		Footer: Footer{
			Text:       "Emma, assistante virtuelle de l'équipe GOB",
			Disclaimer: "Ce contenu est fourni à titre informatif seulement et ne constitue pas un conseil financier.",
		},
	}
}
