package briefing

import (
	"fmt"
	"strings"
	"time"
)

const researchSystem = `Tu es un moteur de recherche financière. Réponds UNIQUEMENT avec un objet JSON valide, sans texte autour.`

const dataShape = `Format JSON attendu:
{
  "date": "YYYY-MM-DD",
  "summary": "résumé du contexte de marché en 3 à 5 phrases",
  "markets": [{"name": "S&P 500", "value": 0, "change_percent": 0}],
  "headlines": [{"title": "...", "source": "..."}],
  "calendar": [{"time": "HH:MM", "event": "..."}],
  "sources": ["https://..."]
}`

// ComposeSystem is Emma's persona for the prose step.
const ComposeSystem = `Tu es Emma, assistante virtuelle experte en analyse financière institutionnelle pour l'équipe GOB.
Tu rédiges en français, en markdown, avec des titres de section (##), des listes concises et des chiffres précis.
Tu n'inventes aucune donnée: tu utilises uniquement le JSON fourni. Si une donnée manque, écris "Donnée indisponible".
Termine par une section "## Sources".`

var focus = map[Type]string{
	TypeMorning: `Briefing matinal de préouverture: mouvements overnight (Asie, Europe, futures US), courbes de taux US et CA,
devises clés, volatilité (VIX), catalyseurs du jour et calendrier macro et corporate des prochaines 24 heures.`,
	TypeMidday: `Briefing de mi-journée: performance de la séance du matin (indices, secteurs), mouvements significatifs sur titres,
réactions aux publications économiques du matin, perspectives pour l'après-midi.`,
	TypeEvening: `Briefing de clôture: bilan de la séance (indices US et CA, secteurs, taux, devises, matières premières),
titres ayant le plus bougé et pourquoi, résultats publiés après clôture, perspectives pour demain.`,
}

// DefaultPrompt builds the research prompt for a scheduled briefing type.
func DefaultPrompt(t Type, now time.Time, tickers []string) string {
	var b strings.Builder
	b.WriteString(focus[t])
	fmt.Fprintf(&b, "\nDate: %s.", now.Format("2006-01-02"))
	if len(tickers) > 0 {
		fmt.Fprintf(&b, "\nTitres suivis par l'équipe: %s.", strings.Join(tickers, ", "))
	}
	b.WriteString("\n\n")
	b.WriteString(dataShape)
	return b.String()
}

func composePrompt(t Type, data []byte) string {
	return fmt.Sprintf("Rédige le %s à partir de ces données:\n\n%s", strings.ToLower(t.Label()), data)
}

func subject(t Type, now time.Time) string {
	return fmt.Sprintf("%s | %s", t.Label(), now.Format("2006-01-02"))
}
