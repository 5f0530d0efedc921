package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/gobapps/gob-api/internal/llm"
	"github.com/gobapps/gob-api/internal/metrics"
	"github.com/gobapps/gob-api/internal/types"
	"github.com/gobapps/gob-api/internal/utils"
)

const AnalysisTimeout = 15 * time.Second

var errNoCachedQuote = errors.New("no cached quote")

type MarketCache interface {
	GetTickerRows(ctx context.Context, tickers []string) ([]types.TickerMarketCacheRow, error)
}

type Researcher interface {
	Complete(ctx context.Context, system, user string, opts llm.Options) (*llm.Completion, error)
}

type Analyst interface {
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Conversation carries what the client remembers from the previous reply.
type Conversation struct {
	PreviousSources []string `json:"previousSources"`
}

type Metadata struct {
	Intent             Intent   `json:"intent"`
	Entities           Entities `json:"entities"`
	NeedsClarification bool     `json:"needsClarification"`
	Source             string   `json:"source,omitempty"`
	Sources            []string `json:"sources,omitempty"`
	LatencyMs          int64    `json:"latencyMs"`
	Error              string   `json:"error,omitempty"`
}

type Reply struct {
	Success  bool     `json:"success"`
	Response string   `json:"response"`
	Segments []string `json:"segments"`
	Metadata Metadata `json:"metadata"`
}

// answer is the text for one intent plus where its facts came from.
type answer struct {
	text    string
	source  string
	sources []string
}

type Orchestrator struct {
	cache    MarketCache
	research Researcher // optional
	analyst  Analyst    // optional
	now      func() time.Time
}

func NewOrchestrator(cache MarketCache, research Researcher, analyst Analyst) *Orchestrator {
	return &Orchestrator{cache: cache, research: research, analyst: analyst, now: time.Now}
}

// Process answers one inbound SMS. It never returns an error: failures turn
// into the friendly message for the detected intent.
func (o *Orchestrator) Process(ctx context.Context, message string, conv Conversation) Reply {
	start := o.now()
	det := DetectIntent(message)
	metrics.SMSIntentsTotal.WithLabelValues(string(det.Intent)).Inc()

	meta := Metadata{Intent: det.Intent, Entities: det.Entities, NeedsClarification: det.NeedsClarification}
	finish := func(success bool, text string) Reply {
		meta.LatencyMs = o.now().Sub(start).Milliseconds()
		return Reply{Success: success, Response: text, Segments: Segment(text), Metadata: meta}
	}

	if det.NeedsClarification {
		return finish(true, det.Clarification)
	}

	ans, err := o.answer(ctx, det, conv)
	if err != nil {
		utils.Zlog.Warn("SMS intent handling failed",
			zap.String("intent", string(det.Intent)),
			zap.Error(err))
		meta.Error = err.Error()
		return finish(false, friendlyError(det.Intent))
	}

	meta.Source = ans.source
	meta.Sources = ans.sources
	text := ans.text
	if ans.source != "" {
		text = fmt.Sprintf("%s\n\nSource: %s", text, ans.source)
	}
	return finish(true, text)
}

func (o *Orchestrator) answer(ctx context.Context, det Detection, conv Conversation) (*answer, error) {
	e := det.Entities
	switch det.Intent {
	case IntentAnalyse:
		return o.analyse(ctx, e)
	case IntentDonnees:
		if e.Ticker != "" {
			return o.quote(ctx, e)
		}
		return o.search(ctx, economicQuery(e.Type, e.Region), 300)
	case IntentResume:
		return o.search(ctx, e.Query, 500)
	case IntentCalcul:
		return calculate(e)
	case IntentSources:
		if len(conv.PreviousSources) == 0 {
			return &answer{text: "Aucune source disponible pour le message précédent."}, nil
		}
		lines := make([]string, len(conv.PreviousSources))
		for i, s := range conv.PreviousSources {
			lines[i] = fmt.Sprintf("%d. %s", i+1, s)
		}
		return &answer{text: "Sources:\n" + strings.Join(lines, "\n"), sources: conv.PreviousSources}, nil
	case IntentAide:
		return &answer{text: menuText}, nil
	default:
		return nil, fmt.Errorf("unsupported intent %s", det.Intent)
	}
}

func (o *Orchestrator) cachedRow(ctx context.Context, ticker string) (*types.TickerMarketCacheRow, error) {
	rows, err := o.cache.GetTickerRows(ctx, []string{ticker})
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if rows[i].Ticker == ticker {
			return &rows[i], nil
		}
	}
	return nil, fmt.Errorf("%w for %s", errNoCachedQuote, ticker)
}

func (o *Orchestrator) analyse(ctx context.Context, e Entities) (*answer, error) {
	row, err := o.cachedRow(ctx, e.Ticker)
	if err != nil {
		return nil, err
	}
	if o.analyst == nil {
		return nil, errors.New("analysis model not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, AnalysisTimeout)
	defer cancel()

	prompt := fmt.Sprintf(`RÈGLES ABSOLUES:
1. Utilise UNIQUEMENT les données fournies ci-dessous
2. JAMAIS inventer de chiffres, prix, ou faits
3. Si donnée manquante, dire "Donnée indisponible"
4. Réponse en français, phrases courtes et claires
5. Maximum 280 caractères

DONNÉES À UTILISER:
%s

TÂCHE:
Résume cette analyse (%s) en 2-3 phrases: prix actuel et variation, indicateur clé (P/E ou autre), contexte bref.`,
		describeRow(row), e.Modifier)

	text, err := o.analyst.GenerateText(ctx, prompt, 300)
	if err != nil {
		return nil, err
	}
	return &answer{text: text, source: "FMP + Gemini"}, nil
}

func (o *Orchestrator) quote(ctx context.Context, e Entities) (*answer, error) {
	row, err := o.cachedRow(ctx, e.Ticker)
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s $", row.Ticker, num(row.CurrentPrice, 2))
	if row.ChangePercent != nil {
		fmt.Fprintf(&b, " (%s%%", signed(*row.ChangePercent))
		if row.ChangeAmount != nil {
			fmt.Fprintf(&b, ", %s $", signed(*row.ChangeAmount))
		}
		b.WriteString(")")
	}
	if e.DataType == "volume" || row.Volume != nil {
		fmt.Fprintf(&b, "\nVolume: %s", num(row.Volume, 0))
	}
	fmt.Fprintf(&b, "\nMaj: %s UTC", row.UpdatedAt.UTC().Format("2006-01-02 15:04"))
	return &answer{text: b.String(), source: "FMP"}, nil
}

func (o *Orchestrator) search(ctx context.Context, query string, maxTokens int64) (*answer, error) {
	if o.research == nil {
		return nil, errors.New("research model not configured")
	}
	system := "Tu es Emma. Réponds en français, en 2-3 phrases courtes, avec les chiffres clés et leur date. Maximum 280 caractères."
	out, err := o.research.Complete(ctx, system, query, llm.Options{Temperature: 0.3, MaxTokens: maxTokens})
	if err != nil {
		return nil, err
	}
	return &answer{text: out.Content, source: "Perplexity", sources: out.Citations}, nil
}

func calculate(e Entities) (*answer, error) {
	switch e.Calculation {
	case CalcLoan:
		res, err := CalculateLoan(decimal.NewFromFloat(*e.Amount), decimal.NewFromFloat(*e.Rate), *e.Years)
		if err != nil {
			return nil, err
		}
		text := fmt.Sprintf("Prêt %s $ sur %d ans à %s%%:\nPaiement mensuel: %s $\nTotal intérêts: %s $",
			res.Principal.StringFixed(0), *e.Years, res.AnnualRate.String(),
			res.MonthlyPayment.StringFixed(2), res.TotalInterest.StringFixed(2))
		return &answer{text: text, source: "Calculatrice"}, nil
	case CalcVariation:
		res, err := CalculateVariation(decimal.NewFromFloat(*e.From), decimal.NewFromFloat(*e.To))
		if err != nil {
			return nil, err
		}
		text := fmt.Sprintf("Variation de %s à %s: %s (%s%%), %s",
			res.From.String(), res.To.String(), res.Change.StringFixed(2), res.ChangePercent.StringFixed(2), res.Direction)
		return &answer{text: text, source: "Calculatrice"}, nil
	case CalcRatio:
		if e.Price == nil || e.Earnings == nil {
			return nil, errors.New("price and earnings required")
		}
		res, err := CalculatePE(decimal.NewFromFloat(*e.Price), decimal.NewFromFloat(*e.Earnings))
		if err != nil {
			return nil, err
		}
		text := fmt.Sprintf("Ratio P/E: %s\n%s", res.PE.StringFixed(2), res.Interpretation)
		return &answer{text: text, source: "Calculatrice"}, nil
	default:
		return nil, fmt.Errorf("unknown calculation %q", e.Calculation)
	}
}

func economicQuery(kind, region string) string {
	name := map[string]string{"US": "États-Unis", "CA": "Canada"}[region]
	if name == "" {
		name = "Europe"
	}
	switch kind {
	case "fed":
		return "Taux directeur actuel de la Fed (Federal Reserve). Valeur en %, date de dernière modification."
	case "boc":
		return "Taux directeur actuel de la Banque du Canada. Valeur en %, date."
	case "ecb":
		return "Taux directeur actuel de la Banque centrale européenne. Valeur en %, date."
	case "inflation":
		return fmt.Sprintf("Taux d'inflation actuel %s. Valeur en %%, date des données.", name)
	case "unemployment", "chômage":
		return fmt.Sprintf("Taux de chômage actuel %s. Valeur en %%, date.", name)
	default:
		return fmt.Sprintf("Donnée économique: %s pour %s", kind, name)
	}
}

func describeRow(r *types.TickerMarketCacheRow) string {
	return fmt.Sprintf("Ticker: %s\nPrix: %s $\nVariation: %s%%\nP/E: %s\nP/B: %s\nRendement dividende: %s\nCapitalisation: %s",
		r.Ticker, num(r.CurrentPrice, 2), num(r.ChangePercent, 2), num(r.PERatio, 2),
		num(r.PBVRatio, 2), num(r.DividendYield, 4), num(r.MarketCap, 0))
}

func num(v *float64, places int32) string {
	if v == nil {
		return "N/A"
	}
	return decimal.NewFromFloat(*v).StringFixed(places)
}

func signed(v float64) string {
	d := decimal.NewFromFloat(v).StringFixed(2)
	if v > 0 {
		return "+" + d
	}
	return d
}

const menuText = `Commandes SMS:
• Analyse X
• Prix X
• Résumé: sujet
• Calcul prêt A B C
• Source ?

X = ticker (ex: AAPL)`

func friendlyError(intent Intent) string {
	switch intent {
	case IntentAnalyse:
		return "Désolé, impossible d'analyser ce ticker pour le moment. Réessayez plus tard."
	case IntentDonnees:
		return "Désolé, données non disponibles. Réessayez plus tard."
	case IntentResume:
		return "Désolé, recherche échouée. Réessayez plus tard."
	case IntentCalcul:
		return "Désolé, calcul impossible. Vérifiez vos paramètres."
	case IntentSources:
		return "Aucune source disponible pour le message précédent."
	case IntentAide:
		return "Erreur système. Contactez support."
	default:
		return "Erreur système. Réessayez plus tard."
	}
}
