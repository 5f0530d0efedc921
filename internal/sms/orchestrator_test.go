package sms

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gobapps/gob-api/internal/llm"
	"github.com/gobapps/gob-api/internal/types"
)

func f64(v float64) *float64 { return &v }

type fakeCache struct {
	rows []types.TickerMarketCacheRow
	err  error
}

func (f fakeCache) GetTickerRows(ctx context.Context, tickers []string) ([]types.TickerMarketCacheRow, error) {
	return f.rows, f.err
}

type fakeResearch struct {
	content string
	err     error
	query   string
}

func (f *fakeResearch) Complete(ctx context.Context, system, user string, opts llm.Options) (*llm.Completion, error) {
	f.query = user
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Content: f.content, Citations: []string{"https://www.bankofcanada.ca"}}, nil
}

type fakeAnalyst struct {
	text     string
	err      error
	deadline bool
}

func (f *fakeAnalyst) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	_, f.deadline = ctx.Deadline()
	return f.text, f.err
}

var aapl = types.TickerMarketCacheRow{
	Ticker:        "AAPL",
	CurrentPrice:  f64(190.5),
	ChangePercent: f64(0.45),
	ChangeAmount:  f64(0.85),
	Volume:        f64(51234000),
	PERatio:       f64(29.1),
	UpdatedAt:     time.Date(2026, 10, 15, 14, 0, 0, 0, time.UTC),
	ExpiresAt:     time.Date(2026, 10, 15, 15, 0, 0, 0, time.UTC),
}

func TestProcessPrice(t *testing.T) {
	o := NewOrchestrator(fakeCache{rows: []types.TickerMarketCacheRow{aapl}}, nil, nil)

	reply := o.Process(context.Background(), "Prix AAPL", Conversation{})
	assert.True(t, reply.Success)
	assert.Contains(t, reply.Response, "AAPL: 190.50 $ (+0.45%, +0.85 $)")
	assert.True(t, strings.HasSuffix(reply.Response, "Source: FMP"))
	assert.Equal(t, IntentDonnees, reply.Metadata.Intent)
	assert.Equal(t, "FMP", reply.Metadata.Source)
	assert.Equal(t, []string{reply.Response}, reply.Segments)
}

func TestProcessPriceMissingRowIsFriendly(t *testing.T) {
	o := NewOrchestrator(fakeCache{}, nil, nil)

	reply := o.Process(context.Background(), "Prix ZZZZ", Conversation{})
	assert.False(t, reply.Success)
	assert.Equal(t, "Désolé, données non disponibles. Réessayez plus tard.", reply.Response)
	assert.NotEmpty(t, reply.Metadata.Error)
}

func TestProcessAnalyseUsesTimeout(t *testing.T) {
	analyst := &fakeAnalyst{text: "AAPL progresse de 0,45% à 190,50 $."}
	o := NewOrchestrator(fakeCache{rows: []types.TickerMarketCacheRow{aapl}}, nil, analyst)

	reply := o.Process(context.Background(), "Analyse AAPL", Conversation{})
	assert.True(t, reply.Success)
	assert.True(t, analyst.deadline)
	assert.Contains(t, reply.Response, "AAPL progresse")
}

func TestProcessAnalyseFailure(t *testing.T) {
	analyst := &fakeAnalyst{err: context.DeadlineExceeded}
	o := NewOrchestrator(fakeCache{rows: []types.TickerMarketCacheRow{aapl}}, nil, analyst)

	reply := o.Process(context.Background(), "Analyse AAPL", Conversation{})
	assert.False(t, reply.Success)
	assert.Equal(t, "Désolé, impossible d'analyser ce ticker pour le moment. Réessayez plus tard.", reply.Response)
}

func TestProcessEconomicQueryGoesToResearch(t *testing.T) {
	research := &fakeResearch{content: "La Banque du Canada maintient son taux à 2,75%."}
	o := NewOrchestrator(fakeCache{}, research, nil)

	reply := o.Process(context.Background(), "Taux BoC", Conversation{})
	assert.True(t, reply.Success)
	assert.Contains(t, research.query, "Banque du Canada")
	assert.Equal(t, "Perplexity", reply.Metadata.Source)
	assert.Equal(t, []string{"https://www.bankofcanada.ca"}, reply.Metadata.Sources)
}

func TestProcessResumeFailure(t *testing.T) {
	o := NewOrchestrator(fakeCache{}, &fakeResearch{err: errors.New("429")}, nil)

	reply := o.Process(context.Background(), "Résumé: dette Canada", Conversation{})
	assert.Equal(t, "Désolé, recherche échouée. Réessayez plus tard.", reply.Response)
}

func TestProcessCalculations(t *testing.T) {
	o := NewOrchestrator(fakeCache{}, nil, nil)

	loan := o.Process(context.Background(), "Calcul prêt 300k 25 ans 4.9%", Conversation{})
	assert.True(t, loan.Success)
	assert.Contains(t, loan.Response, "Paiement mensuel: 1736.")
	assert.Contains(t, loan.Response, "Source: Calculatrice")

	variation := o.Process(context.Background(), "Variation % 120 145", Conversation{})
	assert.Contains(t, variation.Response, "25.00 (20.83%), hausse")

	pe := o.Process(context.Background(), "PE 150 0", Conversation{})
	assert.False(t, pe.Success)
	assert.Equal(t, "Désolé, calcul impossible. Vérifiez vos paramètres.", pe.Response)
}

func TestProcessSourcesAndHelp(t *testing.T) {
	o := NewOrchestrator(fakeCache{}, nil, nil)

	none := o.Process(context.Background(), "Source ?", Conversation{})
	assert.Equal(t, "Aucune source disponible pour le message précédent.", none.Response)

	some := o.Process(context.Background(), "Sources?", Conversation{PreviousSources: []string{"FMP", "Reuters"}})
	assert.Equal(t, "Sources:\n1. FMP\n2. Reuters", some.Response)

	help := o.Process(context.Background(), "Aide", Conversation{})
	assert.Contains(t, help.Response, "Commandes SMS")
}

func TestProcessClarification(t *testing.T) {
	o := NewOrchestrator(fakeCache{}, nil, nil)

	reply := o.Process(context.Background(), "Bonjour", Conversation{})
	assert.True(t, reply.Success)
	assert.True(t, reply.Metadata.NeedsClarification)
	assert.Equal(t, HelpMessage, reply.Response)
}

func TestCalculateLoan(t *testing.T) {
	res, err := CalculateLoan(decimal.NewFromInt(300000), decimal.NewFromFloat(4.9), 25)
	require.NoError(t, err)
	payment, _ := res.MonthlyPayment.Float64()
	assert.InDelta(t, 1736.3, payment, 0.5)
	assert.Equal(t, 300, res.Months)
	assert.True(t, res.TotalInterest.Equal(res.TotalPaid.Sub(res.Principal)))

	zero, err := CalculateLoan(decimal.NewFromInt(1200), decimal.Zero, 1)
	require.NoError(t, err)
	assert.Equal(t, "100.00", zero.MonthlyPayment.StringFixed(2))

	_, err = CalculateLoan(decimal.Zero, decimal.NewFromInt(5), 10)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestCalculateVariationAndPE(t *testing.T) {
	v, err := CalculateVariation(decimal.NewFromInt(200), decimal.NewFromInt(150))
	require.NoError(t, err)
	assert.Equal(t, "-25.00", v.ChangePercent.StringFixed(2))
	assert.Equal(t, "baisse", v.Direction)

	_, err = CalculateVariation(decimal.Zero, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, ErrZeroBase)

	pe, err := CalculatePE(decimal.NewFromInt(150), decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, "15.00", pe.PE.StringFixed(2))
	assert.Equal(t, "Valorisation normale", pe.Interpretation)
}

func TestSegment(t *testing.T) {
	short := strings.Repeat("a", SegmentThreshold)
	assert.Equal(t, []string{short}, Segment(short))

	sentence := "Les marchés progressent légèrement ce matin. "
	long := strings.Repeat(sentence, 100)
	segs := Segment(long)
	require.Greater(t, len(segs), 1)
	for i, s := range segs {
		assert.LessOrEqual(t, utf8.RuneCountInString(s), SegmentLimit)
		assert.True(t, strings.HasPrefix(s, "Partie "), "segment %d", i)
	}
	assert.True(t, strings.HasPrefix(segs[0], "Partie 1/"))
}
