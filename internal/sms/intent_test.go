package sms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		input   string
		intent  Intent
		clarify bool
	}{
		{"Analyse AAPL", IntentAnalyse, false},
		{"analyse courte BTC", IntentAnalyse, false},
		{"TSLA analyse", IntentAnalyse, false},
		{"Avis sur NVDA", IntentAnalyse, false},
		{"Prix AAPL", IntentDonnees, false},
		{"AAPL prix", IntentDonnees, false},
		{"Taux Fed", IntentDonnees, false},
		{"Inflation US", IntentDonnees, false},
		{"Volume BTC", IntentDonnees, false},
		{"Résumé Perplexity: dette Canada", IntentResume, false},
		{"Explique les obligations", IntentResume, false},
		{"Résumé: IA", IntentResume, true},
		{"Calcul prêt 300k 25 ans 4.9%", IntentCalcul, false},
		{"Variation % 120 145", IntentCalcul, false},
		{"PE 150 10", IntentCalcul, false},
		{"Calcul prêt 0k 25 ans 4.9%", IntentCalcul, true},
		{"Source ?", IntentSources, false},
		{"Sources?", IntentSources, false},
		{"Aide", IntentAide, false},
		{"?", IntentAide, false},
		{"Bonjour Emma", IntentUnknown, true},
		{"   ", IntentUnknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := DetectIntent(tt.input)
			assert.Equal(t, tt.intent, got.Intent)
			assert.Equal(t, tt.clarify, got.NeedsClarification)
			if tt.clarify {
				assert.NotEmpty(t, got.Clarification)
			}
		})
	}
}

func TestDetectIntentEntities(t *testing.T) {
	d := DetectIntent("analyse courte btc")
	assert.Equal(t, "BTC", d.Entities.Ticker)
	assert.Equal(t, "courte", d.Entities.Modifier)

	d = DetectIntent("Analyse AAPL")
	assert.Equal(t, "complete", d.Entities.Modifier)

	d = DetectIntent("Calcul prêt 300k 25 ans 4.9%")
	require.NotNil(t, d.Entities.Amount)
	assert.Equal(t, 300000.0, *d.Entities.Amount)
	require.NotNil(t, d.Entities.Years)
	assert.Equal(t, 25, *d.Entities.Years)
	assert.Equal(t, 4.9, *d.Entities.Rate)
	assert.Equal(t, CalcLoan, d.Entities.Calculation)

	d = DetectIntent("Calcul pret 250000 20 ans 5%")
	require.NotNil(t, d.Entities.Amount)
	assert.Equal(t, 250000.0, *d.Entities.Amount)

	d = DetectIntent("Inflation Canada")
	assert.Equal(t, "inflation", d.Entities.Type)
	assert.Equal(t, "CA", d.Entities.Region)

	d = DetectIntent("Taux BoC")
	assert.Equal(t, "boc", d.Entities.Type)
	assert.Equal(t, "rate", d.Entities.DataType)

	d = DetectIntent("Prix aapl")
	assert.Equal(t, "AAPL", d.Entities.Ticker)
	assert.Equal(t, "price", d.Entities.DataType)
}

func TestUnknownIntentGetsHelp(t *testing.T) {
	d := DetectIntent("Quelle heure est-il")
	assert.Equal(t, IntentUnknown, d.Intent)
	assert.Equal(t, HelpMessage, d.Clarification)
}
