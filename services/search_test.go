package services

import (
	"testing"

	"lablinc/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeInput(t *testing.T) {
	assert.Equal(t, "spectrometre", normalizeInput("  Spectromètre "))
}

func TestCalculateSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, calculateSimilarity("", ""))
	assert.Equal(t, 1.0, calculateSimilarity("xrd", "xrd"))
	assert.Less(t, calculateSimilarity("xrd", "hplc"), 0.5)
}

func TestRankInstruments(t *testing.T) {
	instruments := []models.Instrument{
		{ID: 1, Name: "Tensile Tester", Category: "Mechanical", City: "Chennai"},
		{ID: 2, Name: "Raman Spectrometer", Category: "Spectroscopy", City: "Pune"},
		{ID: 3, Name: "UV-Vis Spectrometer", Category: "Spectroscopy", City: "Chennai", Manufacturer: "Shimadzu"},
	}

	ranked := rankInstruments("spectrometer chennai", instruments)
	if assert.Len(t, ranked, 3) {
		assert.Equal(t, uint(3), ranked[0].ID)
	}

	assert.Empty(t, rankInstruments("zzzz", instruments))
	assert.Len(t, rankInstruments("   ", instruments), 3)
}
