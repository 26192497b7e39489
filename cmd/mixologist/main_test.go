package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"mixologist/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootHasCommands(t *testing.T) {
	root := newRootCmd()

	names := make([]string, 0)
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "search")
	assert.Contains(t, names, "image")
}

func TestSearchRequiresQuery(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"search"})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})

	assert.Error(t, root.Execute())
}

func TestSearchFlags(t *testing.T) {
	cmd := newSearchCmd()
	for _, name := range []string{"ingredient", "image", "json"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}

	img := newImageCmd()
	for _, name := range []string{"glass", "garnish", "color"} {
		assert.NotNil(t, img.Flags().Lookup(name), name)
	}
}

func TestRenderProfile(t *testing.T) {
	var buf bytes.Buffer
	renderProfile(&buf, 1, common.CocktailProfile{
		Name:              "Negroni",
		IBAClassification: "Unforgettables",
		PreparationType:   "Stirred",
		Glassware:         "Old Fashioned",
		Difficulty:        common.DifficultyEasy,
		ABV:               "24%",
		Ingredients: []common.Ingredient{
			{Name: "Gin", Amount: "30 ml"},
			{Name: "Orange peel"},
		},
		ImageURL: "data:image/jpeg;base64,AAAA",
	})

	out := buf.String()
	assert.Contains(t, out, "1. Negroni [Unforgettables]")
	assert.Contains(t, out, "- Gin: 30 ml")
	assert.Contains(t, out, "- Orange peel\n")
	assert.Contains(t, out, "generated image")
	assert.NotContains(t, out, "base64")
}

func TestWriteJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, nil))

	var got []common.CocktailProfile
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
