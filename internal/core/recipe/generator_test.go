package recipe

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mixologist/internal/core/ai/cache"
	"mixologist/internal/core/ai/provider"
	"mixologist/internal/core/ai/service"
	"mixologist/internal/infrastructure/config"
	"mixologist/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	content string
	err     error
	calls   int
	last    *provider.Request
}

func (f *fakeProvider) Generate(_ context.Context, req *provider.Request) (*provider.Response, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &provider.Response{Content: f.content}, nil
}

func (f *fakeProvider) GetModel() string { return "fake" }
func (f *fakeProvider) GetTimeout() time.Duration { return time.Second }
func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Close() error { return nil }

const negroniJSON = `{"name":"Smoky Negroni","ibaClassification":"Variation","preparationType":"Stirred","glassware":"Rocks","strainingTechnique":"Single strain","garnish":"Orange peel","ingredients":[{"name":"Mezcal","amount":"30 ml"},{"name":"Campari","amount":"30 ml"},{"name":" ","amount":"x"}],"method":"Stir over ice.","history":"A modern twist.","curiosity":"Smoke meets bitter.","color":"#B22222","difficulty":"Médio","abv":24,"pairing":"Olives","categories":["Modern"],"tags":["smoky"]}`

func newGenerator(t *testing.T, p provider.Provider, withCache bool) *Generator {
	t.Helper()
	var cm *cache.CacheManager
	if withCache {
		cm = cache.NewManager(config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
		t.Cleanup(func() { _ = cm.Close() })
	}
	svc, err := service.NewService(p, cm, 500)
	require.NoError(t, err)
	return NewGenerator(svc)
}

func TestGenerateParsesProfile(t *testing.T) {
	p := &fakeProvider{content: "Here you go:\n```json\n" + negroniJSON + "\n```"}
	g := newGenerator(t, p, false)

	profile, err := g.Generate(context.Background(), "smoky negroni", common.SearchByName)
	require.NoError(t, err)

	assert.Equal(t, "Smoky Negroni", profile.Name)
	assert.Len(t, profile.Ingredients, 2)
	assert.Equal(t, common.DifficultyMedium, profile.Difficulty)
	assert.Equal(t, "24%", profile.ABV)
	assert.Empty(t, profile.ImageURL)
	assert.True(t, p.last.JSONMode)
	assert.Equal(t, 500, p.last.MaxTokens)
	assert.Contains(t, p.last.Messages[1].Content, `"smoky negroni"`)
}

func TestGenerateFillsDefaults(t *testing.T) {
	p := &fakeProvider{content: `{"ingredients":[{"name":"Gin","amount":"50 ml"}],"color":"null"}`}
	g := newGenerator(t, p, false)

	profile, err := g.Generate(context.Background(), "blue moon", common.SearchByName)
	require.NoError(t, err)

	assert.Equal(t, "Blue Moon", profile.Name)
	assert.Equal(t, DefaultColor, profile.Color)
	assert.Equal(t, DefaultABV, profile.ABV)
	assert.Equal(t, []string{DefaultCategory}, profile.Categories)
	assert.NotNil(t, profile.Tags)
	assert.Equal(t, common.DifficultyMedium, profile.Difficulty)
}

func TestGenerateIngredientModePrompt(t *testing.T) {
	p := &fakeProvider{content: `{"ingredients":[{"name":"Mezcal"}]}`}
	g := newGenerator(t, p, false)

	profile, err := g.Generate(context.Background(), "mezcal", common.SearchByIngredient)
	require.NoError(t, err)

	assert.Equal(t, "Signature Mezcal", profile.Name)
	assert.Contains(t, p.last.Messages[1].Content, "main ingredient")
}

func TestGenerateUnparsableOutput(t *testing.T) {
	g := newGenerator(t, &fakeProvider{content: "I am sorry, I cannot help with that."}, false)

	_, err := g.Generate(context.Background(), "zzzz", common.SearchByName)
	assert.True(t, errors.Is(err, common.ErrUnparsableOutput))

	g = newGenerator(t, &fakeProvider{content: `{"name": "Broken", "ingredients": [}`}, false)
	_, err = g.Generate(context.Background(), "zzzz", common.SearchByName)
	assert.ErrorIs(t, err, common.ErrUnparsableOutput)
}

func TestGenerateIncompleteProfile(t *testing.T) {
	g := newGenerator(t, &fakeProvider{content: `{"name":"Air","ingredients":[]}`}, false)

	_, err := g.Generate(context.Background(), "air", common.SearchByName)
	assert.ErrorIs(t, err, common.ErrIncompleteProfile)
}

func TestGenerateProviderError(t *testing.T) {
	g := newGenerator(t, &fakeProvider{err: errors.New("quota exceeded")}, false)

	_, err := g.Generate(context.Background(), "negroni", common.SearchByName)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "quota exceeded"))
}

func TestGenerateUsesCache(t *testing.T) {
	p := &fakeProvider{content: negroniJSON}
	g := newGenerator(t, p, true)

	_, err := g.Generate(context.Background(), "Smoky Negroni", common.SearchByName)
	require.NoError(t, err)
	profile, err := g.Generate(context.Background(), "  smoky negroni ", common.SearchByName)
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "Smoky Negroni", profile.Name)

	_, err = g.Generate(context.Background(), "smoky negroni", common.SearchByIngredient)
	require.NoError(t, err)
	assert.Equal(t, 2, p.calls)
}

func TestGenerateDoesNotCacheFailures(t *testing.T) {
	p := &fakeProvider{content: "nope"}
	g := newGenerator(t, p, true)

	_, err := g.Generate(context.Background(), "zzzz", common.SearchByName)
	require.Error(t, err)
	_, err = g.Generate(context.Background(), "zzzz", common.SearchByName)
	require.Error(t, err)

	assert.Equal(t, 2, p.calls)
}

func TestParseProfileQuotesBareKeys(t *testing.T) {
	profile, err := ParseProfile(`{name: "Bare", ingredients: [{name: "Rum", amount: "2 oz"}]}`, "bare", common.SearchByName)
	require.NoError(t, err)
	assert.Equal(t, "Bare", profile.Name)
	assert.Equal(t, "Rum", profile.Ingredients[0].Name)
}

func TestParseProfileNumericAmounts(t *testing.T) {
	profile, err := ParseProfile(`{"name":"Gin Sour","abv":18,"ingredients":[{"name":"Gin","amount":50},{"name":"Lemon juice","amount":"25 ml"},{"name":"Egg white"}]}`, "gin sour", common.SearchByName)
	require.NoError(t, err)

	assert.Equal(t, []common.Ingredient{
		{Name: "Gin", Amount: "50"},
		{Name: "Lemon juice", Amount: "25 ml"},
		{Name: "Egg white"},
	}, profile.Ingredients)
	assert.Equal(t, "18%", profile.ABV)
}
