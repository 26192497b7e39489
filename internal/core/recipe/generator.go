// Package recipe 以生成式 AI 產生找不到的酒譜
package recipe

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"mixologist/internal/core/ai/cache"
	"mixologist/internal/core/ai/provider"
	"mixologist/internal/core/ai/service"
	"mixologist/internal/pkg/common"

	"go.uber.org/zap"
)

// 生成結果缺欄位時的預設值
const (
	DefaultColor      = "#D0BCFF"
	DefaultCategory   = "AI Creations"
	DefaultABV        = "Varies"
	DefaultStraining  = "None"
	DefaultPreparing  = "Shaken"
	DefaultGarnish    = "None"
	DefaultGlassware  = "Coupe"
	DefaultPairing    = "Ask a sommelier"
	DefaultHistory    = "An original creation by the house mixologist."
	DefaultCuriosity  = "Generated on demand for your search."
	DefaultIBA        = "Unofficial"
	DefaultMethodHint = "Combine all ingredients and serve."
)

const systemPrompt = "You are a master IBA mixologist. You answer only with a single valid JSON object."

const schemaInstructions = `Respond ONLY with a valid JSON object using exactly this structure:
{
  "name": "Cocktail name",
  "ibaClassification": "string",
  "preparationType": "Stirred | Shaken | Built | Muddled",
  "glassware": "string",
  "strainingTechnique": "Single strain | Double strain | Fine strain | None",
  "garnish": "string",
  "ingredients": [{"name": "string", "amount": "string"}],
  "method": "short instructions",
  "history": "brief historical context",
  "curiosity": "one interesting fact",
  "color": "HEX color string",
  "difficulty": "Easy | Medium | Advanced",
  "abv": "string (e.g. 18%)",
  "pairing": "food pairing suggestion",
  "categories": ["string"],
  "tags": ["string"]
}
In 'strainingTechnique' state clearly whether it is single or double strain based on the classic method.`

// Generator 生成式酒譜備援
type Generator struct {
	ai *service.Service
}

// NewGenerator 創建酒譜生成器
func NewGenerator(ai *service.Service) *Generator {
	return &Generator{ai: ai}
}

// generatedProfile 模型偶爾把 abv 或材料用量回成數字
type generatedProfile struct {
	common.CocktailProfile
	ABV         any                   `json:"abv"`
	Ingredients []generatedIngredient `json:"ingredients"`
}

type generatedIngredient struct {
	Name   string `json:"name"`
	Amount any    `json:"amount"`
}

// BuildPrompt 依搜尋模式產生使用者提示
func BuildPrompt(query string, mode common.SearchMode) string {
	var prompt string
	if mode == common.SearchByIngredient {
		prompt = fmt.Sprintf("Create a detailed and precise technical sheet for a high-quality classic or modern cocktail that uses %q as its main ingredient.", query)
	} else {
		prompt = fmt.Sprintf("Create a detailed and precise technical sheet for the cocktail %q. If it does not exist, invent a plausible variation.", query)
	}
	return prompt + "\n" + schemaInstructions
}

// Generate 呼叫生成式後端產生單一酒譜。
// 輸出無法解析回傳 common.ErrUnparsableOutput，沒有材料回傳 common.ErrIncompleteProfile。
func (g *Generator) Generate(ctx context.Context, query string, mode common.SearchMode) (*common.CocktailProfile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, common.NewValidationError("query is required")
	}

	cacheKey := cache.Key("recipe", string(mode)+":"+common.NameKey(query))

	resp, err := g.ai.ProcessRequest(ctx, cacheKey, &provider.Request{
		Messages: []provider.Message{
			{Role: provider.RoleSystem, Content: systemPrompt},
			{Role: provider.RoleUser, Content: BuildPrompt(query, mode)},
		},
		Temperature: 0.7,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("AI service error: %w", err)
	}

	profile, err := ParseProfile(resp.Content, query, mode)
	if err != nil {
		common.LogDebug("AI 回應無法轉為酒譜",
			zap.String("query", query),
			zap.String("ai_response_preview", common.Truncate(resp.Content, 200)),
			zap.Error(err),
		)
		return nil, err
	}

	if !resp.CacheHit {
		g.ai.Remember(ctx, cacheKey, resp.Content)
	}

	return profile, nil
}

// ParseProfile 從模型回應取出 JSON 物件並補齊缺少的欄位
func ParseProfile(content, query string, mode common.SearchMode) (*common.CocktailProfile, error) {
	raw, ok := common.ExtractJSONObject(content)
	if !ok {
		return nil, common.ErrUnparsableOutput.Wrap(fmt.Errorf("no JSON object in response"))
	}

	var generated generatedProfile
	if err := common.ParseJSON(raw, &generated); err != nil {
		// 部分模型會輸出未加引號的鍵
		if err2 := common.ParseJSON(common.QuoteJSONKeys(raw), &generated); err2 != nil {
			return nil, common.ErrUnparsableOutput.Wrap(err)
		}
	}

	result := generated.CocktailProfile
	result.ABV = formatABV(generated.ABV)

	// 檢查並補充材料
	ingredients := make([]common.Ingredient, 0, len(generated.Ingredients))
	for _, ing := range generated.Ingredients {
		name := strings.TrimSpace(ing.Name)
		if name == "" {
			continue
		}
		ingredients = append(ingredients, common.Ingredient{
			Name:   name,
			Amount: strings.TrimSpace(formatAmount(ing.Amount)),
		})
	}
	if len(ingredients) == 0 {
		return nil, common.ErrIncompleteProfile
	}
	result.Ingredients = ingredients

	// 檢查並補充空值
	result.Name = strings.TrimSpace(result.Name)
	if result.Name == "" {
		if mode == common.SearchByIngredient {
			result.Name = "Signature " + titleCase(query)
		} else {
			result.Name = titleCase(query)
		}
	}
	fillDefault(&result.IBAClassification, DefaultIBA)
	fillDefault(&result.PreparationType, DefaultPreparing)
	fillDefault(&result.Glassware, DefaultGlassware)
	fillDefault(&result.StrainingTechnique, DefaultStraining)
	fillDefault(&result.Garnish, DefaultGarnish)
	fillDefault(&result.Method, DefaultMethodHint)
	fillDefault(&result.History, DefaultHistory)
	fillDefault(&result.Curiosity, DefaultCuriosity)
	fillDefault(&result.Color, DefaultColor)
	fillDefault(&result.ABV, DefaultABV)
	fillDefault(&result.Pairing, DefaultPairing)

	result.Difficulty = common.ParseDifficulty(string(result.Difficulty))
	result.ImageURL = ""
	if len(result.Categories) == 0 {
		result.Categories = []string{DefaultCategory}
	}
	if result.Tags == nil {
		result.Tags = []string{}
	}

	return &result, nil
}

func fillDefault(field *string, value string) {
	v := strings.TrimSpace(*field)
	if v == "" || strings.EqualFold(v, "null") {
		*field = value
		return
	}
	*field = v
}

func formatABV(v any) string {
	switch abv := v.(type) {
	case nil:
		return ""
	case string:
		return abv
	case float64:
		return fmt.Sprintf("%g%%", abv)
	default:
		return fmt.Sprintf("%v", abv)
	}
}

func formatAmount(v any) string {
	switch amount := v.(type) {
	case nil:
		return ""
	case string:
		return amount
	case float64:
		return fmt.Sprintf("%g", amount)
	default:
		return fmt.Sprintf("%v", amount)
	}
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
