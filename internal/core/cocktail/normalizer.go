package cocktail

import (
	"fmt"
	"strings"

	"mixologist/internal/core/cocktaildb"
	"mixologist/internal/pkg/common"
)

// MaxIngredientSlots TheCocktailDB 每筆紀錄最多 15 組材料/份量欄位
const MaxIngredientSlots = 15

// 外部來源沒有提供的欄位使用固定預設值
const (
	DefaultColor        = "#D0BCFF"
	DefaultCategory     = "API Collection"
	DefaultABV          = "Varies"
	DefaultPairing      = "Ask a sommelier"
	DefaultStraining    = "N/A"
	DefaultGarnish      = "As per method"
	DefaultHistory      = "Source: TheCocktailDB"
	DefaultCuriosity    = "Popular modern choice"
	PreparationStandard = "Standard"
	PreparationVideo    = "Video tutorial available"
)

// Normalize 將 TheCocktailDB 紀錄轉為標準酒譜；純函式，缺欄位不會失敗
func Normalize(drink cocktaildb.Drink) common.CocktailProfile {
	ingredients := make([]common.Ingredient, 0, MaxIngredientSlots)
	for i := 1; i <= MaxIngredientSlots; i++ {
		name := strings.TrimSpace(drink.String(fmt.Sprintf("strIngredient%d", i)))
		if name == "" {
			continue
		}
		ingredients = append(ingredients, common.Ingredient{
			Name:   name,
			Amount: strings.TrimSpace(drink.String(fmt.Sprintf("strMeasure%d", i))),
		})
	}

	category := drink.String("strCategory")
	if category == "" {
		category = DefaultCategory
	}

	preparation := PreparationStandard
	if drink.String("strVideo") != "" {
		preparation = PreparationVideo
	}

	curiosity := drink.String("strIBA")
	if curiosity == "" {
		curiosity = DefaultCuriosity
	}

	return common.CocktailProfile{
		Name:               strings.TrimSpace(drink.Name()),
		IBAClassification:  category,
		PreparationType:    preparation,
		Glassware:          drink.String("strGlass"),
		StrainingTechnique: DefaultStraining,
		Garnish:            DefaultGarnish,
		Ingredients:        ingredients,
		Method:             drink.String("strInstructions"),
		History:            DefaultHistory,
		Curiosity:          curiosity,
		Color:              DefaultColor,
		ImageURL:           drink.Thumb(),
		Difficulty:         common.DifficultyMedium,
		ABV:                DefaultABV,
		Pairing:            DefaultPairing,
		Categories:         []string{category},
		Tags:               []string{},
	}
}
