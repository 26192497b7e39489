package common

import (
	"fmt"
	"strings"
)

// Ingredient 材料
type Ingredient struct {
	Name   string `json:"name" yaml:"name"`
	Amount string `json:"amount" yaml:"amount"`
}

// Difficulty 調製難度
type Difficulty string

const (
	DifficultyEasy     Difficulty = "Easy"
	DifficultyMedium   Difficulty = "Medium"
	DifficultyAdvanced Difficulty = "Advanced"
)

// ParseDifficulty 寬鬆解析難度標籤，無法辨識時回傳 Medium
func ParseDifficulty(label string) Difficulty {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "easy", "fácil", "facil", "簡單", "简单", "容易":
		return DifficultyEasy
	case "advanced", "hard", "avançado", "avancado", "difícil", "進階", "进阶", "困難":
		return DifficultyAdvanced
	default:
		return DifficultyMedium
	}
}

// SearchMode 搜尋模式
type SearchMode string

const (
	SearchByName       SearchMode = "name"
	SearchByIngredient SearchMode = "ingredient"
)

// ParseSearchMode 解析搜尋模式，空字串視為依名稱搜尋
func ParseSearchMode(s string) (SearchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name", "byname":
		return SearchByName, nil
	case "ingredient", "ingredients", "byingredient":
		return SearchByIngredient, nil
	default:
		return "", NewValidationError(fmt.Sprintf("unsupported search mode %q", s))
	}
}

// ProgressFunc 搜尋進度回報，僅供觀察，不影響流程
type ProgressFunc func(status string)

// CocktailProfile 標準化的調酒酒譜
type CocktailProfile struct {
	Name               string       `json:"name" yaml:"name"`
	IBAClassification  string       `json:"ibaClassification" yaml:"ibaClassification"`
	PreparationType    string       `json:"preparationType" yaml:"preparationType"`
	Glassware          string       `json:"glassware" yaml:"glassware"`
	StrainingTechnique string       `json:"strainingTechnique" yaml:"strainingTechnique"`
	Garnish            string       `json:"garnish" yaml:"garnish"`
	Ingredients        []Ingredient `json:"ingredients" yaml:"ingredients"`
	Method             string       `json:"method" yaml:"method"`
	History            string       `json:"history" yaml:"history"`
	Curiosity          string       `json:"curiosity" yaml:"curiosity"`
	Color              string       `json:"color" yaml:"color"`
	ImageURL           string       `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	Difficulty         Difficulty   `json:"difficulty" yaml:"difficulty"`
	ABV                string       `json:"abv" yaml:"abv"`
	Pairing            string       `json:"pairing" yaml:"pairing"`
	Categories         []string     `json:"categories" yaml:"categories"`
	Tags               []string     `json:"tags" yaml:"tags"`
}

// NameKey 去重用的名稱鍵（不分大小寫）
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Key 回傳酒譜的去重鍵
func (p CocktailProfile) Key() string {
	return NameKey(p.Name)
}

// IsComplete 至少要有名稱和一項材料
func (p CocktailProfile) IsComplete() bool {
	return strings.TrimSpace(p.Name) != "" && len(p.Ingredients) > 0
}

// HasIngredient 材料名稱是否包含 term（不分大小寫）
func (p CocktailProfile) HasIngredient(term string) bool {
	term = strings.ToLower(term)
	for _, ing := range p.Ingredients {
		if strings.Contains(strings.ToLower(ing.Name), term) {
			return true
		}
	}
	return false
}

// Clone 深拷貝，收藏保存的是獨立快照
func (p CocktailProfile) Clone() CocktailProfile {
	out := p
	if p.Ingredients != nil {
		out.Ingredients = append([]Ingredient(nil), p.Ingredients...)
	}
	if p.Categories != nil {
		out.Categories = append([]string(nil), p.Categories...)
	}
	if p.Tags != nil {
		out.Tags = append([]string(nil), p.Tags...)
	}
	return out
}

// WithImage 回傳附上圖片的副本
func (p CocktailProfile) WithImage(imageURL string) CocktailProfile {
	out := p.Clone()
	out.ImageURL = imageURL
	return out
}

// FormatIngredients 格式化材料列表
func FormatIngredients(ingredients []Ingredient) string {
	var sb strings.Builder
	for _, ing := range ingredients {
		if ing.Amount != "" {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", ing.Name, ing.Amount))
			continue
		}
		sb.WriteString(fmt.Sprintf("- %s\n", ing.Name))
	}
	return sb.String()
}
