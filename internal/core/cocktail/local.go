package cocktail

import (
	_ "embed"
	"fmt"
	"strings"

	"mixologist/internal/pkg/common"

	"gopkg.in/yaml.v3"
)

//go:embed data/cocktails.yaml
var embeddedDataset []byte

// LocalDataset 隨程式打包的精選酒譜，唯讀
type LocalDataset struct {
	profiles []common.CocktailProfile
}

// NewLocalDataset 從 YAML 載入資料集
func NewLocalDataset(data []byte) (*LocalDataset, error) {
	var profiles []common.CocktailProfile
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse local dataset: %w", err)
	}

	for i := range profiles {
		if !profiles[i].IsComplete() {
			return nil, fmt.Errorf("local dataset entry %d (%q) has no name or ingredients", i, profiles[i].Name)
		}
		profiles[i].Difficulty = common.ParseDifficulty(string(profiles[i].Difficulty))
		if profiles[i].Tags == nil {
			profiles[i].Tags = []string{}
		}
		if profiles[i].Categories == nil {
			profiles[i].Categories = []string{}
		}
	}

	return &LocalDataset{profiles: profiles}, nil
}

// DefaultLocalDataset 載入內建資料集
func DefaultLocalDataset() (*LocalDataset, error) {
	return NewLocalDataset(embeddedDataset)
}

// Len 資料筆數
func (d *LocalDataset) Len() int {
	return len(d.profiles)
}

// Match 依模式做不分大小寫的子字串比對，保留資料集順序
func (d *LocalDataset) Match(query string, mode common.SearchMode) []common.CocktailProfile {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var matches []common.CocktailProfile
	for _, p := range d.profiles {
		var ok bool
		if mode == common.SearchByIngredient {
			ok = p.HasIngredient(q)
		} else {
			ok = strings.Contains(strings.ToLower(p.Name), q)
		}
		if ok {
			matches = append(matches, p.Clone())
		}
	}
	return matches
}
