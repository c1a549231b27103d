package services

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/recipeshare/internal/common"
	"github.com/dmitrijs2005/recipeshare/internal/server/models"
)

// RecipeInput is the raw form of a recipe write. The list fields hold the
// JSON arrays exactly as submitted; numeric fields may be blank.
type RecipeInput struct {
	Title       string
	Description string
	ImageURL    string
	PrepMinutes string
	CookMinutes string
	Servings    string
	Difficulty  string
	Ingredients string
	Steps       string
	Nutrition   string
	Tags        string
}

// flexString accepts a JSON string, number or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type ingredientJSON struct {
	Name     flexString `json:"name"`
	Amount   flexString `json:"amount"`
	Optional bool       `json:"optional"`
}

// stepJSON accepts {"content": "..."} or a bare string.
type stepJSON struct {
	Content string `json:"content"`
}

func (s *stepJSON) UnmarshalJSON(b []byte) error {
	var plain string
	if err := json.Unmarshal(b, &plain); err == nil {
		s.Content = plain
		return nil
	}
	type alias stepJSON
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*s = stepJSON(a)
	return nil
}

type nutritionJSON struct {
	Name   flexString `json:"name"`
	Amount flexString `json:"amount"`
	Unit   flexString `json:"unit"`
}

// parse validates every field and builds the parent record and its dependent
// sets. It runs before anything is uploaded.
func (in RecipeInput) parse() (models.Recipe, models.RecipeParts, error) {
	var (
		r     models.Recipe
		parts models.RecipeParts
		err   error
	)

	r.Title = strings.TrimSpace(in.Title)
	if r.Title == "" {
		return r, parts, common.NewError(common.ErrorValidation, common.MsgMissingTitle)
	}
	r.Description = strings.TrimSpace(in.Description)
	r.Difficulty = strings.TrimSpace(in.Difficulty)

	if r.PrepMinutes, err = parseCount("prep_minutes", in.PrepMinutes); err != nil {
		return r, parts, err
	}
	if r.CookMinutes, err = parseCount("cook_minutes", in.CookMinutes); err != nil {
		return r, parts, err
	}
	if r.Servings, err = parseCount("servings", in.Servings); err != nil {
		return r, parts, err
	}

	var ingredients []ingredientJSON
	if err := decodeArray("ingredients", in.Ingredients, &ingredients); err != nil {
		return r, parts, err
	}
	for _, it := range ingredients {
		name := strings.TrimSpace(string(it.Name))
		if name == "" {
			return r, parts, invalidField("ingredients")
		}
		parts.Ingredients = append(parts.Ingredients, models.Ingredient{
			Name: name, Amount: strings.TrimSpace(string(it.Amount)), Optional: it.Optional,
		})
	}

	var steps []stepJSON
	if err := decodeArray("steps", in.Steps, &steps); err != nil {
		return r, parts, err
	}
	for i, it := range steps {
		content := strings.TrimSpace(it.Content)
		if content == "" {
			return r, parts, invalidField("steps")
		}
		parts.Steps = append(parts.Steps, models.Step{Content: content, Order: i + 1})
	}

	var nutrition []nutritionJSON
	if err := decodeArray("nutrition", in.Nutrition, &nutrition); err != nil {
		return r, parts, err
	}
	for _, it := range nutrition {
		name := strings.TrimSpace(string(it.Name))
		if name == "" {
			return r, parts, invalidField("nutrition")
		}
		parts.Nutrition = append(parts.Nutrition, models.NutritionFact{
			Name: name, Amount: strings.TrimSpace(string(it.Amount)), Unit: strings.TrimSpace(string(it.Unit)),
		})
	}

	var tags []int64
	if err := decodeArray("tags", in.Tags, &tags); err != nil {
		return r, parts, err
	}
	seen := map[int64]bool{}
	for _, id := range tags {
		if id <= 0 {
			return r, parts, invalidField("tags")
		}
		if !seen[id] {
			seen[id] = true
			parts.TagIDs = append(parts.TagIDs, id)
		}
	}

	return r, parts, nil
}

func (in RecipeInput) imageURL() *string {
	u := strings.TrimSpace(in.ImageURL)
	if u == "" {
		return nil
	}
	return &u
}

func decodeArray(field, raw string, dst any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return invalidField(field)
	}
	return nil
}

func parseCount(field, raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, invalidField(field)
	}
	return n, nil
}

func invalidField(field string) error {
	return common.NewError(common.ErrorValidation, common.MsgInvalidJSONField, field)
}
