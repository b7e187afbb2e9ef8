package record

import (
	"encoding/json"
	"fmt"
)

// Menu item field names.
const (
	FieldCocktailName = "cocktail_name"
	FieldBrand        = "brand"
	FieldProduct      = "product"
	FieldIngredients  = "ingredients"
	FieldPrice        = "price"
	FieldSize         = "size"
	// FieldDescription is shared with claims.
)

// MenuItem is one validated line of a drinks menu.
type MenuItem struct {
	Name        string   `json:"cocktail_name"`
	Brand       string   `json:"brand"`
	Product     string   `json:"product"`
	Ingredients []string `json:"ingredients"`
	Price       float64  `json:"price"`
	Size        string   `json:"size"`
	Description string   `json:"description"`
}

// MenuRecord is the ordered list of items extracted from one menu. An empty
// list is valid and means nothing could be extracted.
type MenuRecord struct {
	Items []MenuItem `json:"items"`
}

// MenuFromRaw validates items with the default policy.
func MenuFromRaw(items []Raw) (MenuRecord, error) {
	return Validator{}.Menu(items)
}

// Menu validates every item independently. Items that fail are dropped and
// reported in a *PartialValidationError; the returned MenuRecord always holds
// the valid items in input order.
func (v Validator) Menu(items []Raw) (MenuRecord, error) {
	rec := MenuRecord{Items: make([]MenuItem, 0, len(items))}
	var failures []ItemFailure
	for i, raw := range items {
		item, err := v.Item(raw)
		if err != nil {
			failures = append(failures, ItemFailure{Index: i, Errors: err.(ValidationErrors)})
			continue
		}
		rec.Items = append(rec.Items, item)
	}
	if len(failures) > 0 {
		return rec, &PartialValidationError{Failures: failures}
	}
	return rec, nil
}

// Item validates a single raw menu item. A non-nil error is always ValidationErrors.
func (v Validator) Item(raw Raw) (MenuItem, error) {
	c := &collector{}
	item := MenuItem{
		Name:    requiredText(c, raw, FieldCocktailName),
		Brand:   requiredBrand(c, raw),
		Product: requiredText(c, raw, FieldProduct),
	}
	item.Ingredients = requiredIngredients(c, raw)

	if p, ok := raw.lookup(FieldPrice); !ok {
		c.add(KindMissingField, FieldPrice, nil, "is required")
	} else if price, err := asPrice(p); err != nil {
		c.add(KindInvalidPrice, FieldPrice, p, "%s", err)
	} else {
		item.Price = price
	}

	item.Size = requiredText(c, raw, FieldSize)
	item.Description = requiredText(c, raw, FieldDescription)

	if err := c.err(); err != nil {
		return MenuItem{}, err
	}
	return item, nil
}

// requiredBrand accepts a single brand, or a list holding exactly one.
func requiredBrand(c *collector, r Raw) string {
	v, ok := r.lookup(FieldBrand)
	if !ok {
		c.add(KindMissingField, FieldBrand, nil, "is required")
		return ""
	}
	if list, _, isList := asTextList(v); isList {
		if len(list) != 1 {
			c.add(KindInvalidType, FieldBrand, v, "must name exactly one brand")
			return ""
		}
		v = list[0]
	}
	s, ok := asText(v)
	if !ok {
		c.add(KindInvalidType, FieldBrand, v, "must be text")
		return ""
	}
	if s == "" {
		c.add(KindEmptyRequiredText, FieldBrand, nil, "must not be blank")
	}
	return s
}

func requiredIngredients(c *collector, r Raw) []string {
	v, ok := r.lookup(FieldIngredients)
	if !ok {
		c.add(KindMissingField, FieldIngredients, nil, "is required")
		return nil
	}
	list, blank, ok := asTextList(v)
	switch {
	case !ok:
		c.add(KindInvalidType, FieldIngredients, v, "must be a list of text")
		return nil
	case len(list) == 0:
		c.add(KindEmptyRequiredText, FieldIngredients, nil, "must list at least one ingredient")
		return nil
	case blank >= 0:
		c.add(KindEmptyRequiredText, fmt.Sprintf("%s[%d]", FieldIngredients, blank), nil, "must not be blank")
		return nil
	}
	return list
}

// Raw returns the serialized mapping of the item.
func (m MenuItem) Raw() Raw {
	ingredients := make([]any, len(m.Ingredients))
	for i, s := range m.Ingredients {
		ingredients[i] = s
	}
	return Raw{
		FieldCocktailName: m.Name,
		FieldBrand:        m.Brand,
		FieldProduct:      m.Product,
		FieldIngredients:  ingredients,
		FieldPrice:        m.Price,
		FieldSize:         m.Size,
		FieldDescription:  m.Description,
	}
}

// Raw returns the serialized mapping of every item.
func (m MenuRecord) Raw() []Raw {
	out := make([]Raw, len(m.Items))
	for i, item := range m.Items {
		out[i] = item.Raw()
	}
	return out
}

func (m MenuRecord) MarshalJSON() ([]byte, error) {
	items := m.Items
	if items == nil {
		items = []MenuItem{}
	}
	return json.Marshal(struct {
		Items []MenuItem `json:"items"`
	}{items})
}

// UnmarshalJSON rebuilds a menu through the validator and rejects it if any
// item is invalid.
func (m *MenuRecord) UnmarshalJSON(b []byte) error {
	var doc struct {
		Items []Raw `json:"items"`
	}
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("decoding menu: %w", err)
	}
	rec, err := Validator{}.Menu(doc.Items)
	if err != nil {
		return err
	}
	*m = rec
	return nil
}
