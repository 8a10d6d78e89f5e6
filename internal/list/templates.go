package list

import "time"

// FindTemplateByName returns the index of the template matching name under
// case folding, or -1.
func FindTemplateByName(templates []ProductTemplate, name string) int {
	for i, t := range templates {
		if EqualsIgnoreCase(t.Name, name) {
			return i
		}
	}
	return -1
}

// UpsertTemplateMarkets remembers the latest name and market selection for a
// product name. A missing template is created at the head of the slice with an
// empty purchase log. Returns a new slice.
func UpsertTemplateMarkets(templates []ProductTemplate, name string, markets []string) []ProductTemplate {
	i := FindTemplateByName(templates, name)
	if i == -1 {
		created := ProductTemplate{
			ID:           NewID(),
			Name:         name,
			Supermarkets: markets,
			PurchaseLog:  []time.Time{},
		}
		return append([]ProductTemplate{created}, templates...)
	}

	out := CloneTemplates(templates)
	out[i].Name = name
	out[i].Supermarkets = markets
	return out
}

// AppendTemplateLog records a purchase of the named product at boughtAt,
// creating the template if absent. Markets overwrite the remembered set only
// when non-empty. Returns a new slice.
func AppendTemplateLog(templates []ProductTemplate, name string, markets []string, boughtAt time.Time) []ProductTemplate {
	i := FindTemplateByName(templates, name)
	if i == -1 {
		created := ProductTemplate{
			ID:           NewID(),
			Name:         name,
			Supermarkets: markets,
			PurchaseLog:  []time.Time{boughtAt},
		}
		return append([]ProductTemplate{created}, templates...)
	}

	out := CloneTemplates(templates)
	if len(markets) > 0 {
		out[i].Supermarkets = markets
	}
	out[i].PurchaseLog = append(out[i].PurchaseLog, boughtAt)
	return out
}
