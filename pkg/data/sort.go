package data

import (
	"sort"

	"github.com/goliatone/go-dcgeneral/pkg/model"
)

// SortModels orders models in place by the supplied fields. The sort is
// stable so equal keys keep their insertion order.
func SortModels(models []*model.Model, fields []SortField) {
	if len(fields) == 0 || len(models) < 2 {
		return
	}
	normalized := make([]SortField, 0, len(fields))
	for _, field := range fields {
		normalized = append(normalized, field.Normalize())
	}
	sort.SliceStable(models, func(i, j int) bool {
		for _, field := range normalized {
			cmp := CompareValues(propertyValue(models[i], field.Property), propertyValue(models[j], field.Property))
			if cmp == 0 {
				continue
			}
			if field.Direction == Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

// Page applies start/amount paging to models.
func Page(models []*model.Model, start, amount int) []*model.Model {
	if start >= len(models) {
		return nil
	}
	if start > 0 {
		models = models[start:]
	}
	if amount > 0 && amount < len(models) {
		models = models[:amount]
	}
	return models
}
