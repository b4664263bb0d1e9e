package query

import (
	"fmt"
	"sort"

	"github.com/staff-portfolio-api/internal/domain"
	"github.com/staff-portfolio-api/internal/schema"
)

// ValidatePatch проверяет тело патча по множеству изменяемых атрибутов
// сущности и возвращает карту "колонка → значение". Мутация атомарна:
// один недопустимый ключ отклоняет весь патч. Попытка изменить
// неизменяемый идентификатор отклоняется отдельной ошибкой; поля,
// принадлежащие другим подсистемам, молча отбрасываются.
func ValidatePatch(entity schema.Entity, payload map[string]any) (map[string]any, error) {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	// Неизвестный ключ имеет приоритет над неизменяемым
	for _, key := range keys {
		if _, ok := schema.Lookup(entity, key); !ok {
			return nil, fmt.Errorf("attribute %q: %w", key, domain.ErrUnknownAttribute)
		}
	}
	for _, key := range keys {
		if a, _ := schema.Lookup(entity, key); a.Identifier {
			return nil, fmt.Errorf("attribute %q: %w", key, domain.ErrImmutableField)
		}
	}

	updates := make(map[string]any, len(payload))
	for _, key := range keys {
		attr, _ := schema.Lookup(entity, key)
		if attr.Ignored {
			continue
		}
		if !attr.Mutable {
			return nil, fmt.Errorf("attribute %q: %w", key, domain.ErrUnknownAttribute)
		}
		value, err := coercePatchValue(attr.Type, payload[key])
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}
		updates[attr.Column] = value
	}
	return updates, nil
}

func coercePatchValue(t schema.Type, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch t {
	case schema.Text:
		v, ok := raw.(string)
		if !ok {
			return nil, domain.ErrUnknownAttribute
		}
		return v, nil
	case schema.Integer:
		v, ok := raw.(float64)
		if !ok {
			return nil, domain.ErrUnknownAttribute
		}
		return int64(v), nil
	case schema.Decimal:
		v, ok := raw.(float64)
		if !ok {
			return nil, domain.ErrUnknownAttribute
		}
		return v, nil
	case schema.Boolean:
		v, ok := raw.(bool)
		if !ok {
			return nil, domain.ErrUnknownAttribute
		}
		return v, nil
	case schema.Date:
		s, ok := raw.(string)
		if !ok {
			return nil, domain.ErrUnknownAttribute
		}
		v, err := parseDate(s)
		if err != nil {
			return nil, domain.ErrUnknownAttribute
		}
		return v, nil
	case schema.TextList:
		items, ok := raw.([]any)
		if !ok {
			return nil, domain.ErrUnknownAttribute
		}
		list := make(domain.StringList, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				return nil, domain.ErrUnknownAttribute
			}
			list = append(list, s)
		}
		return list, nil
	default:
		return nil, domain.ErrUnknownAttribute
	}
}
