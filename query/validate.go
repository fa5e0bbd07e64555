// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package query

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/campusql/campusql/model"
)

// Validated is the fully shape-checked, key-resolved form of a Query —
// what filtering, transformation, and projection operate on. It never
// touches the store; DatasetID/Kind are inferred purely from the fields
// the query names, and the facade confirms them against the actually
// loaded dataset.
type Validated struct {
	DatasetID string
	Kind      model.Kind
	Where     *whereNode
	Columns   []string
	Order     *order
	Group     []string
	Apply     []ApplyRule
}

type order struct {
	keys []string
	desc []bool // parallel to keys
}

type keyUse struct {
	key            string
	requireNumeric bool
}

func invalidQueryf(format string, a ...any) *Error {
	return New(InvalidQuery, fmt.Sprintf(format, a...))
}

// splitKey separates a dataset key "<id>_<field>" into its parts. Dataset
// ids never contain '_' (identifier.Valid), so the first underscore is
// always the separator. A key with no underscore is an apply key.
func splitKey(key string) (datasetID, field string, isDatasetKey bool) {
	i := strings.IndexByte(key, '_')
	if i < 0 {
		return "", key, false
	}

	return key[:i], key[i+1:], true
}

// fieldKind reports which row kind declares field, and its scalar type.
// Sections and Rooms field sets are disjoint, so the field name alone
// determines the kind.
func fieldKind(field string) (model.Kind, model.FieldType, bool) {
	if t, ok := model.SectionFields[field]; ok {
		return model.Sections, t, true
	}

	if t, ok := model.RoomFields[field]; ok {
		return model.Rooms, t, true
	}

	return "", 0, false
}

// Validate shape-checks q and resolves every key it references.
func Validate(q Query) (*Validated, error) {
	whereNode, whereKeys, err := parseWhere(q.Where)
	if err != nil {
		return nil, err
	}

	if len(q.Options.Columns) == 0 {
		return nil, invalidQueryf("OPTIONS.COLUMNS must be non-empty")
	}

	apply, applyKeys, err := parseApply(q.Transformations)
	if err != nil {
		return nil, err
	}

	applyKeySet := make(map[string]bool, len(apply))
	for _, a := range apply {
		if applyKeySet[a.ApplyKey] {
			return nil, invalidQueryf("duplicate APPLY key %q", a.ApplyKey)
		}

		applyKeySet[a.ApplyKey] = true
	}

	datasetID, kind, err := resolveDataset(whereKeys, q.Options.Columns, q.Transformations, apply, applyKeySet)
	if err != nil {
		return nil, err
	}

	for _, ku := range whereKeys {
		if err := checkFieldUse(ku); err != nil {
			return nil, err
		}
	}

	for _, a := range apply {
		_, ft, ok := fieldKind(splitField(a.DatasetKey))
		if !ok {
			return nil, invalidQueryf("unknown field in APPLY key %q", a.DatasetKey)
		}

		if a.Op != OpCount && ft != model.NumericField {
			return nil, invalidQueryf("%s requires a numeric field, got %q", a.Op, a.DatasetKey)
		}
	}

	columnDatasetKeys, columnApplyKeys := 0, 0

	for _, c := range q.Options.Columns {
		_, field, isDatasetKey := splitKey(c)
		if isDatasetKey {
			if _, _, ok := fieldKind(field); !ok {
				return nil, invalidQueryf("unknown field in COLUMNS %q", c)
			}

			columnDatasetKeys++
		} else {
			if !applyKeySet[c] {
				return nil, invalidQueryf("COLUMNS references undeclared apply key %q", c)
			}

			columnApplyKeys++
		}
	}

	if columnApplyKeys != len(applyKeySet) {
		return nil, invalidQueryf("every declared APPLY key must appear in COLUMNS")
	}

	if q.Transformations != nil {
		columnSet := make(map[string]bool, len(q.Options.Columns))
		for _, c := range q.Options.Columns {
			columnSet[c] = true
		}

		groupSet := make(map[string]bool, len(q.Transformations.Group))
		for _, g := range q.Transformations.Group {
			groupSet[g] = true
		}

		for _, c := range q.Options.Columns {
			if _, _, isDatasetKey := splitKey(c); isDatasetKey && !groupSet[c] {
				return nil, invalidQueryf("COLUMNS dataset key %q must appear in GROUP", c)
			}
		}
	}

	ord, err := parseOrder(q.Options.Order, q.Options.Columns)
	if err != nil {
		return nil, err
	}

	var group []string
	if q.Transformations != nil {
		group = q.Transformations.Group
	}

	return &Validated{
		DatasetID: datasetID,
		Kind:      kind,
		Where:     whereNode,
		Columns:   q.Options.Columns,
		Order:     ord,
		Group:     group,
		Apply:     apply,
	}, nil
}

func splitField(key string) string {
	_, field, _ := splitKey(key)

	return field
}

func checkFieldUse(ku keyUse) error {
	_, ft, ok := fieldKind(splitField(ku.key))
	if !ok {
		return invalidQueryf("unknown field in WHERE key %q", ku.key)
	}

	if ku.requireNumeric && ft != model.NumericField {
		return invalidQueryf("operator requires a numeric field, got %q", ku.key)
	}

	if !ku.requireNumeric && ft != model.StringField {
		return invalidQueryf("IS requires a string field, got %q", ku.key)
	}

	return nil
}

// resolveDataset enforces rule 1: exactly one distinct dataset id across
// WHERE, COLUMNS, ORDER, GROUP and APPLY value keys.
func resolveDataset(whereKeys []keyUse, columns []string, tr *Transformations, apply []ApplyRule, applyKeySet map[string]bool) (string, model.Kind, error) {
	ids := map[string]bool{}

	addKey := func(k string) error {
		id, field, isDatasetKey := splitKey(k)
		if !isDatasetKey {
			if !applyKeySet[k] {
				return invalidQueryf("unresolved key %q", k)
			}

			return nil
		}

		if _, _, ok := fieldKind(field); !ok {
			return invalidQueryf("unknown field %q", k)
		}

		ids[id] = true

		return nil
	}

	for _, ku := range whereKeys {
		if err := addKey(ku.key); err != nil {
			return "", "", err
		}
	}

	for _, c := range columns {
		if err := addKey(c); err != nil {
			return "", "", err
		}
	}

	if tr != nil {
		for _, g := range tr.Group {
			if err := addKey(g); err != nil {
				return "", "", err
			}
		}

		for _, a := range apply {
			if err := addKey(a.DatasetKey); err != nil {
				return "", "", err
			}
		}
	}

	if len(ids) == 0 {
		return "", "", invalidQueryf("query references no dataset")
	}

	if len(ids) > 1 {
		return "", "", invalidQueryf("query references more than one dataset")
	}

	var datasetID string
	for id := range ids {
		datasetID = id
	}

	kind, err := kindForDataset(whereKeys, columns, tr, apply)
	if err != nil {
		return "", "", err
	}

	return datasetID, kind, nil
}

// kindForDataset infers the row kind from the fields the query names —
// Sections and Rooms field sets are disjoint, so every dataset key used
// must resolve to the same kind, else the query is internally
// inconsistent.
func kindForDataset(whereKeys []keyUse, columns []string, tr *Transformations, apply []ApplyRule) (model.Kind, error) {
	var kind model.Kind

	see := func(field string) error {
		k, _, ok := fieldKind(field)
		if !ok {
			return invalidQueryf("unknown field %q", field)
		}

		if kind == "" {
			kind = k
		} else if kind != k {
			return invalidQueryf("query mixes fields of different kinds")
		}

		return nil
	}

	for _, ku := range whereKeys {
		if _, field, ok := splitKey(ku.key); ok {
			if err := see(field); err != nil {
				return "", err
			}
		}
	}

	for _, c := range columns {
		if _, field, ok := splitKey(c); ok {
			if err := see(field); err != nil {
				return "", err
			}
		}
	}

	if tr != nil {
		for _, g := range tr.Group {
			if _, field, ok := splitKey(g); ok {
				if err := see(field); err != nil {
					return "", err
				}
			}
		}

		for _, a := range apply {
			if _, field, ok := splitKey(a.DatasetKey); ok {
				if err := see(field); err != nil {
					return "", err
				}
			}
		}
	}

	if kind == "" {
		return "", invalidQueryf("query references no field")
	}

	return kind, nil
}

func parseWhere(raw json.RawMessage) (*whereNode, []keyUse, error) {
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, nil, invalidQueryf("WHERE must be an object: %v", err)
	}

	if len(obj) == 0 {
		return &whereNode{true: true}, nil, nil
	}

	if len(obj) > 1 {
		return nil, nil, invalidQueryf("WHERE node must have exactly one operator")
	}

	for opName, val := range obj {
		switch opName {
		case "AND", "OR":
			return parseJunction(opName, val)
		case "NOT":
			child, keys, err := parseWhere(val)
			if err != nil {
				return nil, nil, err
			}

			return &whereNode{not: child}, keys, nil
		case "GT", "LT", "EQ":
			cmp, key, err := parseNumericComparison(val)
			if err != nil {
				return nil, nil, err
			}

			node := &whereNode{}

			switch opName {
			case "GT":
				node.gt = cmp
			case "LT":
				node.lt = cmp
			case "EQ":
				node.eq = cmp
			}

			return node, []keyUse{{key: key, requireNumeric: true}}, nil
		case "IS":
			cmp, key, err := parseStringComparison(val)
			if err != nil {
				return nil, nil, err
			}

			return &whereNode{is: cmp}, []keyUse{{key: key, requireNumeric: false}}, nil
		default:
			return nil, nil, invalidQueryf("unknown WHERE operator %q", opName)
		}
	}

	panic("unreachable")
}

func parseJunction(opName string, val json.RawMessage) (*whereNode, []keyUse, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(val, &arr); err != nil {
		return nil, nil, invalidQueryf("%s must be an array", opName)
	}

	if len(arr) == 0 {
		return nil, nil, invalidQueryf("%s must be non-empty", opName)
	}

	children := make([]*whereNode, 0, len(arr))

	var keys []keyUse

	for _, item := range arr {
		child, ck, err := parseWhere(item)
		if err != nil {
			return nil, nil, err
		}

		children = append(children, child)
		keys = append(keys, ck...)
	}

	node := &whereNode{}
	if opName == "AND" {
		node.and = children
	} else {
		node.or = children
	}

	return node, keys, nil
}

func parseNumericComparison(val json.RawMessage) (*comparison, string, error) {
	var obj map[string]float64
	if err := json.Unmarshal(val, &obj); err != nil {
		return nil, "", invalidQueryf("comparison must map a key to a number: %v", err)
	}

	if len(obj) != 1 {
		return nil, "", invalidQueryf("comparison must have exactly one key")
	}

	for k, v := range obj {
		return &comparison{key: k, numeric: v}, k, nil
	}

	panic("unreachable")
}

func parseStringComparison(val json.RawMessage) (*comparison, string, error) {
	var obj map[string]string
	if err := json.Unmarshal(val, &obj); err != nil {
		return nil, "", invalidQueryf("IS must map a key to a string: %v", err)
	}

	if len(obj) != 1 {
		return nil, "", invalidQueryf("IS must have exactly one key")
	}

	for k, pattern := range obj {
		if err := checkWildcard(pattern); err != nil {
			return nil, "", err
		}

		return &comparison{key: k, pattern: pattern}, k, nil
	}

	panic("unreachable")
}

// checkWildcard enforces that '*' appears only as a leading prefix,
// trailing suffix, or both — never in the interior of the pattern.
func checkWildcard(pattern string) error {
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '*' && i != 0 && i != len(pattern)-1 {
			return invalidQueryf("wildcard must be a prefix or suffix, not interior: %q", pattern)
		}
	}

	return nil
}

func parseApply(tr *Transformations) ([]ApplyRule, map[string]bool, error) {
	if tr == nil {
		return nil, nil, nil
	}

	if len(tr.Group) == 0 {
		return nil, nil, invalidQueryf("TRANSFORMATIONS.GROUP must be non-empty")
	}

	rules := make([]ApplyRule, 0, len(tr.Apply))
	keys := make(map[string]bool, len(tr.Apply))

	for _, raw := range tr.Apply {
		var outer map[string]json.RawMessage
		if err := json.Unmarshal(raw, &outer); err != nil || len(outer) != 1 {
			return nil, nil, invalidQueryf("APPLY rule must have exactly one key")
		}

		for applyKey, inner := range outer {
			if strings.Contains(applyKey, "_") {
				return nil, nil, invalidQueryf("apply key %q must not contain '_'", applyKey)
			}

			var ops map[string]string
			if err := json.Unmarshal(inner, &ops); err != nil || len(ops) != 1 {
				return nil, nil, invalidQueryf("APPLY rule %q must map exactly one operator", applyKey)
			}

			for op, datasetKey := range ops {
				switch ApplyOp(op) {
				case OpMax, OpMin, OpAvg, OpSum, OpCount:
				default:
					return nil, nil, invalidQueryf("unknown APPLY operator %q", op)
				}

				rules = append(rules, ApplyRule{ApplyKey: applyKey, Op: ApplyOp(op), DatasetKey: datasetKey})
				keys[applyKey] = true
			}
		}
	}

	return rules, keys, nil
}

func parseOrder(raw json.RawMessage, columns []string) (*order, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	colSet := make(map[string]bool, len(columns))
	for _, c := range columns {
		colSet[c] = true
	}

	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if !colSet[asString] {
			return nil, invalidQueryf("ORDER key %q not in COLUMNS", asString)
		}

		return &order{keys: []string{asString}, desc: []bool{false}}, nil
	}

	var spec OrderSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return nil, invalidQueryf("ORDER must be a string or an object: %v", err)
	}

	if len(spec.Keys) == 0 {
		return nil, invalidQueryf("ORDER.keys must be non-empty")
	}

	var desc bool

	switch spec.Dir {
	case "UP":
		desc = false
	case "DOWN":
		desc = true
	default:
		return nil, invalidQueryf("ORDER.dir must be UP or DOWN, got %q", spec.Dir)
	}

	for _, k := range spec.Keys {
		if !colSet[k] {
			return nil, invalidQueryf("ORDER key %q not in COLUMNS", k)
		}
	}

	descs := make([]bool, len(spec.Keys))
	for i := range descs {
		descs[i] = desc
	}

	return &order{keys: spec.Keys, desc: descs}, nil
}
