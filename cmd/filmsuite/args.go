package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"filmsuite/internal/content"
)

// parseOrdinals accepts 1-based chapter numbers, separated by spaces or commas.
func parseOrdinals(values []string) ([]int, error) {
	seen := make(map[int]bool)
	var ordinals []int
	for _, value := range splitList(values) {
		ordinal, err := strconv.Atoi(value)
		if err != nil || ordinal < 1 {
			return nil, fmt.Errorf("invalid chapter number %q (chapters start at 1)", value)
		}
		if !seen[ordinal] {
			seen[ordinal] = true
			ordinals = append(ordinals, ordinal)
		}
	}
	sort.Ints(ordinals)
	return ordinals, nil
}

// parseKinds resolves content kind names; an empty list means every kind.
func parseKinds(values []string) ([]content.Kind, error) {
	var kinds []content.Kind
	seen := make(map[content.Kind]bool)
	for _, value := range splitList(values) {
		kind, err := content.ParseKind(value)
		if err != nil {
			return nil, err
		}
		if !seen[kind] {
			seen[kind] = true
			kinds = append(kinds, kind)
		}
	}
	if len(kinds) == 0 {
		return content.Kinds(), nil
	}
	return kinds, nil
}

func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
