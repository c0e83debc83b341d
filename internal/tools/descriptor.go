package tools

import (
	"fmt"
	"sort"
	"strings"
)

// Descriptor is the prompt-facing view of a tool.
type Descriptor struct {
	Name        string
	Description string
}

type named interface {
	Name() string
}

type described interface {
	Description() string
}

// NameOf returns the tool's name, or its textual rendering when it has no Name method.
func NameOf(t any) string {
	if n, ok := t.(named); ok {
		return n.Name()
	}
	return fmt.Sprint(t)
}

// Describe builds descriptors for the given tools, keeping input order.
func Describe[T any](ts []T) []Descriptor {
	out := make([]Descriptor, 0, len(ts))
	for _, t := range ts {
		d := Descriptor{Name: NameOf(t)}
		if desc, ok := any(t).(described); ok {
			d.Description = desc.Description()
		}
		out = append(out, d)
	}
	return out
}

// Names returns descriptor names sorted and without duplicates. Blank names are dropped.
func Names(ds []Descriptor) []string {
	seen := make(map[string]struct{}, len(ds))
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		if strings.TrimSpace(d.Name) == "" {
			continue
		}
		if _, ok := seen[d.Name]; ok {
			continue
		}
		seen[d.Name] = struct{}{}
		out = append(out, d.Name)
	}
	sort.Strings(out)
	return out
}
