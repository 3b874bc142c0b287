package kernel

import (
	"fmt"
	"sort"

	"github.com/agentoven/kernel/pkg/agent"
)

// color marks a plugin's traversal state during dependency resolution.
type color int

const (
	unseen color = iota
	visiting
	done
)

// ValidatePlugin checks the minimal contract every plugin must satisfy
// before it can take part in dependency resolution (SPEC_FULL.md §4.2).
// Failures are returned together rather than stopping at the first one.
func ValidatePlugin(p agent.Plugin) error {
	var problems []string
	if p.Name() == "" {
		problems = append(problems, "plugin must have a name")
	}
	if p.Description() == "" {
		problems = append(problems, "plugin must have a description")
	}
	if len(problems) > 0 {
		return agent.NewError(agent.ErrValidation, "plugin validation failed: %v", problems)
	}
	return nil
}

// ResolvePluginDependencies orders plugins so that every plugin appears
// after all of its dependencies (and, when includeTestDeps is true, its
// test dependencies). It performs a three-color depth-first traversal:
// visiting a plugin already in-progress is a cycle, visiting a name absent
// from plugins is a missing dependency, and both abort the whole
// resolution (SPEC_FULL.md §4.2 — a resolver error prevents runtime
// construction entirely).
//
// Within groups of plugins that share no dependency edge, ties are broken
// by ascending Priority() — a stable sort keeps the topological order
// otherwise untouched.
func ResolvePluginDependencies(plugins map[string]agent.Plugin, includeTestDeps bool) ([]agent.Plugin, error) {
	for name, p := range plugins {
		if err := ValidatePlugin(p); err != nil {
			return nil, fmt.Errorf("plugin %q: %w", name, err)
		}
	}

	colors := make(map[string]color, len(plugins))
	var order []string

	var visit func(name string) error
	visit = func(name string) error {
		p, ok := plugins[name]
		if !ok {
			return agent.NewError(agent.ErrNotFound, "plugin dependency %q not found", name)
		}

		switch colors[name] {
		case done:
			return nil
		case visiting:
			return agent.NewError(agent.ErrValidation, "circular dependency detected involving plugin %q", name)
		}

		colors[name] = visiting

		for _, dep := range p.Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		if includeTestDeps {
			for _, dep := range p.TestDependencies() {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		colors[name] = done
		order = append(order, name)
		return nil
	}

	names := make([]string, 0, len(plugins))
	for name := range plugins {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic root iteration order

	for _, name := range names {
		if colors[name] == unseen {
			if err := visit(name); err != nil {
				return nil, err
			}
		}
	}

	resolved := make([]agent.Plugin, len(order))
	for i, name := range order {
		resolved[i] = plugins[name]
	}
	reorderTiesByPriority(resolved, plugins, includeTestDeps)
	return resolved, nil
}

// transitiveDeps returns the full set of names p depends on, directly or
// indirectly, following Dependencies() (and TestDependencies() when
// includeTestDeps is set) — the same edges the resolver itself traversed.
func transitiveDeps(name string, plugins map[string]agent.Plugin, includeTestDeps bool, seen map[string]bool) {
	if seen[name] {
		return
	}
	seen[name] = true
	p, ok := plugins[name]
	if !ok {
		return
	}
	for _, dep := range p.Dependencies() {
		transitiveDeps(dep, plugins, includeTestDeps, seen)
	}
	if includeTestDeps {
		for _, dep := range p.TestDependencies() {
			transitiveDeps(dep, plugins, includeTestDeps, seen)
		}
	}
}

// reorderTiesByPriority nudges plugins earlier by ascending Priority()
// using adjacent-swap insertion sort, swapping two neighbors only when the
// later one does not transitively depend on the earlier one. Because the
// input is already a valid topological order, a dependency can never
// appear after what it depends on, so this check is sufficient to
// guarantee no edge is ever crossed (SPEC_FULL.md §4.2 — priority
// reordering "MUST not reorder across dependency edges").
func reorderTiesByPriority(resolved []agent.Plugin, plugins map[string]agent.Plugin, includeTestDeps bool) {
	depsOf := func(p agent.Plugin) map[string]bool {
		seen := make(map[string]bool)
		transitiveDeps(p.Name(), plugins, includeTestDeps, seen)
		delete(seen, p.Name())
		return seen
	}

	for i := 1; i < len(resolved); i++ {
		for j := i; j > 0; j-- {
			earlier, later := resolved[j-1], resolved[j]
			if later.Priority() >= earlier.Priority() {
				break
			}
			if depsOf(later)[earlier.Name()] {
				// later depends on earlier; swapping would violate the edge
				break
			}
			resolved[j-1], resolved[j] = resolved[j], resolved[j-1]
		}
	}
}

// LoadPlugins validates and resolves plugins, the two-step sequence the
// runtime performs once at construction time, before any Init call runs.
func LoadPlugins(plugins []agent.Plugin, includeTestDeps bool) ([]agent.Plugin, error) {
	byName := make(map[string]agent.Plugin, len(plugins))
	for _, p := range plugins {
		byName[p.Name()] = p
	}
	return ResolvePluginDependencies(byName, includeTestDeps)
}
